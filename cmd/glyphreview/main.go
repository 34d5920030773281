// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// glyphreview is a graphical tool to review and correct segmented
// glyphs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
)

const usage = `Usage: glyphreview [-v] [-o outdir]

Shows the glyphs of each line of the tables segmented into outdir, so
that mistakes can be corrected. Select glyphs by ticking them, then:

  Join    joins two neighbouring glyphs which were wrongly cut apart
  Split   splits a glyph holding two touching glyphs
  Delete  deletes glyphs which are just noise

Each correction is saved straight away, recorded in the table's
corrections.log, and the table is renumbered.
`

func main() {
	s, err := glyphpipeline.GetSettings()
	if err != nil {
		log.Fatalln("Error reading settings:", err)
	}

	verbose := flag.Bool("v", false, "verbose")
	outdir := flag.String("o", "glyphs", "output directory the tables were segmented into")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	var verboselog *log.Logger
	if *verbose {
		verboselog = log.New(os.Stdout, "", 0)
	} else {
		var n diag.NullWriter
		verboselog = log.New(n, "", 0)
	}

	store := &glyphpipeline.LocalStore{Dir: *outdir, Logger: verboselog}
	err = store.Init()
	if err != nil {
		log.Fatalln("Error setting up output directory:", err)
	}

	err = startGui(store, s, verboselog)
	if err != nil {
		log.Fatalln(err)
	}
}
