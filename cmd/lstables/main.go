// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// lstables lists the tables segmented into an output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
)

const usage = `Usage: lstables [-o outdir] [-locked]

Lists the tables segmented into outdir, with the number of lines and
glyphs in each. Tables which are being worked on, or which were left
locked by a run that crashed, are marked as locked. Tables without an
index are marked as unindexed.
`

func main() {
	outdir := flag.String("o", "glyphs", "output directory")
	locked := flag.Bool("locked", false, "only list locked tables")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	var n diag.NullWriter
	store := &glyphpipeline.LocalStore{Dir: *outdir, Logger: log.New(n, "", 0)}
	if _, err := os.Stat(*outdir); err != nil {
		log.Fatalln("Error opening output directory:", err)
	}
	err := store.Init()
	if err != nil {
		log.Fatalln(err)
	}

	tables, err := store.ListTables()
	if err != nil {
		log.Fatalln(err)
	}
	lines, glyphs := 0, 0
	for _, t := range tables {
		if *locked && !t.Locked {
			continue
		}
		fmt.Printf("%s\t%d lines\t%d glyphs", t.Name, t.Lines, t.Glyphs)
		if t.Locked {
			fmt.Printf("\tlocked")
		}
		if !t.Index {
			fmt.Printf("\tunindexed")
		}
		fmt.Printf("\n")
		lines += t.Lines
		glyphs += t.Glyphs
	}
	if !*locked {
		fmt.Printf("%d tables, %d lines, %d glyphs\n", len(tables), lines, glyphs)
	}
}
