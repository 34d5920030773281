// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// proofsheet makes a pdf showing how tables were segmented.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/internal/pipeline"
	"rescribe.xyz/glyphpipeline/segment"
)

const usage = `Usage: proofsheet [-v] [-o outdir] [-pad num] out.pdf [table...]

Makes a pdf with a page for each table segmented into outdir, showing
the table with the box and number of every glyph drawn over it, so
that segmentation mistakes can be spotted and corrected. Tables can
be named, like t001 t004, otherwise every table is included.
`

func main() {
	verbose := flag.Bool("v", false, "verbose")
	outdir := flag.String("o", "glyphs", "output directory the tables were segmented into")
	pad := flag.Int("pad", segment.DefaultPad, "background border around each glyph image")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		return
	}

	var verboselog *log.Logger
	if *verbose {
		verboselog = log.New(os.Stdout, "", 0)
	} else {
		var n diag.NullWriter
		verboselog = log.New(n, "", 0)
	}

	store := &glyphpipeline.LocalStore{Dir: *outdir, Logger: verboselog}
	err := store.Init()
	if err != nil {
		log.Fatalln(err)
	}

	tables := flag.Args()[1:]
	if len(tables) == 0 {
		infos, err := store.ListTables()
		if err != nil {
			log.Fatalln(err)
		}
		for _, t := range infos {
			tables = append(tables, t.Name)
		}
	}

	run := diag.NewRun(verboselog)
	pages, err := pipeline.ProofSheet(store, new(glyphpipeline.Fpdf), tables, *pad, flag.Arg(0), run)
	for _, e := range run.Events() {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", e.Severity, e.Table, e.Message)
	}
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("Saved %d tables to %s\n", pages, flag.Arg(0))
}
