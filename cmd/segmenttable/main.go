// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// segmenttable segments a single table image into glyphs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/internal/pipeline"
)

const usage = `Usage: segmenttable [-v] [-o outdir] [-doc name] [-t num] [-proof] [settings flags] table.png

Segments a table image into glyph images, saved in a directory for
the table inside outdir, along with the table's index and reports.
The table number is the last number in the image's file name, unless
set with -t.

Settings are read from ~/.config/glyphpipeline/settings, and can be
overridden with the flags below.
`

func main() {
	s, err := glyphpipeline.GetSettings()
	if err != nil {
		log.Fatalln("Error reading settings:", err)
	}

	verbose := flag.Bool("v", false, "verbose")
	outdir := flag.String("o", "glyphs", "output directory")
	doc := flag.String("doc", "", "document name used in the index (default: the image's name)")
	num := flag.Int("t", 0, "table number")
	proof := flag.Bool("proof", false, "make a proof sheet pdf")
	pipeline.AddSettingsFlags(flag.CommandLine, &s)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
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

	var job pipeline.Job
	if *num > 0 {
		job = pipeline.Job{Path: flag.Arg(0), Table: *num, Doc: *doc}
		if job.Doc == "" {
			job.Doc = pipeline.DocName(flag.Arg(0))
		}
	} else {
		job, err = pipeline.NewJob(flag.Arg(0), *doc)
		if err != nil {
			log.Fatalln(err)
		}
	}

	store := &glyphpipeline.LocalStore{Dir: *outdir, Logger: verboselog}
	err = store.Init()
	if err != nil {
		log.Fatalln("Error setting up output directory:", err)
	}

	run := diag.NewRun(verboselog)
	res, err := pipeline.SegmentTable(context.Background(), job, store, s, pipeline.Outputs{Proof: *proof}, run)
	if err != nil {
		log.Fatalln(err)
	}
	for _, e := range run.Events() {
		fmt.Fprintf(os.Stderr, "%s: [%s] %s\n", e.Severity, e.Kind, e.Message)
	}
	fmt.Printf("%d glyphs in %d lines saved to %s\n", len(res.Pieces), len(res.Lines), store.TableDir(job.Name()))
}
