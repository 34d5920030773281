// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// segmentall segments every table image in a directory into glyphs,
// several tables at once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/internal/pipeline"
)

const usage = `Usage: segmentall [-v] [-o outdir] [-doc name] [-proof] [-check] [settings flags] tabledir

Segments every table image in tabledir (and its subdirectories) into
glyph images, one output directory per table, named by table number.
The table number of each image is the last number in its file name.

At the end a report of any warnings and failures is printed, and
saved as report.json in outdir. Press Ctrl-C to stop starting new
tables; those in progress will still be finished.

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
	doc := flag.String("doc", "", "document name used in the index (default: each image's name)")
	proof := flag.Bool("proof", false, "make a proof sheet pdf for each table")
	check := flag.Bool("check", false, "check that every image can be decoded before starting, and stop if not")
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

	_, err = s.Options()
	if err != nil {
		log.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *check {
		err = pipeline.CheckImages(ctx, flag.Arg(0))
		if err != nil {
			log.Fatalln("Error checking images:", err)
		}
	}
	jobs, err := pipeline.FindTables(ctx, flag.Arg(0), *doc)
	if err != nil {
		log.Fatalln("Error finding tables:", err)
	}

	store := &glyphpipeline.LocalStore{Dir: *outdir, Logger: verboselog}
	err = store.Init()
	if err != nil {
		log.Fatalln("Error setting up output directory:", err)
	}

	run := diag.NewRun(verboselog)
	store.Log("Segmenting", len(jobs), "tables")
	started := pipeline.ProcessTables(ctx, jobs, store, s, pipeline.Outputs{Proof: *proof}, s.Workers, run)

	rep, err := store.WriteReport(run, started)
	if err != nil {
		log.Println(err)
	}
	err = rep.WriteText(os.Stdout)
	if err != nil {
		log.Fatalln("Error writing report:", err)
	}
	if rep.Failed > 0 || started < len(jobs) {
		os.Exit(1)
	}
}
