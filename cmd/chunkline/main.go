// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// chunkline cuts a line image into chunks at its gaps.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/internal/pipeline"
	"rescribe.xyz/glyphpipeline/segment"
)

const usage = `Usage: chunkline [-v] [-pad num] line.png... outdir

Cuts each line image into chunks wherever there is a column with no
ink, saving each chunk with a border of background into outdir,
named after the line like line_01.png, line_02.png.
`

func main() {
	verbose := flag.Bool("v", false, "verbose")
	pad := flag.Int("pad", segment.DefaultPad, "background border added around each chunk")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 2 {
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
	run := diag.NewRun(verboselog)

	outdir := flag.Arg(flag.NArg() - 1)
	failed := false
	for _, line := range flag.Args()[:flag.NArg()-1] {
		paths, err := pipeline.ChunkLine(line, outdir, *pad, run)
		if err != nil {
			log.Println(err)
			failed = true
			continue
		}
		fmt.Printf("%s: %d chunks\n", line, len(paths))
	}
	for _, e := range run.Events() {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", e.Severity, e.Table, e.Message)
	}
	if failed {
		os.Exit(1)
	}
}
