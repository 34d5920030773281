// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// splitchunk splits a chunk image holding touching glyphs in two.
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

const usage = `Usage: splitchunk [-pad num] chunk.png

Splits a chunk image holding two touching glyphs in two, along the
shortest path of background pixels from top to bottom near its
middle. If there is no such path it is cut straight down the middle.
The pieces are saved next to it, so line_05.png becomes line_05-1.png
and line_05-2.png.
`

func main() {
	pad := flag.Int("pad", segment.DefaultPad, "background border around the chunk, which is kept around each piece")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return
	}

	run := diag.NewRun(nil)
	paths, err := pipeline.SplitChunk(flag.Arg(0), *pad, run)
	if err != nil {
		log.Fatalln(err)
	}
	for _, e := range run.Events() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", e.Severity, e.Message)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}
