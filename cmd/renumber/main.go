// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// renumber gives the glyph images in a directory dense numbers.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/internal/pipeline"
)

const usage = `Usage: renumber [-v] dir

Renames the glyph images in dir so that, in each table, lines are
numbered 1, 2, 3... and the glyphs of each line are numbered 1, 2,
3..., keeping their order. This closes up any gaps left by deleting
or joining glyphs, and gives split pieces numbers of their own.
Images named in the older style, like m12_R_lines_3_chunk_07.png,
are renamed too.

A summary is printed and saved as renumber.txt in dir.
`

func main() {
	verbose := flag.Bool("v", false, "verbose")
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

	sum, err := pipeline.RenumberDir(flag.Arg(0), diag.NewRun(verboselog))
	if err != nil {
		log.Fatalln(err)
	}
	err = sum.WriteText(os.Stdout)
	if err != nil {
		log.Fatalln(err)
	}
}
