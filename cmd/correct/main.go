// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// correct applies manual corrections to a segmented table.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/internal/pipeline"
)

const usage = `Usage: correct [-v] [-o outdir] [-proof] tablenum [corrections.txt | command...]

Applies corrections to the glyphs of a table segmented into outdir.
The corrections are read from a file, one per line, or from standard
input if the file is -, or given as a single command on the command
line. They are:

  join t001_l002g003 t001_l002g004   join two neighbouring glyphs
  split t001_l002g005                split a glyph of two touching glyphs
  delete t001_l003g001               delete a glyph which is just noise

The table is renumbered after each correction, so each one refers to
the glyphs as numbered after the one before. Each correction is
recorded in the table's corrections.log, and the index and reports
are rewritten.
`

func main() {
	s, err := glyphpipeline.GetSettings()
	if err != nil {
		log.Fatalln("Error reading settings:", err)
	}

	verbose := flag.Bool("v", false, "verbose")
	outdir := flag.String("o", "glyphs", "output directory the table was segmented into")
	proof := flag.Bool("proof", false, "remake the proof sheet pdf")
	flag.IntVar(&s.Pad, "pad", s.Pad, "background border around each glyph image")
	flag.StringVar(&s.Comment, "comment", s.Comment, "comment marker at the end of each index line")
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

	num, err := strconv.Atoi(flag.Arg(0))
	if err != nil || num < 1 {
		log.Fatalln("Invalid table number", flag.Arg(0))
	}

	var cmds []pipeline.Command
	switch {
	case flag.NArg() == 2 && flag.Arg(1) == "-":
		cmds, err = pipeline.ParseCommands(os.Stdin)
	case flag.NArg() == 2:
		var f io.ReadCloser
		f, err = os.Open(flag.Arg(1))
		if err != nil {
			log.Fatalln("Error opening", flag.Arg(1), err)
		}
		cmds, err = pipeline.ParseCommands(f)
		f.Close()
	default:
		var c pipeline.Command
		c, err = pipeline.ParseCommand(strings.Join(flag.Args()[1:], " "))
		cmds = []pipeline.Command{c}
	}
	if err != nil {
		log.Fatalln(err)
	}

	store := &glyphpipeline.LocalStore{Dir: *outdir, Logger: verboselog}
	err = store.Init()
	if err != nil {
		log.Fatalln("Error setting up output directory:", err)
	}

	run := diag.NewRun(verboselog)
	err = pipeline.Correct(store, num, cmds, s, pipeline.Outputs{Proof: *proof}, run)
	for _, e := range run.Events() {
		fmt.Fprintf(os.Stderr, "%s: [%s] %s\n", e.Severity, e.Kind, e.Message)
	}
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("Applied %d corrections to table %d\n", len(cmds), num)
}
