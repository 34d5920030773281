// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// joinchunks joins chunk images which were wrongly cut apart.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/segment"
)

const usage = `Usage: joinchunks [-pad num] chunk_07.png chunk_08.png...
       joinchunks [-pad num] -range prefix first last [dir]
       joinchunks [-pad num] -batch joins.txt

Joins chunk images of a line back together, side by side, removing
the background border where they meet. The chunks must follow each
other, and the result is saved next to them named for the range, so
line_07.png and line_08.png become line_07+08.png.

With -batch, each line of joins.txt lists the chunk files of one join.
`

func main() {
	pad := flag.Int("pad", segment.DefaultPad, "background border around each chunk")
	rng := flag.Bool("range", false, "join a range of chunks given by prefix and numbers")
	batch := flag.Bool("batch", false, "read the joins to make from a file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	run := diag.NewRun(nil)
	defer func() {
		for _, e := range run.Events() {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", e.Severity, e.Table, e.Message)
		}
	}()

	switch {
	case *rng:
		if flag.NArg() < 3 || flag.NArg() > 4 {
			flag.Usage()
			return
		}
		var first, last int
		_, err := fmt.Sscanf(flag.Arg(1)+" "+flag.Arg(2), "%d %d", &first, &last)
		if err != nil {
			log.Fatalln("Error parsing chunk numbers:", err)
		}
		dir := "."
		if flag.NArg() == 4 {
			dir = flag.Arg(3)
		}
		out, err := ident.JoinChunkRange(dir, flag.Arg(0), first, last, *pad, run)
		if err != nil {
			log.Fatalln(err)
		}
		fmt.Println(out)
	case *batch:
		if flag.NArg() != 1 {
			flag.Usage()
			return
		}
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatalln("Error opening", flag.Arg(0), err)
		}
		defer f.Close()
		failed := 0
		s := bufio.NewScanner(f)
		for s.Scan() {
			paths := strings.Fields(s.Text())
			if len(paths) == 0 {
				continue
			}
			out, err := ident.JoinChunkFiles(paths, *pad, run)
			if err != nil {
				run.Fail(err)
				failed++
				continue
			}
			fmt.Println(out)
		}
		if err = s.Err(); err != nil {
			log.Fatalln("Error reading", flag.Arg(0), err)
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "%d joins failed\n", failed)
		}
	default:
		if flag.NArg() < 2 {
			flag.Usage()
			return
		}
		out, err := ident.JoinChunkFiles(flag.Args(), *pad, run)
		if err != nil {
			log.Fatalln(err)
		}
		fmt.Println(out)
	}
}
