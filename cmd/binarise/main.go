// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// binarise converts a greyscale table image to black and white.
package main

import (
	"flag"
	"fmt"
	"log"

	"rescribe.xyz/glyphpipeline/preproc"
)

const usage = `Usage: binarise [-k num] [-nowipe] inimg outdir

Binarises a greyscale or colour image with the Sauvola algorithm so it
can be segmented, saving the result in outdir. The input image is not
changed.
`

func main() {
	k := flag.Float64("k", 0.5, "K for the sauvola algorithm. This controls the overall threshold level. Set it lower for very light text (try 0.1 or 0.2).")
	nowipe := flag.Bool("nowipe", false, "don't wipe noise from the sides of the image")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return
	}

	out, err := preproc.Binarise(flag.Arg(0), flag.Arg(1), *k, !*nowipe)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println(out)
}
