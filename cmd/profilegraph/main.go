// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// profilegraph graphs the projection profile of an image.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/profile"
	"rescribe.xyz/glyphpipeline/raster"
)

const usage = `Usage: profilegraph [-axis rows|columns] [-threshold num] image.png graph.png

Graphs the number of foreground pixels in each row or column of a
binary image, with a line marking the threshold, which is useful for
choosing the linethreshold and glyphthreshold settings.
`

func main() {
	axis := flag.String("axis", "rows", "which way to take the profile: rows or columns")
	threshold := flag.Int("threshold", 0, "threshold to mark on the graph")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return
	}

	var a profile.Axis
	switch *axis {
	case "rows", "row":
		a = profile.ByRow
	case "columns", "column":
		a = profile.ByColumn
	default:
		log.Fatalln("Unknown axis", *axis)
	}

	b, err := raster.Load(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	fn := flag.Arg(1)
	f, err := os.Create(fn)
	if err != nil {
		log.Fatalln("Error creating file", fn, err)
	}
	defer f.Close()
	title := fmt.Sprintf("%s by %s", filepath.Base(flag.Arg(0)), a)
	err = glyphpipeline.GraphProfile(profile.Of(b, a), *threshold, title, f)
	if err != nil {
		log.Fatalln("Error creating graph", err)
	}
}
