// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"flag"

	"rescribe.xyz/glyphpipeline"
)

// AddSettingsFlags adds flags to fs for each of the settings, with
// the values already in s as defaults, so that flags given on the
// command line override the settings file
func AddSettingsFlags(fs *flag.FlagSet, s *glyphpipeline.Settings) {
	fs.IntVar(&s.LineThreshold, "linethreshold", s.LineThreshold, "row profile values at or below this are background")
	fs.IntVar(&s.LineMinWidth, "lineminwidth", s.LineMinWidth, "minimum height of a line, in pixels")
	fs.IntVar(&s.GlyphThreshold, "glyphthreshold", s.GlyphThreshold, "column profile values at or below this are background")
	fs.IntVar(&s.GlyphMinWidth, "glyphminwidth", s.GlyphMinWidth, "minimum width of a glyph, in pixels")
	fs.IntVar(&s.GlyphWidth, "glyphwidth", s.GlyphWidth, "expected glyph width for the pathcut strategy (0 to estimate from each line)")
	fs.IntVar(&s.Margin, "margin", s.Margin, "grow each glyph box by this many pixels on every side")
	fs.BoolVar(&s.Trim, "trim", s.Trim, "trim each glyph box vertically to its ink")
	fs.StringVar(&s.Strategy, "strategy", s.Strategy, "glyph segmentation strategy: projection, gaps, pathcut or auto")
	fs.IntVar(&s.Pad, "pad", s.Pad, "background border added around each glyph image")
	fs.Float64Var(&s.Binarise, "binarise", s.Binarise, "binarise greyscale input with this Sauvola k value (0 to require binary input)")
	fs.StringVar(&s.Comment, "comment", s.Comment, "comment marker at the end of each index line")
	fs.IntVar(&s.Workers, "workers", s.Workers, "number of tables to segment at once (0 for one per CPU)")
}
