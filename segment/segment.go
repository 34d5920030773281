// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package segment splits a bi-level raster of a printed character
// table into its glyphs. Lines are found from the row projection
// profile of the table, and glyphs within each line by a column
// strategy: projection profile, fully background gaps, or gaps with
// path cuts through touching glyphs.
package segment

import (
	"fmt"
	"image"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/integralimg"
	"rescribe.xyz/glyphpipeline/profile"
	"rescribe.xyz/glyphpipeline/raster"
)

// Box is a candidate glyph: a rectangle in raster coordinates and a
// provisional identity
type Box struct {
	Rect               image.Rectangle
	Table, Line, Glyph int
}

func (b Box) String() string {
	return fmt.Sprintf("t%d l%d g%d %v", b.Table, b.Line, b.Glyph, b.Rect)
}

// Piece is a segmented glyph, its Box and a copy of the part of the
// raster inside it
type Piece struct {
	Box
	Raster *raster.Binary
}

// InvalidStrip records a line strip which held no glyphs
type InvalidStrip struct {
	Strip  profile.Strip
	Reason string
}

// LineInfo summarises one numbered line of a table
type LineInfo struct {
	Line   int
	Strip  profile.Strip
	Glyphs int
}

// Result is the outcome of segmenting a table
type Result struct {
	Table   int
	Pieces  []Piece
	Lines   []LineInfo
	Invalid []InvalidStrip
}

// Options control the segmentation of a table
type Options struct {
	// Profile values at or below the thresholds are background
	LineThreshold  int
	GlyphThreshold int
	// Strips narrower than these are ignored
	LineMinWidth  int
	GlyphMinWidth int
	// Margin grows each glyph box on every side
	Margin int
	// Trim shrinks each glyph box vertically to its ink
	Trim bool
	// Columns finds the glyphs within a line; Projection if nil
	Columns ColumnStrategy
	// GlyphWidth is the expected width of a glyph, used by PathCut
	// to decide which chunks hold touching glyphs. If 0 it is
	// estimated from each line.
	GlyphWidth int
}

// DefaultOptions returns the options used for clean character tables
func DefaultOptions() Options {
	return Options{
		LineMinWidth:  1,
		GlyphMinWidth: 3,
		Columns:       Projection{},
	}
}

// Line is a text line of a table being segmented
type Line struct {
	Raster   *raster.Binary
	Integral integralimg.I
	Rect     image.Rectangle
}

// Sub returns the part of the line raster within the line's rect
func (l Line) Sub() *raster.Binary {
	return l.Raster.Crop(l.Rect)
}

// Table segments a table raster into glyphs. Lines are numbered from
// 1 in the order found, top to bottom, and glyphs from 1 within each
// line, left to right; the pieces are returned in that order. A line
// strip with no glyphs is recorded as invalid and does not use up a
// line number.
func Table(b *raster.Binary, table int, opts Options, run *diag.Run) Result {
	res := Result{Table: table}
	if opts.Columns == nil {
		opts.Columns = Projection{}
	}
	integral := integralimg.ToIntegralImg(b)

	rows := profile.In(integral, b.Bounds(), profile.ByRow)
	lines := profile.Strips(rows, opts.LineThreshold, opts.LineMinWidth)
	if len(lines) == 0 {
		run.Warn(diag.KindNoContent, "table %d has no content", table)
		return res
	}

	linenum := 0
	for _, s := range lines {
		l := Line{Raster: b, Integral: integral, Rect: image.Rect(0, s.Start, b.W, s.End+1)}
		cols := opts.Columns.Columns(l, opts, run)
		if len(cols) == 0 {
			reason := fmt.Sprintf("no glyph strips in rows %d-%d", s.Start, s.End)
			res.Invalid = append(res.Invalid, InvalidStrip{Strip: s, Reason: reason})
			run.Warn(diag.KindNoContent, "table %d: %s", table, reason)
			continue
		}
		linenum++

		var boxes []Box
		for i, c := range cols {
			r := image.Rect(c.X0, l.Rect.Min.Y, c.X1, l.Rect.Max.Y)
			if opts.Trim {
				r = trim(integral, r)
			}
			r = r.Inset(-opts.Margin).Intersect(b.Bounds())
			boxes = append(boxes, Box{Rect: r, Table: table, Line: linenum, Glyph: i + 1})
		}

		keep := resolveLine(boxes, cols, run)
		n := 0
		for i, bx := range boxes {
			if !keep[i] {
				continue
			}
			res.Pieces = append(res.Pieces, Piece{Box: bx, Raster: cols[i].crop(b, bx.Rect)})
			n++
		}
		res.Lines = append(res.Lines, LineInfo{Line: linenum, Strip: s, Glyphs: n})
	}

	return res
}

// trim shrinks r vertically to the rows containing foreground
func trim(integral integralimg.I, r image.Rectangle) image.Rectangle {
	rows := profile.In(integral, r, profile.ByRow)
	s := profile.Strips(rows, 0, 1)
	if len(s) == 0 {
		return r
	}
	return image.Rect(r.Min.X, r.Min.Y+s[0].Start, r.Max.X, r.Min.Y+s[len(s)-1].End+1)
}
