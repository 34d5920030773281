// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"fmt"
	"image"
	"sort"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/profile"
	"rescribe.xyz/glyphpipeline/raster"
)

// Column is the horizontal span of one glyph within a line, from X0
// up to but not including X1. Glyphs separated by a path cut rather
// than a straight gap also have per-row bounds: for row Top+i, only
// columns from Left[i] up to but not including Right[i] belong to the
// glyph.
type Column struct {
	X0, X1      int
	Top         int
	Left, Right []int
}

// crop copies the part of b within r which belongs to the column
func (c Column) crop(b *raster.Binary, r image.Rectangle) *raster.Binary {
	out := b.Crop(r)
	if c.Left == nil && c.Right == nil {
		return out
	}
	for y := 0; y < out.H; y++ {
		i := r.Min.Y + y - c.Top
		if i < 0 || i >= len(c.Left) {
			continue
		}
		for x := 0; x < out.W; x++ {
			ax := r.Min.X + x
			if ax < c.Left[i] || ax >= c.Right[i] {
				out.Pix[y*out.W+x] = false
			}
		}
	}
	return out
}

// ColumnStrategy finds the glyph columns within a line, left to right
type ColumnStrategy interface {
	Name() string
	Columns(l Line, opts Options, run *diag.Run) []Column
}

// Strategy returns the column strategy with the given name: one of
// "projection", "gaps", "pathcut" or "auto".
func Strategy(name string) (ColumnStrategy, error) {
	switch name {
	case "projection", "":
		return Projection{}, nil
	case "gaps":
		return GapColumns{}, nil
	case "pathcut":
		return PathCut{}, nil
	case "auto":
		return Auto{}, nil
	}
	return nil, fmt.Errorf("Unknown column strategy %q: %w", name, diag.ErrInput)
}

func stripColumns(strips []profile.Strip, offset int) []Column {
	var cols []Column
	for _, s := range strips {
		cols = append(cols, Column{X0: offset + s.Start, X1: offset + s.End + 1})
	}
	return cols
}

// Projection finds glyphs from the column projection profile of the
// line, using the glyph threshold and minimum width options. This
// suits clean tables where glyphs are well separated.
type Projection struct{}

func (Projection) Name() string { return "projection" }

func (Projection) Columns(l Line, opts Options, run *diag.Run) []Column {
	p := profile.In(l.Integral, l.Rect, profile.ByColumn)
	return stripColumns(profile.Strips(p, opts.GlyphThreshold, opts.GlyphMinWidth), l.Rect.Min.X)
}

// GapColumns splits the line into chunks at every fully background column.
// This suits pre-cleaned input where any gap is reliable, keeping
// even the narrowest chunks.
type GapColumns struct{}

func (GapColumns) Name() string { return "gaps" }

func (GapColumns) Columns(l Line, opts Options, run *diag.Run) []Column {
	p := profile.In(l.Integral, l.Rect, profile.ByColumn)
	return stripColumns(profile.Strips(p, 0, 1), l.Rect.Min.X)
}

// SplitFactor is how many times wider than the expected glyph width
// a chunk must be before PathCut tries to split it
const SplitFactor = 1.5

// PathCut splits the line into chunks at fully background gaps like
// GapColumns, and then cuts any chunk too wide to be a single glyph along
// paths of background pixels found by FindCutIn. Where no path
// exists a straight cut is used, with a geometry warning.
type PathCut struct{}

func (PathCut) Name() string { return "pathcut" }

func (PathCut) Columns(l Line, opts Options, run *diag.Run) []Column {
	chunks := GapColumns{}.Columns(l, opts, run)
	if len(chunks) == 0 {
		return nil
	}
	width := opts.GlyphWidth
	if width <= 0 {
		width = expectedWidth(chunks, l.Rect.Dy())
	}

	sub := l.Sub()
	var cols []Column
	for _, c := range chunks {
		w := c.X1 - c.X0
		if float64(w) <= SplitFactor*float64(width) {
			cols = append(cols, c)
			continue
		}
		n := (w + width/2) / width
		if n < 2 {
			n = 2
		}
		cols = append(cols, cutChunk(sub, l.Rect, c, n, width, run)...)
	}
	return cols
}

// expectedWidth estimates the width of a single glyph in a line: the
// median chunk width if there are enough chunks to trust it, else the
// line height.
func expectedWidth(chunks []Column, height int) int {
	if len(chunks) < 3 {
		return height
	}
	var widths []int
	for _, c := range chunks {
		widths = append(widths, c.X1-c.X0)
	}
	sort.Ints(widths)
	w := widths[len(widths)/2]
	if w < 1 {
		w = 1
	}
	return w
}

// cutChunk cuts the chunk c of a line into n glyphs. sub is the line
// raster, whose origin is at r.Min.
func cutChunk(sub *raster.Binary, r image.Rectangle, c Column, n, width int, run *diag.Run) []Column {
	x0, x1 := c.X0-r.Min.X, c.X1-r.Min.X
	w := x1 - x0

	left := make([]int, sub.H)
	for i := range left {
		left[i] = x0
	}

	var cols []Column
	for k := 1; k < n; k++ {
		pref := x0 + k*w/n
		lo, hi := pref-width/2, pref+width/2+1
		for _, l := range left {
			if lo <= l {
				lo = l + 1
			}
		}
		if hi > x1-1 {
			hi = x1 - 1
		}
		if pref < lo {
			pref = lo
		}
		path := FindCutIn(sub, lo, hi, pref)
		if path == nil {
			run.Warn(diag.KindGeometry, "no background path near column %d in rows %d-%d, cutting straight", r.Min.X+pref, r.Min.Y, r.Max.Y-1)
			path = StraightCut(sub.H, pref)
		}
		right := make([]int, sub.H)
		for i, p := range path {
			right[i] = p.X
		}
		cols = append(cols, pathColumn(left, right, r))
		left = right
	}
	right := make([]int, sub.H)
	for i := range right {
		right[i] = x1
	}
	cols = append(cols, pathColumn(left, right, r))
	return cols
}

// pathColumn builds a Column from per-row bounds relative to r
func pathColumn(left, right []int, r image.Rectangle) Column {
	c := Column{X0: r.Max.X, X1: r.Min.X, Top: r.Min.Y}
	c.Left = make([]int, len(left))
	c.Right = make([]int, len(right))
	for i := range left {
		c.Left[i] = r.Min.X + left[i]
		c.Right[i] = r.Min.X + right[i]
		if c.Left[i] < c.X0 {
			c.X0 = c.Left[i]
		}
		if c.Right[i] > c.X1 {
			c.X1 = c.Right[i]
		}
	}
	return c
}

// Auto picks a strategy for each line: PathCut if the line appears to
// hold touching glyphs, which show up as gap chunks much wider than
// the rest, otherwise Projection.
type Auto struct{}

func (Auto) Name() string { return "auto" }

func (Auto) Columns(l Line, opts Options, run *diag.Run) []Column {
	if touching(GapColumns{}.Columns(l, opts, run), l.Rect.Dy(), opts.GlyphWidth) {
		run.Log("rows", l.Rect.Min.Y, "to", l.Rect.Max.Y-1, "look like touching glyphs, using path cuts")
		return PathCut{}.Columns(l, opts, run)
	}
	return Projection{}.Columns(l, opts, run)
}

func touching(chunks []Column, height, width int) bool {
	if len(chunks) == 0 {
		return false
	}
	if width <= 0 {
		width = expectedWidth(chunks, height)
	}
	for _, c := range chunks {
		if float64(c.X1-c.X0) > SplitFactor*float64(width) {
			return true
		}
	}
	return false
}
