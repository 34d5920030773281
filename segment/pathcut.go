// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"fmt"
	"image"
	"math"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/raster"
)

const infcost = math.MaxInt64

// FindCut finds a connected path of background pixels from the top
// row of a raster to the bottom, which can be used to cut apart two
// touching glyphs. See FindCutIn.
func FindCut(b *raster.Binary) []image.Point {
	return FindCutIn(b, 0, b.W, b.W/2)
}

// FindCutNear is like FindCut, but when several paths are equally
// short it prefers the one closest to column pref.
func FindCutNear(b *raster.Binary, pref int) []image.Point {
	return FindCutIn(b, 0, b.W, pref)
}

// FindCutIn finds the shortest 8-connected path of background pixels
// from the top row to the bottom row of a raster, only considering
// columns x0 to x1-1. The path has one point per row, in order from
// the top, and each point is at most one column from the one above.
// Every background pixel costs 1 and foreground can't be crossed, so
// ties are common; they are broken by preferring to come straight
// down, then to come from the side nearer column pref, and by ending
// nearest pref. If there is no such path, nil is returned.
//
// Only two rows of costs are kept, plus one byte per pixel of the
// searched region recording which way the path came from.
func FindCutIn(b *raster.Binary, x0, x1, pref int) []image.Point {
	if x0 < 0 {
		x0 = 0
	}
	if x1 > b.W {
		x1 = b.W
	}
	w := x1 - x0
	if w <= 0 || b.H == 0 {
		return nil
	}
	pref -= x0

	prev := make([]int64, w)
	cur := make([]int64, w)
	from := make([]int8, w*b.H)

	open := false
	for x := 0; x < w; x++ {
		if b.Pix[x0+x] {
			prev[x] = infcost
		} else {
			prev[x] = 1
			open = true
		}
	}
	if !open {
		return nil
	}

	for y := 1; y < b.H; y++ {
		row := b.Pix[y*b.W+x0 : y*b.W+x1]
		open = false
		for x := 0; x < w; x++ {
			cur[x] = infcost
			if row[x] {
				continue
			}
			best, off := prev[x], int8(0)
			// sideways neighbours nearer pref are tried first, so
			// they win ties
			sides := [2]int8{-1, 1}
			if x < pref {
				sides = [2]int8{1, -1}
			}
			for _, d := range sides {
				n := x + int(d)
				if n < 0 || n >= w {
					continue
				}
				if prev[n] < best {
					best, off = prev[n], d
				}
			}
			if best == infcost {
				continue
			}
			cur[x] = best + 1
			from[y*w+x] = off
			open = true
		}
		if !open {
			return nil
		}
		prev, cur = cur, prev
	}

	end := -1
	for x := 0; x < w; x++ {
		if prev[x] == infcost {
			continue
		}
		if end < 0 || prev[x] < prev[end] || (prev[x] == prev[end] && abs(x-pref) < abs(end-pref)) {
			end = x
		}
	}
	if end < 0 {
		return nil
	}

	path := make([]image.Point, b.H)
	x := end
	for y := b.H - 1; y >= 0; y-- {
		path[y] = image.Pt(x0+x, y)
		x += int(from[y*w+x])
	}
	return path
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// SplitAt divides a raster in two along a path, as returned by
// FindCut. Content left of the path goes to the first raster, and
// the path itself and everything right of it to the second, so no
// ink is lost when the path is a straight cut through a glyph. Both
// keep the full width of the original so that they can be trimmed or
// padded consistently.
func SplitAt(b *raster.Binary, path []image.Point) (*raster.Binary, *raster.Binary, error) {
	if len(path) != b.H {
		return nil, nil, fmt.Errorf("Error splitting raster: path has %d points for %d rows: %w", len(path), b.H, diag.ErrGeometry)
	}
	left := raster.New(b.W, b.H)
	right := raster.New(b.W, b.H)
	for y := 0; y < b.H; y++ {
		cut := path[y].X
		for x := 0; x < b.W; x++ {
			switch {
			case x < cut:
				left.Pix[y*b.W+x] = b.Pix[y*b.W+x]
			case x >= cut:
				right.Pix[y*b.W+x] = b.Pix[y*b.W+x]
			}
		}
	}
	return left, right, nil
}

// StraightCut returns a path running straight down column x
func StraightCut(h, x int) []image.Point {
	path := make([]image.Point, h)
	for y := range path {
		path[y] = image.Pt(x, y)
	}
	return path
}

// Part is one of the pieces a raster is split into, along with the
// columns of the original raster it spans
type Part struct {
	X0, X1 int
	Raster *raster.Binary
}

// Split cuts a raster holding two touching glyphs in two. The cut is
// searched for within the middle half of the raster, preferring the
// centre. If no path of background pixels exists a straight cut down
// the centre column is used instead, and a geometry warning is sent
// to run. Each part is trimmed to its ink horizontally.
func Split(b *raster.Binary, run *diag.Run) ([]Part, error) {
	if b.Empty() {
		return nil, fmt.Errorf("Error splitting raster: empty raster: %w", diag.ErrInput)
	}
	if b.Count() == 0 {
		return nil, fmt.Errorf("Error splitting raster: no ink: %w", diag.ErrNoContent)
	}
	centre := b.W / 2
	path := FindCutIn(b, b.W/4, b.W-b.W/4, centre)
	if path == nil {
		run.Warn(diag.KindGeometry, "no background path through %dx%d raster, cutting at column %d", b.W, b.H, centre)
		path = StraightCut(b.H, centre)
	}
	left, right, err := SplitAt(b, path)
	if err != nil {
		return nil, err
	}
	return []Part{trimColumns(left), trimColumns(right)}, nil
}

// trimColumns removes fully background columns from either side
func trimColumns(b *raster.Binary) Part {
	ink := b.Ink()
	if ink.Empty() {
		return Part{Raster: raster.New(0, b.H)}
	}
	return Part{X0: ink.Min.X, X1: ink.Max.X, Raster: b.Crop(image.Rect(ink.Min.X, 0, ink.Max.X, b.H))}
}
