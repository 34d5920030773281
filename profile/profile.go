// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package profile computes projection profiles of bi-level rasters,
// the count of foreground pixels in each row or column, and finds the
// strips of foreground separated by background in them.
package profile

import (
	"image"

	"rescribe.xyz/glyphpipeline/integralimg"
	"rescribe.xyz/glyphpipeline/raster"
)

// Axis selects which way a profile is taken
type Axis int

const (
	// ByRow gives one value per row, counting across the columns
	ByRow Axis = iota
	// ByColumn gives one value per column, counting down the rows
	ByColumn
)

func (a Axis) String() string {
	if a == ByColumn {
		return "column"
	}
	return "row"
}

// Profile is a projection profile; one foreground count per row or
// column.
type Profile []int

// Strip is an inclusive interval along one axis of a profile
type Strip struct {
	Start, End int
}

// Width returns the number of samples covered by the strip
func (s Strip) Width() int {
	return s.End - s.Start + 1
}

// Of computes the profile of the whole raster along axis
func Of(b *raster.Binary, axis Axis) Profile {
	var p Profile
	if axis == ByRow {
		p = make(Profile, b.H)
	} else {
		p = make(Profile, b.W)
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if !b.Pix[y*b.W+x] {
				continue
			}
			if axis == ByRow {
				p[y]++
			} else {
				p[x]++
			}
		}
	}
	return p
}

// In computes the profile of the region r of the raster that the
// integral image was made from. The first value is for r.Min. This
// avoids cropping or rotating the raster to take the column profile
// of a single line.
func In(i integralimg.I, r image.Rectangle, axis Axis) Profile {
	r = r.Intersect(i.Bounds())
	var p Profile
	if axis == ByRow {
		p = make(Profile, r.Dy())
		for y := range p {
			p[y] = int(i.Sum(image.Rect(r.Min.X, r.Min.Y+y, r.Max.X, r.Min.Y+y+1)))
		}
	} else {
		p = make(Profile, r.Dx())
		for x := range p {
			p[x] = int(i.Sum(image.Rect(r.Min.X+x, r.Min.Y, r.Min.X+x+1, r.Max.Y)))
		}
	}
	return p
}

// Strips finds the runs of a profile whose values are above
// threshold, in ascending order. Strips narrower than minWidth are
// dropped; a minWidth of 1 or less keeps them all.
func Strips(p Profile, threshold int, minWidth int) []Strip {
	var strips []Strip
	add := func(s Strip) {
		if s.Width() >= minWidth {
			strips = append(strips, s)
		}
	}

	start := -1
	for i, v := range p {
		if v > threshold {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			add(Strip{start, i - 1})
			start = -1
		}
	}
	if start >= 0 {
		add(Strip{start, len(p) - 1})
	}

	return strips
}

// Gaps returns the runs of a profile with values at or below
// threshold, the complement of Strips with no minimum width.
func Gaps(p Profile, threshold int) []Strip {
	var gaps []Strip
	start := -1
	for i, v := range p {
		if v <= threshold {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			gaps = append(gaps, Strip{start, i - 1})
			start = -1
		}
	}
	if start >= 0 {
		gaps = append(gaps, Strip{start, len(p) - 1})
	}
	return gaps
}

// Max returns the largest value in the profile, or 0 if it is empty
func (p Profile) Max() int {
	m := 0
	for _, v := range p {
		if v > m {
			m = v
		}
	}
	return m
}
