// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package integralimg provides an integral image (summed-area table)
// of the foreground pixels of a bi-level raster, so that the number of
// foreground pixels in any rectangle can be found in constant time.
package integralimg

import (
	"image"

	"rescribe.xyz/glyphpipeline/raster"
)

// I is the Integral Image. It has one more row and column than the
// raster it was made from; the value at (x, y) is the number of
// foreground pixels above and to the left of (x, y).
type I struct {
	w, h int
	sums []uint64
}

// Window is a part of an Integral Image
type Window struct {
	topleft     uint64
	topright    uint64
	bottomleft  uint64
	bottomright uint64
	width       int
	height      int
}

// ToIntegralImg creates an integral image
func ToIntegralImg(b *raster.Binary) I {
	i := I{w: b.W, h: b.H, sums: make([]uint64, (b.W+1)*(b.H+1))}
	stride := b.W + 1
	for y := 0; y < b.H; y++ {
		var row uint64
		for x := 0; x < b.W; x++ {
			if b.Pix[y*b.W+x] {
				row++
			}
			i.sums[(y+1)*stride+x+1] = i.sums[y*stride+x+1] + row
		}
	}
	return i
}

// Bounds returns the rectangle covered by the original raster
func (i I) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.w, i.h)
}

func (i I) at(x, y int) uint64 {
	return i.sums[y*(i.w+1)+x]
}

// GetWindow gets the values of the corners of a part of an Integral
// Image, plus the dimensions of the part. Any part of r outside the
// image is ignored.
func (i I) GetWindow(r image.Rectangle) Window {
	r = r.Intersect(i.Bounds())
	if r.Empty() {
		return Window{}
	}
	return Window{
		i.at(r.Min.X, r.Min.Y), i.at(r.Max.X, r.Min.Y),
		i.at(r.Min.X, r.Max.Y), i.at(r.Max.X, r.Max.Y),
		r.Dx(), r.Dy(),
	}
}

// Sum returns the number of foreground pixels in r
func (i I) Sum(r image.Rectangle) uint64 {
	return i.GetWindow(r).Sum()
}

// Sum returns the number of foreground pixels in a Window
func (w Window) Sum() uint64 {
	return w.bottomright + w.topleft - w.topright - w.bottomleft
}

// Size returns the total size of a Window
func (w Window) Size() int {
	return w.width * w.height
}

// Proportion returns the proportion of the Window which is foreground
func (w Window) Proportion() float64 {
	if w.Size() == 0 {
		return 0
	}
	return float64(w.Sum()) / float64(w.Size())
}
