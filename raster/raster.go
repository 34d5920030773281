// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package raster provides a bi-level raster type, where every pixel
// is either foreground (ink) or background, along with functions to
// convert it from and to ordinary images.
package raster

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"rescribe.xyz/glyphpipeline/diag"
)

// Binary is a bi-level raster. Pix holds one value per pixel in
// row-major order, true for foreground.
type Binary struct {
	W, H int
	Pix  []bool
}

// Palette used when encoding; index 0 is foreground
var Palette = color.Palette{color.Gray{0}, color.Gray{255}}

// New creates a raster of the given size, all background
func New(w, h int) *Binary {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Binary{W: w, H: h, Pix: make([]bool, w*h)}
}

// Bounds returns the rectangle covered by the raster
func (b *Binary) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.W, b.H)
}

// Empty reports whether the raster has no pixels
func (b *Binary) Empty() bool {
	return b.W == 0 || b.H == 0
}

// At reports whether the pixel at x, y is foreground. Pixels outside
// the raster are background.
func (b *Binary) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return false
	}
	return b.Pix[y*b.W+x]
}

// Set sets the pixel at x, y
func (b *Binary) Set(x, y int, fg bool) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	b.Pix[y*b.W+x] = fg
}

// FillRect sets every pixel in r to fg
func (b *Binary) FillRect(r image.Rectangle, fg bool) {
	r = r.Intersect(b.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Pix[y*b.W+x] = fg
		}
	}
}

// Count returns the number of foreground pixels
func (b *Binary) Count() int {
	n := 0
	for _, p := range b.Pix {
		if p {
			n++
		}
	}
	return n
}

// Equal reports whether two rasters have the same size and pixels
func (b *Binary) Equal(o *Binary) bool {
	if b.W != o.W || b.H != o.H {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// FromImage converts an image into a Binary. The image must contain
// exactly two distinct pixel values (a paletted image must have a two
// entry colour table), and the darker of the two is foreground. An
// image with a single value is treated as all background if it is
// light, or all foreground if it is dark.
func FromImage(img image.Image) (*Binary, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("Error converting image: zero size raster: %w", diag.ErrInput)
	}

	fg := make(map[uint8]bool)
	if p, ok := img.(*image.Paletted); ok {
		if len(p.Palette) != 2 {
			return nil, fmt.Errorf("Error converting image: colour table has %d entries, need 2: %w", len(p.Palette), diag.ErrInput)
		}
		y0 := color.GrayModel.Convert(p.Palette[0]).(color.Gray).Y
		y1 := color.GrayModel.Convert(p.Palette[1]).(color.Gray).Y
		if y0 == y1 {
			return nil, fmt.Errorf("Error converting image: colour table entries are indistinguishable: %w", diag.ErrInput)
		}
		b := New(bounds.Dx(), bounds.Dy())
		for y := 0; y < b.H; y++ {
			for x := 0; x < b.W; x++ {
				i := p.ColorIndexAt(bounds.Min.X+x, bounds.Min.Y+y)
				b.Pix[y*b.W+x] = (i == 0 && y0 < y1) || (i == 1 && y1 < y0)
			}
		}
		return b, nil
	}

	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	for _, v := range gray.Pix {
		if _, ok := fg[v]; ok {
			continue
		}
		fg[v] = false
		if len(fg) > 2 {
			return nil, fmt.Errorf("Error converting image: more than 2 distinct pixel values: %w", diag.ErrInput)
		}
	}
	var dark uint8 = 255
	var light uint8
	for v := range fg {
		if v < dark {
			dark = v
		}
		if v > light {
			light = v
		}
	}
	switch {
	case len(fg) == 2:
		fg[dark] = true
	case dark < 128:
		fg[dark] = true
	}

	b := New(gray.Rect.Dx(), gray.Rect.Dy())
	for i, v := range gray.Pix {
		b.Pix[i] = fg[v]
	}
	return b, nil
}

// Decode reads an image in any registered format (png, tiff, bmp,
// gif, jpeg) and converts it to a Binary.
func Decode(r io.Reader) (*Binary, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("Error decoding image: %v: %w", err, diag.ErrInput)
	}
	return FromImage(img)
}

// Load reads and decodes the image file at path
func Load(path string) (*Binary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Error opening %s: %v: %w", path, err, diag.ErrInput)
	}
	defer f.Close()
	b, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Error reading %s: %w", path, err)
	}
	return b, nil
}

// Paletted returns the raster as a two entry paletted image, using
// Palette.
func (b *Binary) Paletted() *image.Paletted {
	img := image.NewPaletted(b.Bounds(), Palette)
	for i, p := range b.Pix {
		if !p {
			img.Pix[i] = 1
		}
	}
	return img
}

// Gray returns the raster as a greyscale image, with foreground
// black and background white.
func (b *Binary) Gray() *image.Gray {
	img := image.NewGray(b.Bounds())
	for i, p := range b.Pix {
		if !p {
			img.Pix[i] = 255
		}
	}
	return img
}

// Encode writes the raster as a bi-level png
func (b *Binary) Encode(w io.Writer) error {
	return png.Encode(w, b.Paletted())
}

// Save writes the raster as a bi-level png file at path
func (b *Binary) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Error creating file %s: %v", path, err)
	}
	err = b.Encode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("Error encoding image %s: %v", path, err)
	}
	return f.Close()
}

// Crop returns a copy of the part of the raster within r. Any part of
// r outside the raster is cut off.
func (b *Binary) Crop(r image.Rectangle) *Binary {
	r = r.Intersect(b.Bounds())
	c := New(r.Dx(), r.Dy())
	for y := 0; y < c.H; y++ {
		copy(c.Pix[y*c.W:(y+1)*c.W], b.Pix[(r.Min.Y+y)*b.W+r.Min.X:(r.Min.Y+y)*b.W+r.Max.X])
	}
	return c
}

// Pad returns a copy of the raster with a border of n background
// pixels added on every side.
func (b *Binary) Pad(n int) *Binary {
	if n <= 0 {
		return b.Crop(b.Bounds())
	}
	p := New(b.W+2*n, b.H+2*n)
	for y := 0; y < b.H; y++ {
		copy(p.Pix[(y+n)*p.W+n:(y+n)*p.W+n+b.W], b.Pix[y*b.W:(y+1)*b.W])
	}
	return p
}

// Ink returns the smallest rectangle containing every foreground
// pixel, or an empty rectangle if there are none.
func (b *Binary) Ink() image.Rectangle {
	r := image.Rectangle{}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.Pix[y*b.W+x] {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

// HStack joins rasters of the same height side by side, left to right
func HStack(rs ...*Binary) (*Binary, error) {
	if len(rs) == 0 {
		return New(0, 0), nil
	}
	h := rs[0].H
	w := 0
	for _, r := range rs {
		if r.H != h {
			return nil, fmt.Errorf("Error stacking rasters: heights %d and %d differ: %w", h, r.H, diag.ErrGeometry)
		}
		w += r.W
	}
	s := New(w, h)
	x := 0
	for _, r := range rs {
		for y := 0; y < h; y++ {
			copy(s.Pix[y*w+x:y*w+x+r.W], r.Pix[y*r.W:(y+1)*r.W])
		}
		x += r.W
	}
	return s, nil
}

// Resize returns a copy of the raster scaled to w by h, using nearest
// neighbour sampling so that no new pixel values are introduced.
func (b *Binary) Resize(w, h int) *Binary {
	if w == b.W && h == b.H {
		return b.Crop(b.Bounds())
	}
	if b.Empty() || w <= 0 || h <= 0 {
		return New(w, h)
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), b.Gray(), b.Bounds(), draw.Src, nil)
	r := New(w, h)
	for i, v := range dst.Pix {
		r.Pix[i] = v < 128
	}
	return r
}

// String renders the raster as text, '#' for foreground and '.' for
// background, one line per row. It is mostly useful in tests.
func (b *Binary) String() string {
	s := make([]byte, 0, (b.W+1)*b.H)
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			if b.Pix[y*b.W+x] {
				s = append(s, '#')
			} else {
				s = append(s, '.')
			}
		}
		s = append(s, '\n')
	}
	return string(s)
}

// Parse builds a raster from rows of text as produced by String.
// Any character other than '.' or ' ' is foreground.
func Parse(rows ...string) *Binary {
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	b := New(w, len(rows))
	for y, r := range rows {
		for x := 0; x < len(r); x++ {
			if r[x] != '.' && r[x] != ' ' {
				b.Pix[y*w+x] = true
			}
		}
	}
	return b
}
