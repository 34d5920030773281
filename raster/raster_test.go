// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rescribe.xyz/glyphpipeline/diag"
)

func TestFromImage(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 3, 2), color.Palette{color.White, color.Black})
	pal.SetColorIndex(1, 0, 1)
	pal.SetColorIndex(2, 1, 1)

	inverted := image.NewPaletted(image.Rect(0, 0, 3, 2), color.Palette{color.Black, color.White})
	for i := range inverted.Pix {
		inverted.Pix[i] = 1
	}
	inverted.SetColorIndex(1, 0, 0)
	inverted.SetColorIndex(2, 1, 0)

	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range gray.Pix {
		gray.Pix[i] = 200
	}
	gray.Pix[1] = 30
	gray.Pix[5] = 30

	blank := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range blank.Pix {
		blank.Pix[i] = 255
	}

	three := image.NewGray(image.Rect(0, 0, 3, 1))
	three.Pix[0], three.Pix[1], three.Pix[2] = 0, 100, 255

	bigpal := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.White, color.Black, color.Gray{128}})

	cases := []struct {
		name string
		img  image.Image
		want string
		err  error
	}{
		{"paletted", pal, ".#.\n..#\n", nil},
		{"paletteddarkfirst", inverted, ".#.\n..#\n", nil},
		{"gray", gray, ".#.\n..#\n", nil},
		{"blank", blank, "...\n...\n", nil},
		{"threevalues", three, "", diag.ErrInput},
		{"threeentrypalette", bigpal, "", diag.ErrInput},
		{"zerosize", image.NewGray(image.Rect(0, 0, 0, 5)), "", diag.ErrInput},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := FromImage(c.img)
			if c.err != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, c.err), "expected %v, got %v", c.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.want, b.String())
		})
	}
}

func TestSaveLoad(t *testing.T) {
	b := Parse(
		"..#..",
		".###.",
		"#...#",
	)
	path := filepath.Join(t.TempDir(), "glyph.png")
	require.NoError(t, b.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.True(t, b.Equal(got), "loaded raster differs:\n%s", got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	require.True(t, errors.Is(err, diag.ErrInput))

	_, err = Decode(bytes.NewReader([]byte("not an image")))
	require.True(t, errors.Is(err, diag.ErrInput))
}

func TestCropPad(t *testing.T) {
	b := Parse(
		"#....",
		".##..",
		"...##",
	)
	require.Equal(t, "##.\n..#\n", b.Crop(image.Rect(1, 1, 4, 3)).String())
	require.Equal(t, "##\n", b.Crop(image.Rect(3, 2, 9, 9)).String())
	require.True(t, b.Crop(image.Rect(10, 10, 12, 12)).Empty())

	p := Parse("#").Pad(2)
	require.Equal(t, 5, p.W)
	require.Equal(t, 5, p.H)
	require.Equal(t, ".....\n.....\n..#..\n.....\n.....\n", p.String())

	require.Equal(t, image.Rect(0, 0, 5, 3), b.Ink())
	require.Equal(t, image.Rect(2, 2, 3, 3), p.Ink())
	require.True(t, New(3, 3).Ink().Empty())
}

func TestHStack(t *testing.T) {
	a := Parse("#.", ".#")
	b := Parse("##", "..")
	s, err := HStack(a, b)
	require.NoError(t, err)
	require.Equal(t, "#.##\n.#..\n", s.String())

	_, err = HStack(a, Parse("#"))
	require.True(t, errors.Is(err, diag.ErrGeometry))
}

func TestResize(t *testing.T) {
	b := Parse(
		"#.",
		".#",
	)
	r := b.Resize(4, 4)
	require.Equal(t, "##..\n##..\n..##\n..##\n", r.String())
	require.True(t, b.Equal(b.Resize(2, 2)))
	require.Equal(t, 0, New(0, 0).Resize(3, 3).Count())
}
