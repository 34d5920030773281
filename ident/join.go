// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package ident

import (
	"fmt"
	"image"
	"path/filepath"
	"regexp"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/raster"
)

// JoinRasters joins adjacent glyph or chunk images side by side, left
// to right, reversing an over-segmentation. pad columns of padding
// are removed from each edge where two images meet. If the images are
// of different heights the shorter ones are resampled to the height
// of the tallest, and a geometry warning is sent to run.
func JoinRasters(rs []*raster.Binary, pad int, run *diag.Run) (*raster.Binary, error) {
	if len(rs) < 2 {
		return nil, fmt.Errorf("Error joining: need at least 2 images, got %d: %w", len(rs), diag.ErrOrdering)
	}

	h := 0
	for _, r := range rs {
		if r.H > h {
			h = r.H
		}
	}

	var strips []*raster.Binary
	for i, r := range rs {
		x0, x1 := 0, r.W
		if i > 0 {
			x0 += pad
		}
		if i < len(rs)-1 {
			x1 -= pad
		}
		if x1 <= x0 {
			return nil, fmt.Errorf("Error joining: image %d is %d wide, too narrow to remove padding of %d: %w", i+1, r.W, pad, diag.ErrGeometry)
		}
		s := r.Crop(image.Rect(x0, 0, x1, r.H))
		if s.H != h {
			run.Warn(diag.KindGeometry, "joining images of heights %d and %d, resampling image %d", s.H, h, i+1)
			s = s.Resize(s.W, h)
		}
		strips = append(strips, s)
	}

	return raster.HStack(strips...)
}

// Chunk identifies a chunk image file, named like prefix_07.png, or
// prefix_07+09.png for chunks 7 to 9 joined together
type Chunk struct {
	Dir, Prefix string
	First, Last int
}

var chunkRe = regexp.MustCompile(`^(.+)_(\d+)(?:\+(\d+))?\.png$`)

// ParseChunk parses the path of a chunk image file
func ParseChunk(path string) (Chunk, error) {
	m := chunkRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return Chunk{}, fmt.Errorf("Error parsing chunk name %s: %w", path, diag.ErrInput)
	}
	c := Chunk{Dir: filepath.Dir(path), Prefix: m[1], First: atoi(m[2])}
	c.Last = c.First
	if m[3] != "" {
		c.Last = atoi(m[3])
	}
	if c.Last < c.First {
		return Chunk{}, fmt.Errorf("Error parsing chunk name %s: range runs backwards: %w", path, diag.ErrInput)
	}
	return c, nil
}

// Name returns the file name of the chunk
func (c Chunk) Name() string {
	if c.Last == c.First {
		return fmt.Sprintf("%s_%02d.png", c.Prefix, c.First)
	}
	return fmt.Sprintf("%s_%02d+%02d.png", c.Prefix, c.First, c.Last)
}

// Path returns the path of the chunk file
func (c Chunk) Path() string {
	return filepath.Join(c.Dir, c.Name())
}

// JoinChunkFiles joins chunk image files which follow each other, in
// the order given, saving the result next to them as a file named for
// the whole range (a_07.png and a_08.png become a_07+08.png). The path
// of the new file is returned. The files must share a directory and
// prefix and their numbers must run on consecutively; if not an
// ordering error is returned and nothing is written.
func JoinChunkFiles(paths []string, pad int, run *diag.Run) (string, error) {
	if len(paths) < 2 {
		return "", fmt.Errorf("Error joining chunks: need at least 2 files, got %d: %w", len(paths), diag.ErrOrdering)
	}
	var chunks []Chunk
	for i, p := range paths {
		c, err := ParseChunk(p)
		if err != nil {
			return "", err
		}
		if i > 0 {
			prev := chunks[i-1]
			if c.Dir != prev.Dir || c.Prefix != prev.Prefix {
				return "", fmt.Errorf("Error joining chunks: %s and %s are from different lines: %w", prev.Name(), c.Name(), diag.ErrOrdering)
			}
			if c.First != prev.Last+1 {
				return "", fmt.Errorf("Error joining chunks: %s does not follow %s: %w", c.Name(), prev.Name(), diag.ErrOrdering)
			}
		}
		chunks = append(chunks, c)
	}

	var rs []*raster.Binary
	for _, p := range paths {
		r, err := raster.Load(p)
		if err != nil {
			return "", err
		}
		rs = append(rs, r)
	}
	joined, err := JoinRasters(rs, pad, run.For(chunks[0].Prefix))
	if err != nil {
		return "", fmt.Errorf("Error joining %s: %w", paths[0], err)
	}

	out := Chunk{Dir: chunks[0].Dir, Prefix: chunks[0].Prefix, First: chunks[0].First, Last: chunks[len(chunks)-1].Last}
	err = joined.Save(out.Path())
	if err != nil {
		return "", err
	}
	return out.Path(), nil
}

// JoinChunkRange joins the chunks first to last of a line, found in
// dir as prefix_NN.png, into prefix_first+last.png
func JoinChunkRange(dir, prefix string, first, last, pad int, run *diag.Run) (string, error) {
	if last <= first {
		return "", fmt.Errorf("Error joining chunks %d to %d of %s: range must cover at least 2 chunks: %w", first, last, prefix, diag.ErrOrdering)
	}
	var paths []string
	for n := first; n <= last; n++ {
		paths = append(paths, Chunk{Dir: dir, Prefix: prefix, First: n, Last: n}.Path())
	}
	return JoinChunkFiles(paths, pad, run)
}
