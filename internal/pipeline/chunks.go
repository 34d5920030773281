// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/raster"
	"rescribe.xyz/glyphpipeline/segment"
)

// ChunkLine cuts the line image at path into chunks at its gaps, and
// saves each with a border of pad pixels into dir, named after the
// line like line_01.png, line_02.png. The paths of the chunks are
// returned.
func ChunkLine(path string, dir string, pad int, run *diag.Run) ([]string, error) {
	b, err := raster.Load(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	prefix := strings.TrimSuffix(base, filepath.Ext(base))
	run = run.For(prefix)

	chunks := segment.ChunkRasters(b, pad)
	if len(chunks) == 0 {
		run.Warn(diag.KindNoContent, "%s has no content", path)
		return nil, nil
	}

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("Error creating directory %s: %v", dir, err)
	}
	var paths []string
	for i, c := range chunks {
		p := ident.Chunk{Dir: dir, Prefix: prefix, First: i + 1, Last: i + 1}.Path()
		err = c.Save(p)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	run.Log("Cut", path, "into", len(paths), "chunks")
	return paths, nil
}

// SplitChunk splits a chunk image holding touching glyphs in two
// along a path of background pixels, saving the pieces next to it
// with a border of pad pixels, so line_05.png becomes line_05-1.png
// and line_05-2.png. The paths of the pieces are returned.
func SplitChunk(path string, pad int, run *diag.Run) ([]string, error) {
	b, err := raster.Load(path)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	run = run.For(filepath.Base(base))

	inner := b
	if b.W > 2*pad && b.H > 2*pad {
		inner = b.Crop(image.Rect(pad, pad, b.W-pad, b.H-pad))
	}
	parts, err := segment.Split(inner, run)
	if err != nil {
		return nil, fmt.Errorf("Error splitting %s: %w", path, err)
	}

	var paths []string
	for i, p := range parts {
		if p.Raster.Empty() {
			return nil, fmt.Errorf("Error splitting %s: no ink in piece %d: %w", path, i+1, diag.ErrGeometry)
		}
	}
	for i, p := range parts {
		out := fmt.Sprintf("%s-%d.png", base, i+1)
		err = p.Raster.Pad(pad).Save(out)
		if err != nil {
			return paths, err
		}
		paths = append(paths, out)
	}
	return paths, nil
}
