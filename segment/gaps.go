// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"image"

	"rescribe.xyz/glyphpipeline/profile"
	"rescribe.xyz/glyphpipeline/raster"
)

// DefaultPad is the width of the background border added around
// chunks when they are saved
const DefaultPad = 2

// Gaps returns the runs of columns of a raster which are entirely
// background
func Gaps(b *raster.Binary) []profile.Strip {
	return profile.Gaps(profile.Of(b, profile.ByColumn), 0)
}

// Chunks returns the column ranges of a raster between its gaps,
// including any before the first gap and after the last.
func Chunks(b *raster.Binary) []profile.Strip {
	return profile.Strips(profile.Of(b, profile.ByColumn), 0, 1)
}

// ChunkRasters segments a line raster into chunks separated by
// fully background columns, returning each chunk with a border of pad
// background pixels around it, ready to be saved.
func ChunkRasters(b *raster.Binary, pad int) []*raster.Binary {
	var chunks []*raster.Binary
	for _, s := range Chunks(b) {
		c := b.Crop(image.Rect(s.Start, 0, s.End+1, b.H))
		chunks = append(chunks, c.Pad(pad))
	}
	return chunks
}
