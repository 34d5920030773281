// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package segment

import (
	"image"

	"rescribe.xyz/glyphpipeline/diag"
)

// ResolveOverlap makes two intersecting boxes disjoint. The boxes
// are separated along the axis on which their centres are furthest
// apart, so boxes in the same line are always separated
// horizontally. Each box gives up the whole of the overlap on its
// side, leaving a gap as wide as the overlap between them. This is a
// conservative heuristic rather than a true dividing cut. ok is false
// if either box is shrunk to nothing.
func ResolveOverlap(a, b image.Rectangle) (image.Rectangle, image.Rectangle, bool) {
	o := a.Intersect(b)
	if o.Empty() {
		return a, b, true
	}

	dx := abs(a.Min.X + a.Max.X - b.Min.X - b.Max.X)
	dy := abs(a.Min.Y + a.Max.Y - b.Min.Y - b.Max.Y)
	if dx >= dy {
		if a.Min.X <= b.Min.X {
			a.Max.X, b.Min.X = o.Min.X, o.Max.X
		} else {
			b.Max.X, a.Min.X = o.Min.X, o.Max.X
		}
	} else {
		if a.Min.Y <= b.Min.Y {
			a.Max.Y, b.Min.Y = o.Min.Y, o.Max.Y
		} else {
			b.Max.Y, a.Min.Y = o.Min.Y, o.Max.Y
		}
	}

	return a, b, !a.Empty() && !b.Empty()
}

// resolveLine resolves overlaps between every pair of boxes in a
// line, left to right. Boxes which are shrunk to nothing are reported
// and marked false in the returned slice. Neighbours separated by a
// path cut share no pixels even though their rectangles overlap, so
// they are left alone.
func resolveLine(boxes []Box, cols []Column, run *diag.Run) []bool {
	keep := make([]bool, len(boxes))
	for i := range keep {
		keep[i] = true
	}
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if !keep[i] {
				break
			}
			if !keep[j] || !boxes[i].Rect.Overlaps(boxes[j].Rect) {
				continue
			}
			if j == i+1 && cols[i].Right != nil && cols[j].Left != nil {
				continue
			}
			a, b, _ := ResolveOverlap(boxes[i].Rect, boxes[j].Rect)
			boxes[i].Rect, boxes[j].Rect = a, b
			for _, k := range []int{i, j} {
				if boxes[k].Rect.Empty() {
					keep[k] = false
					run.Warn(diag.KindGeometry, "glyph %s shrunk to nothing resolving overlap, skipping it", boxes[k])
				}
			}
		}
	}
	return keep
}
