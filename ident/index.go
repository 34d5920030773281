// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package ident

import (
	"fmt"
	"io"
)

// DefaultComment is the comment marker ending each index line
const DefaultComment = "※"

// WriteIndex writes the index of a table's glyphs, one line per
// record, like:
//
//	3;file:doc.djvu?djvuopts=&page=1&highlight=120,88,31,40;doc l 1 b 3; ※
//
// giving the row number, a link highlighting the glyph in the
// document doc, and a description. Highlight rectangles are measured
// from the bottom left of the page, so the y coordinate of each box
// is flipped using the table's height.
func WriteIndex(w io.Writer, doc string, height int, records []Record, comment string) error {
	for n, r := range records {
		b := r.Box
		y := height - b.Max.Y
		_, err := fmt.Fprintf(w, "%d;file:%s.djvu?djvuopts=&page=1&highlight=%d,%d,%d,%d;%s l %d b %d;",
			n+1, doc, b.Min.X, y, b.Dx(), b.Dy(), doc, r.ID.Line, r.ID.Glyph)
		if err != nil {
			return fmt.Errorf("Error writing index: %v", err)
		}
		if comment != "" {
			_, err = fmt.Fprintf(w, " %s", comment)
			if err != nil {
				return fmt.Errorf("Error writing index: %v", err)
			}
		}
		_, err = fmt.Fprintln(w)
		if err != nil {
			return fmt.Errorf("Error writing index: %v", err)
		}
	}
	return nil
}
