// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package ident

import (
	"fmt"
	"io"
	"sort"

	"rescribe.xyz/glyphpipeline/diag"
)

// Renumber gives the records of each table dense line numbers from 1,
// keeping the order of the existing line numbers, and within each
// line dense glyph numbers from 1, ordered by existing glyph number
// and then split suffix. Split suffixes are removed, so the pieces of
// a split glyph become consecutive glyphs. Table numbers are left
// alone. The records are returned sorted, and renumbering them again
// changes nothing.
//
// Two records with the same identity mean something upstream has
// gone wrong, and are reported as an invariant violation.
func Renumber(records []Record) ([]Record, error) {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })

	for i := 1; i < len(out); i++ {
		if out[i].ID == out[i-1].ID {
			return nil, fmt.Errorf("Error renumbering: duplicate glyph %s: %w", out[i].ID, diag.ErrInvariant)
		}
	}

	var line, glyph int
	var prev ID
	for i := range out {
		cur := out[i].ID
		switch {
		case i == 0 || cur.Table != prev.Table:
			line, glyph = 1, 1
		case cur.Line != prev.Line:
			line++
			glyph = 1
		default:
			glyph++
		}
		out[i].ID = ID{Table: cur.Table, Line: line, Glyph: glyph}
		prev = cur
	}
	return out, nil
}

// TableSummary gives the highest numbers used in a table
type TableSummary struct {
	Table   int
	MaxLine int
	// MaxGlyph is the highest glyph number in each line
	MaxGlyph map[int]int
}

// Summary describes a set of records, for the renumber report
type Summary struct {
	Tables []TableSummary
	Files  int
}

// Summarise reports the highest line number of each table and the
// highest glyph number of each line in records
func Summarise(records []Record) Summary {
	tables := make(map[int]*TableSummary)
	for _, r := range records {
		t, ok := tables[r.ID.Table]
		if !ok {
			t = &TableSummary{Table: r.ID.Table, MaxGlyph: make(map[int]int)}
			tables[r.ID.Table] = t
		}
		if r.ID.Line > t.MaxLine {
			t.MaxLine = r.ID.Line
		}
		if r.ID.Glyph > t.MaxGlyph[r.ID.Line] {
			t.MaxGlyph[r.ID.Line] = r.ID.Glyph
		}
	}

	s := Summary{Files: len(records)}
	for _, t := range tables {
		s.Tables = append(s.Tables, *t)
	}
	sort.Slice(s.Tables, func(i, j int) bool { return s.Tables[i].Table < s.Tables[j].Table })
	return s
}

// WriteText writes the summary in a human readable form
func (s Summary) WriteText(w io.Writer) error {
	for _, t := range s.Tables {
		_, err := fmt.Fprintf(w, "table %d: %d lines\n", t.Table, t.MaxLine)
		if err != nil {
			return err
		}
		var lines []int
		for l := range t.MaxGlyph {
			lines = append(lines, l)
		}
		sort.Ints(lines)
		for _, l := range lines {
			_, err = fmt.Fprintf(w, "  line %d: %d glyphs\n", l, t.MaxGlyph[l])
			if err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d files processed\n", s.Files)
	return err
}
