// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package ident keeps track of the identity of segmented glyphs: the
// table, line and glyph numbers of each, and the manual corrections
// (splits, joins and deletions) applied to them. Renumber makes the
// numbering of a table dense again after corrections.
package ident

import (
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/raster"
)

// ID identifies a glyph. Split is 0 unless the glyph is one of the
// pieces of a manual split which has not been renumbered yet.
type ID struct {
	Table, Line, Glyph, Split int
}

// String returns the identifier in the form used for file names,
// such as t001_l002g013, with a -N suffix for split pieces
func (id ID) String() string {
	s := fmt.Sprintf("t%03d_l%03dg%03d", id.Table, id.Line, id.Glyph)
	if id.Split > 0 {
		s += fmt.Sprintf("-%d", id.Split)
	}
	return s
}

// FileName returns the name of the png file for a glyph
func (id ID) FileName() string {
	return id.String() + ".png"
}

// Less orders identifiers by table, line, glyph and split
func (id ID) Less(o ID) bool {
	if id.Table != o.Table {
		return id.Table < o.Table
	}
	if id.Line != o.Line {
		return id.Line < o.Line
	}
	if id.Glyph != o.Glyph {
		return id.Glyph < o.Glyph
	}
	return id.Split < o.Split
}

var (
	nameRe   = regexp.MustCompile(`^t(\d+)_l(\d+)g(\d+)(?:-(\d+))?$`)
	legacyRe = regexp.MustCompile(`^m(\d+)_R_lines_(\d+)_chunk_(\d+)([+-]\d+)?$`)
)

// ParseID parses an identifier as returned by ID.String, or a file
// name made from one. Names from the older chunk naming scheme, like
// m12_R_lines_3_chunk_07.png, are accepted too; in these a +N suffix
// marks a join with chunk N, which is returned as the second value,
// and a -N suffix marks split piece N.
func ParseID(name string) (ID, []int, error) {
	base := strings.TrimSuffix(name, ".png")
	if m := nameRe.FindStringSubmatch(base); m != nil {
		id := ID{Table: atoi(m[1]), Line: atoi(m[2]), Glyph: atoi(m[3])}
		if m[4] != "" {
			id.Split = atoi(m[4])
		}
		return id, nil, nil
	}
	if m := legacyRe.FindStringSubmatch(base); m != nil {
		id := ID{Table: atoi(m[1]), Line: atoi(m[2]), Glyph: atoi(m[3])}
		var joined []int
		switch {
		case strings.HasPrefix(m[4], "+"):
			joined = []int{id.Glyph, atoi(m[4][1:])}
		case strings.HasPrefix(m[4], "-"):
			id.Split = atoi(m[4][1:])
		}
		return id, joined, nil
	}
	return ID{}, nil, fmt.Errorf("Error parsing glyph name %s: %w", name, diag.ErrInput)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Record is a glyph in an identifier stream
type Record struct {
	ID ID
	// Orig is the identity the glyph was given when first segmented,
	// kept for provenance
	Orig ID
	// Box is the glyph's rectangle in the table raster
	Box image.Rectangle
	// Joined lists the original glyph numbers merged into this one
	Joined []int
	// Raster is the glyph image, including any padding
	Raster *raster.Binary
}

// JoinMarker returns the join marker in the form used in manifests,
// such as 7+8, or an empty string
func (r Record) JoinMarker() string {
	var s []string
	for _, n := range r.Joined {
		s = append(s, strconv.Itoa(n))
	}
	return strings.Join(s, "+")
}

func parseJoinMarker(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var joined []int
	for _, f := range strings.Split(s, "+") {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("Error parsing join marker %s: %v: %w", s, err, diag.ErrInput)
		}
		joined = append(joined, n)
	}
	return joined, nil
}
