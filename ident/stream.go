// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package ident

import (
	"fmt"
	"image"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/raster"
	"rescribe.xyz/glyphpipeline/segment"
)

// Stream is the ordered list of glyph records of one table. Records
// are kept sorted by identity. All changes go through a Stream's
// methods, which hold a lock, so there is only ever one writer.
type Stream struct {
	Table int
	// Pad is the width of the background border around each record's
	// raster
	Pad int

	mu      sync.Mutex
	records []Record
	log     io.Writer
	now     func() time.Time
}

// NewStream creates a stream holding records, all of which must
// belong to table
func NewStream(table int, pad int, records []Record) (*Stream, error) {
	for _, r := range records {
		if r.ID.Table != table {
			return nil, fmt.Errorf("Error creating stream for table %d: record %s is from another table: %w", table, r.ID, diag.ErrInput)
		}
	}
	s := &Stream{Table: table, Pad: pad, records: make([]Record, len(records)), now: time.Now}
	copy(s.records, records)
	s.sort()
	return s, nil
}

// FromPieces creates a stream from freshly segmented glyphs, padding
// each glyph raster by pad
func FromPieces(table int, pad int, pieces []segment.Piece) *Stream {
	s := &Stream{Table: table, Pad: pad, now: time.Now}
	for _, p := range pieces {
		id := ID{Table: table, Line: p.Line, Glyph: p.Glyph}
		s.records = append(s.records, Record{ID: id, Orig: id, Box: p.Rect, Raster: p.Raster.Pad(pad)})
	}
	s.sort()
	return s
}

// SetLog sets where corrections are logged to. Each correction
// appends one line.
func (s *Stream) SetLog(w io.Writer) {
	s.mu.Lock()
	s.log = w
	s.mu.Unlock()
}

func (s *Stream) sort() {
	sort.SliceStable(s.records, func(i, j int) bool { return s.records[i].ID.Less(s.records[j].ID) })
}

// Records returns a copy of the records in the stream
func (s *Stream) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := make([]Record, len(s.records))
	copy(r, s.records)
	return r
}

// Len returns the number of records in the stream
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Get returns the record with the given identity
func (s *Stream) Get(id ID) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(id)
	if i < 0 {
		return Record{}, false
	}
	return s.records[i], true
}

func (s *Stream) find(id ID) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Renumber makes the numbering of the stream dense, see Renumber.
// Split pieces only get their final identities here, so if there are
// any a renumber line mapping them is added to the correction log.
func (s *Stream) Renumber() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sort()
	r, err := Renumber(s.records)
	if err != nil {
		return err
	}
	var in, out []ID
	for i := range r {
		if s.records[i].ID.Split != 0 {
			in = append(in, s.records[i].ID)
			out = append(out, r[i].ID)
		}
	}
	if len(in) > 0 {
		err = s.logCorrection("renumber", in, out)
		if err != nil {
			return err
		}
	}
	s.records = r
	return nil
}

// logCorrection appends a line to the correction log, like:
// 2024-03-01T10:04:05Z join t001_l002g003,t001_l002g004 -> t001_l002g003
func (s *Stream) logCorrection(kind string, in []ID, out []ID) error {
	if s.log == nil {
		return nil
	}
	ids := func(l []ID) string {
		var strs []string
		for _, id := range l {
			strs = append(strs, id.String())
		}
		if len(strs) == 0 {
			return "-"
		}
		return strings.Join(strs, ",")
	}
	_, err := fmt.Fprintf(s.log, "%s %s %s -> %s\n", s.now().UTC().Format(time.RFC3339), kind, ids(in), ids(out))
	if err != nil {
		return fmt.Errorf("Error writing correction log: %v", err)
	}
	return nil
}

// Join merges two neighbouring glyphs of a line into one, which takes
// the identity of the earlier. They must be in the same line, their
// glyph numbers must differ by exactly 1, and neither may be an
// unrenumbered split piece; otherwise an ordering error is returned
// and the stream is unchanged. The later glyph number is left unused
// until the stream is renumbered.
func (s *Stream) Join(a, b ID, run *diag.Run) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Less(a) {
		a, b = b, a
	}
	if a.Table != b.Table || a.Line != b.Line {
		return Record{}, fmt.Errorf("Error joining %s and %s: not in the same line: %w", a, b, diag.ErrOrdering)
	}
	if a.Split != 0 || b.Split != 0 {
		return Record{}, fmt.Errorf("Error joining %s and %s: renumber split pieces before joining: %w", a, b, diag.ErrOrdering)
	}
	if b.Glyph-a.Glyph != 1 {
		return Record{}, fmt.Errorf("Error joining %s and %s: glyphs are not adjacent: %w", a, b, diag.ErrOrdering)
	}
	ia, ib := s.find(a), s.find(b)
	if ia < 0 || ib < 0 {
		return Record{}, fmt.Errorf("Error joining %s and %s: glyph not found: %w", a, b, diag.ErrOrdering)
	}
	ra, rb := s.records[ia], s.records[ib]

	joined, err := JoinRasters([]*raster.Binary{ra.Raster, rb.Raster}, s.Pad, run)
	if err != nil {
		return Record{}, fmt.Errorf("Error joining %s and %s: %w", a, b, err)
	}

	rec := Record{ID: a, Orig: ra.Orig, Box: ra.Box.Union(rb.Box), Raster: joined}
	rec.Joined = append(rec.Joined, joinNumbers(ra)...)
	rec.Joined = append(rec.Joined, joinNumbers(rb)...)

	err = s.logCorrection("join", []ID{a, b}, []ID{a})
	if err != nil {
		return Record{}, err
	}

	s.records[ia] = rec
	s.records = append(s.records[:ib], s.records[ib+1:]...)
	return rec, nil
}

// joinNumbers returns the original glyph numbers a record covers
func joinNumbers(r Record) []int {
	if len(r.Joined) > 0 {
		return r.Joined
	}
	return []int{r.Orig.Glyph}
}

// Split replaces a glyph with two or more pieces, given left to
// right, which take its line and glyph number with split suffixes
// from 1. Each piece's rectangle in the table is given by boxes. The
// new records are returned.
func (s *Stream) Split(id ID, pieces []*raster.Binary, boxes []image.Rectangle) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(pieces) < 2 || len(boxes) != len(pieces) {
		return nil, fmt.Errorf("Error splitting %s: need at least 2 pieces with a box each: %w", id, diag.ErrGeometry)
	}
	if id.Split != 0 {
		return nil, fmt.Errorf("Error splitting %s: renumber split pieces before splitting again: %w", id, diag.ErrOrdering)
	}
	i := s.find(id)
	if i < 0 {
		return nil, fmt.Errorf("Error splitting %s: glyph not found: %w", id, diag.ErrOrdering)
	}
	orig := s.records[i]

	var recs []Record
	var out []ID
	for n, p := range pieces {
		if p.Empty() {
			return nil, fmt.Errorf("Error splitting %s: piece %d is empty: %w", id, n+1, diag.ErrGeometry)
		}
		nid := id
		nid.Split = n + 1
		recs = append(recs, Record{ID: nid, Orig: orig.Orig, Box: boxes[n], Raster: p})
		out = append(out, nid)
	}

	err := s.logCorrection("split", []ID{id}, out)
	if err != nil {
		return nil, err
	}

	rest := append([]Record{}, s.records[i+1:]...)
	s.records = append(append(s.records[:i], recs...), rest...)
	return recs, nil
}

// SplitCut splits a glyph holding two touching glyphs in two, along
// a path of background pixels found by segment.Split
func (s *Stream) SplitCut(id ID, run *diag.Run) ([]Record, error) {
	rec, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("Error splitting %s: glyph not found: %w", id, diag.ErrOrdering)
	}
	r := rec.Raster
	inner := r.Crop(image.Rect(s.Pad, s.Pad, r.W-s.Pad, r.H-s.Pad))
	parts, err := segment.Split(inner, run)
	if err != nil {
		return nil, fmt.Errorf("Error splitting %s: %w", id, err)
	}
	var pieces []*raster.Binary
	var boxes []image.Rectangle
	for n, p := range parts {
		if p.Raster.Empty() {
			return nil, fmt.Errorf("Error splitting %s: no ink in piece %d: %w", id, n+1, diag.ErrGeometry)
		}
		pieces = append(pieces, p.Raster.Pad(s.Pad))
		boxes = append(boxes, image.Rect(rec.Box.Min.X+p.X0, rec.Box.Min.Y, rec.Box.Min.X+p.X1, rec.Box.Max.Y))
	}
	return s.Split(id, pieces, boxes)
}

// Delete removes a glyph which is just noise. Its number is left
// unused until the stream is renumbered.
func (s *Stream) Delete(id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return fmt.Errorf("Error deleting %s: glyph not found: %w", id, diag.ErrOrdering)
	}
	err := s.logCorrection("delete", []ID{id}, nil)
	if err != nil {
		return err
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return nil
}
