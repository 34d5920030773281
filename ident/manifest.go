// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package ident

import (
	"encoding/csv"
	"fmt"
	"image"
	"io"
	"strconv"

	"rescribe.xyz/glyphpipeline/diag"
)

var manifestHeader = []string{"file", "table", "line", "glyph", "split", "orig", "x", "y", "w", "h", "joined"}

// WriteManifest writes records as csv, one row per record, giving
// each record's identity, original identity, box and join marker.
// It is the record of a stream which ReadManifest reads back; the
// glyph images are stored separately, named by ID.FileName.
func WriteManifest(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	err := cw.Write(manifestHeader)
	if err != nil {
		return fmt.Errorf("Error writing manifest: %v", err)
	}
	for _, r := range records {
		row := []string{
			r.ID.FileName(),
			strconv.Itoa(r.ID.Table),
			strconv.Itoa(r.ID.Line),
			strconv.Itoa(r.ID.Glyph),
			strconv.Itoa(r.ID.Split),
			r.Orig.String(),
			strconv.Itoa(r.Box.Min.X),
			strconv.Itoa(r.Box.Min.Y),
			strconv.Itoa(r.Box.Dx()),
			strconv.Itoa(r.Box.Dy()),
			r.JoinMarker(),
		}
		err = cw.Write(row)
		if err != nil {
			return fmt.Errorf("Error writing manifest: %v", err)
		}
	}
	cw.Flush()
	if err = cw.Error(); err != nil {
		return fmt.Errorf("Error writing manifest: %v", err)
	}
	return nil
}

// ReadManifest reads records written by WriteManifest. The records'
// rasters are not loaded.
func ReadManifest(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(manifestHeader)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Error reading manifest: %v: %w", err, diag.ErrInput)
	}
	if len(rows) == 0 || rows[0][0] != manifestHeader[0] {
		return nil, fmt.Errorf("Error reading manifest: missing header: %w", diag.ErrInput)
	}

	var records []Record
	for n, row := range rows[1:] {
		var nums [8]int
		for i, f := range []int{1, 2, 3, 4, 6, 7, 8, 9} {
			nums[i], err = strconv.Atoi(row[f])
			if err != nil {
				return nil, fmt.Errorf("Error reading manifest row %d: bad %s %q: %w", n+2, manifestHeader[f], row[f], diag.ErrInput)
			}
		}
		orig, _, err := ParseID(row[5])
		if err != nil {
			return nil, fmt.Errorf("Error reading manifest row %d: %w", n+2, err)
		}
		joined, err := parseJoinMarker(row[10])
		if err != nil {
			return nil, fmt.Errorf("Error reading manifest row %d: %w", n+2, err)
		}
		records = append(records, Record{
			ID:     ID{Table: nums[0], Line: nums[1], Glyph: nums[2], Split: nums[3]},
			Orig:   orig,
			Box:    image.Rect(nums[4], nums[5], nums[4]+nums[6], nums[5]+nums[7]),
			Joined: joined,
		})
	}
	return records, nil
}
