// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
)

// RenumberDir renumbers the glyph images in a directory, which may
// be from several tables and may use the older chunk naming scheme,
// renaming each to its dense identity like t001_l002g003.png. Files
// which aren't glyph images are left alone. The renumber report is
// written to renumber.txt in the directory, and the summary is
// returned.
func RenumberDir(dir string, run *diag.Run) (ident.Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ident.Summary{}, fmt.Errorf("Error reading directory %s: %v: %w", dir, err, diag.ErrInput)
	}

	var records []ident.Record
	paths := make(map[ident.ID]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		id, joined, err := ident.ParseID(e.Name())
		if err != nil {
			run.Log("Skipping", e.Name())
			continue
		}
		if prev, ok := paths[id]; ok {
			return ident.Summary{}, fmt.Errorf("Error renumbering %s: %s and %s are both %s: %w", dir, prev, e.Name(), id, diag.ErrInvariant)
		}
		paths[id] = e.Name()
		records = append(records, ident.Record{ID: id, Orig: id, Joined: joined})
	}

	renumbered, err := ident.Renumber(records)
	if err != nil {
		return ident.Summary{}, err
	}

	// rename in two steps so that no file is overwritten before it
	// has been moved out of the way
	var moves [][2]string
	for i, r := range renumbered {
		from := paths[r.Orig]
		to := r.ID.FileName()
		if from == to {
			continue
		}
		tmp := fmt.Sprintf(".renumber-%d.png", i)
		err = os.Rename(filepath.Join(dir, from), filepath.Join(dir, tmp))
		if err != nil {
			return ident.Summary{}, fmt.Errorf("Error renaming %s: %v", from, err)
		}
		moves = append(moves, [2]string{tmp, to})
		run.Log("Renaming", from, "to", to)
	}
	for _, m := range moves {
		err = os.Rename(filepath.Join(dir, m[0]), filepath.Join(dir, m[1]))
		if err != nil {
			return ident.Summary{}, fmt.Errorf("Error renaming %s: %v", m[1], err)
		}
	}

	sum := ident.Summarise(renumbered)
	f, err := os.Create(filepath.Join(dir, glyphpipeline.RenumberName))
	if err != nil {
		return sum, fmt.Errorf("Error creating renumber report: %v", err)
	}
	defer f.Close()
	err = sum.WriteText(f)
	if err != nil {
		return sum, fmt.Errorf("Error writing renumber report: %v", err)
	}
	return sum, nil
}
