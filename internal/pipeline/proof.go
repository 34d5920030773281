// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/raster"
)

type Pdfer interface {
	Setup() error
	AddTable(name string, b *raster.Binary, records []ident.Record) error
	Save(path string) error
}

// ProofSheet adds a page for each of the named tables to pdf, showing
// the table image with the box and number of each glyph drawn over
// it, and saves it to path. Tables which can't be loaded are skipped
// with a warning. The number of pages added is returned.
func ProofSheet(store Storer, pdf Pdfer, tables []string, pad int, path string, run *diag.Run) (int, error) {
	err := pdf.Setup()
	if err != nil {
		return 0, fmt.Errorf("Error setting up proof sheet: %v", err)
	}
	pages := 0
	for _, name := range tables {
		trun := run.For(name)
		num, err := glyphpipeline.TableNumber(name)
		if err != nil {
			trun.Warn(diag.Classify(err), "skipped: %v", err)
			continue
		}
		b, err := store.LoadTable(name)
		if err != nil {
			trun.Warn(diag.Classify(err), "skipped: %v", err)
			continue
		}
		stream, err := store.LoadStream(name, num, pad)
		if err != nil {
			trun.Warn(diag.Classify(err), "skipped: %v", err)
			continue
		}
		err = pdf.AddTable(name, b, stream.Records())
		if err != nil {
			trun.Warn(diag.Classify(err), "skipped: %v", err)
			continue
		}
		trun.Log("added to proof sheet")
		pages++
	}
	if pages == 0 {
		return 0, fmt.Errorf("Error making proof sheet: no tables could be added: %w", diag.ErrNoContent)
	}
	err = pdf.Save(path)
	if err != nil {
		return pages, fmt.Errorf("Error saving proof sheet %s: %v", path, err)
	}
	return pages, nil
}
