// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"sort"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/internal/pipeline"
)

// glyphScale is how many screen pixels each glyph pixel is shown as
const glyphScale = 4

// commandsFor returns the corrections to make for an action on the
// selected glyphs. Deletions are made from the last glyph backwards,
// so that renumbering after each one doesn't change the IDs of those
// still to be deleted.
func commandsFor(action string, ids []ident.ID) ([]pipeline.Command, error) {
	sorted := make([]ident.ID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	switch action {
	case "join":
		if len(sorted) != 2 {
			return nil, fmt.Errorf("Select two glyphs to join, not %d", len(sorted))
		}
		return []pipeline.Command{{Kind: "join", IDs: sorted}}, nil
	case "split":
		if len(sorted) != 1 {
			return nil, fmt.Errorf("Select one glyph to split, not %d", len(sorted))
		}
		return []pipeline.Command{{Kind: "split", IDs: sorted}}, nil
	case "delete":
		if len(sorted) == 0 {
			return nil, fmt.Errorf("Select glyphs to delete")
		}
		var cmds []pipeline.Command
		for i := len(sorted) - 1; i >= 0; i-- {
			cmds = append(cmds, pipeline.Command{Kind: "delete", IDs: []ident.ID{sorted[i]}})
		}
		return cmds, nil
	}
	return nil, fmt.Errorf("Unknown action %s", action)
}

// lineRecords returns the records of one line of a table
func lineRecords(records []ident.Record, line int) []ident.Record {
	var l []ident.Record
	for _, r := range records {
		if r.ID.Line == line {
			l = append(l, r)
		}
	}
	return l
}

// lineNames returns the choices for the line selector
func lineNames(records []ident.Record) []string {
	var names []string
	last := 0
	for _, r := range records {
		if r.ID.Line != last {
			names = append(names, strconv.Itoa(r.ID.Line))
			last = r.ID.Line
		}
	}
	return names
}

// review holds the state of the table being reviewed
type review struct {
	store    *glyphpipeline.LocalStore
	settings glyphpipeline.Settings
	logger   *log.Logger

	table    string
	num      int
	records  []ident.Record
	line     int
	selected map[ident.ID]bool
}

// load reads a table's stream from the store
func (r *review) load(table string) error {
	num, err := glyphpipeline.TableNumber(table)
	if err != nil {
		return err
	}
	stream, err := r.store.LoadStream(table, num, r.settings.Pad)
	if err != nil {
		return err
	}
	r.table = table
	r.num = num
	r.records = stream.Records()
	r.selected = make(map[ident.ID]bool)
	return nil
}

// selectedIDs returns the ticked glyphs of the current line
func (r *review) selectedIDs() []ident.ID {
	var ids []ident.ID
	for id, ok := range r.selected {
		if ok && id.Line == r.line {
			ids = append(ids, id)
		}
	}
	return ids
}

// correct applies an action to the selected glyphs and reloads the
// table
func (r *review) correct(action string) error {
	cmds, err := commandsFor(action, r.selectedIDs())
	if err != nil {
		return err
	}
	run := diag.NewRun(r.logger)
	err = pipeline.Correct(r.store, r.num, cmds, r.settings, pipeline.Outputs{}, run)
	if err != nil {
		return err
	}
	return r.load(r.table)
}

// startGui starts the gui process
func startGui(store *glyphpipeline.LocalStore, s glyphpipeline.Settings, logger *log.Logger) error {
	myApp := app.New()
	myWindow := myApp.NewWindow("Glyph Review")
	myWindow.Resize(fyne.NewSize(900, 600))

	r := &review{store: store, settings: s, logger: logger}

	glyphs := container.NewHBox()
	status := widget.NewLabel("")
	lineSelect := widget.NewSelect(nil, nil)

	showLine := func() {
		glyphs.RemoveAll()
		for _, rec := range lineRecords(r.records, r.line) {
			id := rec.ID
			img := canvas.NewImageFromImage(rec.Raster.Gray())
			img.FillMode = canvas.ImageFillContain
			img.ScaleMode = canvas.ImageScalePixels
			img.SetMinSize(fyne.NewSize(float32(rec.Raster.W*glyphScale), float32(rec.Raster.H*glyphScale)))
			check := widget.NewCheck(fmt.Sprintf("%d", id.Glyph), func(on bool) {
				r.selected[id] = on
			})
			glyphs.Add(container.NewVBox(img, check))
		}
		status.SetText(fmt.Sprintf("%s line %d: %d glyphs", r.table, r.line, len(lineRecords(r.records, r.line))))
	}

	lineSelect.OnChanged = func(l string) {
		n, err := strconv.Atoi(l)
		if err != nil {
			return
		}
		r.line = n
		r.selected = make(map[ident.ID]bool)
		showLine()
	}

	refresh := func() {
		lines := lineNames(r.records)
		lineSelect.Options = lines
		cur := strconv.Itoa(r.line)
		for _, l := range lines {
			if l == cur {
				lineSelect.SetSelected(cur)
				showLine()
				return
			}
		}
		if len(lines) > 0 {
			lineSelect.SetSelected(lines[0])
			return
		}
		glyphs.RemoveAll()
		status.SetText(r.table + " has no glyphs")
	}

	var tableNames []string
	tables, err := store.ListTables()
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t.Glyphs > 0 {
			tableNames = append(tableNames, t.Name)
		}
	}
	tableSelect := widget.NewSelect(tableNames, func(t string) {
		err := r.load(t)
		if err != nil {
			dialog.ShowError(err, myWindow)
			return
		}
		r.line = 0
		refresh()
	})
	tableSelect.PlaceHolder = "Choose table"

	action := func(name string) func() {
		return func() {
			if r.table == "" {
				return
			}
			err := r.correct(name)
			if err != nil {
				dialog.ShowError(err, myWindow)
				return
			}
			refresh()
		}
	}
	joinbtn := widget.NewButtonWithIcon("Join", theme.ContentAddIcon(), action("join"))
	splitbtn := widget.NewButtonWithIcon("Split", theme.ContentCutIcon(), action("split"))
	deletebtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), action("delete"))

	choosers := container.New(layout.NewGridLayout(2), tableSelect, lineSelect)
	buttons := container.NewHBox(joinbtn, splitbtn, deletebtn)

	content := container.NewBorder(container.NewVBox(choosers, buttons), status, nil, nil, container.NewHScroll(glyphs))

	myWindow.SetContent(content)

	myWindow.Show()
	myApp.Run()

	return nil
}
