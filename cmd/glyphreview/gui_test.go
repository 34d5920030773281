// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/internal/pipeline"
	"rescribe.xyz/glyphpipeline/raster"
)

func id(line, glyph int) ident.ID {
	return ident.ID{Table: 1, Line: line, Glyph: glyph}
}

func TestCommandsFor(t *testing.T) {
	cases := []struct {
		action string
		ids    []ident.ID
		want   []string
		err    bool
	}{
		{"join", []ident.ID{id(1, 3), id(1, 2)}, []string{"join t001_l001g002 t001_l001g003"}, false},
		{"join", []ident.ID{id(1, 3)}, nil, true},
		{"split", []ident.ID{id(2, 1)}, []string{"split t001_l002g001"}, false},
		{"split", nil, nil, true},
		{"delete", []ident.ID{id(1, 1), id(1, 4), id(1, 2)}, []string{"delete t001_l001g004", "delete t001_l001g002", "delete t001_l001g001"}, false},
		{"delete", nil, nil, true},
		{"rotate", []ident.ID{id(1, 1)}, nil, true},
	}
	for _, c := range cases {
		t.Run(c.action, func(t *testing.T) {
			cmds, err := commandsFor(c.action, c.ids)
			if c.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			var got []string
			for _, cmd := range cmds {
				got = append(got, cmd.String())
			}
			require.Equal(t, c.want, got)
		})
	}
}

func TestLineNames(t *testing.T) {
	records := []ident.Record{{ID: id(1, 1)}, {ID: id(1, 2)}, {ID: id(2, 1)}, {ID: id(4, 1)}}
	require.Equal(t, []string{"1", "2", "4"}, lineNames(records))
	require.Len(t, lineRecords(records, 1), 2)
	require.Len(t, lineRecords(records, 3), 0)
}

func TestReviewCorrect(t *testing.T) {
	var n diag.NullWriter
	logger := log.New(n, "", 0)
	store := &glyphpipeline.LocalStore{Dir: t.TempDir(), Logger: logger}
	require.NoError(t, store.Init())

	in := filepath.Join(t.TempDir(), "m1.png")
	err := raster.Parse(
		"....................",
		".###..###..###..###.",
		".###..###..###..###.",
		"....................",
	).Save(in)
	require.NoError(t, err)
	job, err := pipeline.NewJob(in, "")
	require.NoError(t, err)
	_, err = pipeline.SegmentTable(context.Background(), job, store, glyphpipeline.DefaultSettings(), pipeline.Outputs{}, diag.NewRun(logger))
	require.NoError(t, err)

	r := &review{store: store, settings: glyphpipeline.DefaultSettings(), logger: logger}
	require.NoError(t, r.load("t001"))
	require.Len(t, r.records, 4)
	r.line = 1

	r.selected[id(1, 2)] = true
	r.selected[id(1, 4)] = true
	require.NoError(t, r.correct("delete"))
	require.Len(t, r.records, 2)
	require.Empty(t, r.selectedIDs())

	r.selected[id(1, 1)] = true
	r.selected[id(1, 2)] = true
	require.NoError(t, r.correct("join"))
	require.Len(t, r.records, 1)
	require.Equal(t, id(1, 1), r.records[0].ID)
	// glyphs keep their original numbers through renumbering
	require.Equal(t, []int{1, 3}, r.records[0].Joined)

	require.Error(t, r.correct("split"))
}
