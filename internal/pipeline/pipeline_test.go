// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/raster"
)

// StrLog is a simple logger that saves to a string,
// so it can be printed out only when needed.
type StrLog struct {
	log string
}

func (t *StrLog) Write(p []byte) (n int, err error) {
	t.log += string(p)
	return len(p), nil
}

// fiveGlyphs is a table with three glyphs on the first line and two
// on the second
var fiveGlyphs = []string{
	"..................",
	".###..###...###...",
	".###..###...###...",
	"..................",
	".####....####.....",
	".####....####.....",
	"..................",
}

type fixture struct {
	store *glyphpipeline.LocalStore
	run   *diag.Run
	slog  *StrLog
	in    string
	jobs  []Job
}

// newFixture writes three tables to an input directory: one with
// glyphs, one blank, and one which is not an image at all
func newFixture(t *testing.T) fixture {
	var slog StrLog
	logger := log.New(&slog, "", 0)
	store := &glyphpipeline.LocalStore{Dir: t.TempDir(), Logger: logger}
	err := store.Init()
	if err != nil {
		t.Fatalf("Could not initialise store: %v", err)
	}

	in := t.TempDir()
	err = raster.Parse(fiveGlyphs...).Save(filepath.Join(in, "m1.png"))
	require.NoError(t, err)
	err = raster.New(10, 5).Save(filepath.Join(in, "m2.png"))
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(in, "m3.png"), []byte("not an image"), 0644)
	require.NoError(t, err)

	var jobs []Job
	for _, name := range []string{"m1.png", "m2.png", "m3.png"} {
		j, err := NewJob(filepath.Join(in, name), "")
		require.NoError(t, err)
		jobs = append(jobs, j)
	}
	return fixture{store: store, run: diag.NewRun(logger), slog: &slog, in: in, jobs: jobs}
}

func TestProcessTables(t *testing.T) {
	f := newFixture(t)
	s := glyphpipeline.DefaultSettings()

	started := ProcessTables(context.Background(), f.jobs, f.store, s, Outputs{Proof: true}, 2, f.run)
	require.Equal(t, 3, started)

	for _, name := range []string{
		"t001_l001g001.png", "t001_l001g002.png", "t001_l001g003.png",
		"t001_l002g001.png", "t001_l002g002.png",
		glyphpipeline.ManifestName, "m1.csv", glyphpipeline.RenumberName,
		glyphpipeline.LinesGraphName, glyphpipeline.ProofName, glyphpipeline.TableImageName,
	} {
		_, err := os.Stat(f.store.Path("t001", name))
		require.NoError(t, err, "%s missing\nLog: %s", name, f.slog.log)
	}
	_, err := os.Stat(f.store.Path("t001", ".lock"))
	require.True(t, os.IsNotExist(err), "lock was not released")
	logs, err := filepath.Glob(f.store.Path("t001", "t001-*.log"))
	require.NoError(t, err)
	require.Len(t, logs, 1)

	// glyphs are padded by 2 on every side
	g, err := raster.Load(f.store.Path("t001", "t001_l002g001.png"))
	require.NoError(t, err)
	require.Equal(t, 4+4, g.W)
	require.Equal(t, 2+4, g.H)

	idx, err := os.ReadFile(f.store.Path("t001", "m1.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(idx)), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "4;file:m1.djvu?djvuopts=&page=1&highlight=1,1,4,2;m1 l 2 b 1; ※", lines[3])

	// the blank table has empty output and a warning
	rn, err := os.ReadFile(f.store.Path("t002", glyphpipeline.RenumberName))
	require.NoError(t, err)
	require.Equal(t, "0 files processed\n", string(rn))

	rep := f.run.Report(len(f.jobs))
	require.Equal(t, 1, rep.Failed)
	require.Len(t, rep.Failures, 1)
	require.Equal(t, "t003", rep.Failures[0].Table)
	require.Equal(t, diag.KindInput, rep.Failures[0].Kind)
	require.Len(t, rep.Warnings, 1)
	require.Equal(t, "t002", rep.Warnings[0].Table)
	require.Equal(t, diag.KindNoContent, rep.Warnings[0].Kind)
}

func TestProcessTablesCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := ProcessTables(ctx, f.jobs, f.store, glyphpipeline.DefaultSettings(), Outputs{}, 0, f.run)
	require.Equal(t, 0, started)
	events := f.run.Events()
	require.Len(t, events, 1)
	require.Equal(t, diag.KindCancel, events[0].Kind)
	_, err := os.Stat(f.store.TableDir("t001"))
	require.True(t, os.IsNotExist(err))
}

func TestSegmentTableLocked(t *testing.T) {
	f := newFixture(t)
	unlock, err := f.store.Lock("t001")
	require.NoError(t, err)
	defer unlock()

	_, err = SegmentTable(context.Background(), f.jobs[0], f.store, glyphpipeline.DefaultSettings(), Outputs{}, f.run)
	require.True(t, errors.Is(err, glyphpipeline.ErrLocked), "expected a lock error, got %v", err)
}

func TestParseCommands(t *testing.T) {
	in := `# fix line 1
delete t001_l001g002.png
join t001_l001g001 t001_l001g002

split t001_l002g001
`
	cmds, err := ParseCommands(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []Command{
		{Kind: "delete", IDs: []ident.ID{{Table: 1, Line: 1, Glyph: 2}}},
		{Kind: "join", IDs: []ident.ID{{Table: 1, Line: 1, Glyph: 1}, {Table: 1, Line: 1, Glyph: 2}}},
		{Kind: "split", IDs: []ident.ID{{Table: 1, Line: 2, Glyph: 1}}},
	}, cmds)

	for _, bad := range []string{"merge t001_l001g001", "join t001_l001g001", "delete", "delete glyph7"} {
		_, err = ParseCommand(bad)
		require.ErrorIs(t, err, diag.ErrInput, bad)
	}
}

func TestCorrect(t *testing.T) {
	f := newFixture(t)
	s := glyphpipeline.DefaultSettings()
	_, err := SegmentTable(context.Background(), f.jobs[0], f.store, s, Outputs{}, f.run)
	require.NoError(t, err)

	cmds, err := ParseCommands(strings.NewReader("delete t001_l001g002\njoin t001_l001g001 t001_l001g002\nsplit t001_l002g001\n"))
	require.NoError(t, err)
	err = Correct(f.store, 1, cmds, s, Outputs{Proof: true}, f.run)
	require.NoError(t, err, "Log: %s", f.slog.log)

	stream, err := f.store.LoadStream("t001", 1, s.Pad)
	require.NoError(t, err)
	var ids []string
	for _, r := range stream.Records() {
		ids = append(ids, r.ID.String())
	}
	require.Equal(t, []string{"t001_l001g001", "t001_l002g001", "t001_l002g002", "t001_l002g003"}, ids)

	joined, ok := stream.Get(ident.ID{Table: 1, Line: 1, Glyph: 1})
	require.True(t, ok)
	require.Equal(t, []int{1, 3}, joined.Joined)
	require.Equal(t, (7-2)+(7-2), joined.Raster.W)

	for _, name := range []string{"t001_l001g002.png", "t001_l001g003.png"} {
		_, err = os.Stat(f.store.Path("t001", name))
		require.True(t, os.IsNotExist(err), "%s should have been removed", name)
	}

	clog, err := os.ReadFile(f.store.Path("t001", glyphpipeline.CorrectionsName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(clog)), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasSuffix(lines[0], " delete t001_l001g002 -> -"), lines[0])
	require.True(t, strings.HasSuffix(lines[1], " join t001_l001g001,t001_l001g002 -> t001_l001g001"), lines[1])
	require.True(t, strings.HasSuffix(lines[2], " split t001_l002g001 -> t001_l002g001-1,t001_l002g001-2"), lines[2])
	require.True(t, strings.HasSuffix(lines[3], " renumber t001_l002g001-1,t001_l002g001-2 -> t001_l002g001,t001_l002g002"), lines[3])

	idx, err := os.ReadFile(f.store.Path("t001", "m1.csv"))
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(string(idx)), "\n"), 4)
	_, err = os.Stat(f.store.Path("t001", glyphpipeline.ProofName))
	require.NoError(t, err)

	// the solid glyph had no background path through it
	var geometry int
	for _, e := range f.run.Events() {
		if e.Kind == diag.KindGeometry {
			geometry++
		}
	}
	require.Equal(t, 1, geometry)
}

func TestCorrectErrors(t *testing.T) {
	f := newFixture(t)
	s := glyphpipeline.DefaultSettings()
	_, err := SegmentTable(context.Background(), f.jobs[0], f.store, s, Outputs{}, f.run)
	require.NoError(t, err)

	cmd := func(str string) Command {
		c, err := ParseCommand(str)
		require.NoError(t, err)
		return c
	}

	err = Correct(f.store, 1, []Command{cmd("delete t001_l009g001")}, s, Outputs{}, f.run)
	require.ErrorIs(t, err, diag.ErrOrdering)

	err = Correct(f.store, 1, []Command{cmd("delete t002_l001g001")}, s, Outputs{}, f.run)
	require.ErrorIs(t, err, diag.ErrOrdering)

	// the first correction is kept when a later one fails
	err = Correct(f.store, 1, []Command{cmd("delete t001_l002g002"), cmd("join t001_l001g003 t001_l002g001")}, s, Outputs{}, f.run)
	require.ErrorIs(t, err, diag.ErrOrdering)
	stream, err := f.store.LoadStream("t001", 1, s.Pad)
	require.NoError(t, err)
	require.Equal(t, 4, stream.Len())

	unlock, err := f.store.Lock("t001")
	require.NoError(t, err)
	err = Correct(f.store, 1, []Command{cmd("delete t001_l001g001")}, s, Outputs{}, f.run)
	require.ErrorIs(t, err, glyphpipeline.ErrLocked)
	require.NoError(t, unlock())

	err = Correct(f.store, 7, []Command{cmd("delete t007_l001g001")}, s, Outputs{}, f.run)
	require.ErrorIs(t, err, diag.ErrInput)
}
