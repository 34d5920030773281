// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"flag"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/raster"
)

func listDir(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRenumberDir(t *testing.T) {
	dir := t.TempDir()
	// each file's width identifies it after renaming
	files := []struct {
		name, renamed string
		width         int
	}{
		{"t001_l003g002.png", "t001_l001g001.png", 1},
		{"t001_l003g005.png", "t001_l001g002.png", 2},
		{"t001_l007g001-2.png", "t001_l002g002.png", 3},
		{"t001_l007g001-1.png", "t001_l002g001.png", 4},
		{"m2_R_lines_4_chunk_07+08.png", "t002_l001g001.png", 5},
	}
	for _, f := range files {
		require.NoError(t, raster.New(f.width, 2).Save(filepath.Join(dir, f.name)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0644))
	require.NoError(t, raster.New(1, 1).Save(filepath.Join(dir, "cover.png")))

	sum, err := RenumberDir(dir, nil)
	require.NoError(t, err)
	require.Equal(t, 5, sum.Files)
	for _, f := range files {
		b, err := raster.Load(filepath.Join(dir, f.renamed))
		require.NoError(t, err, f.renamed)
		require.Equal(t, f.width, b.W, "%s should have become %s", f.name, f.renamed)
	}

	want := []string{"cover.png", "readme.txt", glyphpipeline.RenumberName,
		"t001_l001g001.png", "t001_l001g002.png", "t001_l002g001.png", "t001_l002g002.png", "t002_l001g001.png"}
	require.Equal(t, want, listDir(t, dir))

	report, err := os.ReadFile(filepath.Join(dir, glyphpipeline.RenumberName))
	require.NoError(t, err)
	require.Equal(t, "table 1: 2 lines\n  line 1: 2 glyphs\n  line 2: 2 glyphs\ntable 2: 1 lines\n  line 1: 1 glyphs\n5 files processed\n", string(report))

	// running again changes nothing
	_, err = RenumberDir(dir, nil)
	require.NoError(t, err)
	require.Equal(t, want, listDir(t, dir))
}

func TestRenumberDirDuplicate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, raster.New(2, 2).Save(filepath.Join(dir, "t001_l001g001.png")))
	require.NoError(t, raster.New(2, 2).Save(filepath.Join(dir, "m1_R_lines_1_chunk_1.png")))
	_, err := RenumberDir(dir, nil)
	require.ErrorIs(t, err, diag.ErrInvariant)

	_, err = RenumberDir(filepath.Join(dir, "missing"), nil)
	require.ErrorIs(t, err, diag.ErrInput)
}

func TestAddSettingsFlags(t *testing.T) {
	s := glyphpipeline.DefaultSettings()
	s.Margin = 3 // as if from the settings file
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	AddSettingsFlags(fs, &s)
	err := fs.Parse([]string{"-strategy", "auto", "-trim", "-pad", "1"})
	require.NoError(t, err)
	require.Equal(t, "auto", s.Strategy)
	require.True(t, s.Trim)
	require.Equal(t, 1, s.Pad)
	require.Equal(t, 3, s.Margin)
}
