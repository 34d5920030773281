// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/raster"
)

func TestChunkLineAndJoin(t *testing.T) {
	in := filepath.Join(t.TempDir(), "line.png")
	require.NoError(t, raster.Parse(
		"##...###..####",
		"##...###..####",
	).Save(in))
	out := t.TempDir()
	run := diag.NewRun(nil)

	paths, err := ChunkLine(in, out, 2, run)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(out, "line_01.png"),
		filepath.Join(out, "line_02.png"),
		filepath.Join(out, "line_03.png"),
	}, paths)

	var widths []int
	for _, p := range paths {
		c, err := raster.Load(p)
		require.NoError(t, err)
		require.Equal(t, 6, c.H)
		widths = append(widths, c.W)
	}
	require.Equal(t, []int{6, 7, 8}, widths)

	joined, err := ident.JoinChunkFiles(paths[1:], 2, run)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "line_02+03.png"), joined)
	j, err := raster.Load(joined)
	require.NoError(t, err)
	require.Equal(t, (7-2)+(8-2), j.W)
	require.Empty(t, run.Events())
}

func TestChunkLineBlank(t *testing.T) {
	in := filepath.Join(t.TempDir(), "blank.png")
	require.NoError(t, raster.New(8, 3).Save(in))
	run := diag.NewRun(nil)

	paths, err := ChunkLine(in, t.TempDir(), 2, run)
	require.NoError(t, err)
	require.Empty(t, paths)
	require.Len(t, run.Events(), 1)
	require.Equal(t, diag.KindNoContent, run.Events()[0].Kind)
}

func TestSplitChunk(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "pair_05.png")
	require.NoError(t, raster.Parse(
		"##.####",
		"###.###",
		"####.##",
	).Pad(2).Save(in))

	paths, err := SplitChunk(in, 2, nil)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "pair_05-1.png"), filepath.Join(dir, "pair_05-2.png")}, paths)

	want := []*raster.Binary{
		raster.Parse("##..", "###.", "####").Pad(2),
		raster.Parse("####", ".###", "..##").Pad(2),
	}
	for i, p := range paths {
		got, err := raster.Load(p)
		require.NoError(t, err)
		require.True(t, want[i].Equal(got), "piece %d:\n%s", i+1, got)
	}

	blank := filepath.Join(dir, "blank_01.png")
	require.NoError(t, raster.New(6, 6).Save(blank))
	_, err = SplitChunk(blank, 2, nil)
	require.ErrorIs(t, err, diag.ErrNoContent)
}
