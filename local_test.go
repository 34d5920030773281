// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package glyphpipeline

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/raster"
	"rescribe.xyz/glyphpipeline/segment"
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

func testStore(t *testing.T) (*LocalStore, *StrLog) {
	var slog StrLog
	s := &LocalStore{Dir: t.TempDir(), Logger: log.New(&slog, "", 0)}
	err := s.Init()
	if err != nil {
		t.Fatalf("Could not initialise store: %v", err)
	}
	return s, &slog
}

func segmented(t *testing.T) segment.Result {
	b := raster.Parse(
		"..........",
		".##..##...",
		".##..##...",
		"..........",
		"...###....",
		"...###....",
		"..........",
	)
	return segment.Table(b, 1, segment.Options{LineMinWidth: 1, GlyphMinWidth: 1}, nil)
}

func TestTableNumber(t *testing.T) {
	cases := []struct {
		path string
		num  int
		err  bool
	}{
		{"m12.tiff", 12, false},
		{"/some/dir/table_003.png", 3, false},
		{"book2_page7.png", 7, false},
		{"nonumber.png", 0, true},
		{"m0.png", 0, true},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			n, err := TableNumber(c.path)
			if c.err {
				require.ErrorIs(t, err, diag.ErrInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.num, n)
		})
	}
	require.Equal(t, "t012", TableName(12))
}

func TestSaveLoadStream(t *testing.T) {
	s, slog := testStore(t)
	res := segmented(t)
	stream := ident.FromPieces(1, 2, res.Pieces)

	err := s.SaveStream("t001", stream)
	if err != nil {
		t.Fatalf("Error saving stream: %v\nLog: %s", err, slog.log)
	}
	for _, name := range []string{"t001_l001g001.png", "t001_l001g002.png", "t001_l002g001.png", ManifestName} {
		_, err = os.Stat(s.Path("t001", name))
		require.NoError(t, err, name)
	}

	loaded, err := s.LoadStream("t001", 1, 2)
	require.NoError(t, err)
	want := stream.Records()
	got := loaded.Records()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].ID, got[i].ID)
		require.Equal(t, want[i].Box, got[i].Box)
		require.True(t, want[i].Raster.Equal(got[i].Raster), "raster of %s differs", want[i].ID)
	}

	// a deleted glyph's image is removed on the next save
	err = loaded.Delete(ident.ID{Table: 1, Line: 1, Glyph: 2})
	require.NoError(t, err)
	err = s.SaveStream("t001", loaded)
	require.NoError(t, err)
	_, err = os.Stat(s.Path("t001", "t001_l001g002.png"))
	require.True(t, os.IsNotExist(err))
}

func TestLoadStreamMissing(t *testing.T) {
	s, _ := testStore(t)
	_, err := s.LoadStream("t009", 9, 2)
	require.ErrorIs(t, err, diag.ErrInput)
}

func TestLock(t *testing.T) {
	s, _ := testStore(t)
	unlock, err := s.Lock("t001")
	require.NoError(t, err)

	_, err = s.Lock("t001")
	require.True(t, errors.Is(err, ErrLocked), "second lock should fail, got %v", err)

	// another store on the same directory sees the lock file
	other := &LocalStore{Dir: s.Dir, Logger: s.Logger}
	_, err = other.Lock("t001")
	require.ErrorIs(t, err, ErrLocked)

	// other tables are not affected
	unlock2, err := s.Lock("t002")
	require.NoError(t, err)
	require.NoError(t, unlock2())

	require.NoError(t, unlock())
	unlock, err = other.Lock("t001")
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestCorrectionLogAppends(t *testing.T) {
	s, _ := testStore(t)
	for _, line := range []string{"first\n", "second\n"} {
		f, err := s.CorrectionLog("t001")
		require.NoError(t, err)
		_, err = f.Write([]byte(line))
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	b, err := os.ReadFile(s.Path("t001", CorrectionsName))
	require.NoError(t, err)
	require.Equal(t, "first\nsecond\n", string(b))
}

func TestWriteIndexAndReports(t *testing.T) {
	s, _ := testStore(t)
	res := segmented(t)
	stream := ident.FromPieces(1, 2, res.Pieces)
	records := stream.Records()

	err := s.WriteIndex("t001", "doc", 7, records, ident.DefaultComment)
	require.NoError(t, err)
	b, err := os.ReadFile(s.Path("t001", "doc.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "1;file:doc.djvu?djvuopts=&page=1&highlight=1,4,2,2;doc l 1 b 1; ※", lines[0])

	err = s.WriteRenumberReport("t001", records)
	require.NoError(t, err)
	b, err = os.ReadFile(s.Path("t001", RenumberName))
	require.NoError(t, err)
	require.Equal(t, "table 1: 2 lines\n  line 1: 2 glyphs\n  line 2: 1 glyphs\n3 files processed\n", string(b))
	png, err := os.ReadFile(s.Path("t001", LinesGraphName))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	when := time.Date(2024, 3, 1, 10, 4, 5, 0, time.UTC)
	name, err := s.WriteSegmentationLog("t001", res, when)
	require.NoError(t, err)
	require.Equal(t, "t001-20240301T100405Z.log", name)
	b, err = os.ReadFile(s.Path("t001", name))
	require.NoError(t, err)
	require.Equal(t, "table 1 segmented 2024-03-01T10:04:05Z\nline 1 rows 1-2: 2 glyphs\nline 2 rows 4-5: 1 glyphs\n2 lines, 3 glyphs\n", string(b))
}

func TestWriteReport(t *testing.T) {
	s, _ := testStore(t)
	run := diag.NewRun(nil)
	run.For("t002").Fail(diag.ErrInput)
	rep, err := s.WriteReport(run, 2)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Failed)
	b, err := os.ReadFile(s.Dir + "/report.json")
	require.NoError(t, err)
	require.Contains(t, string(b), `"failed": 1`)
}

func TestListTables(t *testing.T) {
	s, _ := testStore(t)
	res := segmented(t)
	stream := ident.FromPieces(1, 2, res.Pieces)
	require.NoError(t, s.SaveStream("t001", stream))
	require.NoError(t, s.WriteIndex("t001", "doc", 7, stream.Records(), ident.DefaultComment))

	unlock, err := s.Lock("t010")
	require.NoError(t, err)
	defer unlock()
	require.NoError(t, os.MkdirAll(s.Path("notatable", ""), 0755))

	tables, err := s.ListTables()
	require.NoError(t, err)
	require.Equal(t, []TableInfo{
		{Name: "t001", Glyphs: 3, Lines: 2, Index: true},
		{Name: "t010", Locked: true},
	}, tables)
}

func TestWriteToNewTable(t *testing.T) {
	s, _ := testStore(t)
	records := ident.FromPieces(1, 2, segmented(t).Pieces).Records()

	// each writer creates the table directory if it isn't there yet
	require.NoError(t, s.WriteIndex("t005", "doc", 7, records, ident.DefaultComment))
	_, err := os.Stat(s.Path("t005", "doc.csv"))
	require.NoError(t, err)

	require.NoError(t, s.WriteRenumberReport("t006", records))
	for _, name := range []string{RenumberName, LinesGraphName} {
		_, err = os.Stat(s.Path("t006", name))
		require.NoError(t, err, name)
	}
}
