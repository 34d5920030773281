// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package glyphpipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/raster"
	"rescribe.xyz/glyphpipeline/segment"
)

const (
	ManifestName    = "stream.csv"
	CorrectionsName = "corrections.log"
	RenumberName    = "renumber.txt"
	LinesGraphName  = "lines.png"
	ProofName       = "proof.pdf"
	TableImageName  = "table.png"
	lockName        = ".lock"
)

var tableNumRe = regexp.MustCompile(`(\d+)`)

// TableNumber finds the number of a table from the name of its image
// file, such as 12 for m12.tiff or 3 for table_003.png, using the last
// number in the name
func TableNumber(path string) (int, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := tableNumRe.FindAllString(base, -1)
	if len(m) == 0 {
		return 0, fmt.Errorf("Error finding table number in %s: %w", path, diag.ErrInput)
	}
	n, err := strconv.Atoi(m[len(m)-1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("Error finding table number in %s: %w", path, diag.ErrInput)
	}
	return n, nil
}

// TableName returns the name of the directory a table's output goes in
func TableName(num int) string {
	return fmt.Sprintf("t%03d", num)
}

// ErrLocked is returned by Lock when another process or goroutine
// is already writing to a table
var ErrLocked = errors.New("table is locked")

// LocalStore keeps the output of each table in its own directory
// under Dir: the glyph crops, the stream manifest, the index, the
// correction log and the reports.
type LocalStore struct {
	// these should be set before running Init(), or left to defaults
	Dir    string
	Logger *log.Logger

	mu    sync.Mutex
	locks map[string]bool
}

// MinimalInit does the bare minimum initialisation
func (s *LocalStore) MinimalInit() error {
	if s.Dir == "" {
		s.Dir = filepath.Join(os.TempDir(), "glyphpipeline")
	}
	err := os.MkdirAll(s.Dir, 0755)
	if err != nil {
		return fmt.Errorf("Error creating output directory: %v", err)
	}

	if s.Logger == nil {
		s.Logger = log.New(os.Stdout, "", 0)
	}

	return nil
}

// Init just does the same as MinimalInit
func (s *LocalStore) Init() error {
	return s.MinimalInit()
}

// TableDir returns the directory holding a table's output
func (s *LocalStore) TableDir(table string) string {
	return filepath.Join(s.Dir, table)
}

// Path returns the path of a file in a table's directory
func (s *LocalStore) Path(table, name string) string {
	return filepath.Join(s.TableDir(table), name)
}

func (s *LocalStore) mkTableDir(table string) error {
	err := os.MkdirAll(s.TableDir(table), 0755)
	if err != nil {
		return fmt.Errorf("Error creating directory for %s: %v", table, err)
	}
	return nil
}

// Lock marks a table as being written to, so that only one writer
// changes its stream at a time. The lock is held until the returned
// function is called. A lock file is used so that other processes
// also see it; a stale one left by a crash must be removed by hand.
func (s *LocalStore) Lock(table string) (func() error, error) {
	err := s.mkTableDir(table)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]bool)
	}
	if s.locks[table] {
		return nil, fmt.Errorf("Error locking %s: %w", table, ErrLocked)
	}

	p := s.Path(table, lockName)
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if os.IsExist(err) {
		return nil, fmt.Errorf("Error locking %s: %s exists: %w", table, p, ErrLocked)
	}
	if err != nil {
		return nil, fmt.Errorf("Error locking %s: %v", table, err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()
	s.locks[table] = true

	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.locks, table)
		err := os.Remove(p)
		if err != nil {
			return fmt.Errorf("Error unlocking %s: %v", table, err)
		}
		return nil
	}, nil
}

// removeGlyphs deletes any glyph images in a table's directory, so
// that glyphs which were renumbered or deleted don't linger
func (s *LocalStore) removeGlyphs(table string) error {
	entries, err := os.ReadDir(s.TableDir(table))
	if err != nil {
		return fmt.Errorf("Error listing %s: %v", table, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		if _, _, err := ident.ParseID(e.Name()); err != nil {
			continue
		}
		err = os.Remove(s.Path(table, e.Name()))
		if err != nil {
			return fmt.Errorf("Error removing %s: %v", e.Name(), err)
		}
	}
	return nil
}

// SaveStream writes each record's glyph image, named by its ID, and
// the stream manifest
func (s *LocalStore) SaveStream(table string, stream *ident.Stream) error {
	err := s.mkTableDir(table)
	if err != nil {
		return err
	}
	err = s.removeGlyphs(table)
	if err != nil {
		return err
	}

	records := stream.Records()
	for _, r := range records {
		if r.Raster == nil {
			return fmt.Errorf("Error saving %s: no image: %w", r.ID, diag.ErrInvariant)
		}
		err = r.Raster.Save(s.Path(table, r.ID.FileName()))
		if err != nil {
			return err
		}
	}

	f, err := os.Create(s.Path(table, ManifestName))
	if err != nil {
		return fmt.Errorf("Error creating manifest for %s: %v", table, err)
	}
	defer f.Close()
	err = ident.WriteManifest(f, records)
	if err != nil {
		return err
	}
	s.Log("Saved", len(records), "glyphs for", table)
	return nil
}

// LoadStream reads a table's stream back from its manifest and glyph
// images
func (s *LocalStore) LoadStream(table string, num int, pad int) (*ident.Stream, error) {
	f, err := os.Open(s.Path(table, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("Error opening manifest for %s: %v: %w", table, err, diag.ErrInput)
	}
	defer f.Close()
	records, err := ident.ReadManifest(f)
	if err != nil {
		return nil, err
	}
	for i, r := range records {
		records[i].Raster, err = raster.Load(s.Path(table, r.ID.FileName()))
		if err != nil {
			return nil, err
		}
	}
	return ident.NewStream(num, pad, records)
}

// SaveTable saves the binary image of a table, which is needed to
// make proofs and write indexes after corrections
func (s *LocalStore) SaveTable(table string, b *raster.Binary) error {
	err := s.mkTableDir(table)
	if err != nil {
		return err
	}
	return b.Save(s.Path(table, TableImageName))
}

// LoadTable loads the image saved by SaveTable
func (s *LocalStore) LoadTable(table string) (*raster.Binary, error) {
	return raster.Load(s.Path(table, TableImageName))
}

// IndexDoc finds the document name of a table's index file
func (s *LocalStore) IndexDoc(table string) (string, error) {
	matches, err := filepath.Glob(s.Path(table, "*.csv"))
	if err != nil {
		return "", fmt.Errorf("Error finding index of %s: %v", table, err)
	}
	var docs []string
	for _, m := range matches {
		if filepath.Base(m) == ManifestName {
			continue
		}
		docs = append(docs, strings.TrimSuffix(filepath.Base(m), ".csv"))
	}
	if len(docs) != 1 {
		return "", fmt.Errorf("Error finding index of %s: found %d index files: %w", table, len(docs), diag.ErrInput)
	}
	return docs[0], nil
}

// CorrectionLog opens a table's correction log for appending
func (s *LocalStore) CorrectionLog(table string) (io.WriteCloser, error) {
	err := s.mkTableDir(table)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(s.Path(table, CorrectionsName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("Error opening correction log for %s: %v", table, err)
	}
	return f, nil
}

// WriteIndex writes the index file of a table, doc.csv
func (s *LocalStore) WriteIndex(table, doc string, height int, records []ident.Record, comment string) error {
	err := s.mkTableDir(table)
	if err != nil {
		return err
	}
	f, err := os.Create(s.Path(table, doc+".csv"))
	if err != nil {
		return fmt.Errorf("Error creating index for %s: %v", table, err)
	}
	defer f.Close()
	return ident.WriteIndex(f, doc, height, records, comment)
}

// WriteRenumberReport writes the renumber report of a table's records
// as text, and graphs the number of glyphs on each line
func (s *LocalStore) WriteRenumberReport(table string, records []ident.Record) error {
	err := s.mkTableDir(table)
	if err != nil {
		return err
	}
	sum := ident.Summarise(records)
	f, err := os.Create(s.Path(table, RenumberName))
	if err != nil {
		return fmt.Errorf("Error creating renumber report for %s: %v", table, err)
	}
	defer f.Close()
	err = sum.WriteText(f)
	if err != nil {
		return fmt.Errorf("Error writing renumber report for %s: %v", table, err)
	}

	if len(sum.Tables) == 0 {
		return nil
	}
	g, err := os.Create(s.Path(table, LinesGraphName))
	if err != nil {
		return fmt.Errorf("Error creating line graph for %s: %v", table, err)
	}
	defer g.Close()
	return GraphLines(sum.Tables[0], table, g)
}

// SegmentationLogName returns the name of the segmentation log of a
// table written at time t
func SegmentationLogName(table string, t time.Time) string {
	return fmt.Sprintf("%s-%s.log", table, t.UTC().Format("20060102T150405Z"))
}

// WriteSegmentationLog records what was found when segmenting a
// table: the number of glyphs on each line and any line strips which
// had to be skipped. The name of the log is returned.
func (s *LocalStore) WriteSegmentationLog(table string, res segment.Result, t time.Time) (string, error) {
	err := s.mkTableDir(table)
	if err != nil {
		return "", err
	}
	name := SegmentationLogName(table, t)
	f, err := os.Create(s.Path(table, name))
	if err != nil {
		return "", fmt.Errorf("Error creating segmentation log for %s: %v", table, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "table %d segmented %s\n", res.Table, t.UTC().Format(time.RFC3339))
	for _, l := range res.Lines {
		fmt.Fprintf(f, "line %d rows %d-%d: %d glyphs\n", l.Line, l.Strip.Start, l.Strip.End, l.Glyphs)
	}
	for _, inv := range res.Invalid {
		fmt.Fprintf(f, "invalid rows %d-%d: %s\n", inv.Strip.Start, inv.Strip.End, inv.Reason)
	}
	_, err = fmt.Fprintf(f, "%d lines, %d glyphs\n", len(res.Lines), len(res.Pieces))
	if err != nil {
		return "", fmt.Errorf("Error writing segmentation log for %s: %v", table, err)
	}
	return name, nil
}

// WriteReport writes the report of a run as report.json in Dir, and
// returns it
func (s *LocalStore) WriteReport(run *diag.Run, tables int) (diag.Report, error) {
	rep := run.Report(tables)
	f, err := os.Create(filepath.Join(s.Dir, "report.json"))
	if err != nil {
		return rep, fmt.Errorf("Error creating report: %v", err)
	}
	defer f.Close()
	err = rep.WriteJSON(f)
	if err != nil {
		return rep, fmt.Errorf("Error writing report: %v", err)
	}
	return rep, nil
}

// TableInfo describes a segmented table found in a store
type TableInfo struct {
	Name   string
	Glyphs int
	Lines  int
	Locked bool
	Index  bool
}

var tableDirRe = regexp.MustCompile(`^t[0-9]{3,}$`)

// ListTables returns information about every table directory in the
// store, in table order. Only manifests are read, not glyph images.
func (s *LocalStore) ListTables() ([]TableInfo, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("Error listing %s: %v", s.Dir, err)
	}
	var tables []TableInfo
	for _, e := range entries {
		if !e.IsDir() || !tableDirRe.MatchString(e.Name()) {
			continue
		}
		info := TableInfo{Name: e.Name()}
		if _, err := os.Stat(s.Path(e.Name(), lockName)); err == nil {
			info.Locked = true
		}
		if _, err := s.IndexDoc(e.Name()); err == nil {
			info.Index = true
		}
		f, err := os.Open(s.Path(e.Name(), ManifestName))
		if err == nil {
			records, err := ident.ReadManifest(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("Error reading manifest for %s: %v", e.Name(), err)
			}
			sum := ident.Summarise(records)
			info.Glyphs = len(records)
			for _, t := range sum.Tables {
				info.Lines += t.MaxLine
			}
		}
		tables = append(tables, info)
	}
	sort.Slice(tables, func(i, j int) bool {
		ni, _ := TableNumber(tables[i].Name)
		nj, _ := TableNumber(tables[j].Name)
		return ni < nj
	})
	return tables, nil
}

// Log records an item with the Logger. Arguments are handled as
// with fmt.Println.
func (s *LocalStore) Log(v ...interface{}) {
	s.Logger.Println(v...)
}
