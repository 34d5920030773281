// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// pipeline is a package used by the glyphpipeline commands, which
// handles the core functionality of segmenting whole tables and
// correcting them, using channels to coordinate jobs. Note that it is
// considered an "internal" package, not intended for external use,
// and no guarantee is made of the stability of any interfaces
// provided.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/preproc"
	"rescribe.xyz/glyphpipeline/raster"
	"rescribe.xyz/glyphpipeline/segment"
)

type Locker interface {
	Lock(table string) (func() error, error)
}

type Writer interface {
	Log(v ...interface{})
	Path(table, name string) string
	SaveStream(table string, stream *ident.Stream) error
	SaveTable(table string, b *raster.Binary) error
	WriteIndex(table, doc string, height int, records []ident.Record, comment string) error
	WriteRenumberReport(table string, records []ident.Record) error
}

type Storer interface {
	Locker
	Writer
	CorrectionLog(table string) (io.WriteCloser, error)
	IndexDoc(table string) (string, error)
	LoadStream(table string, num int, pad int) (*ident.Stream, error)
	LoadTable(table string) (*raster.Binary, error)
	TableDir(table string) string
	WriteSegmentationLog(table string, res segment.Result, t time.Time) (string, error)
}

// Job is a table to be segmented
type Job struct {
	// Path is the table image
	Path string
	// Table is the number of the table
	Table int
	// Doc names the document the table is from, used in the index
	Doc string
}

// Name returns the name the table's output is stored under
func (j Job) Name() string {
	return glyphpipeline.TableName(j.Table)
}

// NewJob creates a job for the table image at path, finding the
// table number from its name. If doc is empty the name of the image
// without its extension is used.
func NewJob(path string, doc string) (Job, error) {
	n, err := glyphpipeline.TableNumber(path)
	if err != nil {
		return Job{}, err
	}
	if doc == "" {
		doc = DocName(path)
	}
	return Job{Path: path, Table: n, Doc: doc}, nil
}

// DocName returns the name of a file without its directory or
// extension, the default document name of a table image
func DocName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Outputs control which optional files are written for a table
type Outputs struct {
	Proof bool
}

// writeOutputs saves a table's stream and everything derived from
// it: the glyph images, manifest, index, renumber report and,
// optionally, the proof sheet
func writeOutputs(store Writer, name, doc string, table *raster.Binary, stream *ident.Stream, s glyphpipeline.Settings, out Outputs) error {
	err := store.SaveStream(name, stream)
	if err != nil {
		return err
	}
	records := stream.Records()
	err = store.WriteIndex(name, doc, table.H, records, s.Comment)
	if err != nil {
		return err
	}
	err = store.WriteRenumberReport(name, records)
	if err != nil {
		return err
	}
	if !out.Proof {
		return nil
	}
	var pdf glyphpipeline.Fpdf
	err = pdf.Setup()
	if err != nil {
		return fmt.Errorf("Error setting up proof for %s: %v", name, err)
	}
	err = pdf.AddTable(name, table, records)
	if err != nil {
		return fmt.Errorf("Error making proof for %s: %v", name, err)
	}
	err = pdf.Save(store.Path(name, glyphpipeline.ProofName))
	if err != nil {
		return fmt.Errorf("Error saving proof for %s: %v", name, err)
	}
	return nil
}

// SegmentTable segments one table image into glyphs and saves the
// results to store. Lines are segmented, then the glyphs of each
// line, then overlaps are resolved and the glyphs cropped, numbered
// and saved, in that order. A table with no content is not an error;
// its output is empty and a warning is sent to run.
func SegmentTable(ctx context.Context, job Job, store Storer, s glyphpipeline.Settings, out Outputs, run *diag.Run) (segment.Result, error) {
	name := job.Name()
	run = run.For(name)

	select {
	case <-ctx.Done():
		return segment.Result{}, ctx.Err()
	default:
	}

	opts, err := s.Options()
	if err != nil {
		return segment.Result{}, err
	}

	unlock, err := store.Lock(name)
	if err != nil {
		return segment.Result{}, err
	}
	defer func() {
		err := unlock()
		if err != nil {
			run.Log(err)
		}
	}()

	run.Log("Loading", job.Path)
	b, err := preproc.Load(job.Path, filepath.Join(store.TableDir(name), "bin"), s.Binarise)
	if err != nil {
		return segment.Result{}, err
	}

	run.Log("Segmenting", job.Path, "with", opts.Columns.Name())
	res := segment.Table(b, job.Table, opts, run)

	stream := ident.FromPieces(job.Table, s.Pad, res.Pieces)
	err = stream.Renumber()
	if err != nil {
		return res, err
	}

	err = store.SaveTable(name, b)
	if err != nil {
		return res, err
	}
	err = writeOutputs(store, name, job.Doc, b, stream, s, out)
	if err != nil {
		return res, err
	}
	logname, err := store.WriteSegmentationLog(name, res, time.Now())
	if err != nil {
		return res, err
	}
	run.Log("Segmented", len(res.Pieces), "glyphs in", len(res.Lines), "lines, see", logname)
	return res, nil
}

// ProcessTables segments a batch of tables, workers at a time, or
// one per CPU if workers is 0. Failures are recorded in run rather
// than stopping the batch. When ctx is done no more tables are
// started, though those in progress are finished. The number of
// tables which were started is returned.
func ProcessTables(ctx context.Context, jobs []Job, store Storer, s glyphpipeline.Settings, out Outputs, workers int, run *diag.Run) int {
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	jobc := make(chan Job)
	go func() {
		defer close(jobc)
		for _, j := range jobs {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobc <- j:
			}
		}
	}()

	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobc {
				mu.Lock()
				started++
				mu.Unlock()
				// in-flight tables are finished even if ctx is done
				_, err := SegmentTable(context.Background(), j, store, s, out, run)
				if err != nil {
					run.For(j.Name()).Fail(err)
				}
			}
		}()
	}
	wg.Wait()

	if ctx.Err() != nil && started < len(jobs) {
		run.Warn(diag.KindCancel, "stopped after starting %d of %d tables: %v", started, len(jobs), ctx.Err())
	}
	return started
}
