// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"rescribe.xyz/glyphpipeline"
	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
)

// Command is a manual correction to a table's glyphs
type Command struct {
	// Kind is one of "join", "split" or "delete"
	Kind string
	IDs  []ident.ID
}

func (c Command) String() string {
	var ids []string
	for _, id := range c.IDs {
		ids = append(ids, id.String())
	}
	return c.Kind + " " + strings.Join(ids, " ")
}

var commandArgs = map[string]int{"join": 2, "split": 1, "delete": 1}

// ParseCommand parses a correction like "join t001_l002g003
// t001_l002g004", "split t001_l002g005" or "delete t001_l003g001".
// Glyphs may also be given by their file names.
func ParseCommand(s string) (Command, error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return Command{}, fmt.Errorf("Error parsing correction: empty command: %w", diag.ErrInput)
	}
	n, ok := commandArgs[f[0]]
	if !ok {
		return Command{}, fmt.Errorf("Error parsing correction %q: unknown command %s: %w", s, f[0], diag.ErrInput)
	}
	if len(f)-1 != n {
		return Command{}, fmt.Errorf("Error parsing correction %q: %s needs %d glyphs: %w", s, f[0], n, diag.ErrInput)
	}
	c := Command{Kind: f[0]}
	for _, name := range f[1:] {
		id, _, err := ident.ParseID(name)
		if err != nil {
			return Command{}, fmt.Errorf("Error parsing correction %q: %w", s, err)
		}
		c.IDs = append(c.IDs, id)
	}
	return c, nil
}

// ParseCommands reads corrections, one per line. Blank lines and
// lines starting with # are ignored.
func ParseCommands(r io.Reader) ([]Command, error) {
	var cmds []Command
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := ParseCommand(line)
		if err != nil {
			return nil, fmt.Errorf("Line %d: %w", n, err)
		}
		cmds = append(cmds, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("Error reading corrections: %v", err)
	}
	return cmds, nil
}

// apply makes a single correction to a stream and renumbers it
func apply(stream *ident.Stream, c Command, run *diag.Run) error {
	for _, id := range c.IDs {
		if id.Table != stream.Table {
			return fmt.Errorf("Error applying %s: %s is not in table %d: %w", c, id, stream.Table, diag.ErrOrdering)
		}
	}
	var err error
	switch c.Kind {
	case "join":
		_, err = stream.Join(c.IDs[0], c.IDs[1], run)
	case "split":
		_, err = stream.SplitCut(c.IDs[0], run)
	case "delete":
		err = stream.Delete(c.IDs[0])
	default:
		err = fmt.Errorf("unknown command %s: %w", c.Kind, diag.ErrInput)
	}
	if err != nil {
		return fmt.Errorf("Error applying %s: %w", c, err)
	}
	return stream.Renumber()
}

// Correct applies corrections to a saved table, in order. The stream
// is renumbered after each one, so each command refers to the glyphs
// as numbered after the command before it. If a command fails, the
// corrections before it are still saved, and the error is returned.
// Each correction made is recorded in the table's correction log.
func Correct(store Storer, num int, cmds []Command, s glyphpipeline.Settings, out Outputs, run *diag.Run) error {
	name := glyphpipeline.TableName(num)
	run = run.For(name)

	unlock, err := store.Lock(name)
	if err != nil {
		return err
	}
	defer func() {
		err := unlock()
		if err != nil {
			run.Log(err)
		}
	}()

	stream, err := store.LoadStream(name, num, s.Pad)
	if err != nil {
		return err
	}
	table, err := store.LoadTable(name)
	if err != nil {
		return err
	}
	doc, err := store.IndexDoc(name)
	if err != nil {
		return err
	}

	clog, err := store.CorrectionLog(name)
	if err != nil {
		return err
	}
	defer clog.Close()
	stream.SetLog(clog)

	var applyErr error
	done := 0
	for _, c := range cmds {
		applyErr = apply(stream, c, run)
		if applyErr != nil {
			break
		}
		run.Log("Applied", c)
		done++
	}
	if done == 0 {
		return applyErr
	}

	err = writeOutputs(store, name, doc, table, stream, s, out)
	if err != nil {
		return err
	}
	return applyErr
}
