// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package glyphpipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/segment"
)

// Settings are the tunable values used when segmenting tables
type Settings struct {
	LineThreshold  int
	LineMinWidth   int
	GlyphThreshold int
	GlyphMinWidth  int
	GlyphWidth     int
	Margin         int
	Trim           bool
	Strategy       string
	// Pad is the border of background added around each glyph image
	Pad int
	// Binarise is the Sauvola k value used to binarise greyscale
	// input; 0 means the input must already be binary
	Binarise float64
	Comment  string
	// Workers is the number of tables segmented at once; 0 means one
	// per CPU
	Workers int
}

// DefaultSettings returns the settings used when no settings file
// is found
func DefaultSettings() Settings {
	opts := segment.DefaultOptions()
	return Settings{
		LineThreshold:  opts.LineThreshold,
		LineMinWidth:   opts.LineMinWidth,
		GlyphThreshold: opts.GlyphThreshold,
		GlyphMinWidth:  opts.GlyphMinWidth,
		Strategy:       opts.Columns.Name(),
		Pad:            2,
		Comment:        ident.DefaultComment,
	}
}

// SettingsPath returns where the settings file is looked for
func SettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("Error finding config directory: %v", err)
	}
	return filepath.Join(dir, "glyphpipeline", "settings"), nil
}

// GetSettings reads the settings file, if there is one, over the
// default settings
func GetSettings() (Settings, error) {
	s := DefaultSettings()
	p, err := SettingsPath()
	if err != nil {
		return s, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("Error opening settings file %s: %v", p, err)
	}
	defer f.Close()
	return ParseSettings(f, s)
}

// ParseSettings reads settings over s. Each line is a key and a value
// separated by whitespace, like "margin 2". Blank lines and lines
// starting with # are ignored.
func ParseSettings(r io.Reader, s Settings) (Settings, error) {
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Fields(line)
		key := f[0]
		val := strings.TrimSpace(strings.TrimPrefix(line, key))
		if val == "" {
			return s, fmt.Errorf("Error in settings line %d: no value for %s: %w", n, key, diag.ErrInput)
		}

		var err error
		switch key {
		case "linethreshold":
			s.LineThreshold, err = strconv.Atoi(val)
		case "lineminwidth":
			s.LineMinWidth, err = strconv.Atoi(val)
		case "glyphthreshold":
			s.GlyphThreshold, err = strconv.Atoi(val)
		case "glyphminwidth":
			s.GlyphMinWidth, err = strconv.Atoi(val)
		case "glyphwidth":
			s.GlyphWidth, err = strconv.Atoi(val)
		case "margin":
			s.Margin, err = strconv.Atoi(val)
		case "trim":
			s.Trim, err = strconv.ParseBool(val)
		case "strategy":
			s.Strategy = val
		case "pad":
			s.Pad, err = strconv.Atoi(val)
		case "binarise":
			s.Binarise, err = strconv.ParseFloat(val, 64)
		case "comment":
			s.Comment = val
		case "workers":
			s.Workers, err = strconv.Atoi(val)
		default:
			return s, fmt.Errorf("Error in settings line %d: unknown setting %s: %w", n, key, diag.ErrInput)
		}
		if err != nil {
			return s, fmt.Errorf("Error in settings line %d: bad value for %s: %v: %w", n, key, err, diag.ErrInput)
		}
	}
	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("Error reading settings: %v", err)
	}
	return s, nil
}

// Options returns the segmentation options for the settings
func (s Settings) Options() (segment.Options, error) {
	cols, err := segment.Strategy(s.Strategy)
	if err != nil {
		return segment.Options{}, err
	}
	if s.Pad < 0 || s.Margin < 0 || s.LineMinWidth < 1 || s.GlyphMinWidth < 1 {
		return segment.Options{}, fmt.Errorf("Error in settings: pad and margin must not be negative, and minimum widths must be at least 1: %w", diag.ErrInput)
	}
	return segment.Options{
		LineThreshold:  s.LineThreshold,
		GlyphThreshold: s.GlyphThreshold,
		LineMinWidth:   s.LineMinWidth,
		GlyphMinWidth:  s.GlyphMinWidth,
		Margin:         s.Margin,
		Trim:           s.Trim,
		Columns:        cols,
		GlyphWidth:     s.GlyphWidth,
	}, nil
}
