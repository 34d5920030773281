// Copyright 2021 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rescribe.xyz/glyphpipeline/diag"
	_ "rescribe.xyz/glyphpipeline/raster"
)

var imageSuffixes = map[string]bool{
	".png":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".gif":  true,
	".jpg":  true,
	".jpeg": true,
}

type fileWalk chan string

// Walk sends the path of all files to the channel, with the exception of
// any file which starts with "."
func (f fileWalk) Walk(path string, info os.FileInfo, err error) error {
	if err != nil {
		return err
	}
	// skip files starting with . to prevent automatically generated
	// files like .DS_Store getting in the way
	if strings.HasPrefix(filepath.Base(path), ".") {
		if info.IsDir() && path != "." {
			return filepath.SkipDir
		}
		return nil
	}
	if !info.IsDir() {
		f <- path
	}
	return nil
}

// imagePaths returns the paths of all image files in a directory,
// recursively, skipping dotfiles
func imagePaths(ctx context.Context, dir string) ([]string, error) {
	checker := make(fileWalk)
	errc := make(chan error, 1)
	go func() {
		errc <- filepath.Walk(dir, checker.Walk)
		close(checker)
	}()

	var paths []string
	for path := range checker {
		if imageSuffixes[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
	}
	err := <-errc
	if err != nil {
		return nil, fmt.Errorf("Failed to read directory %s: %v: %w", dir, err, diag.ErrInput)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return paths, nil
}

// CheckImages checks that all image files in a directory can be
// decoded (skipping dotfiles)
func CheckImages(ctx context.Context, dir string) error {
	paths, err := imagePaths(ctx, dir)
	if err != nil {
		return err
	}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("Opening image %s failed: %v: %w", path, err, diag.ErrInput)
		}
		_, _, err = image.Decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("Decoding image %s failed: %v: %w", path, err, diag.ErrInput)
		}
	}

	if len(paths) == 0 {
		return fmt.Errorf("No images found: %w", diag.ErrInput)
	}

	return nil
}

// FindTables creates a job for each table image in a directory,
// ordered by table number. Each table must have a different number.
func FindTables(ctx context.Context, dir string, doc string) ([]Job, error) {
	paths, err := imagePaths(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("No images found in %s: %w", dir, diag.ErrInput)
	}

	var jobs []Job
	seen := make(map[int]string)
	for _, p := range paths {
		j, err := NewJob(p, doc)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[j.Table]; ok {
			return nil, fmt.Errorf("Error: %s and %s are both table %d: %w", prev, p, j.Table, diag.ErrInput)
		}
		seen[j.Table] = p
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].Table < jobs[k].Table })
	return jobs, nil
}
