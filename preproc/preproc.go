// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

// Package preproc prepares greyscale scans for segmentation, by
// binarising them with Sauvola's algorithm.
package preproc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	sauvola "rescribe.xyz/preproc"

	"rescribe.xyz/glyphpipeline/diag"
	"rescribe.xyz/glyphpipeline/raster"
)

// Binarise binarises the image at path with Sauvola's algorithm,
// using k as the k value, and writes the result into dir. The path
// of the binarised image is returned. If wipe is set, noise at the
// sides of the page is wiped away as well.
func Binarise(path string, dir string, k float64, wipe bool) (string, error) {
	if k <= 0 {
		return "", fmt.Errorf("Error binarising %s: k must be positive, not %g: %w", path, k, diag.ErrInput)
	}
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("Error creating directory %s: %v", dir, err)
	}

	// the binarised image is written next to the one it is made
	// from, so work on a copy in dir
	cp := filepath.Join(dir, filepath.Base(path))
	if cp != path {
		err = copyFile(path, cp)
		if err != nil {
			return "", err
		}
	}

	done, err := sauvola.PreProcMulti(cp, []float64{k}, "binary", 0, wipe, 5, 30, 120, 30)
	if err != nil {
		return "", fmt.Errorf("Error binarising %s: %v: %w", path, err, diag.ErrInput)
	}
	if len(done) != 1 {
		return "", fmt.Errorf("Error binarising %s: expected 1 output, got %d", path, len(done))
	}
	return done[0], nil
}

// Load loads the image at path as a raster, binarising it first into
// dir if k is above 0
func Load(path string, dir string, k float64) (*raster.Binary, error) {
	if k <= 0 {
		return raster.Load(path)
	}
	bin, err := Binarise(path, dir, k, false)
	if err != nil {
		return nil, err
	}
	return raster.Load(bin)
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("Error opening %s: %v: %w", from, err, diag.ErrInput)
	}
	defer in.Close()
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("Error creating %s: %v", to, err)
	}
	_, err = io.Copy(out, in)
	if err != nil {
		out.Close()
		return fmt.Errorf("Error copying %s to %s: %v", from, to, err)
	}
	return out.Close()
}
