// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package glyphpipeline

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/nickjwhite/gofpdf"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/raster"
)

const pageWidth = 5 // pageWidth in inches

// pxToPt converts a pixel value into a pt value (72 pts per inch)
// This uses pageWidth to determine the appropriate value
func pxToPt(i int) float64 {
	return float64(i) / pageWidth
}

// Fpdf builds a proof sheet: each table image with the box of every
// glyph found outlined and labelled with its identity, for checking
// segmentation by eye
type Fpdf struct {
	fpdf *gofpdf.Fpdf
}

// Setup creates a new PDF with appropriate settings and fonts
func (p *Fpdf) Setup() error {
	p.fpdf = gofpdf.New("P", "pt", "A4", "")
	p.fpdf.SetFont("Helvetica", "", 4)
	p.fpdf.SetAutoPageBreak(false, float64(0))
	return p.fpdf.Error()
}

// AddTable adds a page to the pdf with a table image and the boxes
// of its glyphs
func (p *Fpdf) AddTable(name string, b *raster.Binary, records []ident.Record) error {
	if b.W == 0 || b.H == 0 {
		return fmt.Errorf("Could not add %s to pdf: empty image", name)
	}
	var buf bytes.Buffer
	err := png.Encode(&buf, b.Gray())
	if err != nil {
		return fmt.Errorf("Could not encode image %s: %v", name, err)
	}

	p.fpdf.AddPageFormat("P", gofpdf.SizeType{Wd: pxToPt(b.W), Ht: pxToPt(b.H)})
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	_ = p.fpdf.RegisterImageOptionsReader(name, opts, &buf)
	p.fpdf.ImageOptions(name, 0, 0, pxToPt(b.W), pxToPt(b.H), false, opts, 0, "")

	p.fpdf.SetDrawColor(255, 0, 0)
	p.fpdf.SetTextColor(0, 0, 255)
	p.fpdf.SetLineWidth(0.2)
	for _, r := range records {
		x, y := pxToPt(r.Box.Min.X), pxToPt(r.Box.Min.Y)
		p.fpdf.Rect(x, y, pxToPt(r.Box.Dx()), pxToPt(r.Box.Dy()), "D")
		p.fpdf.Text(x, y-0.5, fmt.Sprintf("%d.%d", r.ID.Line, r.ID.Glyph))
	}
	return p.fpdf.Error()
}

// Save saves the PDF to the file at path
func (p *Fpdf) Save(path string) error {
	return p.fpdf.OutputFileAndClose(path)
}
