// Copyright 2019 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

package glyphpipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"rescribe.xyz/glyphpipeline/ident"
	"rescribe.xyz/glyphpipeline/profile"
)

const maxticks = 40
const barwidth = 20
const graphheight = 768

// createLine creates a horizontal line with a particular y value for
// a graph
func createLine(xvalues []float64, y float64, c drawing.Color) chart.ContinuousSeries {
	var yvalues []float64
	for range xvalues {
		yvalues = append(yvalues, y)
	}
	return chart.ContinuousSeries{
		XValues: xvalues,
		YValues: yvalues,
		Style: chart.Style{
			StrokeColor: c,
		},
	}
}

// GraphLines creates a bar graph of the number of glyphs found on
// each line of a table, which makes lines where segmentation went
// wrong easy to spot
func GraphLines(t ident.TableSummary, title string, w io.Writer) error {
	if t.MaxLine < 1 {
		return errors.New("No lines to graph")
	}

	var bars []chart.Value
	max := 0
	for l := 1; l <= t.MaxLine; l++ {
		n := t.MaxGlyph[l]
		if n > max {
			max = n
		}
		bars = append(bars, chart.Value{Value: float64(n), Label: fmt.Sprintf("%d", l)})
	}

	width := len(bars)*(barwidth+10) + 200
	if width < 400 {
		width = 400
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   graphheight,
		BarWidth: barwidth,
		Background: chart.Style{
			Padding: chart.Box{
				Top: 40,
			},
		},
		YAxis: chart.YAxis{
			Name:  "Glyphs",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max + 1)},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}

// GraphProfile creates a graph of a projection profile, with a line
// marking the threshold above which values are foreground
func GraphProfile(p profile.Profile, threshold int, title string, w io.Writer) error {
	if len(p) < 2 {
		return errors.New("Not enough values in profile")
	}

	var xvalues, yvalues []float64
	var ticks []chart.Tick
	tickevery := len(p) / maxticks
	if tickevery < 1 {
		tickevery = 1
	}
	for i, v := range p {
		xvalues = append(xvalues, float64(i))
		yvalues = append(yvalues, float64(v))
		if i%tickevery == 0 {
			ticks = append(ticks, chart.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i)})
		}
	}

	mainSeries := chart.ContinuousSeries{
		Style: chart.Style{
			StrokeColor: chart.ColorBlue,
			FillColor:   chart.ColorAlternateBlue,
		},
		XValues: xvalues,
		YValues: yvalues,
	}
	thresholdSeries := createLine(xvalues, float64(threshold), chart.ColorRed)

	max := p.Max()
	if max <= threshold {
		max = threshold + 1
	}

	graph := chart.Chart{
		Title:  title,
		Width:  3840,
		Height: graphheight,
		XAxis: chart.XAxis{
			Name:  "Position",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(p) - 1)},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Foreground pixels",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max)},
		},
		Series: []chart.Series{
			mainSeries,
			thresholdSeries,
		},
	}
	return graph.Render(chart.PNG, w)
}
