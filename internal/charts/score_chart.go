package charts

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/mauv0809/mahjong-league/internal/stats"
	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	width  = 800
	height = 400

	defaultLine = "2e7d32"
	background  = "ffffff"
	textColor   = "333333"
)

// CumulativeScoreChart renders a PNG line chart of a player's running total
// score, one point per game in date order. lineColor is a team color such as
// "#ff0000"; an empty or unparsable color falls back to the default.
func CumulativeScoreChart(playerName, lineColor string, records []stats.Record) ([]byte, error) {
	if len(records) == 0 {
		return renderNoDataPlaceholder(fmt.Sprintf("No games recorded for %s", playerName))
	}

	sorted := make([]stats.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].GameDate.Before(sorted[j].GameDate)
	})

	// The series starts at zero before the first game so a single game
	// still draws a line.
	xValues := make([]float64, len(sorted)+1)
	yValues := make([]float64, len(sorted)+1)
	total := decimal.Zero
	for i, r := range sorted {
		total = total.Add(decimal.NewFromFloat(r.Score))
		xValues[i+1] = float64(i + 1)
		yValues[i+1] = total.InexactFloat64()
	}

	series := chart.ContinuousSeries{
		Name:    playerName,
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: parseColor(lineColor),
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    parseColor(lineColor),
		},
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s: total score", playerName),
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: drawing.ColorFromHex(background),
		},
		XAxis: chart.XAxis{
			Name:           "Game",
			ValueFormatter: func(v interface{}) string { return fmt.Sprintf("%.0f", v) },
			Style:          chart.Style{FontColor: drawing.ColorFromHex(textColor)},
		},
		YAxis: chart.YAxis{
			Name:  "Total score",
			Style: chart.Style{FontColor: drawing.ColorFromHex(textColor)},
			Range: flatRange(yValues),
		},
		Series: []chart.Series{series},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render score chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// flatRange returns a fixed range when every value is equal; the automatic
// range of a flat line has zero height.
func flatRange(values []float64) chart.Range {
	for _, v := range values[1:] {
		if v != values[0] {
			return nil
		}
	}
	return &chart.ContinuousRange{Min: values[0] - 10, Max: values[0] + 10}
}

func parseColor(hex string) drawing.Color {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 && len(hex) != 3 {
		hex = defaultLine
	}
	return drawing.ColorFromHex(hex)
}

func renderNoDataPlaceholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:  width / 2,
		Height: height / 2,
		Background: chart.Style{
			FillColor: drawing.ColorFromHex(background),
		},
		XAxis: chart.XAxis{Style: chart.Hidden()},
		YAxis: chart.YAxis{Style: chart.Hidden()},
		// Render needs one visible series with a usable range.
		Series: []chart.Series{chart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
		}},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFont(chartDefaults.Font)
				r.SetFontColor(drawing.ColorFromHex(textColor))
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render placeholder chart: %w", err)
	}
	return buffer.Bytes(), nil
}
