package chart

import (
	"errors"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrTooFewStages is returned when a static image is requested for fewer
// than two stages; go-chart cannot draw a range of one point.
var ErrTooFewStages = errors.New("chart: at least two stages are needed to export")

// RenderPNG writes the geometry as a PNG line chart.
func RenderPNG(w io.Writer, g *Geometry, title string) error {
	return render(w, g, title, gochart.PNG)
}

// RenderSVG writes the geometry as an SVG line chart.
func RenderSVG(w io.Writer, g *Geometry, title string) error {
	return render(w, g, title, gochart.SVG)
}

func render(w io.Writer, g *Geometry, title string, rp gochart.RendererProvider) error {
	ch, err := staticChart(g, title)
	if err != nil {
		return err
	}
	return ch.Render(rp, w)
}

// staticChart uses the interactive ceiling and grid values so both
// renditions share one axis.
func staticChart(g *Geometry, title string) (gochart.Chart, error) {
	stages := g.Stages()
	if len(stages) < 2 {
		return gochart.Chart{}, ErrTooFewStages
	}
	l := g.Layout()

	xs := make([]float64, len(stages))
	xTicks := make([]gochart.Tick, len(stages))
	for i, s := range stages {
		xs[i] = float64(i)
		xTicks[i] = gochart.Tick{Value: float64(i), Label: s}
	}
	var yTicks []gochart.Tick
	for _, gl := range g.GridLines() {
		yTicks = append(yTicks, gochart.Tick{Value: gl.Value, Label: gl.Label})
	}

	var series []gochart.Series
	for _, s := range g.Series() {
		ys := make([]float64, len(stages))
		for i := range stages {
			ys[i] = s.ValueAt(i)
		}
		col := hexColor(s.Color)
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    l.PointRadius,
			},
		})
	}
	if len(series) == 0 {
		// go-chart refuses to render without series; draw the flat totals instead
		series = append(series, gochart.ContinuousSeries{
			Name:    "Total",
			XValues: xs,
			YValues: make([]float64, len(stages)),
			Style:   gochart.Style{StrokeColor: gochart.ColorAlternateGray, StrokeWidth: 1},
		})
	}

	ch := gochart.Chart{
		Title:  title,
		Width:  int(l.Width),
		Height: int(l.Height),
		Background: gochart.Style{Padding: gochart.Box{
			Top:    int(l.Padding.Top),
			Right:  int(l.Padding.Right),
			Bottom: int(l.Padding.Bottom),
			Left:   int(l.Padding.Left),
		}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(len(stages) - 1)},
			Ticks: xTicks,
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: g.Ceiling()},
			Ticks: yTicks,
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch, nil
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
