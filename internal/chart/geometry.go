package chart

import (
	"math"
	"strconv"

	"github.com/AngelCh415/FUNNEL_GO/internal/models"
)

const gridLines = 6

// stage X positions closer than this count as equally near
const tieEpsilon = 1e-9

type Padding struct {
	Top, Right, Bottom, Left float64
}

// Layout is the pixel frame of the chart.
type Layout struct {
	Width        float64
	Height       float64
	Padding      Padding
	PointRadius  float64
	ActiveRadius float64
	HitRadius    float64
}

func DefaultLayout() Layout {
	return Layout{
		Width:        900,
		Height:       300,
		Padding:      Padding{Top: 20, Right: 40, Bottom: 80, Left: 60},
		PointRadius:  4,
		ActiveRadius: 6,
		HitRadius:    6,
	}
}

func (l Layout) PlotWidth() float64 { return l.Width - l.Padding.Left - l.Padding.Right }
func (l Layout) PlotHeight() float64 { return l.Height - l.Padding.Top - l.Padding.Bottom }

// Geometry maps stage indexes and values to pixels for one set of visible
// series. It is immutable once built.
type Geometry struct {
	layout  Layout
	stages  []string
	series  []models.ChannelSeries
	totals  []float64
	ceiling float64
	step    float64
}

type GridLine struct {
	Value float64 `json:"value"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

func NewGeometry(l Layout, stages []string, series []models.ChannelSeries, totals []float64) *Geometry {
	g := &Geometry{
		layout: l,
		stages: append([]string(nil), stages...),
		series: append([]models.ChannelSeries(nil), series...),
		totals: append([]float64(nil), totals...),
	}
	var maxV float64
	for _, s := range g.series {
		for i := range g.stages {
			maxV = math.Max(maxV, s.ValueAt(i))
		}
	}
	for _, t := range g.totals {
		maxV = math.Max(maxV, t)
	}
	g.ceiling = Ceiling(maxV)
	if n := len(g.stages); n > 1 {
		g.step = l.PlotWidth() / float64(n-1)
	}
	return g
}

// Ceiling rounds max up to a multiple of 100. An all-zero chart still gets
// a 0..100 axis.
func Ceiling(maxValue float64) float64 {
	c := math.Ceil(maxValue/100) * 100
	if c <= 0 {
		return 100
	}
	return c
}

func (g *Geometry) Layout() Layout { return g.layout }
func (g *Geometry) Stages() []string { return g.stages }
func (g *Geometry) Series() []models.ChannelSeries { return g.series }
func (g *Geometry) Totals() []float64 { return g.totals }
func (g *Geometry) Ceiling() float64 { return g.ceiling }

// Empty reports a chart without stages, which renders nothing.
func (g *Geometry) Empty() bool { return len(g.stages) == 0 }

// X is the horizontal pixel of stage i.
func (g *Geometry) X(i int) float64 {
	return g.layout.Padding.Left + float64(i)*g.step
}

// Y is the vertical pixel of a value on the linear 0..ceiling scale.
func (g *Geometry) Y(v float64) float64 {
	ph := g.layout.PlotHeight()
	return g.layout.Padding.Top + ph - (v/g.ceiling)*ph
}

// InPlot reports whether a pointer position lies in the plot area, edges included.
func (g *Geometry) InPlot(x, y float64) bool {
	l := g.layout
	return x >= l.Padding.Left && x <= l.Width-l.Padding.Right &&
		y >= l.Padding.Top && y <= l.Height-l.Padding.Bottom
}

// NearestStage returns the stage whose X is closest to x. On a tie the
// lower index wins. It returns -1 for an empty chart.
func (g *Geometry) NearestStage(x float64) int {
	if g.Empty() {
		return -1
	}
	best := 0
	bestDist := math.Abs(x - g.X(0))
	for i := 1; i < len(g.stages); i++ {
		d := math.Abs(x - g.X(i))
		if d < bestDist-tieEpsilon {
			best, bestDist = i, d
		}
	}
	return best
}

// GridLines are the horizontal rules at ceiling*i/5, bottom first.
func (g *Geometry) GridLines() []GridLine {
	out := make([]GridLine, gridLines)
	for i := range out {
		v := g.ceiling / float64(gridLines-1) * float64(i)
		out[i] = GridLine{Value: v, Y: g.Y(v), Label: formatNumber(math.Floor(v + 0.5))}
	}
	return out
}

// Point is one plotted data point.
type Point struct {
	ChannelID  string  `json:"channelId"`
	Channel    string  `json:"channel"`
	StageIndex int     `json:"stageIndex"`
	Stage      string  `json:"stage"`
	Value      float64 `json:"value"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// PointAt builds the point of a series at a stage. Missing values plot as 0.
func (g *Geometry) PointAt(channelID string, stage int) (Point, bool) {
	if stage < 0 || stage >= len(g.stages) {
		return Point{}, false
	}
	for _, s := range g.series {
		if s.ID != channelID {
			continue
		}
		v := s.ValueAt(stage)
		return Point{
			ChannelID:  s.ID,
			Channel:    s.Name,
			StageIndex: stage,
			Stage:      g.stages[stage],
			Value:      v,
			X:          g.X(stage),
			Y:          g.Y(v),
		}, true
	}
	return Point{}, false
}

// HitPoint finds the point under the pointer within the hit radius. When
// circles overlap the nearest wins, and on equal distance the later series,
// which is drawn on top.
func (g *Geometry) HitPoint(x, y float64) (Point, bool) {
	var (
		best  Point
		found bool
		bestD = g.layout.HitRadius
	)
	for _, s := range g.series {
		for i := range g.stages {
			p, _ := g.PointAt(s.ID, i)
			d := math.Hypot(x-p.X, y-p.Y)
			if d <= bestD {
				best, bestD, found = p, d, true
			}
		}
	}
	return best, found
}

// HasChannel reports whether a channel group is among the visible series.
func (g *Geometry) HasChannel(id string) bool {
	for _, s := range g.series {
		if s.ID == id {
			return true
		}
	}
	return false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
