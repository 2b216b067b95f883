package chart

import (
	"strconv"
	"strings"
)

// Scene is everything a surface needs to draw one frame of the chart.
type Scene struct {
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Empty   bool          `json:"empty"`
	Ceiling float64       `json:"ceiling"`
	Grid    []GridLine    `json:"grid"`
	Guide   *GuideLine    `json:"guide,omitempty"`
	Series  []SeriesPath  `json:"series"`
	XLabels []AxisLabel   `json:"xLabels"`
	Totals  []TotalLabel  `json:"totals"`
	Legend  []LegendEntry `json:"legend"`
	State   State         `json:"state"`
}

type GuideLine struct {
	X      float64 `json:"x"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

type SeriesPath struct {
	ChannelID string       `json:"channelId"`
	Color     string       `json:"color"`
	Path      string       `json:"path"`
	Points    []ScenePoint `json:"points"`
}

type ScenePoint struct {
	Point
	Radius float64 `json:"radius"`
	Active bool    `json:"active"`
}

// AxisLabel is a stage name under the axis, split on its first space into
// two lines so long labels fit.
type AxisLabel struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Lines []string `json:"lines"`
}

type TotalLabel struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
}

type LegendEntry struct {
	ChannelID string `json:"channelId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
}

const (
	xLabelOffset = 20
	totalsOffset = 60
)

// Scene renders the current geometry and interaction state.
func (e *Engine) Scene() Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return buildScene(e.geom, e.stateLocked())
}

func buildScene(g *Geometry, st State) Scene {
	l := g.Layout()
	sc := Scene{
		Width:   l.Width,
		Height:  l.Height,
		Empty:   g.Empty(),
		Ceiling: g.Ceiling(),
		State:   st,
	}
	for _, s := range g.Series() {
		sc.Legend = append(sc.Legend, LegendEntry{ChannelID: s.ID, Name: s.Name, Color: s.Color})
	}
	if sc.Empty {
		return sc
	}
	sc.Grid = g.GridLines()
	if st.HasGuide {
		sc.Guide = &GuideLine{X: st.GuideX, Top: l.Padding.Top, Bottom: l.Height - l.Padding.Bottom}
	}

	for _, s := range g.Series() {
		sp := SeriesPath{ChannelID: s.ID, Color: s.Color}
		var b strings.Builder
		for i := range g.Stages() {
			p, _ := g.PointAt(s.ID, i)
			if i == 0 {
				b.WriteString("M ")
			} else {
				b.WriteString(" L ")
			}
			b.WriteString(coord(p.X))
			b.WriteByte(',')
			b.WriteString(coord(p.Y))

			active := isActive(st, p)
			r := l.PointRadius
			if active {
				r = l.ActiveRadius
			}
			sp.Points = append(sp.Points, ScenePoint{Point: p, Radius: r, Active: active})
		}
		sp.Path = b.String()
		sc.Series = append(sc.Series, sp)
	}

	axisY := l.Height - l.Padding.Bottom
	for i, name := range g.Stages() {
		x := g.X(i)
		sc.XLabels = append(sc.XLabels, AxisLabel{X: x, Y: axisY + xLabelOffset, Lines: splitLabel(name)})
		v := valueAt(g.Totals(), i)
		sc.Totals = append(sc.Totals, TotalLabel{X: x, Y: axisY + totalsOffset, Value: v, Text: formatNumber(v)})
	}
	return sc
}

// isActive marks the points drawn enlarged: every point on the pinned or
// hovered stage, or only the pinned point itself while pinned.
func isActive(st State, p Point) bool {
	if st.Pin != nil {
		return st.Pin.ChannelID == p.ChannelID && st.Pin.StageIndex == p.StageIndex
	}
	return st.Mode == ModeHovering && st.StageIndex == p.StageIndex
}

func splitLabel(s string) []string {
	first, rest, ok := strings.Cut(s, " ")
	if !ok {
		return []string{s}
	}
	return []string{first, rest}
}

func valueAt(vs []float64, i int) float64 {
	if i < len(vs) {
		return vs[i]
	}
	return 0
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
