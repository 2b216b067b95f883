package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/AngelCh415/FUNNEL_GO/internal/models"
)

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// fakeClock fires timers only when the test advances it.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now += d
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			t.f()
		}
	}
}

func (c *fakeClock) live() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func testSeries() []models.ChannelSeries {
	return []models.ChannelSeries{
		{ID: models.GroupDigital, Name: "Digital Marketing", Color: "#8B5CF6", Data: []float64{100, 200, 300}},
		{ID: models.GroupOther, Name: "Other", Color: "#F59E0B", Data: []float64{50, 60, 70}},
	}
}

func testGeometry() *Geometry {
	return NewGeometry(DefaultLayout(), []string{"Engaged with", "Site Visit", "Consented"}, testSeries(), []float64{150, 260, 370})
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	clk := &fakeClock{}
	e := NewEngine(testGeometry(), Options{Scheduler: clk})
	return e, clk
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestCeiling(t *testing.T) {
	cases := []struct {
		max, want float64
	}{
		{0, 100},
		{1, 100},
		{100, 100},
		{101, 200},
		{2020, 2100},
	}
	for _, c := range cases {
		if got := Ceiling(c.max); got != c.want {
			t.Errorf("Ceiling(%v) = %v, want %v", c.max, got, c.want)
		}
	}
}

func TestGeometryScale(t *testing.T) {
	g := testGeometry()
	// totals top out at 370
	if g.Ceiling() != 400 {
		t.Fatalf("ceiling = %v, want 400", g.Ceiling())
	}
	if !near(g.X(0), 60) || !near(g.X(1), 460) || !near(g.X(2), 860) {
		t.Fatalf("x positions = %v %v %v", g.X(0), g.X(1), g.X(2))
	}
	if !near(g.Y(0), 220) || !near(g.Y(400), 20) {
		t.Fatalf("y range = %v..%v", g.Y(0), g.Y(400))
	}

	lines := g.GridLines()
	if len(lines) != 6 {
		t.Fatalf("grid lines = %d, want 6", len(lines))
	}
	wantLabels := []string{"0", "80", "160", "240", "320", "400"}
	for i, gl := range lines {
		if gl.Label != wantLabels[i] {
			t.Errorf("grid %d label = %q, want %q", i, gl.Label, wantLabels[i])
		}
	}
}

func TestNearestStageMidwayPicksLower(t *testing.T) {
	g := testGeometry()
	mid := (g.X(0) + g.X(1)) / 2
	if got := g.NearestStage(mid); got != 0 {
		t.Fatalf("NearestStage(mid 0/1) = %d, want 0", got)
	}
	mid = (g.X(1) + g.X(2)) / 2
	if got := g.NearestStage(mid); got != 1 {
		t.Fatalf("NearestStage(mid 1/2) = %d, want 1", got)
	}
	if got := g.NearestStage(mid + 1); got != 2 {
		t.Fatalf("NearestStage(past mid) = %d, want 2", got)
	}

	// eight stages give a non-integral step
	eight := NewGeometry(DefaultLayout(), models.StageLabels(), nil, nil)
	for i := 0; i < 7; i++ {
		m := (eight.X(i) + eight.X(i+1)) / 2
		if got := eight.NearestStage(m); got != i {
			t.Errorf("eight stages: midway %d/%d = %d", i, i+1, got)
		}
	}
}

func TestGeometryEmpty(t *testing.T) {
	g := NewGeometry(DefaultLayout(), nil, testSeries(), nil)
	if !g.Empty() {
		t.Fatal("expected empty geometry")
	}
	if g.NearestStage(100) != -1 {
		t.Fatal("empty geometry must have no nearest stage")
	}
	e := NewEngine(g, Options{Scheduler: &fakeClock{}})
	e.PointerMove(100, 100)
	if st := e.State(); st.Mode != ModeIdle {
		t.Fatalf("mode = %v, want idle", st.Mode)
	}
	sc := e.Scene()
	if !sc.Empty || len(sc.Series) != 0 || len(sc.Grid) != 0 {
		t.Fatalf("empty scene = %+v", sc)
	}
}

func TestShortSeriesPlotsZero(t *testing.T) {
	series := []models.ChannelSeries{{ID: models.GroupOther, Data: []float64{40}}}
	g := NewGeometry(DefaultLayout(), []string{"A", "B", "C"}, series, nil)
	p, ok := g.PointAt(models.GroupOther, 2)
	if !ok {
		t.Fatal("expected point")
	}
	if p.Value != 0 || !near(p.Y, g.Y(0)) {
		t.Fatalf("padded point = %+v", p)
	}
	if len(g.Series()[0].Data) != 1 {
		t.Fatal("input series must not be modified")
	}
}

func TestHitPoint(t *testing.T) {
	g := testGeometry()
	p, ok := g.HitPoint(g.X(1)+2, g.Y(200)-2)
	if !ok || p.ChannelID != models.GroupDigital || p.StageIndex != 1 || p.Value != 200 {
		t.Fatalf("hit = %+v, %v", p, ok)
	}
	if _, ok := g.HitPoint(g.X(1), g.Y(200)+20); ok {
		t.Fatal("expected miss outside hit radius")
	}
}

func TestHoverShowsPopupAboveGuide(t *testing.T) {
	e, _ := newTestEngine(t)
	e.PointerMove(470, 100)
	st := e.State()
	if st.Mode != ModeHovering || st.StageIndex != 1 {
		t.Fatalf("state = %+v", st)
	}
	if st.Popup.Kind != PopupHover || !near(st.Popup.X, 460) || !near(st.Popup.Y, 10) {
		t.Fatalf("popup = %+v", st.Popup)
	}
	if !st.HasGuide || !near(st.GuideX, 460) {
		t.Fatalf("guide = %v %v", st.HasGuide, st.GuideX)
	}
}

func TestHoverWithoutDigitalHasNoPopup(t *testing.T) {
	g := NewGeometry(DefaultLayout(), []string{"A", "B"}, testSeries()[1:], nil)
	e := NewEngine(g, Options{Scheduler: &fakeClock{}})
	e.PointerMove(100, 100)
	st := e.State()
	if st.Mode != ModeHovering || st.Popup.Kind != PopupHidden {
		t.Fatalf("state = %+v", st)
	}
}

func TestDismissCancelledByHover(t *testing.T) {
	e, clk := newTestEngine(t)
	e.PointerMove(470, 100)
	e.PointerLeave()
	if !e.State().DismissPending {
		t.Fatal("expected pending dismissal")
	}
	clk.Advance(200 * time.Millisecond)
	e.PointerMove(470, 100)
	clk.Advance(200 * time.Millisecond)

	st := e.State()
	if st.Mode != ModeHovering || st.Popup.Kind != PopupHover {
		t.Fatalf("popup hidden after renewed hover: %+v", st)
	}
	if st.DismissPending || clk.live() != 0 {
		t.Fatal("no timer should remain")
	}
}

func TestMovesOutsidePlotDoNotDelayDismissal(t *testing.T) {
	e, clk := newTestEngine(t)
	e.PointerMove(200, 100)
	for i := 0; i < 5; i++ {
		e.PointerMove(5, 5) // in the padding, outside the plot
		clk.Advance(200 * time.Millisecond)
	}
	st := e.State()
	if st.Mode != ModeIdle || st.Popup.Kind != PopupHidden {
		t.Fatalf("popup kept open by moves outside the plot: %+v", st)
	}
	if clk.live() != 0 {
		t.Fatalf("live timers = %d", clk.live())
	}
}

func TestDismissAfterDelay(t *testing.T) {
	e, clk := newTestEngine(t)
	e.PointerMove(470, 100)
	e.PointerMove(470, 290) // below the plot
	clk.Advance(299 * time.Millisecond)
	if e.State().Mode != ModeHovering {
		t.Fatal("dismissed early")
	}
	clk.Advance(time.Millisecond)
	st := e.State()
	if st.Mode != ModeIdle || st.Popup.Kind != PopupHidden || st.HasGuide {
		t.Fatalf("state after delay = %+v", st)
	}
}

func TestPopupEnterKeepsPopup(t *testing.T) {
	e, clk := newTestEngine(t)
	e.PointerMove(470, 100)
	e.PointerLeave()
	clk.Advance(100 * time.Millisecond)
	e.PopupEnter()
	clk.Advance(time.Second)
	if e.State().Popup.Kind != PopupHover {
		t.Fatal("popup dismissed while pointer is over it")
	}
	e.PopupLeave()
	clk.Advance(300 * time.Millisecond)
	if e.State().Popup.Kind != PopupHidden {
		t.Fatal("popup should dismiss after leaving it")
	}
}

func TestSingleLiveTimer(t *testing.T) {
	e, clk := newTestEngine(t)
	e.PointerMove(470, 100)
	e.PointerLeave()
	e.PopupEnter()
	e.PopupLeave()
	e.PointerLeave()
	if clk.live() != 1 {
		t.Fatalf("live timers = %d, want 1", clk.live())
	}
}

func TestPinAndUnpin(t *testing.T) {
	e, clk := newTestEngine(t)
	g := e.Geometry()
	e.PointerMove(g.X(0), 100)

	p, ok := e.Click(g.X(2), g.Y(300))
	if !ok || p.ChannelID != models.GroupDigital || p.StageIndex != 2 {
		t.Fatalf("click = %+v %v", p, ok)
	}
	st := e.State()
	if st.Mode != ModePinned || st.Popup.Kind != PopupTooltip || st.StageIndex != 2 {
		t.Fatalf("pinned state = %+v", st)
	}
	if st.Pin == nil || st.Pin.Value != 300 {
		t.Fatalf("pin = %+v", st.Pin)
	}

	// hover noise is ignored while pinned
	e.PointerMove(g.X(0), 100)
	e.PointerLeave()
	clk.Advance(time.Second)
	if st := e.State(); st.Mode != ModePinned || st.StageIndex != 2 {
		t.Fatalf("pin lost to hover events: %+v", st)
	}

	if _, ok := e.Click(g.X(1), 215); ok {
		t.Fatal("background click must not hit a point")
	}
	st = e.State()
	if st.Mode != ModeIdle || st.Pin != nil || st.HasGuide || st.Popup.Kind != PopupHidden {
		t.Fatalf("after background click = %+v", st)
	}
}

func TestClickPoint(t *testing.T) {
	e, _ := newTestEngine(t)
	if _, ok := e.ClickPoint("unknown", 0); ok {
		t.Fatal("unknown channel pinned")
	}
	p, ok := e.ClickPoint(models.GroupOther, 1)
	if !ok || p.Value != 60 {
		t.Fatalf("click point = %+v %v", p, ok)
	}
	e.ClickBackground()
	if e.State().Mode != ModeIdle {
		t.Fatal("expected idle")
	}
}

func TestViewDetails(t *testing.T) {
	e, _ := newTestEngine(t)

	if _, ok := e.ViewDetails(); ok {
		t.Fatal("view details without a popup")
	}

	e.PointerMove(470, 100)
	req, ok := e.ViewDetails()
	if !ok || req.StageIndex != 1 || req.Stage != "Site Visit" || req.ChannelID != models.GroupDigital {
		t.Fatalf("hover details = %+v %v", req, ok)
	}

	e.ClickPoint(models.GroupOther, 2)
	req, _ = e.ViewDetails()
	if req.ChannelID != models.GroupOther || req.Stage != "Consented" {
		t.Fatalf("pinned details = %+v", req)
	}

	if _, ok := e.ViewDetails(); ok {
		t.Fatal("details offered again after reset")
	}
	if st := e.State(); st.Mode != ModeIdle || st.Popup.Kind != PopupHidden || st.Pin != nil {
		t.Fatalf("state not cleared: %+v", st)
	}
}

func TestDisposeCancelsTimer(t *testing.T) {
	e, clk := newTestEngine(t)
	e.PointerMove(470, 100)
	e.PointerLeave()
	e.Dispose()
	if clk.live() != 0 {
		t.Fatal("dispose left a live timer")
	}
	clk.Advance(time.Second)
	e.PointerMove(60, 100)
	e.ClickPoint(models.GroupDigital, 0)
	st := e.State()
	if !st.Disposed || st.Mode != ModeHovering || st.StageIndex != 1 {
		t.Fatalf("disposed engine changed state: %+v", st)
	}
}

func TestStaleFireIgnored(t *testing.T) {
	e, clk := newTestEngine(t)
	e.PointerMove(470, 100)
	e.PointerLeave()
	stale := clk.timers[0]
	e.PointerMove(470, 100)

	// a timer that raced past Stop still runs its callback
	stale.f()
	if e.State().Mode != ModeHovering {
		t.Fatal("stale dismissal cleared the hover")
	}
}

func TestDebouncerClaim(t *testing.T) {
	clk := &fakeClock{}
	d := NewDebouncer(clk, time.Second)
	var fired []uint64
	claimAndRecord := func(tok uint64) {
		if d.Claim(tok) {
			fired = append(fired, tok)
		}
	}
	first := d.Schedule(claimAndRecord)
	second := d.Schedule(claimAndRecord)
	if first == second {
		t.Fatal("tokens must differ")
	}
	clk.timers[0].f()
	clk.Advance(time.Second)
	if len(fired) != 1 || fired[0] != second {
		t.Fatalf("fired = %v, want [%d]", fired, second)
	}
	if d.Cancel() {
		t.Fatal("nothing should be pending after a claim")
	}
	d.Close()
	if tok := d.Schedule(claimAndRecord); tok != 0 || d.Pending() {
		t.Fatal("closed debouncer accepted a schedule")
	}
}

func TestSetGeometry(t *testing.T) {
	e, _ := newTestEngine(t)
	e.ClickPoint(models.GroupOther, 1)

	// filter keeps the pinned channel: pin survives with new coordinates
	scaled := NewGeometry(DefaultLayout(), []string{"A", "B", "C"}, testSeries(), []float64{15, 26, 37})
	e.SetGeometry(scaled)
	st := e.State()
	if st.Mode != ModePinned || !near(st.Pin.Y, scaled.Y(60)) {
		t.Fatalf("pin after rescale = %+v", st.Pin)
	}

	onlyDigital := NewGeometry(DefaultLayout(), []string{"A", "B", "C"}, testSeries()[:1], nil)
	e.SetGeometry(onlyDigital)
	if st := e.State(); st.Mode != ModeIdle || st.Pin != nil {
		t.Fatalf("pin on hidden channel survived: %+v", st)
	}
}

func TestSceneHighlightsActivePoints(t *testing.T) {
	e, _ := newTestEngine(t)
	e.PointerMove(470, 100)
	sc := e.Scene()
	if len(sc.Series) != 2 || len(sc.Grid) != 6 || sc.Guide == nil {
		t.Fatalf("scene = %+v", sc)
	}
	for _, s := range sc.Series {
		for _, p := range s.Points {
			wantR := 4.0
			if p.StageIndex == 1 {
				wantR = 6
			}
			if p.Radius != wantR {
				t.Errorf("%s stage %d radius = %v, want %v", s.ChannelID, p.StageIndex, p.Radius, wantR)
			}
		}
	}
	if !strings.HasPrefix(sc.Series[0].Path, "M 60.00,") || strings.Count(sc.Series[0].Path, " L ") != 2 {
		t.Fatalf("path = %q", sc.Series[0].Path)
	}
	if got := sc.XLabels[0].Lines; len(got) != 2 || got[0] != "Engaged" || got[1] != "with" {
		t.Fatalf("x label lines = %v", got)
	}
	if sc.Totals[2].Text != "370" {
		t.Fatalf("totals = %+v", sc.Totals)
	}

	e.ClickPoint(models.GroupOther, 0)
	sc = e.Scene()
	active := 0
	for _, s := range sc.Series {
		for _, p := range s.Points {
			if p.Active {
				active++
			}
		}
	}
	if active != 1 {
		t.Fatalf("active points while pinned = %d, want 1", active)
	}
}

func TestRenderExports(t *testing.T) {
	g := testGeometry()
	var svg bytes.Buffer
	if err := RenderSVG(&svg, g, "Recruitment"); err != nil {
		t.Fatalf("svg: %v", err)
	}
	if !strings.Contains(svg.String(), "<svg") {
		t.Fatal("svg output missing root element")
	}
	var png bytes.Buffer
	if err := RenderPNG(&png, g, "Recruitment"); err != nil {
		t.Fatalf("png: %v", err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Fatal("png output missing signature")
	}

	one := NewGeometry(DefaultLayout(), []string{"A"}, testSeries(), nil)
	if err := RenderPNG(&png, one, ""); !errors.Is(err, ErrTooFewStages) {
		t.Fatalf("err = %v, want ErrTooFewStages", err)
	}
}

func TestSystemSchedulerFires(t *testing.T) {
	d := NewDebouncer(nil, 5*time.Millisecond)
	done := make(chan uint64, 1)
	tok := d.Schedule(func(tok uint64) {
		if d.Claim(tok) {
			done <- tok
		}
	})
	select {
	case got := <-done:
		if got != tok {
			t.Fatalf("token = %d, want %d", got, tok)
		}
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestStateJSON(t *testing.T) {
	e, _ := newTestEngine(t)
	e.ClickPoint(models.GroupDigital, 0)
	b, err := json.Marshal(e.State())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"mode":"pinned"`) || !strings.Contains(string(b), `"kind":"tooltip"`) {
		t.Fatalf("state json = %s", b)
	}
	var back State
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Mode != ModePinned || back.Popup.Kind != PopupTooltip {
		t.Fatalf("decoded = %+v", back)
	}
}
