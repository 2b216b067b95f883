package chart

import (
	"fmt"
	"sync"
	"time"

	"github.com/AngelCh415/FUNNEL_GO/internal/models"
)

// DefaultDismissDelay is how long the hover popup survives after the
// pointer leaves the chart or the popup.
const DefaultDismissDelay = 300 * time.Millisecond

// popupLift is the gap between the top of the plot and the popup anchor.
const popupLift = 10

type Mode int

const (
	ModeIdle Mode = iota
	ModeHovering
	ModePinned
)

func (m Mode) String() string {
	switch m {
	case ModeHovering:
		return "hovering"
	case ModePinned:
		return "pinned"
	default:
		return "idle"
	}
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*m = ModeIdle
	case "hovering":
		*m = ModeHovering
	case "pinned":
		*m = ModePinned
	default:
		return fmt.Errorf("chart: unknown mode %q", b)
	}
	return nil
}

type PopupKind int

const (
	PopupHidden PopupKind = iota
	// PopupHover is the transient digital-channels popup above the guide line.
	PopupHover
	// PopupTooltip is the detail tooltip of a pinned point.
	PopupTooltip
)

func (k PopupKind) String() string {
	switch k {
	case PopupHover:
		return "hover"
	case PopupTooltip:
		return "tooltip"
	default:
		return "hidden"
	}
}

func (k PopupKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *PopupKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "hidden":
		*k = PopupHidden
	case "hover":
		*k = PopupHover
	case "tooltip":
		*k = PopupTooltip
	default:
		return fmt.Errorf("chart: unknown popup kind %q", b)
	}
	return nil
}

type Popup struct {
	Kind       PopupKind `json:"kind"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	StageIndex int       `json:"stageIndex"`
	Stage      string    `json:"stage,omitempty"`
}

// State is a snapshot of the interaction state.
type State struct {
	Mode           Mode    `json:"mode"`
	StageIndex     int     `json:"stageIndex"`
	GuideX         float64 `json:"guideX"`
	HasGuide       bool    `json:"hasGuide"`
	Pin            *Point  `json:"pin,omitempty"`
	Popup          Popup   `json:"popup"`
	DismissPending bool    `json:"dismissPending"`
	Disposed       bool    `json:"disposed"`
}

// DetailsRequest is what ViewDetails returns when the user asks for the
// full breakdown.
type DetailsRequest struct {
	StageIndex int    `json:"stageIndex"`
	Stage      string `json:"stage"`
	ChannelID  string `json:"channelId"`
	Channel    string `json:"channel"`
}

type Options struct {
	DismissDelay time.Duration
	Scheduler    Scheduler
}

// Engine is the hover / pin / popup state machine of one chart.
//
//	idle --move in plot--> hovering --click point--> pinned
//	hovering --leave, dismiss delay--> idle
//	pinned --click background--> idle
//	any --view details--> idle
//
// Moves, leaves and popup events are ignored while pinned.
type Engine struct {
	mu      sync.Mutex
	geom    *Geometry
	dismiss *Debouncer

	mode     Mode
	stage    int
	pin      *Point
	popup    PopupKind
	disposed bool
}

func NewEngine(geom *Geometry, opts Options) *Engine {
	delay := opts.DismissDelay
	if delay <= 0 {
		delay = DefaultDismissDelay
	}
	return &Engine{
		geom:    geom,
		dismiss: NewDebouncer(opts.Scheduler, delay),
		stage:   -1,
	}
}

// SetGeometry swaps the plotted data, e.g. after a period or filter change.
// A pin on a series that is no longer visible is dropped.
func (e *Engine) SetGeometry(g *Geometry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.geom = g
	if e.disposed {
		return
	}
	if e.pin != nil {
		p, ok := g.PointAt(e.pin.ChannelID, e.pin.StageIndex)
		if !ok {
			e.resetLocked()
			return
		}
		e.pin = &p
		return
	}
	if e.stage >= len(g.Stages()) {
		e.resetLocked()
	} else if e.mode == ModeHovering && !g.HasChannel(models.GroupDigital) {
		e.popup = PopupHidden
	}
}

func (e *Engine) Geometry() *Geometry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.geom
}

// PointerMove handles a pointer position in chart pixels.
func (e *Engine) PointerMove(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || e.mode == ModePinned || e.geom.Empty() {
		return
	}
	if !e.geom.InPlot(x, y) {
		// armed once; later moves outside the plot do not push it back
		if !e.dismiss.Pending() {
			e.scheduleDismissLocked()
		}
		return
	}
	e.dismiss.Cancel()
	e.mode = ModeHovering
	e.stage = e.geom.NearestStage(x)
	e.popup = PopupHidden
	// the hover popup lists digital sub-channels, so it needs that series
	if e.geom.HasChannel(models.GroupDigital) {
		e.popup = PopupHover
	}
}

// PointerLeave is the pointer leaving the chart surface.
func (e *Engine) PointerLeave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || e.mode == ModePinned {
		return
	}
	e.scheduleDismissLocked()
}

// PopupEnter keeps the hover popup open while the pointer is over it.
func (e *Engine) PopupEnter() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || e.mode == ModePinned {
		return
	}
	e.dismiss.Cancel()
}

func (e *Engine) PopupLeave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || e.mode == ModePinned {
		return
	}
	e.scheduleDismissLocked()
}

// Click hit-tests a click. A point pins it; anything else is a background click.
func (e *Engine) Click(x, y float64) (Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || e.geom.Empty() {
		return Point{}, false
	}
	if p, ok := e.geom.HitPoint(x, y); ok {
		e.pinLocked(p)
		return p, true
	}
	e.backgroundLocked()
	return Point{}, false
}

// ClickPoint pins the point of a channel at a stage.
func (e *Engine) ClickPoint(channelID string, stage int) (Point, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return Point{}, false
	}
	p, ok := e.geom.PointAt(channelID, stage)
	if !ok {
		return Point{}, false
	}
	e.pinLocked(p)
	return p, true
}

func (e *Engine) ClickBackground() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.backgroundLocked()
}

// ViewDetails clears every interaction state and returns what was showing.
// It does nothing unless a popup or tooltip is showing.
func (e *Engine) ViewDetails() (DetailsRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || e.popup == PopupHidden || e.stage < 0 {
		return DetailsRequest{}, false
	}
	req := DetailsRequest{StageIndex: e.stage, Stage: e.geom.Stages()[e.stage]}
	if e.pin != nil {
		req.ChannelID, req.Channel = e.pin.ChannelID, e.pin.Channel
	} else {
		g, _ := models.LookupGroup(models.GroupDigital)
		req.ChannelID, req.Channel = g.ID, g.Name
	}
	e.resetLocked()
	return req, true
}

// Dispose cancels the pending dismissal; the engine ignores later events.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dismiss.Close()
	e.disposed = true
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	st := State{
		Mode:           e.mode,
		StageIndex:     e.stage,
		DismissPending: e.dismiss.Pending(),
		Disposed:       e.disposed,
		Popup:          Popup{Kind: e.popup, StageIndex: e.stage},
	}
	if e.stage >= 0 && e.stage < len(e.geom.Stages()) {
		st.HasGuide = true
		st.GuideX = e.geom.X(e.stage)
		st.Popup.Stage = e.geom.Stages()[e.stage]
	}
	if e.pin != nil {
		p := *e.pin
		st.Pin = &p
	}
	switch e.popup {
	case PopupHover:
		st.Popup.X = st.GuideX
		st.Popup.Y = e.geom.Layout().Padding.Top - popupLift
	case PopupTooltip:
		st.Popup.X, st.Popup.Y = e.pin.X, e.pin.Y
	}
	return st
}

func (e *Engine) pinLocked(p Point) {
	e.dismiss.Cancel()
	e.mode = ModePinned
	e.pin = &p
	e.stage = p.StageIndex
	e.popup = PopupTooltip
}

func (e *Engine) backgroundLocked() {
	if e.mode == ModeIdle {
		return
	}
	e.dismiss.Cancel()
	e.resetLocked()
}

func (e *Engine) scheduleDismissLocked() {
	if e.mode == ModeIdle && e.popup == PopupHidden {
		return
	}
	e.dismiss.Schedule(e.fireDismiss)
}

func (e *Engine) fireDismiss(token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || !e.dismiss.Claim(token) || e.mode == ModePinned {
		return
	}
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.dismiss.Cancel()
	e.mode = ModeIdle
	e.stage = -1
	e.pin = nil
	e.popup = PopupHidden
}
