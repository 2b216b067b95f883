// Package dashboard drives one viewer's dashboard: period selection,
// channel filters, the interactive chart and the breakdown modal.
package dashboard

import (
	"log/slog"
	"sync"
	"time"

	"github.com/AngelCh415/FUNNEL_GO/internal/chart"
	"github.com/AngelCh415/FUNNEL_GO/internal/errs"
	"github.com/AngelCh415/FUNNEL_GO/internal/filter"
	"github.com/AngelCh415/FUNNEL_GO/internal/models"
)

type EventType string

const (
	EventPeriodChanged    EventType = "period.changed"
	EventFilterToggled    EventType = "filter.toggled"
	EventDetailsRequested EventType = "details.requested"
	EventModalOpened      EventType = "modal.opened"
	EventModalClosed      EventType = "modal.closed"
)

// Event is what the session tells the presentation shell.
type Event struct {
	Type    EventType             `json:"type"`
	Session string                `json:"session"`
	Period  string                `json:"period,omitempty"`
	Filter  string                `json:"filter,omitempty"`
	Checked bool                  `json:"checked,omitempty"`
	Details *chart.DetailsRequest `json:"details,omitempty"`
	At      time.Time             `json:"at"`
}

type Listener func(Event)

type Options struct {
	Layout       chart.Layout
	DismissDelay time.Duration
	Scheduler    chart.Scheduler
	Listener     Listener
	Logger       *slog.Logger
}

// Modal is the full digital breakdown opened from "View Details".
type Modal struct {
	Open       bool                         `json:"open"`
	Title      string                       `json:"title,omitempty"`
	Period     string                       `json:"period,omitempty"`
	Stage      string                       `json:"stage,omitempty"`
	StageIndex int                          `json:"stageIndex"`
	Channel    string                       `json:"channel,omitempty"`
	Entries    []models.DigitalChannelEntry `json:"entries,omitempty"`
}

type Session struct {
	mu       sync.Mutex
	id       string
	res      models.Result
	layout   chart.Layout
	period   string
	filters  []models.FilterOption
	modal    Modal
	engine   *chart.Engine
	listener Listener
	log      *slog.Logger
	created  time.Time
	closed   bool
}

// NewSession opens on study-to-date with the default filter selection.
func NewSession(id string, res models.Result, opts Options) *Session {
	if opts.Layout.Width == 0 {
		opts.Layout = chart.DefaultLayout()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	filters := res.FilterOptions
	if len(filters) == 0 {
		filters = models.FilterCatalog()
	}
	s := &Session{
		id:       id,
		res:      res,
		layout:   opts.Layout,
		period:   models.PeriodStudyToDate,
		filters:  append([]models.FilterOption(nil), filters...),
		modal:    Modal{StageIndex: -1},
		listener: opts.Listener,
		log:      opts.Logger.With(slog.String("session", id)),
		created:  time.Now(),
	}
	s.engine = chart.NewEngine(s.geometryLocked(), chart.Options{
		DismissDelay: opts.DismissDelay,
		Scheduler:    opts.Scheduler,
	})
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Created() time.Time { return s.created }

// Period is the selected period id.
func (s *Session) Period() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

func (s *Session) Filters() []models.FilterOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FilterOption(nil), s.filters...)
}

func (s *Session) Engine() *chart.Engine { return s.engine }

// SelectPeriod switches the viewed period. An open modal follows the new
// period's numbers.
func (s *Session) SelectPeriod(id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.NewValidationError("session closed")
	}
	if _, ok := models.LookupPeriod(id); !ok {
		s.mu.Unlock()
		return errs.NewValidationError("unknown period " + id)
	}
	if _, ok := s.res.Periods[id]; !ok {
		s.mu.Unlock()
		return errs.NewNotFoundError("no data for period " + id)
	}
	if id == s.period {
		s.mu.Unlock()
		return nil
	}
	s.period = id
	s.engine.SetGeometry(s.geometryLocked())
	if s.modal.Open {
		s.modal.Period = id
		s.modal.Entries, _ = s.res.DigitalBreakdown.ForStage(id, s.modal.Stage)
	}
	ev := s.eventLocked(EventPeriodChanged)
	ev.Period = id
	s.mu.Unlock()

	s.log.Debug("period changed", slog.String("period", id))
	s.emit(ev)
	return nil
}

// ToggleFilter checks or unchecks one dropdown option.
func (s *Session) ToggleFilter(id string, checked bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errs.NewValidationError("session closed")
	}
	next, err := filter.Toggle(s.filters, id, checked)
	if err != nil {
		s.mu.Unlock()
		return errs.NewValidationError(err.Error())
	}
	s.filters = next
	s.engine.SetGeometry(s.geometryLocked())
	ev := s.eventLocked(EventFilterToggled)
	ev.Filter, ev.Checked = id, checked
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// ViewDetails resolves the popup's "View Details" action into the modal.
func (s *Session) ViewDetails() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	req, ok := s.engine.ViewDetails()
	if !ok {
		s.mu.Unlock()
		return false
	}
	entries, _ := s.res.DigitalBreakdown.ForStage(s.period, req.Stage)
	s.modal = Modal{
		Open:       true,
		Title:      s.res.DigitalBreakdown.Title,
		Period:     s.period,
		Stage:      req.Stage,
		StageIndex: req.StageIndex,
		Channel:    req.Channel,
		Entries:    entries,
	}
	requested := s.eventLocked(EventDetailsRequested)
	requested.Details = &req
	requested.Period = s.period
	opened := s.eventLocked(EventModalOpened)
	opened.Period = s.period
	s.mu.Unlock()

	s.log.Info("details requested",
		slog.String("stage", req.Stage),
		slog.String("channel", req.ChannelID))
	s.emit(requested)
	s.emit(opened)
	return true
}

// CloseModal reports whether a modal was open.
func (s *Session) CloseModal() bool {
	s.mu.Lock()
	if !s.modal.Open {
		s.mu.Unlock()
		return false
	}
	s.modal = Modal{StageIndex: -1}
	ev := s.eventLocked(EventModalClosed)
	s.mu.Unlock()

	s.emit(ev)
	return true
}

func (s *Session) PointerMove(x, y float64) { s.engine.PointerMove(x, y) }
func (s *Session) PointerLeave() { s.engine.PointerLeave() }
func (s *Session) PopupEnter() { s.engine.PopupEnter() }
func (s *Session) PopupLeave() { s.engine.PopupLeave() }
func (s *Session) Click(x, y float64) (chart.Point, bool) { return s.engine.Click(x, y) }
func (s *Session) ClickBackground() { s.engine.ClickBackground() }

// ClickPoint pins a channel at a stage given by id or label.
func (s *Session) ClickPoint(channelID, stage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errs.NewValidationError("session closed")
	}
	i := models.StageIndex(stage)
	if i < 0 {
		return errs.NewValidationError("unknown stage " + stage)
	}
	if _, ok := s.engine.ClickPoint(channelID, i); !ok {
		return errs.NewNotFoundError("channel " + channelID + " is not visible")
	}
	return nil
}

// Close disposes the chart; later calls are rejected or ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.engine.Dispose()
}

func (s *Session) geometryLocked() *chart.Geometry {
	v := s.visibleLocked()
	return chart.NewGeometry(s.layout, v.Stages, v.Channels, v.Totals)
}

func (s *Session) visibleLocked() models.PeriodView {
	return filter.Apply(s.res.Periods[s.period], s.filters)
}

func (s *Session) eventLocked(t EventType) Event {
	return Event{Type: t, Session: s.id, At: time.Now()}
}

func (s *Session) emit(ev Event) {
	if s.listener != nil {
		s.listener(ev)
	}
}
