package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AngelCh415/FUNNEL_GO/internal/chart"
	"github.com/AngelCh415/FUNNEL_GO/internal/dashboard"
	"github.com/AngelCh415/FUNNEL_GO/internal/errs"
	"github.com/AngelCh415/FUNNEL_GO/internal/filter"
	"github.com/AngelCh415/FUNNEL_GO/internal/metrics"
	"github.com/AngelCh415/FUNNEL_GO/internal/models"
	"github.com/AngelCh415/FUNNEL_GO/internal/store"
	"github.com/AngelCh415/FUNNEL_GO/internal/utils"
)

// Deps wires the router. A nil Scheduler drives popup dismissal with real
// timers.
type Deps struct {
	Log          *slog.Logger
	Store        *store.MemoryStore
	Sessions     *store.Sessions
	Service      *metrics.Service
	Collectors   *metrics.Collectors
	DismissDelay time.Duration
	Scheduler    chart.Scheduler
}

type router struct {
	Deps
}

func NewRouter(d Deps) http.Handler {
	rt := &router{Deps: d}
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log))
	mux.Use(d.Collectors.Instrument)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !d.Store.Ready() {
			http.Error(w, "dataset not loaded", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
		w.Write([]byte("ready"))
	})
	mux.Method(http.MethodGet, "/metrics", d.Collectors.Handler())

	mux.Get("/periods", rt.listPeriods)
	mux.Route("/periods/{period}", func(r chi.Router) {
		r.Get("/", rt.getPeriod)
		r.Get("/breakdown", rt.getBreakdown)
		r.Get("/chart", rt.getChart)
		r.Get("/chart.png", rt.getChartImage(chart.RenderPNG, "image/png"))
		r.Get("/chart.svg", rt.getChartImage(chart.RenderSVG, "image/svg+xml"))
	})
	mux.Get("/filters", rt.getFilters)

	mux.Route("/sessions", func(r chi.Router) {
		r.Get("/", rt.listSessions)
		r.Post("/", rt.createSession)
		r.Get("/{id}", rt.getSession)
		r.Delete("/{id}", rt.deleteSession)
		r.Post("/{id}/events", rt.postEvent)
	})

	return mux
}

func (rt *router) listPeriods(w http.ResponseWriter, r *http.Request) {
	ps, err := rt.Service.Periods()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (rt *router) getPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := rt.Service.Period(chi.URLParam(r, "period"), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (rt *router) getBreakdown(w http.ResponseWriter, r *http.Request) {
	b, err := rt.Service.Breakdown(chi.URLParam(r, "period"), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// getChart returns an idle scene; interactive state lives in sessions.
func (rt *router) getChart(w http.ResponseWriter, r *http.Request) {
	g, err := rt.Service.Geometry(chi.URLParam(r, "period"), r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	e := chart.NewEngine(g, chart.Options{Scheduler: rt.Scheduler})
	defer e.Dispose()
	writeJSON(w, http.StatusOK, e.Scene())
}

func (rt *router) getChartImage(render func(w io.Writer, g *chart.Geometry, title string) error, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := chi.URLParam(r, "period")
		g, err := rt.Service.Geometry(period, r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		p, _ := rt.Store.Period(period)
		var buf bytes.Buffer
		if err := render(&buf, g, p.Subtitle); err != nil {
			if errors.Is(err, chart.ErrTooFewStages) {
				writeError(w, errs.NewValidationError(err.Error()))
				return
			}
			rt.Log.Error("chart render failed", slog.String("err", err.Error()), slog.String("rid", utils.RID(r.Context())))
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

type filtersResponse struct {
	Options []models.FilterOption `json:"options"`
	Summary string                `json:"summary"`
}

func (rt *router) getFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := rt.Service.Filters(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filtersResponse{Options: opts, Summary: filter.Summary(opts)})
}

func (rt *router) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": rt.Service.Sessions(r.URL.Query())})
}

func (rt *router) createSession(w http.ResponseWriter, r *http.Request) {
	res, ok := rt.Store.Result()
	if !ok {
		writeError(w, errs.NewNotFoundError("dataset not loaded"))
		return
	}
	id := uuid.NewString()
	log := rt.Log.With(slog.String("rid", utils.RID(r.Context())))
	s := dashboard.NewSession(id, res, dashboard.Options{
		DismissDelay: rt.DismissDelay,
		Scheduler:    rt.Scheduler,
		Logger:       log,
		Listener: func(ev dashboard.Event) {
			log.Info("dashboard event", slog.String("session", ev.Session), slog.String("type", string(ev.Type)))
		},
	})
	rt.Sessions.Add(s)
	rt.Collectors.SetActiveSessions(rt.Sessions.Len())
	writeJSON(w, http.StatusCreated, s.View())
}

func (rt *router) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := rt.Sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, errs.NewNotFoundError("unknown session"))
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (rt *router) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !rt.Sessions.Delete(chi.URLParam(r, "id")) {
		writeError(w, errs.NewNotFoundError("unknown session"))
		return
	}
	rt.Collectors.SetActiveSessions(rt.Sessions.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (rt *router) postEvent(w http.ResponseWriter, r *http.Request) {
	s, ok := rt.Sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, errs.NewNotFoundError("unknown session"))
		return
	}
	var cmd dashboard.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, errs.NewValidationError("bad event body: "+err.Error()))
		return
	}
	if err := s.Dispatch(cmd); err != nil {
		writeError(w, err)
		return
	}
	rt.Collectors.ChartEvent(cmd.Type)
	writeJSON(w, http.StatusOK, s.View())
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	var (
		ve *errs.ValidationError
		nf *errs.NotFoundError
		md *errs.MalformedDatasetError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_input", Message: ve.Message})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Code: "not_found", Message: nf.Message})
	case errors.As(err, &md):
		writeJSON(w, http.StatusInternalServerError, errorBody{Code: "malformed_dataset", Message: md.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Code: "internal_error", Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
