package metrics

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/AngelCh415/FUNNEL_GO/internal/chart"
	"github.com/AngelCh415/FUNNEL_GO/internal/errs"
	"github.com/AngelCh415/FUNNEL_GO/internal/filter"
	"github.com/AngelCh415/FUNNEL_GO/internal/models"
	"github.com/AngelCh415/FUNNEL_GO/internal/store"
)

// Service answers read-only queries over the loaded snapshot.
type Service struct {
	st       *store.MemoryStore
	sessions *store.Sessions
	layout   chart.Layout
}

func NewService(st *store.MemoryStore, sessions *store.Sessions) *Service {
	return &Service{st: st, sessions: sessions, layout: chart.DefaultLayout()}
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func csvSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(s, ",") {
		p = norm(p)
		if p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

type PeriodSummary struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Periods lists the loaded periods in selector order.
func (s *Service) Periods() ([]PeriodSummary, error) {
	res, err := s.result()
	if err != nil {
		return nil, err
	}
	out := make([]PeriodSummary, 0, len(models.Periods))
	for _, p := range models.Periods {
		v, ok := res.Periods[p.ID]
		if !ok {
			continue
		}
		out = append(out, PeriodSummary{ID: p.ID, Label: p.Label, Title: v.Title, Subtitle: v.Subtitle})
	}
	return out, nil
}

// Filters parses `filters=webpage,email` into a checked catalog. An absent
// or empty list is the default selection.
func (s *Service) Filters(v url.Values) ([]models.FilterOption, error) {
	opts := models.FilterCatalog()
	set := csvSet(v.Get("filters"))
	if len(set) == 0 {
		return opts, nil
	}
	known := 0
	for i := range opts {
		_, ok := set[norm(opts[i].ID)]
		opts[i].Checked = ok
		if ok {
			known++
		}
	}
	if known != len(set) {
		return nil, errs.NewValidationError("unknown filter in " + strconv.Quote(v.Get("filters")))
	}
	return opts, nil
}

// Period returns the view with only the channels the filters select.
func (s *Service) Period(id string, v url.Values) (models.PeriodView, error) {
	p, err := s.period(id)
	if err != nil {
		return models.PeriodView{}, err
	}
	opts, err := s.Filters(v)
	if err != nil {
		return models.PeriodView{}, err
	}
	return filter.Apply(p, opts), nil
}

// Geometry lays the filtered period out with the default chart frame.
func (s *Service) Geometry(id string, v url.Values) (*chart.Geometry, error) {
	p, err := s.Period(id, v)
	if err != nil {
		return nil, err
	}
	return chart.NewGeometry(s.layout, p.Stages, p.Channels, p.Totals), nil
}

type Breakdown struct {
	Title  string                `json:"title"`
	Period string                `json:"period"`
	Stages models.StageBreakdown `json:"stages"`
}

// Breakdown returns the digital sub-channels of a period, for one stage
// (by id or label) or for all of them.
func (s *Service) Breakdown(periodID string, v url.Values) (Breakdown, error) {
	res, err := s.result()
	if err != nil {
		return Breakdown{}, err
	}
	if _, err := s.period(periodID); err != nil {
		return Breakdown{}, err
	}
	all := res.DigitalBreakdown.StageData[periodID]
	out := Breakdown{Title: res.DigitalBreakdown.Title, Period: periodID}

	stage := strings.TrimSpace(v.Get("stage"))
	if stage == "" {
		out.Stages = all
		return out, nil
	}
	i := models.StageIndex(stage)
	if i < 0 {
		return Breakdown{}, errs.NewValidationError("unknown stage " + strconv.Quote(stage))
	}
	label := models.Stages[i].Label
	out.Stages = models.StageBreakdown{label: all[label]}
	return out, nil
}

// Sessions lists open session ids with limit/offset paging.
func (s *Service) Sessions(v url.Values) []string {
	ids := s.sessions.IDs()
	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)
	limit, offset = clampLimitOffset(limit, offset, len(ids))
	return paginate(ids, limit, offset)
}

func (s *Service) result() (models.Result, error) {
	res, ok := s.st.Result()
	if !ok {
		return models.Result{}, errs.NewNotFoundError("dataset not loaded")
	}
	return res, nil
}

func (s *Service) period(id string) (models.PeriodView, error) {
	if _, err := s.result(); err != nil {
		return models.PeriodView{}, err
	}
	p, ok := s.st.Period(id)
	if !ok {
		return models.PeriodView{}, errs.NewNotFoundError("unknown period " + strconv.Quote(id))
	}
	return p, nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
