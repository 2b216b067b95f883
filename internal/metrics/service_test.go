package metrics

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AngelCh415/FUNNEL_GO/internal/dashboard"
	"github.com/AngelCh415/FUNNEL_GO/internal/errs"
	"github.com/AngelCh415/FUNNEL_GO/internal/ingest"
	"github.com/AngelCh415/FUNNEL_GO/internal/models"
	"github.com/AngelCh415/FUNNEL_GO/internal/store"
	"github.com/AngelCh415/FUNNEL_GO/internal/transform"
)

const doc = `{"apiResponse":{"studyMarketingRecruitment":[{
	"digitalMarketing": {"engagedWithCampaign": {"total": 120, "webPage": {"landing": 120}}},
	"directAndOfflineMarketing": {"engagedWithCampaign": {"total": 30}},
	"partnerAndRecruitmentOrg": {"consented": {"total": 7}},
	"other": {}
}]}}`

func newService(t *testing.T) (*Service, *store.Sessions) {
	t.Helper()
	d, err := ingest.DecodeBytes([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	res, err := transform.New(slog.New(slog.NewTextHandler(io.Discard, nil))).Run(d)
	if err != nil {
		t.Fatal(err)
	}
	st := store.NewMemoryStore()
	st.Set(res)
	sess := store.NewSessions()
	return NewService(st, sess), sess
}

func TestPeriods(t *testing.T) {
	svc, _ := newService(t)
	ps, err := svc.Periods()
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 3 || ps[0].ID != models.PeriodStudyToDate || ps[2].ID != models.PeriodLast30Days {
		t.Fatalf("periods = %+v", ps)
	}
}

func TestNotLoaded(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), store.NewSessions())
	var nf *errs.NotFoundError
	if _, err := svc.Periods(); !errors.As(err, &nf) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Period(models.PeriodStudyToDate, nil); !errors.As(err, &nf) {
		t.Fatalf("err = %v", err)
	}
}

func TestPeriodFilters(t *testing.T) {
	svc, _ := newService(t)
	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{models.GroupDigital, models.GroupDirectOffline, models.GroupPartnerRecruit, models.GroupOther}},
		{"filters=webpage,email", []string{models.GroupDigital}},
		{"filters= DirectMail , sms", []string{models.GroupDigital, models.GroupDirectOffline}},
		{"filters=all,sms", []string{models.GroupDigital, models.GroupDirectOffline, models.GroupPartnerRecruit, models.GroupOther}},
	}
	for _, tc := range cases {
		v, _ := url.ParseQuery(tc.query)
		p, err := svc.Period(models.PeriodStudyToDate, v)
		if err != nil {
			t.Fatalf("%q: %v", tc.query, err)
		}
		if len(p.Channels) != len(tc.want) {
			t.Fatalf("%q: got %d channels, want %v", tc.query, len(p.Channels), tc.want)
		}
		for i, c := range p.Channels {
			if c.ID != tc.want[i] {
				t.Fatalf("%q: channel %d = %s, want %s", tc.query, i, c.ID, tc.want[i])
			}
		}
	}

	var ve *errs.ValidationError
	if _, err := svc.Period(models.PeriodStudyToDate, url.Values{"filters": {"fax"}}); !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	var nf *errs.NotFoundError
	if _, err := svc.Period("custom", nil); !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestGeometry(t *testing.T) {
	svc, _ := newService(t)
	g, err := svc.Geometry(models.PeriodStudyToDate, url.Values{"filters": {"directMail"}})
	if err != nil {
		t.Fatal(err)
	}
	// the 150 stage total still sets the axis
	if g.Ceiling() != 200 || len(g.Series()) != 1 {
		t.Fatalf("ceiling = %v, series = %d", g.Ceiling(), len(g.Series()))
	}
}

func TestBreakdown(t *testing.T) {
	svc, _ := newService(t)
	b, err := svc.Breakdown(models.PeriodLast7Days, url.Values{"stage": {"engagedWithCampaign"}})
	if err != nil {
		t.Fatal(err)
	}
	entries := b.Stages["Engaged with Campaign"]
	if len(b.Stages) != 1 || len(entries) != 6 || entries[0].Value != 18 {
		t.Fatalf("breakdown = %+v", b)
	}

	all, err := svc.Breakdown(models.PeriodStudyToDate, nil)
	if err != nil || len(all.Stages) != 8 {
		t.Fatalf("full breakdown: %v, %d stages", err, len(all.Stages))
	}

	var ve *errs.ValidationError
	if _, err := svc.Breakdown(models.PeriodStudyToDate, url.Values{"stage": {"lunch"}}); !errors.As(err, &ve) {
		t.Fatalf("err = %v", err)
	}
}

func TestSessionsPaging(t *testing.T) {
	svc, sess := newService(t)
	res, _ := store.NewMemoryStore().Result()
	for _, id := range []string{"a", "b", "c"} {
		sess.Add(dashboard.NewSession(id, res, dashboard.Options{}))
	}
	t.Cleanup(func() { sess.CloseAll() })

	if got := svc.Sessions(nil); len(got) != 3 {
		t.Fatalf("sessions = %v", got)
	}
	got := svc.Sessions(url.Values{"limit": {"1"}, "offset": {"2"}})
	if len(got) != 1 {
		t.Fatalf("page = %v", got)
	}
	if got := svc.Sessions(url.Values{"offset": {"9"}}); len(got) != 0 {
		t.Fatalf("past end = %v", got)
	}
}

func TestCollectors(t *testing.T) {
	c := NewCollectors()
	c.ObserveTransform(3 * time.Millisecond)
	c.ChartEvent("pointer.move")
	c.SetActiveSessions(2)

	r := chi.NewRouter()
	r.Use(c.Instrument)
	r.Get("/periods/{period}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Method(http.MethodGet, "/metrics", c.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/periods/custom", nil))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`funnel_http_requests_total{route="/periods/{period}",status="404"} 1`,
		`funnel_chart_events_total{type="pointer.move"} 1`,
		`funnel_active_sessions 2`,
		`funnel_transform_duration_seconds_count 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
