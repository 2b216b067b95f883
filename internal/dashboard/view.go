package dashboard

import (
	"github.com/AngelCh415/FUNNEL_GO/internal/chart"
	"github.com/AngelCh415/FUNNEL_GO/internal/filter"
	"github.com/AngelCh415/FUNNEL_GO/internal/models"
)

// PopupContent is what the hover popup or pinned tooltip shows.
type PopupContent struct {
	Kind    chart.PopupKind              `json:"kind"`
	Stage   string                       `json:"stage"`
	Point   *chart.Point                 `json:"point,omitempty"`
	Total   float64                      `json:"total"`
	Entries []models.DigitalChannelEntry `json:"entries,omitempty"`
}

// View is a full render of the session.
type View struct {
	Session       string                `json:"session"`
	Period        models.PeriodView     `json:"period"`
	Periods       []PeriodChoice        `json:"periods"`
	Filters       []models.FilterOption `json:"filters"`
	FilterSummary string                `json:"filterSummary"`
	Chart         chart.Scene           `json:"chart"`
	Popup         *PopupContent         `json:"popup,omitempty"`
	Modal         Modal                 `json:"modal"`
}

type PeriodChoice struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	scene := s.engine.Scene()
	v := View{
		Session:       s.id,
		Period:        s.visibleLocked(),
		Filters:       append([]models.FilterOption(nil), s.filters...),
		FilterSummary: filter.Summary(s.filters),
		Chart:         scene,
		Popup:         s.popupLocked(scene.State),
		Modal:         s.modal,
	}
	for _, p := range models.Periods {
		v.Periods = append(v.Periods, PeriodChoice{ID: p.ID, Label: p.Label, Selected: p.ID == s.period})
	}
	return v
}

// popupLocked fills the popup: the hover popup lists the digital
// sub-channels of the stage, the tooltip describes the pinned point.
func (s *Session) popupLocked(st chart.State) *PopupContent {
	if st.Popup.Kind == chart.PopupHidden || st.StageIndex < 0 {
		return nil
	}
	pv := s.res.Periods[s.period]
	pc := &PopupContent{
		Kind:  st.Popup.Kind,
		Stage: st.Popup.Stage,
	}
	if st.StageIndex < len(pv.Totals) {
		pc.Total = pv.Totals[st.StageIndex]
	}
	if st.Pin != nil {
		pc.Point = st.Pin
		if st.Pin.ChannelID != models.GroupDigital {
			return pc
		}
	}
	pc.Entries, _ = s.res.DigitalBreakdown.ForStage(s.period, st.Popup.Stage)
	return pc
}
