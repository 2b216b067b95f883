// Package filter maps the channel dropdown selection onto the channel
// groups shown on the chart.
package filter

import (
	"fmt"

	"github.com/AngelCh415/FUNNEL_GO/internal/models"
)

// ResolveVisibleChannels returns the series to draw. `all` checked, or
// nothing else checked, shows every group. Otherwise the groups selected by
// the checked options are returned once each, in canonical order.
func ResolveVisibleChannels(period models.PeriodView, options []models.FilterOption) []models.ChannelSeries {
	if isChecked(options, models.FilterAll) {
		return period.Channels
	}
	want := make(map[string]struct{})
	selected := false
	for _, o := range options {
		if !o.Checked || o.ID == models.FilterAll {
			continue
		}
		selected = true
		if g, ok := models.FilterGroups[o.ID]; ok {
			want[g] = struct{}{}
		}
	}
	if !selected {
		return period.Channels
	}
	out := make([]models.ChannelSeries, 0, len(want))
	for _, c := range period.Channels {
		if _, ok := want[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Apply returns period with only the visible channels. Totals and insights
// still describe every group.
func Apply(period models.PeriodView, options []models.FilterOption) models.PeriodView {
	period.Channels = ResolveVisibleChannels(period, options)
	return period
}

// Toggle returns a copy of options with id set to checked. Toggling `all`
// applies the same state to every option, as the dropdown does.
func Toggle(options []models.FilterOption, id string, checked bool) ([]models.FilterOption, error) {
	found := false
	out := make([]models.FilterOption, len(options))
	for i, o := range options {
		if id == models.FilterAll || o.ID == id {
			o.Checked = checked
			found = found || o.ID == id
		}
		out[i] = o
	}
	if !found {
		return nil, fmt.Errorf("unknown filter %q", id)
	}
	return out, nil
}

// Summary is the dropdown's collapsed label.
func Summary(options []models.FilterOption) string {
	if isChecked(options, models.FilterAll) {
		return "All Channels"
	}
	n := 0
	name := ""
	for _, o := range options {
		if o.Checked {
			n++
			if o.ID != models.FilterAll {
				name = o.Name
			}
		}
	}
	switch {
	case n == 1:
		if name == "" {
			return "All Channels"
		}
		return name
	case n > 1:
		return fmt.Sprintf("%d channels selected", n)
	default:
		return "Select channels"
	}
}

func isChecked(options []models.FilterOption, id string) bool {
	for _, o := range options {
		if o.ID == id {
			return o.Checked
		}
	}
	return false
}
