package models

// ChannelSeries is one channel-group's values across the ordered stages.
// Values are never mutated after construction; derived periods allocate new slices.
type ChannelSeries struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Data  []float64 `json:"data"`
}

// ValueAt returns the value at stage i, or 0 when the series is short.
func (c ChannelSeries) ValueAt(i int) float64 {
	if i < 0 || i >= len(c.Data) {
		return 0
	}
	return c.Data[i]
}

type InsightEntry struct {
	ChannelID string  `json:"channelId"`
	Channel   string  `json:"channel"`
	Metric    string  `json:"metric"`
	Value     string  `json:"value"`
	Count     float64 `json:"count"`
	Qualifier string  `json:"-"`
}

type Insights struct {
	Highest InsightEntry `json:"highest"`
	Lowest  InsightEntry `json:"lowest"`
}

type PeriodView struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle"`
	Channels []ChannelSeries `json:"channels"`
	Stages   []string        `json:"stages"`
	Totals   []float64       `json:"totals"`
	Insights Insights        `json:"insights"`
}

// Channel looks up a channel-group's series by id.
func (p PeriodView) Channel(id string) (ChannelSeries, bool) {
	for _, c := range p.Channels {
		if c.ID == id {
			return c, true
		}
	}
	return ChannelSeries{}, false
}

type FilterOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

type SubChannelDetail struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

type DigitalChannelEntry struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Value   float64            `json:"value"`
	Details []SubChannelDetail `json:"details,omitempty"`
}

// StageBreakdown maps a stage label to its sub-channel entries.
type StageBreakdown map[string][]DigitalChannelEntry

// DigitalChannelBreakdown is the sub-channel decomposition of the digital
// group. StageData is keyed by period id, then by stage label.
type DigitalChannelBreakdown struct {
	Title     string                    `json:"title"`
	Channels  []DigitalChannelEntry     `json:"channels"`
	StageData map[string]StageBreakdown `json:"stageData"`
}

// ForStage returns the breakdown for one period and stage label.
func (d DigitalChannelBreakdown) ForStage(periodID, stage string) ([]DigitalChannelEntry, bool) {
	byStage, ok := d.StageData[periodID]
	if !ok {
		return nil, false
	}
	entries, ok := byStage[stage]
	return entries, ok
}

// Result is the full output of the transform step, held as a session snapshot.
type Result struct {
	Periods          map[string]PeriodView   `json:"periods"`
	FilterOptions    []FilterOption          `json:"filterOptions"`
	DigitalBreakdown DigitalChannelBreakdown `json:"digitalBreakdown"`
}
