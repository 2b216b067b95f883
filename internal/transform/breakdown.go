package transform

import (
	"github.com/AngelCh415/FUNNEL_GO/internal/aggregate"
	"github.com/AngelCh415/FUNNEL_GO/internal/ingest"
	"github.com/AngelCh415/FUNNEL_GO/internal/models"
)

// BuildDigitalBreakdown sums each digital sub-channel for one stage, scales
// it by factor and rounds half up, including at factor 1. A stage with no
// digital data yields six zero entries.
func BuildDigitalBreakdown(ds ingest.Dataset, stageID string, factor float64) []models.DigitalChannelEntry {
	stage := ds.Stage(models.GroupDigital, stageID)
	out := make([]models.DigitalChannelEntry, 0, len(models.DigitalSubChannels))
	for _, sc := range models.DigitalSubChannels {
		obj := stage.Get(sc.ID)
		entry := models.DigitalChannelEntry{
			ID:    sc.ID,
			Name:  sc.Name,
			Value: roundHalfUp(aggregate.SumSubChannelCounts(obj) * factor),
		}
		for _, k := range obj.Keys() {
			v := obj.Get(k).NumberOr(0)
			entry.Details = append(entry.Details, models.SubChannelDetail{Key: k, Value: roundHalfUp(v * factor)})
		}
		out = append(out, entry)
	}
	return out
}

// BuildBreakdownTable precomputes the breakdown of every stage for every
// period so hover lookups never recompute.
func BuildBreakdownTable(ds ingest.Dataset) models.DigitalChannelBreakdown {
	table := make(map[string]models.StageBreakdown, len(models.Periods))
	for _, p := range models.Periods {
		byStage := make(models.StageBreakdown, len(models.Stages))
		for _, s := range models.Stages {
			byStage[s.Label] = BuildDigitalBreakdown(ds, s.ID, p.Factor)
		}
		table[p.ID] = byStage
	}
	return models.DigitalChannelBreakdown{
		Title:     models.BreakdownTitle,
		Channels:  BuildDigitalBreakdown(ds, models.Stages[0].ID, 1),
		StageData: table,
	}
}
