// Package aggregate reduces the nested stage objects of a study record to
// scalar counts. Every function here is total: absent or non-numeric input
// counts as zero.
package aggregate

import (
	"github.com/AngelCh415/FUNNEL_GO/internal/ingest"
)

// ChannelStageTotal is the `total` of one group/stage pair, or 0.
func ChannelStageTotal(ds ingest.Dataset, groupID, stageID string) float64 {
	return max0(ds.Stage(groupID, stageID).Get("total").NumberOr(0))
}

// SumAcrossGroups adds ChannelStageTotal for every group key in the record
// except the excluded ones.
func SumAcrossGroups(ds ingest.Dataset, stageID string, excluded []string) float64 {
	skip := make(map[string]struct{}, len(excluded))
	for _, k := range excluded {
		skip[k] = struct{}{}
	}
	var total float64
	for _, groupID := range ds.GroupIDs() {
		if _, ok := skip[groupID]; ok {
			continue
		}
		total += ChannelStageTotal(ds, groupID, stageID)
	}
	return total
}

// SumSubChannelCounts adds every numeric value of a sub-channel object,
// negatives included. Non-numeric values count as 0.
func SumSubChannelCounts(obj ingest.Node) float64 {
	var total float64
	for _, k := range obj.Keys() {
		total += obj.Get(k).NumberOr(0)
	}
	return total
}

// SeriesTotal is the plain sum of a series.
func SeriesTotal(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func max0(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
