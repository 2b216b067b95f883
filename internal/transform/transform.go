package transform

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/AngelCh415/FUNNEL_GO/internal/aggregate"
	"github.com/AngelCh415/FUNNEL_GO/internal/ingest"
	"github.com/AngelCh415/FUNNEL_GO/internal/models"
)

const (
	highestQualifier = "highest overall performance"
	lowestQualifier  = "lowest overall performance"
)

var printer = message.NewPrinter(language.English)

type Transformer struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Transformer {
	if log == nil {
		log = slog.Default()
	}
	return &Transformer{log: log}
}

// Transform runs the pipeline with the default logger.
func Transform(doc any) (models.Result, error) {
	return New(nil).Run(doc)
}

// Run validates the document root and builds the three period views, the
// filter catalog and the digital breakdown table.
func (t *Transformer) Run(doc any) (models.Result, error) {
	start := time.Now()
	ds, err := ingest.Extract(doc)
	if err != nil {
		t.log.Error("transform rejected dataset", slog.String("err", err.Error()))
		return models.Result{}, err
	}
	t.logMissing(ds)

	base := BuildStudyToDate(ds)
	periods := make(map[string]models.PeriodView, len(models.Periods))
	for _, p := range models.Periods {
		if p.Factor == 1 {
			periods[p.ID] = base
			continue
		}
		periods[p.ID] = DeriveScaledPeriod(base, p.ID, p.Factor, models.DashboardTitle, p.Subtitle)
	}

	res := models.Result{
		Periods:          periods,
		FilterOptions:    models.FilterCatalog(),
		DigitalBreakdown: BuildBreakdownTable(ds),
	}
	t.log.Info("transform complete",
		slog.Int("periods", len(periods)),
		slog.String("highest", base.Insights.Highest.ChannelID),
		slog.String("lowest", base.Insights.Lowest.ChannelID),
		slog.Duration("took", time.Since(start)))
	return res, nil
}

// logMissing reports group/stage pairs that resolved to zero because the
// field was absent or not numeric.
func (t *Transformer) logMissing(ds ingest.Dataset) {
	if !t.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	missing := 0
	for _, g := range models.ChannelGroups {
		for _, s := range models.Stages {
			if _, ok := ds.Stage(g.ID, s.ID).Get("total").Number(); !ok {
				missing++
			}
		}
	}
	if missing > 0 {
		t.log.Debug("missing fields defaulted to zero", slog.Int("count", missing))
	}
}

// BuildChannelSeries reads one group's totals in stage order.
func BuildChannelSeries(ds ingest.Dataset, groupID string) models.ChannelSeries {
	data := make([]float64, len(models.Stages))
	for i, s := range models.Stages {
		data[i] = aggregate.ChannelStageTotal(ds, groupID, s.ID)
	}
	g, _ := models.LookupGroup(groupID)
	return models.ChannelSeries{ID: groupID, Name: g.Name, Color: g.Color, Data: data}
}

func BuildStudyToDate(ds ingest.Dataset) models.PeriodView {
	channels := make([]models.ChannelSeries, 0, len(models.ChannelGroups))
	for _, g := range models.ChannelGroups {
		channels = append(channels, BuildChannelSeries(ds, g.ID))
	}
	totals := make([]float64, len(models.Stages))
	for i, s := range models.Stages {
		totals[i] = aggregate.SumAcrossGroups(ds, s.ID, models.MetaKeys)
	}

	hi, lo := selectExtremes(channels)
	return models.PeriodView{
		ID:       models.PeriodStudyToDate,
		Title:    models.DashboardTitle,
		Subtitle: models.Periods[0].Subtitle,
		Channels: channels,
		Stages:   models.StageLabels(),
		Totals:   totals,
		Insights: models.Insights{
			Highest: newInsight(hi, highestQualifier),
			Lowest:  newInsight(lo, lowestQualifier),
		},
	}
}

type channelAggregate struct {
	series models.ChannelSeries
	total  float64
}

// selectExtremes picks the highest and lowest aggregate. A later channel
// only replaces the current pick when strictly greater (or smaller), so on
// ties the first channel in canonical order wins both roles.
func selectExtremes(channels []models.ChannelSeries) (hi, lo channelAggregate) {
	for i, c := range channels {
		cur := channelAggregate{series: c, total: aggregate.SeriesTotal(c.Data)}
		if i == 0 {
			hi, lo = cur, cur
			continue
		}
		if cur.total > hi.total {
			hi = cur
		}
		if cur.total < lo.total {
			lo = cur
		}
	}
	return hi, lo
}

func newInsight(a channelAggregate, qualifier string) models.InsightEntry {
	return models.InsightEntry{
		ChannelID: a.series.ID,
		Channel:   a.series.Name,
		Metric:    models.InsightMetric,
		Value:     insightValue(a.total, qualifier),
		Count:     a.total,
		Qualifier: qualifier,
	}
}

func insightValue(count float64, qualifier string) string {
	return formatCount(count) + " participants (" + qualifier + ")"
}

// formatCount renders a count with en-US digit grouping.
func formatCount(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// DeriveScaledPeriod returns a new view tagged id with every numeric leaf
// scaled by factor and rounded. Text fields are copied; which channel is
// highest or lowest is inherited from base.
func DeriveScaledPeriod(base models.PeriodView, id string, factor float64, title, subtitle string) models.PeriodView {
	channels := make([]models.ChannelSeries, len(base.Channels))
	for i, c := range base.Channels {
		channels[i] = models.ChannelSeries{
			ID:    c.ID,
			Name:  c.Name,
			Color: c.Color,
			Data:  scaleAll(c.Data, factor),
		}
	}
	stages := make([]string, len(base.Stages))
	copy(stages, base.Stages)

	return models.PeriodView{
		ID:       id,
		Title:    title,
		Subtitle: subtitle,
		Channels: channels,
		Stages:   stages,
		Totals:   scaleAll(base.Totals, factor),
		Insights: models.Insights{
			Highest: scaleInsight(base.Insights.Highest, factor),
			Lowest:  scaleInsight(base.Insights.Lowest, factor),
		},
	}
}

func scaleInsight(in models.InsightEntry, factor float64) models.InsightEntry {
	out := in
	out.Count = scale(in.Count, factor)
	out.Value = insightValue(out.Count, in.Qualifier)
	return out
}

func scaleAll(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = scale(v, factor)
	}
	return out
}

// scale rounds half up, matching how the dashboard has always rounded.
// A factor of 1 leaves the value untouched.
func scale(v, factor float64) float64 {
	if factor == 1 {
		return v
	}
	return roundHalfUp(v * factor)
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
