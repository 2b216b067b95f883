package models

// Static catalogs shared by the transform, filter and chart packages.

type Stage struct {
	ID    string
	Label string
}

// Stages is the funnel in order; each stage narrows the previous one.
var Stages = [...]Stage{
	{ID: "engagedWithCampaign", Label: "Engaged with Campaign"},
	{ID: "primaryPreScreener", Label: "Primary Pre-Screener"},
	{ID: "secondaryPreScreener", Label: "Secondary Pre-Screener"},
	{ID: "releasedToSite", Label: "Released to Site"},
	{ID: "siteVisitScheduled", Label: "Site Visit Scheduled"},
	{ID: "siteVisitCompleted", Label: "Site Visit Completed"},
	{ID: "consented", Label: "Consented"},
	{ID: "randomized", Label: "Randomized"},
}

// StageLabels returns the display labels in funnel order.
func StageLabels() []string {
	out := make([]string, len(Stages))
	for i, s := range Stages {
		out[i] = s.Label
	}
	return out
}

// StageIndex resolves a stage id or label to its position, or -1.
func StageIndex(key string) int {
	for i, s := range Stages {
		if s.ID == key || s.Label == key {
			return i
		}
	}
	return -1
}

const (
	GroupDigital         = "digitalMarketing"
	GroupDirectOffline   = "directAndOfflineMarketing"
	GroupPartnerRecruit  = "partnerAndRecruitmentOrg"
	GroupOther           = "other"
	metaViewSelected     = "viewSelected"
	metaMarketingChannel = "marketingChannels"
)

type ChannelGroup struct {
	ID    string
	Name  string
	Color string
}

// ChannelGroups is the canonical group order; it decides insight tie-breaks.
var ChannelGroups = [...]ChannelGroup{
	{ID: GroupDigital, Name: "Digital Marketing", Color: "#8B5CF6"},
	{ID: GroupDirectOffline, Name: "Direct & Offline Marketing", Color: "#06B6D4"},
	{ID: GroupPartnerRecruit, Name: "Partner & Recruitment Org", Color: "#10B981"},
	{ID: GroupOther, Name: "Other", Color: "#F59E0B"},
}

func LookupGroup(id string) (ChannelGroup, bool) {
	for _, g := range ChannelGroups {
		if g.ID == id {
			return g, true
		}
	}
	return ChannelGroup{}, false
}

// MetaKeys are top-level dataset keys that are bookkeeping, not channel groups.
var MetaKeys = []string{metaViewSelected, metaMarketingChannel}

type SubChannel struct {
	ID   string
	Name string
}

// DigitalSubChannels is the display order of the digital breakdown.
var DigitalSubChannels = [...]SubChannel{
	{ID: "webPage", Name: "Webpage"},
	{ID: "socialMedia", Name: "Social Media"},
	{ID: "email", Name: "Email"},
	{ID: "sms", Name: "SMS"},
	{ID: "search", Name: "Search"},
	{ID: "cpa", Name: "CPA"},
}

const FilterAll = "all"

// FilterCatalog returns a fresh copy of the nine filter options with `all` checked.
func FilterCatalog() []FilterOption {
	return []FilterOption{
		{ID: FilterAll, Name: "All Channels", Checked: true},
		{ID: "webpage", Name: "Webpage"},
		{ID: "email", Name: "Email"},
		{ID: "directMail", Name: "Direct Mail"},
		{ID: "partnershipMarketing", Name: "Partnership Marketing"},
		{ID: "onlineRecruitment", Name: "Online Recruitment"},
		{ID: "offlineRecruitment", Name: "Offline Recruitment"},
		{ID: "socialMedia", Name: "Social Media"},
		{ID: "sms", Name: "SMS"},
	}
}

// FilterGroups maps each non-`all` filter to the channel group it selects.
// Several filters share a group.
var FilterGroups = map[string]string{
	"webpage":              GroupDigital,
	"email":                GroupDigital,
	"socialMedia":          GroupDigital,
	"sms":                  GroupDigital,
	"directMail":           GroupDirectOffline,
	"offlineRecruitment":   GroupDirectOffline,
	"partnershipMarketing": GroupPartnerRecruit,
	"onlineRecruitment":    GroupPartnerRecruit,
}

// Period ids and the scaling applied to study-to-date for the derived windows.
const (
	PeriodStudyToDate = "studyToDate"
	PeriodLast7Days   = "last7Days"
	PeriodLast30Days  = "last30Days"

	ShortWindowFactor  = 0.15
	MediumWindowFactor = 0.55
)

type Period struct {
	ID       string
	Label    string
	Factor   float64
	Subtitle string
}

// Periods lists the three windows in selector order.
var Periods = [...]Period{
	{ID: PeriodStudyToDate, Label: "Study to date", Factor: 1, Subtitle: "Study to date - All marketing channels performance across recruitment stages"},
	{ID: PeriodLast7Days, Label: "Last 7 days", Factor: ShortWindowFactor, Subtitle: "Last 7 days - Recent marketing channels performance"},
	{ID: PeriodLast30Days, Label: "Last 30 days", Factor: MediumWindowFactor, Subtitle: "Last 30 days - Monthly marketing channels performance"},
}

func LookupPeriod(id string) (Period, bool) {
	for _, p := range Periods {
		if p.ID == id {
			return p, true
		}
	}
	return Period{}, false
}

const (
	DashboardTitle = "Marketing Channel Performance"
	InsightMetric  = "Total recruitment performance"
	BreakdownTitle = "Digital Marketing Channels Breakdown"
)
