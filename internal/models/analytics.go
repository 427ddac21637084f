package models

import "time"

// EventKind names a tracking event.
type EventKind string

const (
	EventPageView        EventKind = "page_view"
	EventVisitor         EventKind = "visitor"
	EventConversion      EventKind = "conversion"
	EventBounce          EventKind = "bounce"
	EventSessionDuration EventKind = "session_duration"
)

// ParseEventKind returns the kind for raw, false when it is not a known event.
func ParseEventKind(raw string) (EventKind, bool) {
	switch kind := EventKind(raw); kind {
	case EventPageView, EventVisitor, EventConversion, EventBounce, EventSessionDuration:
		return kind, true
	default:
		return "", false
	}
}

// SnapshotKey identifies the daily snapshot an event lands in.
// Day is the calendar day formatted as YYYY-MM-DD in the configured zone.
type SnapshotKey struct {
	FunnelID string
	UserID   string
	Day      string
}

// Snapshot is the per-funnel, per-day analytics aggregate.
type Snapshot struct {
	ID        string    `json:"id" bson:"-"`
	FunnelID  string    `json:"funnel" bson:"funnel"`
	UserID    string    `json:"user" bson:"user"`
	Day       string    `json:"day" bson:"day"`
	Date      time.Time `json:"date" bson:"-"`
	Metrics   Metrics   `json:"metrics" bson:"metrics"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`

	StepAnalytics   []StepAnalytics `json:"stepAnalytics" bson:"-"`
	TrafficSources  []SourceCount   `json:"trafficSources" bson:"-"`
	DeviceBreakdown DeviceBreakdown `json:"deviceBreakdown" bson:"-"`
	GeoData         []GeoCount      `json:"geoData" bson:"-"`
	Referrers       []ReferrerCount `json:"referrers" bson:"-"`
}

type Metrics struct {
	Visitors           int64   `json:"visitors" bson:"visitors"`
	PageViews          int64   `json:"pageViews" bson:"pageViews"`
	Conversions        int64   `json:"conversions" bson:"conversions"`
	Revenue            float64 `json:"revenue" bson:"revenue"`
	BounceRate         float64 `json:"bounceRate" bson:"bounceRate"`
	AvgSessionDuration float64 `json:"avgSessionDuration" bson:"avgSessionDuration"`
}

// MetricDelta is the change a single event makes to a daily snapshot.
// A nil SessionDuration leaves the running mean untouched.
type MetricDelta struct {
	PageViews       int64
	Visitors        int64
	Conversions     int64
	Revenue         float64
	SessionDuration *float64
}

// Apply mutates m by d. The session mean is a two-point running average:
// each sample halves the distance to itself, which is not a true mean.
func (m *Metrics) Apply(d MetricDelta) {
	m.PageViews += d.PageViews
	m.Visitors += d.Visitors
	m.Conversions += d.Conversions
	m.Revenue += d.Revenue
	if d.SessionDuration != nil {
		m.AvgSessionDuration = (m.AvgSessionDuration + *d.SessionDuration) / 2
	}
}

// Dimension names a breakdown axis of a daily snapshot.
type Dimension string

const (
	DimensionStep     Dimension = "step"
	DimensionSource   Dimension = "source"
	DimensionDevice   Dimension = "device"
	DimensionCountry  Dimension = "country"
	DimensionReferrer Dimension = "referrer"
)

// BreakdownDelta increments one breakdown counter.
type BreakdownDelta struct {
	Dimension   Dimension
	Key         string
	Visitors    int64
	Conversions int64
}

// BreakdownCount is a stored breakdown counter for one funnel and day.
type BreakdownCount struct {
	FunnelID    string    `bson:"funnel"`
	Day         string    `bson:"day"`
	Dimension   Dimension `bson:"dimension"`
	Key         string    `bson:"key"`
	Visitors    int64     `bson:"visitors"`
	Conversions int64     `bson:"conversions"`
}

type StepAnalytics struct {
	StepID      string   `json:"stepId"`
	StepType    StepType `json:"stepType"`
	Visitors    int64    `json:"visitors"`
	Conversions int64    `json:"conversions"`
	DropoffRate float64  `json:"dropoffRate"`
}

type SourceCount struct {
	Source      string `json:"source"`
	Visitors    int64  `json:"visitors"`
	Conversions int64  `json:"conversions"`
}

type DeviceBreakdown struct {
	Desktop int64 `json:"desktop"`
	Mobile  int64 `json:"mobile"`
	Tablet  int64 `json:"tablet"`
}

type GeoCount struct {
	Country     string `json:"country"`
	Visitors    int64  `json:"visitors"`
	Conversions int64  `json:"conversions"`
}

type ReferrerCount struct {
	Domain      string `json:"domain"`
	Visitors    int64  `json:"visitors"`
	Conversions int64  `json:"conversions"`
}
