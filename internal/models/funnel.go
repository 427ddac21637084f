package models

import "time"

// FunnelStatus is the lifecycle state of a funnel.
type FunnelStatus string

const (
	FunnelDraft    FunnelStatus = "draft"
	FunnelActive   FunnelStatus = "active"
	FunnelPaused   FunnelStatus = "paused"
	FunnelArchived FunnelStatus = "archived"
)

// FunnelStatuses lists every status in display order.
var FunnelStatuses = []FunnelStatus{FunnelDraft, FunnelActive, FunnelPaused, FunnelArchived}

// Valid reports whether s is a known status.
func (s FunnelStatus) Valid() bool {
	for _, known := range FunnelStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Default theme values applied to new funnels.
const (
	DefaultPrimaryColor   = "#3B82F6"
	DefaultSecondaryColor = "#8B5CF6"
	DefaultFontFamily     = "Inter"
)

// Funnel is a user-owned ordered sequence of marketing steps with running totals.
type Funnel struct {
	ID          string         `json:"id" bson:"_id"`
	UserID      string         `json:"user" bson:"user"`
	Name        string         `json:"name" bson:"name"`
	Description string         `json:"description" bson:"description"`
	Steps       []Step         `json:"steps" bson:"steps"`
	Status      FunnelStatus   `json:"status" bson:"status"`
	TemplateID  string         `json:"template,omitempty" bson:"template,omitempty"`
	Settings    FunnelSettings `json:"settings" bson:"settings"`
	Stats       FunnelStats    `json:"stats" bson:"stats"`
	IsPublished bool           `json:"isPublished" bson:"isPublished"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// FunnelSettings holds presentation and integration options.
type FunnelSettings struct {
	Theme        Theme         `json:"theme" bson:"theme"`
	Domain       string        `json:"domain,omitempty" bson:"domain,omitempty"`
	CustomCSS    string        `json:"customCss,omitempty" bson:"customCss,omitempty"`
	Analytics    PixelSettings `json:"analytics" bson:"analytics"`
	Integrations []Integration `json:"integrations" bson:"integrations"`
}

type Theme struct {
	PrimaryColor   string `json:"primaryColor" bson:"primaryColor"`
	SecondaryColor string `json:"secondaryColor" bson:"secondaryColor"`
	FontFamily     string `json:"fontFamily" bson:"fontFamily"`
}

// WithDefaults fills empty theme fields with the default palette.
func (t Theme) WithDefaults() Theme {
	if t.PrimaryColor == "" {
		t.PrimaryColor = DefaultPrimaryColor
	}
	if t.SecondaryColor == "" {
		t.SecondaryColor = DefaultSecondaryColor
	}
	if t.FontFamily == "" {
		t.FontFamily = DefaultFontFamily
	}
	return t
}

type PixelSettings struct {
	GoogleAnalytics string `json:"googleAnalytics,omitempty" bson:"googleAnalytics,omitempty"`
	FacebookPixel   string `json:"facebookPixel,omitempty" bson:"facebookPixel,omitempty"`
}

type Integration struct {
	Type   string         `json:"type" bson:"type"`
	Config map[string]any `json:"config,omitempty" bson:"config,omitempty"`
}

// FunnelStats are lifetime totals maintained by the tracking path.
type FunnelStats struct {
	Visitors       int64   `json:"visitors" bson:"visitors"`
	Conversions    int64   `json:"conversions" bson:"conversions"`
	Revenue        float64 `json:"revenue" bson:"revenue"`
	ConversionRate float64 `json:"conversionRate" bson:"conversionRate"`
}

// Apply adds d to the totals and recomputes the conversion rate.
func (s *FunnelStats) Apply(d FunnelDelta) {
	s.Visitors += d.Visitors
	s.Conversions += d.Conversions
	s.Revenue += d.Revenue
	s.ConversionRate = ConversionRate(s.Conversions, s.Visitors)
}

// FunnelDelta is the change a single event makes to funnel totals.
type FunnelDelta struct {
	Visitors    int64
	Conversions int64
	Revenue     float64
}

// Empty reports whether applying d would change nothing.
func (d FunnelDelta) Empty() bool {
	return d.Visitors == 0 && d.Conversions == 0 && d.Revenue == 0
}

// ConversionRate returns conversions/visitors as a percentage, 0 without visitors.
func ConversionRate(conversions, visitors int64) float64 {
	if visitors <= 0 {
		return 0
	}
	return float64(conversions) / float64(visitors) * 100
}
