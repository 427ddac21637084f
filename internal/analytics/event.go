package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/seuros/jogo/internal/apierr"
	"github.com/seuros/jogo/internal/models"
)

// Event is a validated tracking event.
type Event struct {
	FunnelID string
	Kind     models.EventKind
	Revenue  float64
	Duration *float64

	StepID    string
	Source    string
	Referrer  string
	UserAgent string
	IP        string
}

// RequestMeta carries what the HTTP layer knows about the caller.
type RequestMeta struct {
	UserAgent string
	IP        string
	Referer   string
}

// NewEvent validates a raw tracking payload. data may be nil.
func NewEvent(funnelID, event string, data map[string]any, meta RequestMeta) (Event, error) {
	funnelID = strings.TrimSpace(funnelID)
	if funnelID == "" || event == "" {
		return Event{}, apierr.Validation("funnelId and event are required")
	}
	kind, ok := models.ParseEventKind(event)
	if !ok {
		return Event{}, apierr.Validation(fmt.Sprintf("Unknown event %q", event))
	}

	ev := Event{
		FunnelID:  funnelID,
		Kind:      kind,
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		Referrer:  meta.Referer,
	}

	revenue, present, err := ParseAmount(data["revenue"])
	if err != nil {
		return Event{}, apierr.Validation("revenue must be a number")
	}
	if present {
		ev.Revenue = revenue
	}

	duration, present, err := ParseAmount(data["duration"])
	if err != nil {
		return Event{}, apierr.Validation("duration must be a number")
	}
	// A zero duration carries no sample and leaves the running mean alone.
	if present && duration != 0 {
		ev.Duration = &duration
	}

	ev.StepID = stringField(data, "stepId")
	ev.Source = stringField(data, "source")
	if ev.Source == "" {
		ev.Source = stringField(data, "utm_source")
	}
	if referrer := stringField(data, "referrer"); referrer != "" {
		ev.Referrer = referrer
	}
	return ev, nil
}

// ParseAmount accepts a JSON number or a numeric string. A missing value, null
// or empty string is reported as not present. NaN and infinities are rejected
// because they cannot be encoded back to JSON.
func ParseAmount(value any) (amount float64, present bool, err error) {
	amount, present, err = parseAmount(value)
	if err != nil || !present {
		return 0, present, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, false, fmt.Errorf("amount %v is not finite", value)
	}
	return amount, true, nil
}

func parseAmount(value any) (float64, bool, error) {
	switch v := value.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case float32:
		return float64(v), true, nil
	case int:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false, nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false, fmt.Errorf("parse amount %q: %w", v, err)
		}
		return parsed, true, nil
	default:
		return 0, false, fmt.Errorf("unsupported amount type %T", value)
	}
}

func stringField(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// SnapshotDelta is the change the event makes to today's snapshot.
// bounce and a duration-less session_duration change nothing.
func (e Event) SnapshotDelta() models.MetricDelta {
	var d models.MetricDelta
	switch e.Kind {
	case models.EventPageView:
		d.PageViews = 1
	case models.EventVisitor:
		d.Visitors = 1
	case models.EventConversion:
		d.Conversions = 1
		d.Revenue = e.Revenue
	case models.EventSessionDuration:
		d.SessionDuration = e.Duration
	}
	return d
}

// FunnelDelta is the change the event makes to the funnel's lifetime totals.
func (e Event) FunnelDelta() models.FunnelDelta {
	switch e.Kind {
	case models.EventVisitor:
		return models.FunnelDelta{Visitors: 1}
	case models.EventConversion:
		return models.FunnelDelta{Conversions: 1, Revenue: e.Revenue}
	default:
		return models.FunnelDelta{}
	}
}
