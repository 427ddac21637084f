package analytics

import (
	"strconv"
	"strings"

	"github.com/seuros/jogo/internal/apierr"
)

const (
	// DefaultPeriod is the dashboard window in days when none is configured.
	DefaultPeriod = 30
	// MaxPeriod bounds the window a single request may aggregate.
	MaxPeriod = 365
)

// ParsePeriod reads the period query parameter. An empty value yields def.
func ParsePeriod(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if def < 1 || def > MaxPeriod {
			return DefaultPeriod, nil
		}
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > MaxPeriod {
		return 0, apierr.Validation("period must be an integer between 1 and 365")
	}
	return days, nil
}
