// Package period turns calculate_on.period declarations into stable bucket
// descriptors. Two manifests evaluated inside the same bucket produce the
// same descriptor, so the resulting tags only roll over when the calendar
// does.
package period

import (
	"fmt"
	"time"

	"github.com/orckahq/orcka/internal/manifest"
)

// Recognized period units.
const (
	UnitDay   = "day"
	UnitWeek  = "week"
	UnitMonth = "month"
	UnitYear  = "year"
	UnitNone  = "none"
)

// shorthand maps the string form of a period to its unit.
var shorthand = map[string]string{
	"daily":   UnitDay,
	"weekly":  UnitWeek,
	"monthly": UnitMonth,
	"yearly":  UnitYear,
	"none":    UnitNone,
}

// ValidShorthand reports whether s is an accepted period string.
func ValidShorthand(s string) bool {
	_, ok := shorthand[s]
	return ok
}

// ValidUnit reports whether u is a recognized period unit.
func ValidUnit(u string) bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear, UnitNone:
		return true
	}
	return false
}

// Normalize resolves a manifest period into a (unit, number) pair.
// Shorthand strings normalize to number 1.
func Normalize(p *manifest.Period) (string, int, error) {
	if p == nil {
		return UnitNone, 0, nil
	}
	if p.Raw != "" {
		unit, ok := shorthand[p.Raw]
		if !ok {
			return "", 0, fmt.Errorf("unknown period '%s' — must be one of: daily, weekly, monthly, yearly, none", p.Raw)
		}
		return unit, 1, nil
	}
	if !ValidUnit(p.Unit) {
		return "", 0, fmt.Errorf("unknown period unit '%s' — must be one of: day, week, month, year, none", p.Unit)
	}
	if p.Unit != UnitNone && p.Number <= 0 {
		return "", 0, fmt.Errorf("period number must be positive, got %d", p.Number)
	}
	return p.Unit, p.Number, nil
}

// Bucket returns the descriptor for the bucket containing now. The
// descriptor is an opaque string to the hash engine; its only contract is
// stability within a bucket and change across bucket boundaries.
func Bucket(unit string, n int, now time.Time) string {
	if unit == UnitNone || n <= 0 {
		return ""
	}
	now = now.UTC()
	switch unit {
	case UnitDay:
		return fmt.Sprintf("day:%04d-%03d/%d", now.Year(), (now.YearDay()-1)/n, n)
	case UnitWeek:
		year, week := now.ISOWeek()
		return fmt.Sprintf("week:%04d-W%02d/%d", year, (week-1)/n, n)
	case UnitMonth:
		return fmt.Sprintf("month:%04d-%02d/%d", now.Year(), (int(now.Month())-1)/n, n)
	case UnitYear:
		return fmt.Sprintf("year:%d/%d", now.Year()-now.Year()%n, n)
	}
	return ""
}
