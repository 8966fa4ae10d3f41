package stats

import (
	"fmt"
	"net/url"
	"time"

	"github.com/mauv0809/mahjong-league/internal/apperr"
)

const (
	dateLayout = "2006-01-02"
	// WallClockLayout renders a game time in its own zone, which is what date
	// filters compare against.
	WallClockLayout = "2006-01-02 15:04:05"
)

// Filter narrows the records fed to the aggregator. Zero values mean "all".
type Filter struct {
	TeamID   string
	DateFrom string // YYYY-MM-DD, inclusive from 00:00:00
	DateTo   string // YYYY-MM-DD, inclusive until 23:59:59
}

// ParseFilter reads teamFilter, dateFrom and dateTo from query parameters.
// Dates may be plain dates or RFC 3339 timestamps; only the calendar date in
// the timestamp's own zone is kept.
func ParseFilter(q url.Values) (Filter, error) {
	f := Filter{TeamID: q.Get("teamFilter")}
	if f.TeamID == "all" {
		f.TeamID = ""
	}

	var err error
	if f.DateFrom, err = parseDate(q.Get("dateFrom")); err != nil {
		return Filter{}, fmt.Errorf("dateFrom: %w", err)
	}
	if f.DateTo, err = parseDate(q.Get("dateTo")); err != nil {
		return Filter{}, fmt.Errorf("dateTo: %w", err)
	}
	if f.DateFrom != "" && f.DateTo != "" && f.DateFrom > f.DateTo {
		return Filter{}, fmt.Errorf("%w: dateFrom %s is after dateTo %s", apperr.ErrInvalidInput, f.DateFrom, f.DateTo)
	}
	return f, nil
}

func parseDate(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t.Format(dateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(dateLayout), nil
	}
	return "", fmt.Errorf("%w: %q is not an ISO-8601 date", apperr.ErrInvalidInput, value)
}

// Bounds returns the inclusive wall-clock bounds of the date range. An unset
// side is returned as an empty string.
func (f Filter) Bounds() (from, to string) {
	if f.DateFrom != "" {
		from = f.DateFrom + " 00:00:00"
	}
	if f.DateTo != "" {
		to = f.DateTo + " 23:59:59"
	}
	return from, to
}

// Match reports whether a record passes the filter.
func (f Filter) Match(r Record) bool {
	if f.TeamID != "" && (r.TeamID == nil || *r.TeamID != f.TeamID) {
		return false
	}
	from, to := f.Bounds()
	wall := r.GameDate.Format(WallClockLayout)
	if from != "" && wall < from {
		return false
	}
	if to != "" && wall > to {
		return false
	}
	return true
}

// Apply returns the records that pass the filter.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// DateRange drops the team filter and keeps the date bounds.
func (f Filter) DateRange() Filter {
	return Filter{DateFrom: f.DateFrom, DateTo: f.DateTo}
}

// IsZero reports whether the filter lets everything through.
func (f Filter) IsZero() bool {
	return f == Filter{}
}
