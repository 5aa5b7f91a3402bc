// Package analytics turns an in-memory set of vital records into filtered
// subsets, aggregate statistics, chart series, rule-based insights and
// report documents.
//
// Every function here is a pure, synchronous pass over its input: nothing
// performs I/O, nothing mutates the slice it is given, and the current time
// is always passed in explicitly. Callers may run several of them
// concurrently over the same records.
package analytics

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/healthmate/internal/models"
)

// ErrInvalidWindow is returned by ParseWindow for malformed selectors.
var ErrInvalidWindow = errors.New("invalid window")

const day = 24 * time.Hour

// maxWindowDays is the widest window with a computable start. Wider windows
// start at the zero time and keep every record up to now.
const maxWindowDays = 100_000

// Window is a trailing day-count. Zero days selects every record.
type Window struct {
	Days int `json:"days"`
}

// AllTime selects every record.
var AllTime = Window{}

// LastDays returns a window covering the trailing n days.
func LastDays(n int) Window {
	if n < 0 {
		n = 0
	}
	return Window{Days: n}
}

// ParseWindow parses "all", "" or a non-negative day count such as "30".
func ParseWindow(s string) (Window, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "all" {
		return AllTime, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	return Window{Days: n}, nil
}

// All reports whether the window is unbounded.
func (w Window) All() bool { return w.Days <= 0 }

// Start returns the inclusive lower bound of the window at now.
// It is the zero time for AllTime and for windows wider than maxWindowDays.
func (w Window) Start(now time.Time) time.Time {
	if w.All() || w.Days > maxWindowDays {
		return time.Time{}
	}
	return now.Add(-time.Duration(w.Days) * day)
}

// Label is the human-readable window name used on reports.
func (w Window) Label() string {
	if w.All() {
		return "All Time"
	}
	if w.Days == 1 {
		return "Last 1 Day"
	}
	return fmt.Sprintf("Last %d Days", w.Days)
}

// String returns the selector form accepted by ParseWindow.
func (w Window) String() string {
	if w.All() {
		return "all"
	}
	return strconv.Itoa(w.Days)
}

// FilterByRange returns the records captured within the window ending at
// now, ordered by timestamp ascending. Records with equal timestamps keep
// their input order. The input slice is not modified.
func FilterByRange(records []models.VitalRecord, w Window, now time.Time) []models.VitalRecord {
	out := make([]models.VitalRecord, 0, len(records))
	if w.All() {
		out = append(out, records...)
	} else {
		start := w.Start(now)
		for _, r := range records {
			if r.Timestamp.Before(start) || r.Timestamp.After(now) {
				continue
			}
			out = append(out, r)
		}
	}
	SortByTime(out)
	return out
}

// SortByTime orders records in place by timestamp ascending, stably.
func SortByTime(records []models.VitalRecord) {
	slices.SortStableFunc(records, func(a, b models.VitalRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}

// MostRecentFirst returns up to limit records ordered newest first.
// A non-positive limit returns all of them.
func MostRecentFirst(records []models.VitalRecord, limit int) []models.VitalRecord {
	sorted := slices.Clone(records)
	SortByTime(sorted)
	slices.Reverse(sorted)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
