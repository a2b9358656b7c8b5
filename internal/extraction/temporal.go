// internal/extraction/temporal.go
package extraction

import (
	"strings"
	"time"

	"transcript-workers/internal/models"
)

var (
	completeLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
	}
	dateLayouts = []string{"2006-01-02"}
	timeLayouts = []string{"15:04:05", "15:04"}
)

// TemporalResult is the output of MergeTemporal.
type TemporalResult struct {
	Dates        []models.DateInfo
	DateRejected bool
}

// PlausibleCount returns the number of entries that passed the plausibility
// check and carry a calendar date.
func (r TemporalResult) PlausibleCount() int {
	n := 0
	for _, d := range r.Dates {
		if d.HasCalendarDate() {
			n++
		}
	}
	return n
}

// ClassifyFragment reads a mention's resolved value into a fragment. The kind
// comes from the value's shape, not the declared entity type.
func ClassifyFragment(m models.RawEntityMention, order int) models.TemporalFragment {
	value := strings.TrimSpace(m.ResolvedValue)

	if t, ok := parseAny(value, completeLayouts); ok {
		return models.TemporalFragment{
			Kind: models.FragmentComplete, Order: order, Usable: true,
			Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
			Hour: t.Hour(), Minute: t.Minute(),
		}
	}
	if t, ok := parseAny(value, dateLayouts); ok {
		return models.TemporalFragment{
			Kind: models.FragmentDateOnly, Order: order, Usable: true,
			Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		}
	}
	if t, ok := parseAny(value, timeLayouts); ok {
		return models.TemporalFragment{
			Kind: models.FragmentTimeOnly, Order: order, Usable: true,
			Hour: t.Hour(), Minute: t.Minute(),
		}
	}

	// Unreadable values are kept as standalone entries so the rejection
	// shows up in the output.
	return models.TemporalFragment{Kind: models.FragmentComplete, Order: order}
}

// MergeTemporal turns date/time mentions into an ordered list of DateInfo:
// complete values first, then date/time pairs matched FIFO, then leftovers in
// their original order. Dates with a year below minYear are replaced in place
// by rejected placeholders; a time of day without a date is exempt. minYear <= 0
// disables the year check. The flag clears only for a single entry with a
// calendar date.
func MergeTemporal(mentions []models.RawEntityMention, minYear int) TemporalResult {
	fragments := make([]models.TemporalFragment, len(mentions))
	for i, m := range mentions {
		fragments[i] = ClassifyFragment(m, i)
	}

	out := make([]models.DateInfo, 0, len(fragments))
	var dateQueue, timeQueue []int

	for i, f := range fragments {
		switch f.Kind {
		case models.FragmentComplete:
			out = append(out, standalone(f, minYear))
		case models.FragmentDateOnly:
			dateQueue = append(dateQueue, i)
		case models.FragmentTimeOnly:
			timeQueue = append(timeQueue, i)
		}
	}

	d, t := 0, 0
	for d < len(dateQueue) && t < len(timeQueue) {
		out = append(out, merged(fragments[dateQueue[d]], fragments[timeQueue[t]], minYear))
		d++
		t++
	}

	// At most one queue has entries left, already in encounter order.
	for ; d < len(dateQueue); d++ {
		out = append(out, standalone(fragments[dateQueue[d]], minYear))
	}
	for ; t < len(timeQueue); t++ {
		out = append(out, standalone(fragments[timeQueue[t]], minYear))
	}

	return TemporalResult{
		Dates:        out,
		DateRejected: !(len(out) == 1 && out[0].HasCalendarDate()),
	}
}

func merged(date, clock models.TemporalFragment, minYear int) models.DateInfo {
	return build(date.Year, date.Month, date.Day, clock.Hour, clock.Minute, date.Usable && clock.Usable, minYear)
}

func standalone(f models.TemporalFragment, minYear int) models.DateInfo {
	return build(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Usable, minYear)
}

// build produces the final value, or a rejected placeholder when the input is
// unusable or the year fails the plausibility threshold. A zero date stands
// for a time of day without a calendar date, maps to the minimal date and is
// not subject to the year check.
func build(year, month, day, hour, minute int, usable bool, minYear int) models.DateInfo {
	timeOnly := year == 0 && month == 0 && day == 0
	if !usable || (!timeOnly && minYear > 0 && year < minYear) {
		return models.RejectedDate()
	}

	var full time.Time
	if timeOnly {
		full = time.Date(1, time.January, 1, hour, minute, 0, 0, time.UTC)
	} else {
		full = time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	}

	return models.DateInfo{
		Year:     year,
		Month:    month,
		Day:      day,
		Hour:     hour,
		Minute:   minute,
		FullDate: &full,
	}
}

func parseAny(value string, layouts []string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
