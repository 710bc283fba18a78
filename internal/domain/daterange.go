package domain

import "time"

// Day returns midnight UTC of t's calendar day, as seen in t's own location.
// All travel and participation dates are normalised through Day so that
// equality and ordering compare calendar days only.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is a closed interval of calendar days [Start, End].
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalises both ends through Day.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Ordered reports whether Start is not after End.
func (r DateRange) Ordered() bool {
	return !r.Start.After(r.End)
}

// Contains reports whether day d falls inside the range, both ends inclusive.
func (r DateRange) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Within reports whether r lies entirely inside outer.
func (r DateRange) Within(outer DateRange) bool {
	return outer.Contains(r.Start) && outer.Contains(r.End)
}

// Len returns the number of calendar days in the range, or 0 when unordered.
func (r DateRange) Len() int {
	if !r.Ordered() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Days expands the range into one entry per calendar day, in order.
// An unordered range yields nil.
func (r DateRange) Days() []time.Time {
	if !r.Ordered() {
		return nil
	}
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
