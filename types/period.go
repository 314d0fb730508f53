package types

import "time"

// Period is a rebalance frequency.
type Period string

const (
	Week    Period = "W"
	Month   Period = "M"
	Quarter Period = "Q"
	Year    Period = "Y"
)

var periodNames = map[Period]string{
	Week:    "weekly",
	Month:   "monthly",
	Quarter: "quarterly",
	Year:    "yearly",
}

var ConvertPeriod = map[string]Period{
	"W": Week,
	"M": Month,
	"Q": Quarter,
	"Y": Year,
}

// Valid reports whether p is a known rebalance frequency.
func (p Period) Valid() bool {
	_, ok := periodNames[p]
	return ok
}

func (p Period) String() string {
	if name, ok := periodNames[p]; ok {
		return name
	}
	return string(p)
}

// Start truncates t to the beginning of its period, normalized to
// midnight UTC. Weeks start on Monday.
func (p Period) Start(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	switch p {
	case Week:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case Quarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// End returns the label for the period containing t: its last calendar
// day at midnight UTC, matching the month-end style labels of the
// exported tables.
func (p Period) End(t time.Time) time.Time {
	start := p.Start(t)
	switch p {
	case Week:
		return start.AddDate(0, 0, 6)
	case Month:
		return start.AddDate(0, 1, -1)
	case Quarter:
		return start.AddDate(0, 3, -1)
	case Year:
		return start.AddDate(1, 0, -1)
	}
	return start
}
