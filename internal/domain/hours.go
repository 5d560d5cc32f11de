package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HourWindow is a half-open [Start, End) range of hours of the day.
type HourWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether hour falls inside the window.
func (w HourWindow) Contains(hour int) bool {
	return hour >= w.Start && hour < w.End
}

// BusinessHours maps each weekday (time.Sunday == 0) to its opening window.
// It is a value type; copies are independent.
type BusinessHours [7]HourWindow

// DefaultBusinessHours is the venue's standard week: short Sunday, late Saturday
// start, full weekdays.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		time.Sunday:    {Start: 8, End: 16},
		time.Monday:    {Start: 7, End: 20},
		time.Tuesday:   {Start: 7, End: 20},
		time.Wednesday: {Start: 7, End: 20},
		time.Thursday:  {Start: 7, End: 20},
		time.Friday:    {Start: 7, End: 20},
		time.Saturday:  {Start: 8, End: 20},
	}
}

// Open reports whether t falls inside business hours for its local weekday.
func (b BusinessHours) Open(t time.Time) bool {
	return b[t.Weekday()].Contains(t.Hour())
}

// ParseBusinessHours applies overrides of the form "0=8-16,6=8-20" on top of
// base. Weekdays use time.Weekday numbering. An empty spec returns base.
func ParseBusinessHours(spec string, base BusinessHours) (BusinessHours, error) {
	out := base
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return out, nil
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		dayStr, window, ok := strings.Cut(part, "=")
		if !ok {
			return base, fmt.Errorf("business hours %q: expected weekday=start-end", part)
		}
		day, err := strconv.Atoi(strings.TrimSpace(dayStr))
		if err != nil || day < 0 || day > 6 {
			return base, fmt.Errorf("business hours %q: weekday must be 0-6", part)
		}
		startStr, endStr, ok := strings.Cut(window, "-")
		if !ok {
			return base, fmt.Errorf("business hours %q: expected start-end", part)
		}
		start, errS := strconv.Atoi(strings.TrimSpace(startStr))
		end, errE := strconv.Atoi(strings.TrimSpace(endStr))
		if errS != nil || errE != nil || start < 0 || end > 24 || start > end {
			return base, fmt.Errorf("business hours %q: need 0 <= start <= end <= 24", part)
		}
		out[day] = HourWindow{Start: start, End: end}
	}
	return out, nil
}
