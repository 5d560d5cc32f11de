package domain

import "time"

// FilterRange returns the days whose date lies within [from, to]. A zero bound
// leaves that side open.
func FilterRange(days []DayRecord, from, to time.Time) []DayRecord {
	out := make([]DayRecord, 0, len(days))
	for _, d := range days {
		if !from.IsZero() && d.Date.Before(startOfDay(from.In(d.Date.Location()))) {
			continue
		}
		if !to.IsZero() && d.Date.After(startOfDay(to.In(d.Date.Location()))) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// HoursOn returns the hourly records that fall on date's calendar day.
func HoursOn(hours []HourRecord, date time.Time) []HourRecord {
	out := make([]HourRecord, 0, 24)
	for _, h := range hours {
		if sameDay(h.Timestamp, date) {
			out = append(out, h)
		}
	}
	return out
}

// Summary holds dashboard totals over a set of days.
type Summary struct {
	Days           int     `json:"days"`
	TotalVisitors  int     `json:"total_visitors"`
	AvgCaptureRate float64 `json:"avg_capture_rate"`
	AvgConversion  float64 `json:"avg_conversion"`
	AvgDwellTime   int     `json:"avg_dwell_time"`
	MenEntering    int     `json:"men_entering"`
	WomenEntering  int     `json:"women_entering"`
	GroupEntering  int     `json:"group_entering"`
}

// Summarize totals visitors and averages the daily ratios. An empty input
// yields a zero Summary.
func Summarize(days []DayRecord) Summary {
	s := Summary{Days: len(days)}
	if len(days) == 0 {
		return s
	}

	var capture, conversion float64
	var dwell int
	for _, d := range days {
		s.TotalVisitors += d.VisitorsEntering
		s.MenEntering += d.MenEntering
		s.WomenEntering += d.WomenEntering
		s.GroupEntering += d.GroupEntering
		capture += d.CaptureRate
		conversion += d.Conversion
		dwell += d.DwellTime
	}

	n := float64(len(days))
	s.AvgCaptureRate = round2(capture / n)
	s.AvgConversion = round2(conversion / n)
	s.AvgDwellTime = round0(float64(dwell) / n)
	return s
}

// Gender is the men/women share of entering visitors, in whole percent.
type Gender struct {
	MenPercent   int `json:"men_percent"`
	WomenPercent int `json:"women_percent"`
}

// GenderSplit reports the share of men and women among entering visitors.
// It returns false when neither was counted.
func GenderSplit(d DayRecord) (Gender, bool) {
	total := d.MenEntering + d.WomenEntering
	if total == 0 {
		return Gender{}, false
	}
	men := round0(percent(d.MenEntering, total))
	return Gender{MenPercent: men, WomenPercent: 100 - men}, true
}
