package domain

import (
	"math"
	"sort"
)

// Aggregator folds hourly records into daily records using a fixed set of
// business hours.
type Aggregator struct {
	hours BusinessHours
}

// NewAggregator creates an Aggregator bound to the given business hours.
func NewAggregator(hours BusinessHours) *Aggregator {
	return &Aggregator{hours: hours}
}

// BusinessHours returns the window table the aggregator filters with.
func (a *Aggregator) BusinessHours() BusinessHours {
	return a.hours
}

// dayAcc tracks one day during the fold. liveEnd is the LiveVisitors of the
// last hour seen for that date, business hours or not.
type dayAcc struct {
	day     DayRecord
	liveEnd int
}

// Aggregate produces one DayRecord per distinct calendar date in hours, sorted
// by date. Only hours inside the weekday's window contribute to the sums.
func (a *Aggregator) Aggregate(hours []HourRecord) []DayRecord {
	index := make(map[string]int)
	accs := make([]dayAcc, 0)

	for _, h := range hours {
		key := DateKey(h.Timestamp)
		i, ok := index[key]
		if !ok {
			i = len(accs)
			index[key] = i
			accs = append(accs, dayAcc{day: DayRecord{Date: startOfDay(h.Timestamp)}})
		}

		acc := &accs[i]
		acc.liveEnd = h.LiveVisitors

		if !a.hours.Open(h.Timestamp) {
			continue
		}
		d := &acc.day
		d.VisitorsEntering += h.VisitorsEntering
		d.VisitorsLeaving += h.VisitorsLeaving
		d.MenEntering += h.MenEntering
		d.MenLeaving += h.MenLeaving
		d.WomenEntering += h.WomenEntering
		d.WomenLeaving += h.WomenLeaving
		d.GroupEntering += h.GroupEntering
		d.GroupLeaving += h.GroupLeaving
		d.Passersby += h.Passersby
	}

	days := make([]DayRecord, len(accs))
	for i := range accs {
		days[i] = withDerivedMetrics(accs[i].day, accs[i].liveEnd)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

func withDerivedMetrics(d DayRecord, liveEnd int) DayRecord {
	d.CaptureRate = round2(percent(d.VisitorsEntering, d.Passersby))
	d.Conversion = round2(percent(d.GroupEntering, d.VisitorsEntering))
	if d.VisitorsEntering > 0 {
		d.DwellTime = round0(float64(liveEnd) / float64(d.VisitorsEntering) * 10)
	}
	d.DataAccuracy = dataAccuracy(d.VisitorsEntering, d.VisitorsLeaving)
	return d
}

// dataAccuracy is the symmetry between entering and leaving counts. Either
// count being zero yields 0.
func dataAccuracy(entering, leaving int) float64 {
	if entering == 0 || leaving == 0 {
		return 0
	}
	e, l := float64(entering), float64(leaving)
	return round1(math.Min(e/l, l/e) * 100)
}
