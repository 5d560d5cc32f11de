package domain

import (
	"fmt"
	"strings"
	"time"
)

// BenchmarkMode selects how a comparison record is produced.
type BenchmarkMode int

const (
	BenchmarkNone BenchmarkMode = iota
	BenchmarkExplicit
	BenchmarkWeekdayAverage
)

func (m BenchmarkMode) String() string {
	switch m {
	case BenchmarkExplicit:
		return "explicit"
	case BenchmarkWeekdayAverage:
		return "weekday"
	default:
		return "none"
	}
}

// ParseBenchmarkMode accepts "none", "explicit" or "weekday" (case-insensitive,
// empty means none).
func ParseBenchmarkMode(s string) (BenchmarkMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BenchmarkNone, nil
	case "explicit", "date":
		return BenchmarkExplicit, nil
	case "weekday", "weekday-average", "average":
		return BenchmarkWeekdayAverage, nil
	default:
		return BenchmarkNone, fmt.Errorf("unknown benchmark mode %q", s)
	}
}

// BenchmarkSelection is the caller's benchmark choice. The explicit date and
// the weekday average are mutually exclusive; the With* methods enforce that.
type BenchmarkSelection struct {
	Mode BenchmarkMode
	Date time.Time // only meaningful for BenchmarkExplicit
}

// WithExplicit switches to an explicit benchmark date, dropping weekday average.
func (s BenchmarkSelection) WithExplicit(date time.Time) BenchmarkSelection {
	return BenchmarkSelection{Mode: BenchmarkExplicit, Date: date}
}

// WithWeekdayAverage switches to the weekday average, dropping any explicit date.
func (s BenchmarkSelection) WithWeekdayAverage() BenchmarkSelection {
	return BenchmarkSelection{Mode: BenchmarkWeekdayAverage}
}

// Cleared disables benchmarking.
func (s BenchmarkSelection) Cleared() BenchmarkSelection {
	return BenchmarkSelection{}
}

// Benchmark is a comparison record for the selected day.
type Benchmark struct {
	Record    DayRecord `json:"record"`
	Label     string    `json:"label"`
	Synthetic bool      `json:"synthetic"`
}

// SelectBenchmark returns the comparison record for selected under sel. The
// boolean is false when no benchmark should be shown.
func SelectBenchmark(days []DayRecord, selected time.Time, sel BenchmarkSelection) (Benchmark, bool) {
	switch sel.Mode {
	case BenchmarkExplicit:
		d, ok := FindDay(days, sel.Date)
		if !ok {
			return Benchmark{}, false
		}
		return Benchmark{Record: d, Label: d.Date.Format("Mon 02 Jan 2006")}, true
	case BenchmarkWeekdayAverage:
		return weekdayAverage(days, selected)
	default:
		return Benchmark{}, false
	}
}

// FindDay returns the record for date's calendar day.
func FindDay(days []DayRecord, date time.Time) (DayRecord, bool) {
	for _, d := range days {
		if sameDay(d.Date, date) {
			return d, true
		}
	}
	return DayRecord{}, false
}

func weekdayAverage(days []DayRecord, selected time.Time) (Benchmark, bool) {
	weekday := selected.Weekday()

	var (
		n                                int
		entering, leaving                int
		menIn, menOut, womenIn, womenOut int
		groupIn, groupOut, passersby     int
		dwell                            int
		capture, conversion, accuracy    float64
		temp, precip, wind               float64
	)
	for _, d := range days {
		if d.Date.Weekday() != weekday {
			continue
		}
		n++
		entering += d.VisitorsEntering
		leaving += d.VisitorsLeaving
		menIn += d.MenEntering
		menOut += d.MenLeaving
		womenIn += d.WomenEntering
		womenOut += d.WomenLeaving
		groupIn += d.GroupEntering
		groupOut += d.GroupLeaving
		passersby += d.Passersby
		dwell += d.DwellTime
		capture += d.CaptureRate
		conversion += d.Conversion
		accuracy += d.DataAccuracy
		temp += d.Temperature
		precip += d.Precipitation
		wind += d.Windspeed
	}
	if n == 0 {
		return Benchmark{}, false
	}

	count := float64(n)
	meanInt := func(sum int) int { return round0(float64(sum) / count) }

	rec := DayRecord{
		Date:             startOfDay(selected),
		VisitorsEntering: meanInt(entering),
		VisitorsLeaving:  meanInt(leaving),
		MenEntering:      meanInt(menIn),
		MenLeaving:       meanInt(menOut),
		WomenEntering:    meanInt(womenIn),
		WomenLeaving:     meanInt(womenOut),
		GroupEntering:    meanInt(groupIn),
		GroupLeaving:     meanInt(groupOut),
		Passersby:        meanInt(passersby),
		DwellTime:        meanInt(dwell),
		CaptureRate:      round2(capture / count),
		Conversion:       round2(conversion / count),
		DataAccuracy:     round1(accuracy / count),
		Temperature:      round1(temp / count),
		Precipitation:    round1(precip / count),
		Windspeed:        round1(wind / count),
	}
	if actual, ok := FindDay(days, selected); ok {
		rec.WeatherSymbol = actual.WeatherSymbol
	}

	return Benchmark{
		Record:    rec,
		Label:     weekday.String() + " Average",
		Synthetic: true,
	}, true
}
