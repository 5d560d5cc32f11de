// Command validate performs data integrity checks on a footfall feed file. It
// parses the feed with the production domain package and verifies the hourly
// accumulators, the business-hours aggregation, and the derived ratios against
// independent recomputations.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -feed data/mock/venue_week.csv \
//	  -tz Europe/Brussels
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/footfall-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	feedPath := flag.String("feed", "", "path to a semicolon-separated footfall feed")
	tz := flag.String("tz", "UTC", "time zone the feed timestamps are recorded in")
	hoursSpec := flag.String("business-hours", "", "business hours override, e.g. 0=8-16,6=8-20")
	flag.Parse()

	if *feedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*feedPath, *tz, *hoursSpec); code != 0 {
		os.Exit(code)
	}
}

func run(feedPath, tz, hoursSpec string) int {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load time zone: %v\n", err)
		return 1
	}
	hours, err := domain.ParseBusinessHours(hoursSpec, domain.DefaultBusinessHours())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	// ── Load and parse ──
	fmt.Println("=== Footfall Feed Integrity Validation ===")
	fmt.Println()

	data, err := os.ReadFile(feedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read feed: %v\n", err)
		return 1
	}

	res, err := domain.ParseFeed(string(data), loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse feed: %v\n", err)
		return 1
	}
	days := domain.NewAggregator(hours).Aggregate(res.Hours)

	// ── Run validation phases ──
	phases := []*phase{
		validateAccumulators(res.Hours),
		validateHourlyRatios(res.Hours),
		validateCoverage(res.Hours, days, hours),
		validateDailyRatios(days),
		validateWeekdayAverages(days),
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d hourly, %d skipped rows, %d days\n", len(res.Hours), res.Skipped, len(days))
	if len(days) > 0 {
		fmt.Printf("Range: %s to %s\n", domain.DateKey(days[0].Date), domain.DateKey(days[len(days)-1].Date))
		s := domain.Summarize(days)
		fmt.Printf("Visitors: %d total, capture %.2f%%, conversion %.2f%%\n", s.TotalVisitors, s.AvgCaptureRate, s.AvgConversion)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

// ── Phase 1: running totals ──

func validateAccumulators(hours []domain.HourRecord) *phase {
	p := &phase{name: "Accumulators reset at midnight"}
	var accIn, accOut int
	for i, h := range hours {
		if i == 0 || domain.DateKey(h.Timestamp) != domain.DateKey(hours[i-1].Timestamp) {
			accIn, accOut = 0, 0
		}
		accIn += h.VisitorsEntering
		accOut += h.VisitorsLeaving

		ts := h.Timestamp.Format(domain.TimestampLayout)
		if h.AccumulatedVisitors != accIn {
			p.errorf("%s: accumulated visitors %d, want %d", ts, h.AccumulatedVisitors, accIn)
		}
		if h.AccumulatedVisitorsLeaving != accOut {
			p.errorf("%s: accumulated leaving %d, want %d", ts, h.AccumulatedVisitorsLeaving, accOut)
		}
		if h.LiveVisitors < 0 {
			p.errorf("%s: live visitors %d is negative", ts, h.LiveVisitors)
		}
		if want := max(0, accIn-accOut); h.LiveVisitors != want {
			p.errorf("%s: live visitors %d, want %d", ts, h.LiveVisitors, want)
		}
	}
	return p
}

// ── Phase 2: hourly capture rate ──

func validateHourlyRatios(hours []domain.HourRecord) *phase {
	p := &phase{name: "Hourly capture rate"}
	for _, h := range hours {
		want := 0.0
		if h.Passersby > 0 {
			want = round(float64(h.VisitorsEntering)/float64(h.Passersby)*100, 2)
		}
		if !floatEq(h.CaptureRate, want) {
			p.errorf("%s: capture rate %.2f, want %.2f", h.Timestamp.Format(domain.TimestampLayout), h.CaptureRate, want)
		}
	}
	return p
}

// ── Phase 3: every in-hours reading lands in exactly one day ──

func validateCoverage(hours []domain.HourRecord, days []domain.DayRecord, bh domain.BusinessHours) *phase {
	p := &phase{name: "Business-hours coverage"}

	wantIn := map[string]int{}
	wantOut := map[string]int{}
	wantPass := map[string]int{}
	for _, h := range hours {
		if !bh.Open(h.Timestamp) {
			continue
		}
		key := domain.DateKey(h.Timestamp)
		wantIn[key] += h.VisitorsEntering
		wantOut[key] += h.VisitorsLeaving
		wantPass[key] += h.Passersby
	}

	seen := map[string]bool{}
	for i, d := range days {
		key := domain.DateKey(d.Date)
		if seen[key] {
			p.errorf("%s: duplicate day", key)
		}
		seen[key] = true
		if i > 0 && !days[i-1].Date.Before(d.Date) {
			p.errorf("%s: out of order after %s", key, domain.DateKey(days[i-1].Date))
		}
		if d.VisitorsEntering != wantIn[key] {
			p.errorf("%s: visitors entering %d, want %d", key, d.VisitorsEntering, wantIn[key])
		}
		if d.VisitorsLeaving != wantOut[key] {
			p.errorf("%s: visitors leaving %d, want %d", key, d.VisitorsLeaving, wantOut[key])
		}
		if d.Passersby != wantPass[key] {
			p.errorf("%s: passersby %d, want %d", key, d.Passersby, wantPass[key])
		}
	}
	for key := range wantIn {
		if !seen[key] {
			p.errorf("%s: in-hours readings but no day record", key)
		}
	}
	return p
}

// ── Phase 4: derived daily metrics ──

func validateDailyRatios(days []domain.DayRecord) *phase {
	p := &phase{name: "Daily ratios guarded and in range"}
	for _, d := range days {
		key := domain.DateKey(d.Date)
		for name, v := range map[string]float64{
			"capture rate":  d.CaptureRate,
			"conversion":    d.Conversion,
			"data accuracy": d.DataAccuracy,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("%s: %s is %v", key, name, v)
			}
			if v < 0 {
				p.errorf("%s: %s %.2f is negative", key, name, v)
			}
		}
		if d.DataAccuracy > 100 {
			p.errorf("%s: data accuracy %.1f exceeds 100", key, d.DataAccuracy)
		}
		if d.DwellTime < 0 {
			p.errorf("%s: dwell time %d is negative", key, d.DwellTime)
		}
		if d.VisitorsEntering == 0 && d.Conversion != 0 {
			p.errorf("%s: conversion %.2f with no visitors", key, d.Conversion)
		}
	}
	return p
}

// ── Phase 5: weekday benchmark ──

func validateWeekdayAverages(days []domain.DayRecord) *phase {
	p := &phase{name: "Weekday average benchmark"}

	var sel domain.BenchmarkSelection
	sel = sel.WithWeekdayAverage()
	checked := map[time.Weekday]bool{}
	for _, d := range days {
		wd := d.Date.Weekday()
		if checked[wd] {
			continue
		}
		checked[wd] = true

		n, sum := 0, 0
		for _, o := range days {
			if o.Date.Weekday() == wd {
				n++
				sum += o.VisitorsEntering
			}
		}
		want := int(math.Round(float64(sum) / float64(n)))

		bm, ok := domain.SelectBenchmark(days, d.Date, sel)
		if !ok {
			p.errorf("%s: no weekday average", wd)
			continue
		}
		if bm.Record.VisitorsEntering != want {
			p.errorf("%s: average visitors %d, want %d over %d days", wd, bm.Record.VisitorsEntering, want, n)
		}
		if bm.Label != wd.String()+" Average" {
			p.errorf("%s: label %q", wd, bm.Label)
		}
	}
	return p
}

// ── Helpers ──

func round(v float64, decimals int) float64 {
	f := math.Pow(10, float64(decimals))
	return math.Round(v*f) / f
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
