// Command genmock writes a synthetic footfall feed in the sensor's
// semicolon-separated format, for local runs and load tests. The output is
// deterministic for a given seed and validated with the domain parser before
// it is written.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -start 2024-06-03 -days 28 -seed 7 \
//	  -out data/mock/venue_4w.csv
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/footfall-etl/internal/domain"
)

const header = "Timestamp;Visitors In;Visitors Out;Men In;Men Out;Women In;Women Out;Group In;Group Out;Passersby"

// weekdayScale shifts traffic by day, Sunday first.
var weekdayScale = [7]float64{0.7, 1.0, 0.9, 1.1, 1.0, 1.3, 1.6}

type genOptions struct {
	start     time.Time
	days      int
	firstHour int
	lastHour  int
	peak      float64
	seed      uint64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	start := flag.String("start", "2024-06-03", "first day, YYYY-MM-DD")
	days := flag.Int("days", 7, "number of days to generate")
	firstHour := flag.Int("first-hour", 6, "first hour of readings each day")
	lastHour := flag.Int("last-hour", 22, "last hour of readings each day")
	peak := flag.Float64("peak", 60, "visitors entering at the busiest hour of an average day")
	seed := flag.Uint64("seed", 1, "random seed")
	out := flag.String("out", "", "output path for the feed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	startDate, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	if *firstHour < 0 || *lastHour > 23 || *firstHour > *lastHour {
		return fmt.Errorf("invalid hour range %d-%d", *firstHour, *lastHour)
	}

	text := generate(genOptions{
		start:     startDate,
		days:      *days,
		firstHour: *firstHour,
		lastHour:  *lastHour,
		peak:      *peak,
		seed:      *seed,
	})

	// Round-trip through the real parser so a bad generator never ships a fixture.
	res, err := domain.ParseFeed(text, time.UTC)
	if err != nil {
		return fmt.Errorf("generated feed does not parse: %w", err)
	}
	aggregated := domain.NewAggregator(domain.DefaultBusinessHours()).Aggregate(res.Hours)

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, []byte(text), 0o600); err != nil {
		return fmt.Errorf("writing feed: %w", err)
	}
	log.Printf("wrote %s: %d hourly rows, %d days", *out, len(res.Hours), len(aggregated))

	printStats(aggregated)
	return nil
}

func generate(opts genOptions) string {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	for d := range opts.days {
		day := opts.start.AddDate(0, 0, d)
		scale := weekdayScale[day.Weekday()]
		inside := 0

		for h := opts.firstHour; h <= opts.lastHour; h++ {
			bell := math.Exp(-math.Pow(float64(h-14), 2) / 18)
			in := int(math.Round(opts.peak*bell*scale)) + rng.IntN(5)

			var out int
			if h == opts.lastHour {
				out = inside + in // everyone leaves by closing
			} else {
				out = min(inside+in, int(math.Round(float64(in)*0.8))+rng.IntN(4))
			}
			inside = max(0, inside+in-out)

			menIn, womenIn, groupIn := split(in)
			menOut, womenOut, groupOut := split(out)
			passersby := int(math.Round(float64(in)*4.5)) + 20 + rng.IntN(7)

			fmt.Fprintf(&b, "%d/%d/%d %d:00;%d;%d;%d;%d;%d;%d;%d;%d;%d\n",
				day.Day(), day.Month(), day.Year(), h,
				in, out, menIn, menOut, womenIn, womenOut, groupIn, groupOut, passersby)
		}
	}
	return b.String()
}

// split divides a head count into men, women and group visitors.
func split(n int) (men, women, group int) {
	group = n / 10
	men = n * 45 / 100
	women = n - men - group
	return men, women, group
}

func printStats(days []domain.DayRecord) {
	if len(days) == 0 {
		return
	}
	s := domain.Summarize(days)

	fmt.Println()
	fmt.Println("=== Generated Feed Statistics ===")
	fmt.Printf("Days: %d (%s to %s)\n", s.Days, domain.DateKey(days[0].Date), domain.DateKey(days[len(days)-1].Date))
	fmt.Printf("Visitors (business hours): %d\n", s.TotalVisitors)
	fmt.Printf("Average capture rate: %.2f%%\n", s.AvgCaptureRate)
	fmt.Printf("Average conversion: %.2f%%\n", s.AvgConversion)

	fmt.Println()
	fmt.Println("Per day:")
	for _, d := range days {
		fmt.Printf("  %-10s %-9s %5d visitors  %6.2f%% capture\n",
			domain.DateKey(d.Date), d.Date.Weekday(), d.VisitorsEntering, d.CaptureRate)
	}
}
