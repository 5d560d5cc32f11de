package domain

import (
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the feed's d/M/yyyy H:mm timestamp in Go layout form.
const TimestampLayout = "2/1/2006 15:04"

const (
	feedSeparator = ";"
	feedMinFields = 10
)

// countFields names feed columns 1..9 in order; column 0 is the timestamp.
var countFields = [...]string{
	"visitors_entering",
	"visitors_leaving",
	"men_entering",
	"men_leaving",
	"women_entering",
	"women_leaving",
	"group_entering",
	"group_leaving",
	"passersby",
}

// FeedResult is the outcome of parsing a raw feed.
type FeedResult struct {
	Hours   []HourRecord
	Skipped int // non-blank rows with fewer than ten fields
}

// ParseFeed turns raw feed text into hourly records. The first line is a header
// and is discarded. Short rows are skipped; anything else that fails to parse
// aborts with a *FeedParseError. Timestamps are wall-clock readings in loc and
// must increase row to row; on a fall-back day the repeated hour is read as the
// second occurrence.
func ParseFeed(text string, loc *time.Location) (FeedResult, error) {
	if loc == nil {
		loc = time.UTC
	}

	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return FeedResult{}, nil
	}

	var (
		res       = FeedResult{Hours: make([]HourRecord, 0, len(lines)-1)}
		prev      time.Time
		prevWall  time.Time
		accIn     int
		accOut    int
		havePrior bool
	)

	for i, line := range lines[1:] {
		lineNo := i + 2
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cols := strings.Split(line, feedSeparator)
		if len(cols) < feedMinFields {
			res.Skipped++
			continue
		}

		rawTS := strings.TrimSpace(cols[0])
		wall, err := time.Parse(TimestampLayout, rawTS)
		if err != nil {
			return FeedResult{}, &FeedParseError{Line: lineNo, Field: "timestamp", Value: rawTS, Err: ErrInvalidTimestamp}
		}
		ts := localInstant(wall, loc, prev)
		if havePrior && (wall.Before(prevWall) || (wall.Equal(prevWall) && !ts.After(prev))) {
			return FeedResult{}, &FeedParseError{Line: lineNo, Field: "timestamp", Value: rawTS, Err: ErrOutOfOrder}
		}

		var counts [len(countFields)]int
		for j, name := range countFields {
			n, err := parseCount(cols[j+1])
			if err != nil {
				return FeedResult{}, &FeedParseError{Line: lineNo, Field: name, Value: cols[j+1], Err: err}
			}
			counts[j] = n
		}

		if !havePrior || !sameDay(ts, prev) {
			accIn, accOut = 0, 0
		}
		accIn += counts[0]
		accOut += counts[1]

		res.Hours = append(res.Hours, HourRecord{
			Timestamp:                  ts,
			VisitorsEntering:           counts[0],
			VisitorsLeaving:            counts[1],
			MenEntering:                counts[2],
			MenLeaving:                 counts[3],
			WomenEntering:              counts[4],
			WomenLeaving:               counts[5],
			GroupEntering:              counts[6],
			GroupLeaving:               counts[7],
			Passersby:                  counts[8],
			CaptureRate:                round2(percent(counts[0], counts[8])),
			AccumulatedVisitors:        accIn,
			AccumulatedVisitorsLeaving: accOut,
			LiveVisitors:               max(0, accIn-accOut),
		})

		prev, prevWall = ts, wall
		havePrior = true
	}

	return res, nil
}

// localInstant places the wall-clock reading wall in loc. When the reading is
// ambiguous (the repeated hour after a fall-back) it returns the earliest
// matching instant after prev. A reading that does not exist (skipped by a
// spring-forward) is normalized forward by time.Date.
func localInstant(wall time.Time, loc *time.Location, prev time.Time) time.Time {
	ts := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), 0, 0, loc)
	for _, c := range [...]time.Time{ts.Add(-time.Hour), ts, ts.Add(time.Hour)} {
		if sameWallClock(c.In(loc), wall) && c.After(prev) {
			return c
		}
	}
	return ts
}

func sameWallClock(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd && a.Hour() == b.Hour() && a.Minute() == b.Minute()
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, ErrInvalidCount
	}
	return n, nil
}
