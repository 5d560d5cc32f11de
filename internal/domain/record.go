package domain

import "time"

// HourRecord is one sensor reading for one hour, as parsed from the feed.
type HourRecord struct {
	Timestamp        time.Time `json:"timestamp"`
	VisitorsEntering int       `json:"visitors_entering"`
	VisitorsLeaving  int       `json:"visitors_leaving"`
	MenEntering      int       `json:"men_entering"`
	MenLeaving       int       `json:"men_leaving"`
	WomenEntering    int       `json:"women_entering"`
	WomenLeaving     int       `json:"women_leaving"`
	GroupEntering    int       `json:"group_entering"`
	GroupLeaving     int       `json:"group_leaving"`
	Passersby        int       `json:"passersby"`
	CaptureRate      float64   `json:"capture_rate"`

	// Running totals since local midnight, including this hour.
	AccumulatedVisitors        int `json:"accumulated_visitors"`
	AccumulatedVisitorsLeaving int `json:"accumulated_visitors_leaving"`
	LiveVisitors               int `json:"live_visitors"`
}

// DayRecord is one calendar day's business-hours aggregate.
type DayRecord struct {
	Date             time.Time `json:"date"`
	VisitorsEntering int       `json:"visitors_entering"`
	VisitorsLeaving  int       `json:"visitors_leaving"`
	MenEntering      int       `json:"men_entering"`
	MenLeaving       int       `json:"men_leaving"`
	WomenEntering    int       `json:"women_entering"`
	WomenLeaving     int       `json:"women_leaving"`
	GroupEntering    int       `json:"group_entering"`
	GroupLeaving     int       `json:"group_leaving"`
	Passersby        int       `json:"passersby"`

	CaptureRate  float64 `json:"capture_rate"`
	Conversion   float64 `json:"conversion"`
	DwellTime    int     `json:"dwell_time"` // occupancy proxy, not minutes
	DataAccuracy float64 `json:"data_accuracy"`

	// Weather enrichment, zero until MergeWeather runs.
	WeatherSymbol string  `json:"weather_symbol"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
	Windspeed     float64 `json:"windspeed"`
}

// DateKey formats a day as YYYY-MM-DD, the key used by the API and the sink topic.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sameDay reports whether a and b fall on the same calendar date in a's location.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
