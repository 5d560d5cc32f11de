package domain

import "time"

// WeatherObservation is one day's weather as returned by the weather provider.
type WeatherObservation struct {
	Date          time.Time `json:"date"`
	Code          int       `json:"code"`
	Symbol        string    `json:"symbol"`
	Temperature   float64   `json:"temperature"`   // daily mean, °C
	Precipitation float64   `json:"precipitation"` // daily sum, mm
	Windspeed     float64   `json:"windspeed"`     // daily max, km/h
}

// UnknownWeatherSymbol is shown for WMO codes missing from the table.
const UnknownWeatherSymbol = "❓"

// WMO weather interpretation codes, see https://open-meteo.com/en/docs.
var weatherSymbols = map[int]string{
	0:  "☀️",
	1:  "🌤️",
	2:  "⛅",
	3:  "☁️",
	45: "🌫️",
	48: "🌫️",
	51: "🌧️",
	53: "🌧️",
	55: "🌧️",
	61: "🌧️",
	63: "🌧️",
	65: "🌧️",
	71: "🌨️",
	73: "🌨️",
	75: "🌨️",
	77: "🌨️",
	80: "🌧️",
	81: "🌧️",
	82: "🌧️",
	85: "🌨️",
	86: "🌨️",
	95: "⛈️",
	96: "⛈️",
	99: "⛈️",
}

// WeatherSymbol maps a WMO weather code to its display glyph.
func WeatherSymbol(code int) string {
	if s, ok := weatherSymbols[code]; ok {
		return s
	}
	return UnknownWeatherSymbol
}

// MergeWeather attaches obs[i] to days[i]. Both slices must cover the same
// gap-free date range in the same order; a length mismatch returns a
// *MergeError and no merged days. The input slice is not modified.
func MergeWeather(days []DayRecord, obs []WeatherObservation) ([]DayRecord, error) {
	if len(days) != len(obs) {
		return nil, &MergeError{Days: len(days), Observations: len(obs)}
	}

	out := make([]DayRecord, len(days))
	for i, d := range days {
		w := obs[i]
		d.WeatherSymbol = w.Symbol
		d.Temperature = w.Temperature
		d.Precipitation = w.Precipitation
		d.Windspeed = w.Windspeed
		out[i] = d
	}
	return out, nil
}
