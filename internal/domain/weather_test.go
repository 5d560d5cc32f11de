package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherSymbol(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "☀️"},
		{2, "⛅"},
		{48, "🌫️"},
		{63, "🌧️"},
		{75, "🌨️"},
		{99, "⛈️"},
		{4, UnknownWeatherSymbol},
		{-1, UnknownWeatherSymbol},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WeatherSymbol(tt.code), "code %d", tt.code)
	}
}

func TestMergeWeather(t *testing.T) {
	days := []DayRecord{
		{Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), VisitorsEntering: 10},
		{Date: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), VisitorsEntering: 20},
	}

	t.Run("positional merge", func(t *testing.T) {
		obs := []WeatherObservation{
			{Code: 0, Symbol: "☀️", Temperature: 21.4, Precipitation: 0, Windspeed: 12.2},
			{Code: 63, Symbol: "🌧️", Temperature: 15.1, Precipitation: 7.5, Windspeed: 30},
		}

		merged, err := MergeWeather(days, obs)
		require.NoError(t, err)
		require.Len(t, merged, 2)

		assert.Equal(t, "☀️", merged[0].WeatherSymbol)
		assert.Equal(t, 21.4, merged[0].Temperature)
		assert.Equal(t, 12.2, merged[0].Windspeed)
		assert.Equal(t, "🌧️", merged[1].WeatherSymbol)
		assert.Equal(t, 7.5, merged[1].Precipitation)
		assert.Equal(t, 20, merged[1].VisitorsEntering)

		assert.Empty(t, days[0].WeatherSymbol, "input must not be mutated")
	})

	t.Run("length mismatch", func(t *testing.T) {
		merged, err := MergeWeather(days, []WeatherObservation{{Symbol: "☀️"}})
		require.Error(t, err)
		assert.Nil(t, merged)

		var merr *MergeError
		require.True(t, errors.As(err, &merr))
		assert.Equal(t, 2, merr.Days)
		assert.Equal(t, 1, merr.Observations)
		assert.Contains(t, err.Error(), "2 days but 1 observations")
	})

	t.Run("both empty", func(t *testing.T) {
		merged, err := MergeWeather(nil, nil)
		require.NoError(t, err)
		assert.Empty(t, merged)
	})
}
