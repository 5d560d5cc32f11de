package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterRange(t *testing.T) {
	days := mondays()

	tests := []struct {
		name     string
		from, to time.Time
		want     []string
	}{
		{"open range", time.Time{}, time.Time{}, []string{"2024-06-03", "2024-06-04", "2024-06-10", "2024-06-17"}},
		{"inclusive bounds", day(2024, time.June, 4), day(2024, time.June, 10), []string{"2024-06-04", "2024-06-10"}},
		{"bounds with time of day", time.Date(2024, 6, 4, 18, 0, 0, 0, time.UTC), time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC), []string{"2024-06-04", "2024-06-10"}},
		{"from only", day(2024, time.June, 10), time.Time{}, []string{"2024-06-10", "2024-06-17"}},
		{"to only", time.Time{}, day(2024, time.June, 3), []string{"2024-06-03"}},
		{"empty window", day(2024, time.July, 1), day(2024, time.July, 2), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRange(days, tt.from, tt.to)
			keys := make([]string, 0, len(got))
			for _, d := range got {
				keys = append(keys, DateKey(d.Date))
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestHoursOn(t *testing.T) {
	hours := mustParse(t,
		"2/6/2024 23:00;1;0;0;0;0;0;0;0;0",
		"3/6/2024 9:00;2;0;0;0;0;0;0;0;0",
		"3/6/2024 10:00;3;0;0;0;0;0;0;0;0",
		"4/6/2024 9:00;4;0;0;0;0;0;0;0;0",
	)

	got := HoursOn(hours, day(2024, time.June, 3))
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].VisitorsEntering)
	assert.Equal(t, 3, got[1].VisitorsEntering)

	assert.Empty(t, HoursOn(hours, day(2024, time.June, 9)))
}

func TestSummarize(t *testing.T) {
	days := []DayRecord{
		{VisitorsEntering: 100, CaptureRate: 10, Conversion: 20, DwellTime: 3, MenEntering: 60, WomenEntering: 40, GroupEntering: 5},
		{VisitorsEntering: 50, CaptureRate: 15.56, Conversion: 10, DwellTime: 4, MenEntering: 20, WomenEntering: 30, GroupEntering: 1},
	}

	s := Summarize(days)
	assert.Equal(t, 2, s.Days)
	assert.Equal(t, 150, s.TotalVisitors)
	assert.Equal(t, 12.78, s.AvgCaptureRate)
	assert.Equal(t, 15.0, s.AvgConversion)
	assert.Equal(t, 4, s.AvgDwellTime)
	assert.Equal(t, 80, s.MenEntering)
	assert.Equal(t, 70, s.WomenEntering)
	assert.Equal(t, 6, s.GroupEntering)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestGenderSplit(t *testing.T) {
	g, ok := GenderSplit(DayRecord{MenEntering: 2, WomenEntering: 1})
	require.True(t, ok)
	assert.Equal(t, Gender{MenPercent: 67, WomenPercent: 33}, g)

	_, ok = GenderSplit(DayRecord{})
	assert.False(t, ok)
}
