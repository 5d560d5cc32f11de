package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/footfall-etl/internal/domain"
)

func loadMockFeed(t *testing.T) ([]domain.HourRecord, []domain.DayRecord) {
	t.Helper()
	data, err := os.ReadFile("../../data/mock/venue_week.csv")
	require.NoError(t, err)

	res, err := domain.ParseFeed(string(data), time.UTC)
	require.NoError(t, err)
	return res.Hours, domain.NewAggregator(domain.DefaultBusinessHours()).Aggregate(res.Hours)
}

func TestPhases_PassOnMockFeed(t *testing.T) {
	hours, days := loadMockFeed(t)

	for _, p := range []*phase{
		validateAccumulators(hours),
		validateHourlyRatios(hours),
		validateCoverage(hours, days, domain.DefaultBusinessHours()),
		validateDailyRatios(days),
		validateWeekdayAverages(days),
	} {
		assert.True(t, p.passed(), "%s: %v", p.name, p.errors)
	}
}

func TestValidateAccumulators_DetectsDrift(t *testing.T) {
	hours, _ := loadMockFeed(t)
	hours[3].AccumulatedVisitors += 5

	p := validateAccumulators(hours)
	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "accumulated visitors")
}

func TestValidateCoverage_DetectsMissingHour(t *testing.T) {
	hours, days := loadMockFeed(t)
	days[0].VisitorsEntering--

	p := validateCoverage(hours, days, domain.DefaultBusinessHours())
	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], domain.DateKey(days[0].Date))
}

func TestValidateDailyRatios_DetectsOutOfRange(t *testing.T) {
	_, days := loadMockFeed(t)
	days[1].DataAccuracy = 120

	p := validateDailyRatios(days)
	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "exceeds 100")
}

func TestRun_ExitCodes(t *testing.T) {
	assert.Equal(t, 0, run("../../data/mock/venue_week.csv", "UTC", ""))
	assert.Equal(t, 1, run("does-not-exist.csv", "UTC", ""))
	assert.Equal(t, 1, run("../../data/mock/venue_week.csv", "Mars/Olympus", ""))
}
