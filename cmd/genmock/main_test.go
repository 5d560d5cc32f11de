package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/footfall-etl/internal/domain"
)

func testOptions(seed uint64) genOptions {
	return genOptions{
		start:     time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		days:      3,
		firstHour: 6,
		lastHour:  22,
		peak:      60,
		seed:      seed,
	}
}

func TestGenerate_ParsesCleanly(t *testing.T) {
	text := generate(testOptions(1))

	res, err := domain.ParseFeed(text, time.UTC)
	require.NoError(t, err)
	assert.Zero(t, res.Skipped)
	assert.Len(t, res.Hours, 3*17)
	assert.True(t, strings.HasPrefix(text, header+"\n"))
}

func TestGenerate_Deterministic(t *testing.T) {
	assert.Equal(t, generate(testOptions(7)), generate(testOptions(7)))
	assert.NotEqual(t, generate(testOptions(7)), generate(testOptions(8)))
}

func TestGenerate_VenueEmptiesAtClose(t *testing.T) {
	res, err := domain.ParseFeed(generate(testOptions(3)), time.UTC)
	require.NoError(t, err)

	for _, h := range res.Hours {
		assert.GreaterOrEqual(t, h.LiveVisitors, 0)
		if h.Timestamp.Hour() == 22 {
			assert.Zero(t, h.LiveVisitors, h.Timestamp)
		}
	}
}

func TestSplit(t *testing.T) {
	men, women, group := split(57)
	assert.Equal(t, 57, men+women+group)
	assert.Equal(t, 5, group)
	assert.Equal(t, 25, men)
}
