package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gbsb/tripmate/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDay_TruncatesInOwnLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	// 2024-07-10 01:00 in Seoul is still 2024-07-09 in UTC.
	in := time.Date(2024, 7, 10, 1, 0, 0, 0, seoul)

	assert.Equal(t, date(2024, 7, 10), domain.Day(in))
}

func TestDateRange_Days_Inclusive(t *testing.T) {
	r := domain.NewDateRange(date(2024, 7, 9), date(2024, 7, 11))

	days := r.Days()

	assert.Equal(t, []time.Time{date(2024, 7, 9), date(2024, 7, 10), date(2024, 7, 11)}, days)
}

func TestDateRange_Days_SingleDay(t *testing.T) {
	r := domain.NewDateRange(date(2024, 7, 9), date(2024, 7, 9))

	assert.Len(t, r.Days(), 1)
}

func TestDateRange_Days_Unordered(t *testing.T) {
	r := domain.NewDateRange(date(2024, 7, 11), date(2024, 7, 9))

	assert.False(t, r.Ordered())
	assert.Nil(t, r.Days())
}

func TestDateRange_Within(t *testing.T) {
	window := domain.NewDateRange(date(2024, 7, 1), date(2024, 7, 31))

	assert.True(t, domain.NewDateRange(date(2024, 7, 1), date(2024, 7, 31)).Within(window))
	assert.True(t, domain.NewDateRange(date(2024, 7, 10), date(2024, 7, 12)).Within(window))
	assert.False(t, domain.NewDateRange(date(2024, 6, 30), date(2024, 7, 2)).Within(window))
	assert.False(t, domain.NewDateRange(date(2024, 7, 30), date(2024, 8, 1)).Within(window))
}

func TestDateRange_Len(t *testing.T) {
	assert.Equal(t, 1, domain.NewDateRange(date(2024, 7, 9), date(2024, 7, 9)).Len())
	assert.Equal(t, 366, domain.NewDateRange(date(2024, 1, 1), date(2024, 12, 31)).Len())
	assert.Zero(t, domain.NewDateRange(date(2024, 7, 11), date(2024, 7, 9)).Len())
}
