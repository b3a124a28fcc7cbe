package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func endOfDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 0, time.Local)
}

func TestParse_WellFormedRange(t *testing.T) {
	got, ok := Parse("2024.03.01 ~ 2024.03.15")
	require.True(t, ok)
	assert.Equal(t, endOfDay(2024, time.March, 15), got)
}

func TestParse_RangeEndWins(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"single date", "2024.05.20", endOfDay(2024, time.May, 20)},
		{"dash separators", "2024-03-01 ~ 2024-03-15", endOfDay(2024, time.March, 15)},
		{"multiple ranges, last segment wins", "1차: 2024.1.1~2024.2.2 / 2차: 2024.3.3~2024.4.4", endOfDay(2024, time.April, 4)},
		{"surrounding prose", "접수기간: 2024.06.10 ~ 2024.06.28 (선착순 마감)", endOfDay(2024, time.June, 28)},
		{"no separators", "20240315", endOfDay(2024, time.March, 15)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.in)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_TwoDigitYear(t *testing.T) {
	got, ok := Parse("24.3.1")
	require.True(t, ok)
	assert.Equal(t, endOfDay(2024, time.March, 1), got)
}

func TestParse_Unparseable(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"no digits", "no date here"},
		{"invalid month", "2024.13.01"},
		{"invalid day", "2024.02.31"},
		{"only separators", "~ - ."},
		{"prose only", "상시 모집"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := Parse(tc.in)
			assert.False(t, ok)
		})
	}
}

func TestParse_EndOfDaySemantics(t *testing.T) {
	got, ok := Parse("2024.03.15")
	require.True(t, ok)

	// active through the entire listed day
	during := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.Local)
	after := time.Date(2024, time.March, 16, 0, 0, 0, 0, time.Local)
	assert.False(t, got.Before(during))
	assert.True(t, got.Before(after))
}
