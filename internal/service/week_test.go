package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekStartOfReturnsMondayMidnight(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "midweek afternoon",
			in:   time.Date(2025, time.March, 6, 15, 42, 7, 123, time.UTC),
			want: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday itself",
			in:   time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday rolls back to previous monday",
			in:   time.Date(2025, time.March, 9, 23, 59, 59, 0, time.UTC),
			want: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "month boundary",
			in:   time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.February, 24, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStartOf(tc.in)
			require.Equal(t, tc.want, got)
			require.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestWeekStartOfIsIdempotent(t *testing.T) {
	in := time.Date(2025, time.July, 19, 4, 30, 0, 0, time.UTC)
	once := WeekStartOf(in)
	require.Equal(t, once, WeekStartOf(once))
}

func TestInWeekHalfOpenWindow(t *testing.T) {
	weekStart := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	require.True(t, inWeek(weekStart, weekStart))
	require.True(t, inWeek(weekStart.AddDate(0, 0, 6).Add(23*time.Hour), weekStart))
	require.False(t, inWeek(weekStart.AddDate(0, 0, 7), weekStart))
	require.False(t, inWeek(weekStart.Add(-time.Nanosecond), weekStart))
}
