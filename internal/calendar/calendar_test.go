package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiffcs/nudge/internal/calendar"
)

// 2024-01-08 is a Monday.
var monday = time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

func mondayNineOnly(t *testing.T) *calendar.Calendar {
	t.Helper()
	c, err := calendar.New([]int{1}, []int{9}, time.UTC)
	require.NoError(t, err)
	return c
}

func TestAge_NeverNegative(t *testing.T) {
	var wall *calendar.Calendar
	business := mondayNineOnly(t)

	ref := monday.Add(10 * time.Hour)
	for _, now := range []time.Time{ref, ref.Add(-time.Minute), ref.Add(-48 * time.Hour)} {
		assert.Equal(t, 0, wall.Age(ref, now))
		assert.Equal(t, 0, business.Age(ref, now))
	}
}

func TestAge_WallClock(t *testing.T) {
	var wall *calendar.Calendar
	ref := monday

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{59 * time.Minute, 0},
		{time.Hour, 1},
		{2*time.Hour + 59*time.Minute, 2},
		{200 * time.Hour, 200},
		{90 * 24 * time.Hour, 2160},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wall.Age(ref, ref.Add(tt.elapsed)), "elapsed %v", tt.elapsed)
	}
}

func TestAge_FarPastIgnoresCalendar(t *testing.T) {
	business := mondayNineOnly(t)
	ref := monday
	now := ref.Add(31*24*time.Hour + 30*time.Minute)

	assert.Equal(t, 31*24, business.Age(ref, now))
}

func TestAge_BusinessHours(t *testing.T) {
	business := mondayNineOnly(t)

	t.Run("one matching hour", func(t *testing.T) {
		ref := monday.Add(9 * time.Hour)
		assert.Equal(t, 1, business.Age(ref, ref.Add(time.Hour)))
	})

	t.Run("no matching hour", func(t *testing.T) {
		ref := monday.Add(10 * time.Hour)
		assert.Equal(t, 0, business.Age(ref, ref.Add(time.Hour)))
	})

	t.Run("one week spans one matching hour", func(t *testing.T) {
		ref := monday.Add(8 * time.Hour)
		assert.Equal(t, 1, business.Age(ref, ref.Add(7*24*time.Hour)))
	})
}

func TestAge_WorkWeek(t *testing.T) {
	c, err := calendar.New([]int{1, 2, 3, 4, 5}, []int{9, 10, 11, 12, 13, 14, 15, 16}, time.UTC)
	require.NoError(t, err)

	// Friday 16:00 to Monday 10:00 counts Friday 16 and Monday 9.
	ref := monday.Add(-3*24*time.Hour + 16*time.Hour)
	now := monday.Add(10 * time.Hour)
	assert.Equal(t, 2, c.Age(ref, now))
}

func TestAge_EvaluatesInLocation(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	c, err := calendar.New([]int{1}, []int{9}, zone)
	require.NoError(t, err)

	// 07:00 UTC is 09:00 in the calendar's zone.
	ref := monday.Add(7 * time.Hour)
	assert.Equal(t, 1, c.Age(ref, ref.Add(time.Hour)))
	assert.Equal(t, 0, c.Age(ref.Add(2*time.Hour), ref.Add(3*time.Hour)))
}

func TestNew_Validation(t *testing.T) {
	_, err := calendar.New(nil, []int{9}, nil)
	assert.Error(t, err)
	_, err = calendar.New([]int{7}, []int{9}, nil)
	assert.Error(t, err)
	_, err = calendar.New([]int{1}, []int{24}, nil)
	assert.Error(t, err)

	c, err := calendar.New([]int{5, 1}, []int{17, 9}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, c.Weekdays())
	assert.Equal(t, []int{9, 17}, c.Hours())
	assert.Equal(t, time.Local, c.Location())
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"1,2,3,4,5", []int{1, 2, 3, 4, 5}, false},
		{"1-5", []int{1, 2, 3, 4, 5}, false},
		{"9-11, 13 ,15-16", []int{9, 10, 11, 13, 15, 16}, false},
		{"3,3,1", []int{1, 3}, false},
		{"", []int{}, false},
		{"5-1", nil, true},
		{"0-24", nil, true},
		{"mon", nil, true},
	}
	for _, tt := range tests {
		got, err := calendar.ParseSet(tt.in, 0, 23)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
