package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2024-02-29", date(2024, 2, 29), false},
		{" 1994-06-15 ", date(1994, 6, 15), false},
		{"20240101", date(2024, 1, 1), false},
		{"2024-01-01T10:00:00Z", date(2024, 1, 1), false},
		{"2024-01-01T23:30:00+02:00", date(2024, 1, 1), false},
		{"2023-02-29", time.Time{}, true},
		{"2023-02-30", time.Time{}, true},
		{"2023-13-01", time.Time{}, true},
		{"01/02/2024", time.Time{}, true},
		{"--04-02", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := engine.ParseDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, engine.ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*3600)
	got := engine.DateOf(time.Date(2024, 12, 31, 23, 59, 59, 0, loc))

	assert.Equal(t, "2024-12-31", engine.FormatDate(got))
	assert.Equal(t, 0, got.Hour())
}

func TestWeekRange(t *testing.T) {
	birth := date(2000, 1, 1)

	start, end := engine.WeekRange(birth, 0)
	assert.Equal(t, "2000-01-01", engine.FormatDate(start))
	assert.Equal(t, "2000-01-07", engine.FormatDate(end))

	start, end = engine.WeekRange(birth, 52)
	assert.Equal(t, "2000-12-30", engine.FormatDate(start))
	assert.Equal(t, "2001-01-05", engine.FormatDate(end))

	// Consecutive weeks tile the calendar without gaps.
	for i := 0; i < 5200; i += 97 {
		_, end := engine.WeekRange(birth, i)
		next, _ := engine.WeekRange(birth, i+1)
		assert.Equal(t, end.AddDate(0, 0, 1), next)
	}
}

func TestAgeAtWeek(t *testing.T) {
	tests := []struct {
		index, years, weeks int
	}{
		{0, 0, 0},
		{51, 0, 51},
		{52, 1, 0},
		{939, 18, 3},
		{4159, 79, 51},
	}
	for _, tt := range tests {
		years, weeks := engine.AgeAtWeek(tt.index)
		assert.Equal(t, tt.years, years, "index %d", tt.index)
		assert.Equal(t, tt.weeks, weeks, "index %d", tt.index)
	}
}

func TestMilestoneDate(t *testing.T) {
	birth := date(2000, 1, 1)

	age := engine.ResolvedMilestone{Index: 939, Milestone: engine.Milestone{Kind: engine.KindAge, Value: engine.IntValue(18)}}
	assert.Equal(t, "2018-01-01", engine.FormatDate(engine.MilestoneDate(birth, age)))

	week := engine.ResolvedMilestone{Index: 1, Milestone: engine.Milestone{Kind: engine.KindWeek, Value: engine.IntValue(2)}}
	assert.Equal(t, "2000-01-08", engine.FormatDate(engine.MilestoneDate(birth, week)))

	day := engine.ResolvedMilestone{Index: 10, Milestone: engine.Milestone{Kind: engine.KindDate, Date: "2000-03-14"}}
	assert.Equal(t, "2000-03-14", engine.FormatDate(engine.MilestoneDate(birth, day)))
}

func TestNewCustomMilestone(t *testing.T) {
	a := engine.NewCustomMilestone("Wedding", date(2020, 9, 12))
	b := engine.NewCustomMilestone("Wedding", date(2020, 9, 12))

	assert.Equal(t, engine.KindDate, a.Kind)
	assert.Equal(t, "2020-09-12", a.Date)
	assert.Nil(t, a.Value)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
