package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/zalando/go-keyring"
)

func newStore(t *testing.T) (*Store, Preferences) {
	t.Helper()
	keyring.MockInit()
	prefs := test.NewApp().Preferences()
	return New(prefs, Keyring{}), prefs
}

func TestStore_Defaults(t *testing.T) {
	s, _ := newStore(t)
	st := s.Load()

	assert.Equal(t, "", st.DateOfBirth)
	assert.Equal(t, config.DefaultWeeks, st.Weeks)
	assert.Equal(t, config.DefaultTheme, st.Theme)
	assert.Equal(t, config.DefaultZoom, st.Zoom)
	assert.True(t, st.ShowMilestones)
	assert.Empty(t, st.Milestones)
}

func TestStore_DateOfBirth_Keyring(t *testing.T) {
	s, prefs := newStore(t)

	s.SetDateOfBirth("1994-06-15")

	assert.Equal(t, "1994-06-15", s.DateOfBirth())
	assert.Empty(t, prefs.String(config.PrefDOB), "The date must not leak into plain preferences")

	stored, err := keyring.Get(config.KeyringService, config.KeyringUserDOB)
	require.NoError(t, err)
	assert.Equal(t, "1994-06-15", stored)
}

func TestStore_DateOfBirth_KeyringUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	prefs := test.NewApp().Preferences()
	s := New(prefs, Keyring{})

	s.SetDateOfBirth("1994-06-15")

	assert.Equal(t, "1994-06-15", prefs.String(config.PrefDOB))
	assert.Equal(t, "1994-06-15", s.DateOfBirth())
}

func TestStore_DateOfBirth_NoSecrets(t *testing.T) {
	prefs := test.NewApp().Preferences()
	s := New(prefs, nil)

	s.SetDateOfBirth("2000-01-01")
	assert.Equal(t, "2000-01-01", s.DateOfBirth())

	s.SetDateOfBirth("")
	assert.Equal(t, "2000-01-01", s.DateOfBirth(), "An empty value does not clear the saved date")
}

func TestStore_DateOfBirth_Invalid(t *testing.T) {
	s, prefs := newStore(t)
	prefs.SetString(config.PrefDOB, "2023-02-30")

	assert.Equal(t, "", s.DateOfBirth())
}

func TestStore_Weeks(t *testing.T) {
	s, prefs := newStore(t)

	assert.Equal(t, 3000, s.SetWeeks(12))
	assert.Equal(t, 3000, s.Weeks())
	assert.Equal(t, 5200, s.SetWeeks(99999))
	assert.Equal(t, 4212, s.SetWeeks(4212))

	prefs.SetInt(config.PrefWeeks, -4)
	assert.Equal(t, config.MinWeeks, s.Weeks(), "A tampered value is clamped on read")
}

func TestStore_ThemeZoomToggle(t *testing.T) {
	s, prefs := newStore(t)

	s.SetTheme("midnight")
	assert.Equal(t, "midnight", s.Theme())

	s.SetTheme("neon")
	assert.Equal(t, "midnight", s.Theme(), "Unknown names are not saved")

	prefs.SetString(config.PrefTheme, "neon")
	assert.Equal(t, config.DefaultTheme, s.Theme())

	s.SetZoom(7)
	assert.Equal(t, config.MaxZoom, s.Zoom())
	s.SetZoom(0.75)
	assert.Equal(t, 0.75, s.Zoom())

	s.SetShowMilestones(false)
	assert.False(t, s.ShowMilestones())
}

func TestStore_Milestones_AddRemove(t *testing.T) {
	s, prefs := newStore(t)

	list := s.AddMilestone(engine.NewCustomMilestone("Wedding", mustDate(t, "2020-09-12")))
	require.Len(t, list, 1)
	list = s.AddMilestone(engine.Milestone{Name: "Trip", Kind: engine.KindDate, Date: "2022-03-01"})
	require.Len(t, list, 2)
	assert.NotEmpty(t, list[1].ID, "Milestones get an identifier when added")

	// Survives a reload.
	again := New(prefs, Keyring{}).Milestones()
	assert.Equal(t, list, again)

	list = s.RemoveMilestone(list[0].ID)
	require.Len(t, list, 1)
	assert.Equal(t, "Trip", list[0].Name)

	list = s.RemoveMilestone("unknown")
	assert.Len(t, list, 1)
}

func TestStore_Milestones_Corrupted(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"NotJSON", "{{{"},
		{"Object", `{"name":"x"}`},
		{"Number", `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, prefs := newStore(t)
			prefs.SetString(config.PrefMilestones, tt.raw)

			assert.Empty(t, s.Milestones())
			assert.Empty(t, prefs.String(config.PrefMilestones), "Corrupted data is discarded")
		})
	}
}

func TestStore_Milestones_MalformedKept(t *testing.T) {
	s, prefs := newStore(t)
	prefs.SetString(config.PrefMilestones, `[
		{"id":"a","name":"Good","type":"date","date":"2010-01-01"},
		{"id":"b","name":"Bad value","type":"week","value":"ten"},
		null,
		{"name":"No id","type":"week","value":12},
		{"id":"c","name":"Odd kind","type":"decade","value":2}
	]`)

	list := s.Milestones()
	require.Len(t, list, 5)
	assert.Equal(t, "Good", list[0].Name)
	assert.Equal(t, "Bad value", list[1].Name)
	assert.Nil(t, list[1].Value)
	assert.True(t, list[1].Malformed())
	assert.True(t, list[2].Malformed())
	assert.Empty(t, list[2].ID, "A non-object cannot carry an identifier")
	assert.NotEmpty(t, list[3].ID)
	assert.Equal(t, engine.Kind("decade"), list[4].Kind, "Unknown kinds are kept for the engine to report")

	// Mutations write every element back, malformed ones untouched.
	list = s.AddMilestone(engine.Milestone{ID: "n", Name: "New", Kind: engine.KindWeek, Value: engine.IntValue(3)})
	require.Len(t, list, 6)
	list = s.RemoveMilestone("a")
	require.Len(t, list, 5)

	var saved []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(prefs.String(config.PrefMilestones)), &saved))
	require.Len(t, saved, 5)
	assert.JSONEq(t, `{"id":"b","name":"Bad value","type":"week","value":"ten"}`, string(saved[0]))
	assert.JSONEq(t, `null`, string(saved[1]))
	assert.Contains(t, string(saved[2]), list[2].ID, "The generated id is persisted")
	assert.Equal(t, list[2].ID, s.Milestones()[2].ID)

	// The calculator reports the bad entries instead of placing them.
	m := engine.NewCalculator(nil).Compute(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), config.DefaultWeeks, s.Milestones())
	var failed []string
	for _, d := range m.Diagnostics {
		failed = append(failed, d.Milestone.Name)
	}
	assert.Contains(t, failed, "Bad value")
	assert.Contains(t, failed, "Odd kind")
	assert.Len(t, m.Diagnostics, 3)
	for _, d := range m.Diagnostics {
		if d.Milestone.Name == "Bad value" {
			assert.ErrorIs(t, d.Err, engine.ErrMissingValue)
		}
	}
}

func TestStore_Reset(t *testing.T) {
	s, prefs := newStore(t)
	s.SetDateOfBirth("1994-06-15")
	prefs.SetString(config.PrefDOB, "1990-01-01")
	s.SetWeeks(5000)
	s.SetTheme("burkeman")
	s.SetZoom(1.2)
	s.SetShowMilestones(false)
	s.AddMilestone(engine.Milestone{Name: "x", Kind: engine.KindWeek, Value: engine.IntValue(3)})

	s.Reset()

	st := s.Load()
	assert.Equal(t, "", st.DateOfBirth)
	assert.Equal(t, config.DefaultWeeks, st.Weeks)
	assert.Equal(t, config.DefaultTheme, st.Theme)
	assert.Equal(t, config.DefaultZoom, st.Zoom)
	assert.True(t, st.ShowMilestones)
	assert.Empty(t, st.Milestones)

	_, err := keyring.Get(config.KeyringService, config.KeyringUserDOB)
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	assert.NotPanics(t, s.Reset, "Resetting twice is harmless")
}

func TestState_Apply(t *testing.T) {
	persisted := State{DateOfBirth: "1990-01-01", Weeks: 4160}

	assert.Equal(t, persisted, persisted.Apply(Query{}))

	got := persisted.Apply(Query{DateOfBirth: "2000-02-02", Weeks: 3120})
	assert.Equal(t, "2000-02-02", got.DateOfBirth)
	assert.Equal(t, 3120, got.Weeks)
	assert.Equal(t, "1990-01-01", persisted.DateOfBirth)
}

func TestClampHorizon(t *testing.T) {
	assert.Equal(t, 3000, ClampHorizon(0))
	assert.Equal(t, 3000, ClampHorizon(-100))
	assert.Equal(t, 4160, ClampHorizon(4160))
	assert.Equal(t, 5200, ClampHorizon(5201))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := engine.ParseDate(s)
	require.NoError(t, err)
	return d
}
