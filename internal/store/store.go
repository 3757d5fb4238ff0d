package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/tartampluch/go-lifeweeks/internal/config"
	"github.com/tartampluch/go-lifeweeks/internal/engine"
	"github.com/tartampluch/go-lifeweeks/internal/theme"
	"github.com/zalando/go-keyring"
)

// Preferences is the subset of fyne.Preferences used for persistence.
type Preferences interface {
	String(key string) string
	StringWithFallback(key, fallback string) string
	SetString(key, value string)
	IntWithFallback(key string, fallback int) int
	SetInt(key string, value int)
	FloatWithFallback(key string, fallback float64) float64
	SetFloat(key string, value float64)
	BoolWithFallback(key string, fallback bool) bool
	SetBool(key string, value bool)
	RemoveValue(key string)
}

// SecretStore holds personal values outside of the plain preferences file.
type SecretStore interface {
	Get(service, user string) (string, error)
	Set(service, user, secret string) error
	Delete(service, user string) error
}

// Keyring is the SecretStore backed by the OS credential manager.
type Keyring struct{}

func (Keyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }

func (Keyring) Set(service, user, secret string) error { return keyring.Set(service, user, secret) }

func (Keyring) Delete(service, user string) error { return keyring.Delete(service, user) }

// State is the persisted view state restored at startup.
type State struct {
	DateOfBirth    string
	Weeks          int
	Theme          string
	Zoom           float64
	ShowMilestones bool
	Milestones     []engine.Milestone
}

// Store persists the view state. All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	prefs   Preferences
	secrets SecretStore
}

// New returns a Store. secrets may be nil, in which case the date of birth is
// kept in the preferences.
func New(prefs Preferences, secrets SecretStore) *Store {
	return &Store{prefs: prefs, secrets: secrets}
}

// Load reads the whole persisted state, applying defaults and clamps.
func (s *Store) Load() State {
	st := State{
		DateOfBirth:    s.DateOfBirth(),
		Weeks:          s.Weeks(),
		Theme:          s.Theme(),
		Zoom:           s.Zoom(),
		ShowMilestones: s.ShowMilestones(),
		Milestones:     s.Milestones(),
	}
	slog.Debug(config.MsgStateLoaded,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyWeeks, st.Weeks,
		config.LogKeyMilestones, len(st.Milestones),
	)
	return st
}

// Apply overrides persisted values with the ones found in a share query.
// The overrides are not written back.
func (st State) Apply(q Query) State {
	if q.DateOfBirth != "" {
		st.DateOfBirth = q.DateOfBirth
	}
	if q.Weeks != 0 {
		st.Weeks = q.Weeks
	}
	return st
}

// DateOfBirth returns the saved birth date (YYYY-MM-DD), or "" when unset or invalid.
func (s *Store) DateOfBirth() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	dob := ""
	if s.secrets != nil {
		v, err := s.secrets.Get(config.KeyringService, config.KeyringUserDOB)
		switch {
		case err == nil:
			dob = v
		case !errors.Is(err, keyring.ErrNotFound):
			slog.Debug(config.ErrKeyringRead,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyError, err,
			)
		}
	}
	if dob == "" {
		dob = s.prefs.String(config.PrefDOB)
	}
	if dob == "" {
		return ""
	}

	birth, err := engine.ParseDate(dob)
	if err != nil {
		slog.Warn(config.MsgInvalidDOB,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyValue, dob,
		)
		return ""
	}
	return engine.FormatDate(birth)
}

// SetDateOfBirth saves dob. An empty string is ignored so that clearing the
// entry field does not forget the saved date; use Reset for that.
func (s *Store) SetDateOfBirth(dob string) {
	if dob == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.secrets != nil {
		err := s.secrets.Set(config.KeyringService, config.KeyringUserDOB, dob)
		if err == nil {
			s.prefs.RemoveValue(config.PrefDOB)
			return
		}
		slog.Warn(config.ErrKeyringWrite,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyError, err,
		)
	}
	s.prefs.SetString(config.PrefDOB, dob)
}

// Weeks returns the saved horizon, clamped.
func (s *Store) Weeks() int {
	return ClampHorizon(s.prefs.IntWithFallback(config.PrefWeeks, config.DefaultWeeks))
}

// SetWeeks clamps and saves the horizon, returning the saved value.
func (s *Store) SetWeeks(weeks int) int {
	weeks = ClampHorizon(weeks)
	s.prefs.SetInt(config.PrefWeeks, weeks)
	return weeks
}

// Theme returns the saved theme name, or the default one when unknown.
func (s *Store) Theme() string {
	name := s.prefs.StringWithFallback(config.PrefTheme, config.DefaultTheme)
	if _, ok := theme.Lookup(name); !ok {
		return config.DefaultTheme
	}
	return name
}

// SetTheme saves a known theme name; unknown names are ignored.
func (s *Store) SetTheme(name string) {
	if _, ok := theme.Lookup(name); !ok {
		return
	}
	s.prefs.SetString(config.PrefTheme, name)
}

// Zoom returns the saved grid zoom, clamped to the slider range.
func (s *Store) Zoom() float64 {
	return ClampZoom(s.prefs.FloatWithFallback(config.PrefZoom, config.DefaultZoom))
}

func (s *Store) SetZoom(zoom float64) {
	s.prefs.SetFloat(config.PrefZoom, ClampZoom(zoom))
}

func (s *Store) ShowMilestones() bool {
	return s.prefs.BoolWithFallback(config.PrefShowMilestones, true)
}

func (s *Store) SetShowMilestones(show bool) {
	s.prefs.SetBool(config.PrefShowMilestones, show)
}

// Milestones returns the saved custom milestones.
// A value that is not a JSON array is removed. Malformed elements are kept as
// persisted for the calculator to report, and elements without an identifier
// are given one.
func (s *Store) Milestones() []engine.Milestone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadMilestones()
}

func (s *Store) loadMilestones() []engine.Milestone {
	raw := s.prefs.String(config.PrefMilestones)
	if raw == "" {
		return []engine.Milestone{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		slog.Warn(config.ErrMilestonesDecode,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyError, err,
		)
		s.prefs.RemoveValue(config.PrefMilestones)
		return []engine.Milestone{}
	}

	out := make([]engine.Milestone, 0, len(items))
	assigned := false
	for i, item := range items {
		var m engine.Milestone
		if err := json.Unmarshal(item, &m); err != nil {
			// Unreachable for elements of a valid array.
			continue
		}
		if m.Malformed() {
			slog.Warn(config.ErrMilestoneDecode,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyIndex, i,
			)
		}
		if m.ID == "" && m.Identifiable() {
			m.ID = engine.NewMilestoneID()
			assigned = true
			slog.Debug(config.MsgMilestoneIDGen,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyName, m.Name,
				config.LogKeyID, m.ID,
			)
		}
		out = append(out, m)
	}

	if assigned {
		s.saveMilestones(out)
	}
	return out
}

func (s *Store) saveMilestones(list []engine.Milestone) {
	data, err := json.Marshal(list)
	if err != nil {
		slog.Error(config.ErrMilestonesEncode,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyError, err,
		)
		return
	}
	s.prefs.SetString(config.PrefMilestones, string(data))
}

// AddMilestone appends m, assigning an identifier if needed, and returns the new list.
func (s *Store) AddMilestone(m engine.Milestone) []engine.Milestone {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = engine.NewMilestoneID()
	}
	list := append(s.loadMilestones(), m)
	s.saveMilestones(list)

	slog.Info(config.MsgMilestoneAdded,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyName, m.Name,
		config.LogKeyID, m.ID,
	)
	return list
}

// RemoveMilestone deletes every milestone with the given identifier and returns the new list.
func (s *Store) RemoveMilestone(id string) []engine.Milestone {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := slices.DeleteFunc(s.loadMilestones(), func(m engine.Milestone) bool {
		return m.ID == id
	})
	s.saveMilestones(list)

	slog.Info(config.MsgMilestoneGone,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyID, id,
	)
	return list
}

// Reset forgets every persisted value of the view.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.secrets != nil {
		if err := s.secrets.Delete(config.KeyringService, config.KeyringUserDOB); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			slog.Warn(config.ErrKeyringWrite,
				config.LogKeyComponent, config.CompStore,
				config.LogKeyError, err,
			)
		}
	}
	for _, key := range []string{
		config.PrefDOB,
		config.PrefMilestones,
		config.PrefTheme,
		config.PrefWeeks,
		config.PrefZoom,
		config.PrefShowMilestones,
	} {
		s.prefs.RemoveValue(key)
	}

	slog.Info(config.MsgStateReset, config.LogKeyComponent, config.CompStore)
}

// ClampHorizon bounds a horizon to the accepted weeks range.
func ClampHorizon(weeks int) int {
	return min(max(weeks, config.MinWeeks), config.MaxWeeks)
}

// ClampZoom bounds a zoom factor to the slider range.
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) {
		return config.DefaultZoom
	}
	return min(max(zoom, config.MinZoom), config.MaxZoom)
}
