package engine

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates how a milestone is placed on the grid.
type Kind string

const (
	// KindAge triggers on the birthday when the person turns Value years old.
	KindAge Kind = "age"
	// KindWeek triggers on the literal 1-based week number Value.
	KindWeek Kind = "week"
	// KindDate triggers on the week containing Date.
	KindDate Kind = "date"
)

// Milestone is a named life event. The JSON layout is the persisted format.
type Milestone struct {
	// ID is required for user-created milestones (removal key) and empty for built-ins.
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Kind Kind   `json:"type"`

	// Value is the age or week number for KindAge and KindWeek.
	Value *int `json:"value,omitempty"`

	// Date is a YYYY-MM-DD string for KindDate.
	Date string `json:"date,omitempty"`

	// raw holds the element as it was persisted when some field of it could
	// not be typed. It is written back as is, the id aside.
	raw json.RawMessage
}

// milestoneFields is the plain JSON layout of Milestone.
type milestoneFields struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Kind  Kind   `json:"type"`
	Value *int   `json:"value,omitempty"`
	Date  string `json:"date,omitempty"`
}

// UnmarshalJSON decodes leniently: a field of the wrong type is left empty and
// the element is kept verbatim, so that malformed entries reach the calculator
// (which reports them) instead of being lost. It only fails on invalid JSON.
func (m *Milestone) UnmarshalJSON(data []byte) error {
	var plain milestoneFields
	if !bytes.Equal(bytes.TrimSpace(data), []byte("null")) && json.Unmarshal(data, &plain) == nil {
		*m = Milestone{ID: plain.ID, Name: plain.Name, Kind: plain.Kind, Value: plain.Value, Date: plain.Date}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		if !json.Valid(data) {
			return err
		}
		*m = Milestone{raw: slices.Clone(data)}
		return nil
	}

	*m = Milestone{raw: slices.Clone(data)}
	text := func(key string) string {
		var s string
		_ = json.Unmarshal(fields[key], &s)
		return s
	}
	m.ID = text("id")
	m.Name = text("name")
	m.Kind = Kind(text("type"))
	m.Date = text("date")
	m.Value = wholeNumber(fields["value"])
	return nil
}

// MarshalJSON writes the plain layout, or the persisted element for a malformed
// one. An identifier assigned after loading is merged into the latter.
func (m Milestone) MarshalJSON() ([]byte, error) {
	if m.raw == nil {
		return json.Marshal(milestoneFields{ID: m.ID, Name: m.Name, Kind: m.Kind, Value: m.Value, Date: m.Date})
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(m.raw, &fields); err != nil || fields == nil || m.ID == "" {
		return slices.Clone(m.raw), nil
	}
	var id string
	if err := json.Unmarshal(fields["id"], &id); err == nil && id == m.ID {
		return slices.Clone(m.raw), nil
	}
	fields["id"], _ = json.Marshal(m.ID)
	return json.Marshal(fields)
}

// Malformed reports whether some persisted field of m could not be decoded.
func (m Milestone) Malformed() bool {
	return m.raw != nil
}

// Identifiable reports whether an identifier assigned to m survives a save.
// Only JSON objects can carry one.
func (m Milestone) Identifiable() bool {
	return m.raw == nil || bytes.HasPrefix(bytes.TrimSpace(m.raw), []byte("{"))
}

// wholeNumber returns the integer held by a JSON number, or nil for anything
// else (strings, fractions, values beyond the int range).
func wholeNumber(data json.RawMessage) *int {
	data = bytes.TrimSpace(data)
	var n json.Number
	if len(data) == 0 || data[0] == '"' || json.Unmarshal(data, &n) != nil {
		return nil
	}
	if i, err := n.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
		return IntValue(int(i))
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return nil
	}
	return IntValue(int(f))
}

// ResolvedMilestone is a milestone placed on a week-index.
type ResolvedMilestone struct {
	Index int
	Milestone
}

// IntValue returns a pointer to v, for building milestone literals.
func IntValue(v int) *int {
	return &v
}

// clone returns a copy that shares no memory with m.
func (m Milestone) clone() Milestone {
	if m.Value != nil {
		m.Value = IntValue(*m.Value)
	}
	m.raw = slices.Clone(m.raw)
	return m
}

// BuiltinMilestones returns a fresh copy of the fixed milestone list.
func BuiltinMilestones() []Milestone {
	return []Milestone{
		{Name: "18th B-day", Kind: KindAge, Value: IntValue(18)},
		{Name: "30th B-day", Kind: KindAge, Value: IntValue(30)},
		{Name: "40th B-day", Kind: KindAge, Value: IntValue(40)},
		{Name: "50th B-day", Kind: KindAge, Value: IntValue(50)},
		{Name: "65th B-day", Kind: KindAge, Value: IntValue(65)},
		{Name: "1000th Week", Kind: KindWeek, Value: IntValue(1000)},
		{Name: "2000th Week", Kind: KindWeek, Value: IntValue(2000)},
		{Name: "3000th Week", Kind: KindWeek, Value: IntValue(3000)},
	}
}

// NewCustomMilestone builds a user-created date milestone with a fresh identifier.
func NewCustomMilestone(name string, date time.Time) Milestone {
	return Milestone{
		ID:   NewMilestoneID(),
		Name: name,
		Kind: KindDate,
		Date: FormatDate(date),
	}
}

// NewMilestoneID generates a stable identifier for a custom milestone.
func NewMilestoneID() string {
	return uuid.NewString()
}

// MilestoneDate returns the calendar day a resolved milestone stands for:
// the literal date, the birthday anniversary, or the first day of its week.
func MilestoneDate(birth time.Time, r ResolvedMilestone) time.Time {
	switch r.Kind {
	case KindDate:
		if d, err := ParseDate(r.Date); err == nil {
			return d
		}
	case KindAge:
		if r.Value != nil {
			return DateOf(birth).AddDate(*r.Value, 0, 0)
		}
	}
	return WeekStart(birth, r.Index)
}
