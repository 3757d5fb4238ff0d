package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/tartampluch/go-lifeweeks/internal/config"
)

// Metrics is the derived view of a life grid. It is recomputed wholesale on
// every input change and never mutated in place.
type Metrics struct {
	WeeksLived         int     `json:"weeksLived"`
	WeeksRemaining     int     `json:"weeksRemaining"`
	PercentageComplete float64 `json:"percentageComplete"`

	// CurrentWeekIndex is -1 without a birth date and 0 for a future one.
	CurrentWeekIndex   int  `json:"currentWeekIndex"`
	IsFutureDob        bool `json:"isFutureDob"`
	IsBeyondExpectancy bool `json:"isBeyondExpectancy"`

	// Milestones maps a week-index to the last milestone written there.
	Milestones map[int]Milestone `json:"milestoneWeeks"`

	DaysToNextBirthday int `json:"daysToNextBirthday"`

	// Diagnostics lists milestones that could not be placed.
	Diagnostics []Diagnostic `json:"-"`
}

// CellStatus classifies a grid cell relative to today.
type CellStatus int

const (
	CellFuture CellStatus = iota
	CellPast
	CellPresent
)

// Calculator computes Metrics. It is stateless apart from its clock.
type Calculator struct {
	Clock Clock
}

// NewCalculator returns a Calculator reading "today" from clock.
func NewCalculator(clock Clock) *Calculator {
	return &Calculator{Clock: clock}
}

func (c *Calculator) today() time.Time {
	if c == nil || c.Clock == nil {
		return DateOf(RealClock{}.Now())
	}
	return DateOf(c.Clock.Now())
}

// Compute derives the metrics for a birth date (zero value when unknown),
// a horizon in weeks and the user's milestones. It is defined for every input.
func (c *Calculator) Compute(birth time.Time, horizon int, custom []Milestone) Metrics {
	if birth.IsZero() {
		return zeroMetrics(horizon)
	}

	today := c.today()
	birth = DateOf(birth)

	if birth.After(today) {
		slog.Debug(config.MsgFutureDOB,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyDOB, FormatDate(birth),
		)
		m := zeroMetrics(horizon)
		m.CurrentWeekIndex = 0
		m.IsFutureDob = true
		return m
	}

	lived := weeksBetween(birth, today)

	percentage := 0.0
	if horizon > 0 {
		percentage = min(100, float64(lived)/float64(horizon)*100)
	}

	milestones, diags := ResolveMilestones(birth, horizon, custom)

	// The synthesized birthday is written last and wins its cell.
	next, days := nextBirthday(birth, today)
	if index := weeksBetween(birth, next); inHorizon(index, horizon) {
		milestones[index] = Milestone{
			Name:  config.NextBirthdayName,
			Kind:  KindAge,
			Value: IntValue(next.Year() - birth.Year()),
		}
	}

	m := Metrics{
		WeeksLived:         lived,
		WeeksRemaining:     max(0, horizon-lived),
		PercentageComplete: percentage,
		CurrentWeekIndex:   min(lived, horizon-1),
		IsBeyondExpectancy: lived >= horizon,
		Milestones:         milestones,
		DaysToNextBirthday: days,
		Diagnostics:        diags,
	}

	slog.Debug(config.MsgMetricsComputed,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyHorizon, horizon,
		config.LogKeyLived, lived,
		config.LogKeyMilestones, len(milestones),
		config.LogKeySkipped, len(diags),
	)
	return m
}

// ComputeInput is Compute for a raw YYYY-MM-DD string. An unparseable string
// behaves like an absent birth date.
func (c *Calculator) ComputeInput(dob string, horizon int, custom []Milestone) Metrics {
	if dob == "" {
		return zeroMetrics(horizon)
	}
	birth, err := ParseDate(dob)
	if err != nil {
		slog.Debug(config.MsgInvalidDOB,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyValue, dob,
		)
		return zeroMetrics(horizon)
	}
	return c.Compute(birth, horizon, custom)
}

func zeroMetrics(horizon int) Metrics {
	return Metrics{
		WeeksRemaining:   max(0, horizon),
		CurrentWeekIndex: -1,
		Milestones:       make(map[int]Milestone),
	}
}

// CellStatus reports whether the week-index is lived, current or ahead.
func (m Metrics) CellStatus(index int) CellStatus {
	switch {
	case index < m.WeeksLived:
		return CellPast
	case index == m.CurrentWeekIndex:
		return CellPresent
	default:
		return CellFuture
	}
}

// Resolved lists the placed milestones ordered by week-index.
func (m Metrics) Resolved() []ResolvedMilestone {
	out := make([]ResolvedMilestone, 0, len(m.Milestones))
	for index, ms := range m.Milestones {
		out = append(out, ResolvedMilestone{Index: index, Milestone: ms})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Legend lists the placed milestones once per name, in week order.
func (m Metrics) Legend() []ResolvedMilestone {
	seen := make(map[string]bool)
	var out []ResolvedMilestone
	for _, r := range m.Resolved() {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out
}
