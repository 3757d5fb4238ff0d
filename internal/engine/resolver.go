package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/go-lifeweeks/internal/config"
)

var (
	// ErrMissingValue reports an age or week milestone without a number.
	ErrMissingValue = errors.New(config.ErrMilestoneValue)
	// ErrUnknownKind reports a milestone whose kind is not age, week or date.
	ErrUnknownKind = errors.New(config.ErrMilestoneKind)
	// ErrMilestoneDate reports a date milestone that does not parse.
	ErrMilestoneDate = errors.New(config.ErrMilestoneDate)
	// ErrValueRange reports an age beyond what calendar arithmetic can place.
	ErrValueRange = errors.New(config.ErrMilestoneRange)
)

// Diagnostic records a milestone that could not be placed.
type Diagnostic struct {
	Milestone Milestone
	Err       error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %q: %v", d.Milestone.Kind, d.Milestone.Name, d.Err)
}

// ResolveMilestones places the built-in milestones followed by custom, in that
// order, onto week-indices relative to birth. Later entries overwrite earlier
// ones sharing an index. Indices outside [0, horizon) are dropped silently;
// malformed milestones are dropped and reported as diagnostics.
func ResolveMilestones(birth time.Time, horizon int, custom []Milestone) (map[int]Milestone, []Diagnostic) {
	birth = DateOf(birth)
	placed := make(map[int]Milestone)
	var diags []Diagnostic

	all := append(BuiltinMilestones(), custom...)
	for _, m := range all {
		index, err := resolveIndex(birth, m)
		if err != nil {
			diags = append(diags, Diagnostic{Milestone: m.clone(), Err: err})
			slog.Warn(config.MsgMilestoneSkip,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, m.Name,
				config.LogKeyKind, string(m.Kind),
				config.LogKeyError, err,
			)
			continue
		}
		if inHorizon(index, horizon) {
			placed[index] = m.clone()
		}
	}
	return placed, diags
}

// resolveIndex computes the week-index of a single milestone.
func resolveIndex(birth time.Time, m Milestone) (int, error) {
	switch m.Kind {
	case KindAge:
		if m.Value == nil {
			return 0, ErrMissingValue
		}
		if *m.Value < -config.MaxMilestoneAge || *m.Value > config.MaxMilestoneAge {
			return 0, fmt.Errorf("%w: %d", ErrValueRange, *m.Value)
		}
		return weeksBetween(birth, birth.AddDate(*m.Value, 0, 0)), nil
	case KindWeek:
		if m.Value == nil {
			return 0, ErrMissingValue
		}
		return *m.Value - 1, nil
	case KindDate:
		d, err := ParseDate(m.Date)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMilestoneDate, m.Date)
		}
		return weeksBetween(birth, d), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
}

func inHorizon(index, horizon int) bool {
	return index >= 0 && index < horizon
}
