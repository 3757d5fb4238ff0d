package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-lifeweeks/internal/config"
)

// BuildCalendar encodes the placed milestones as an iCalendar feed, one all-day
// event per milestone. A valid empty VCALENDAR is returned when nothing is placed.
func BuildCalendar(birth time.Time, m Metrics, now time.Time) ([]byte, error) {
	resolved := m.Resolved()
	if birth.IsZero() || len(resolved) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, r := range resolved {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, milestoneUID(birth, r))
		event.Props.SetText(config.PropSummary, r.Name)
		event.Props.SetText(config.PropDescription, fmt.Sprintf(config.FallbackWeekLabel, r.Index+1))

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(MilestoneDate(birth, r))
		event.Props.Set(dtStartProp)
		event.Props.Set(dtStampProp)

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// milestoneUID is deterministic so calendar clients update events in place
// across refreshes instead of duplicating them.
func milestoneUID(birth time.Time, r ResolvedMilestone) string {
	input := fmt.Sprintf(config.FormatHashInput, r.Name, r.Index, config.UIDSalt+FormatDate(birth))
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), r.Index, config.ICalDomain)
}
