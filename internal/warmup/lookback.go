package warmup

import (
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/scmhub/calendar"
)

const day = 24 * time.Hour

// maxCalendarSteps bounds the walk back over closed days (about ten years of days).
const maxCalendarSteps = 3660

// LookbackPlanner decides how far back history must start so that periods
// complete bars end at or before to.
type LookbackPlanner interface {
	From(instrument types.Instrument, key period.Key, to time.Time, periods int) time.Time
}

// LinearLookback steps back periods × key duration of wall-clock time.
type LinearLookback struct{}

// From implements LookbackPlanner.
func (LinearLookback) From(_ types.Instrument, key period.Key, to time.Time, periods int) time.Time {
	return to.Add(-time.Duration(periods) * key.Duration())
}

// CalendarLookback stretches the lookback over days the exchange is closed, so a
// 20 day SMA warmed up on a Monday reaches past the weekend.
type CalendarLookback struct {
	cal *calendar.Calendar
}

// NewCalendarLookback loads the calendar of the exchange identified by its MIC, e.g. "xnys".
func NewCalendarLookback(mic string) (*CalendarLookback, error) {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown exchange calendar %q", mic)
	}

	return &CalendarLookback{cal: cal}, nil
}

// From implements LookbackPlanner. Daily and longer keys count business days;
// intraday keys use the linear span and add one day for every closed day it covers.
func (c *CalendarLookback) From(instrument types.Instrument, key period.Key, to time.Time, periods int) time.Time {
	if key.Duration() < day {
		from := LinearLookback{}.From(instrument, key, to, periods)

		for d, steps := to.Add(-time.Nanosecond).Truncate(day), 0; !d.Before(from.Truncate(day)) && steps < maxCalendarSteps; d, steps = d.Add(-day), steps+1 {
			if !c.isBusinessDay(d) {
				from = from.Add(-day)
			}
		}

		return from
	}

	needed := periods * int(key.Duration()/day)
	from := to

	for counted, steps := 0, 0; counted < needed && steps < maxCalendarSteps; steps++ {
		from = from.Add(-day)

		if c.isBusinessDay(from) {
			counted++
		}
	}

	return key.Floor(from)
}

// isBusinessDay checks the UTC date of d in the exchange's own time zone.
func (c *CalendarLookback) isBusinessDay(d time.Time) bool {
	local := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, c.cal.Loc)

	return c.cal.IsBusinessDay(local)
}
