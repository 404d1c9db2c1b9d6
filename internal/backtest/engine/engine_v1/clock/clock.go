// Package clock provides the simulation clock: a single-pass cursor over a
// precomputed, strictly increasing timestamp sequence derived from the
// session calendar.
package clock

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/calendar"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Boundary classifies a timestamp against the session schedule.
type Boundary string

const (
	BoundaryNone  Boundary = "NONE"
	BoundaryOpen  Boundary = "OPEN"
	BoundaryClose Boundary = "CLOSE"
)

// Clock walks a finite timestamp sequence exactly once. It is not
// restartable; create a new Clock for a new run.
type Clock struct {
	timestamps []time.Time
	cursor     int
	opens      map[int64]struct{}
	closes     map[int64]struct{}
}

// New builds a clock for [start, end] at the given granularity.
//
// Daily granularity yields one timestamp per trading date (midnight,
// exchange time); every daily timestamp is a session close. Intraday
// granularities yield fixed-interval timestamps from each date's open to its
// close inclusive, with the regular open and the calendar's (possibly early)
// close marked as boundaries. The close is always emitted exactly once even
// when the step size does not divide the session length. With extendedHours
// the sequence covers the extended session, but boundary marks stay on the
// regular open and close. Timestamps outside [start, end] are dropped, so a
// range expressed in a non-exchange timezone never admits extra ticks.
func New(cal calendar.Calendar, start time.Time, end time.Time, granularity types.Granularity, extendedHours bool) (*Clock, error) {
	c := &Clock{
		timestamps: nil,
		cursor:     0,
		opens:      make(map[int64]struct{}),
		closes:     make(map[int64]struct{}),
	}

	dates := cal.TradingDates(start, end)

	if granularity.IsIntraday() {
		step, err := granularity.Duration()
		if err != nil {
			return nil, err
		}

		for _, date := range dates {
			if err := c.appendSession(cal, date, step, extendedHours); err != nil {
				return nil, err
			}
		}
	} else {
		for _, date := range dates {
			c.timestamps = append(c.timestamps, date)
			c.closes[date.Unix()] = struct{}{}
		}
	}

	// TradingDates works on whole exchange-local dates, so a start or end
	// expressed in another timezone can pull in session timestamps before
	// the start instant or after the end instant. Keep only start <= ts <= end.
	kept := c.timestamps[:0]

	for _, ts := range c.timestamps {
		if ts.Before(start) || ts.After(end) {
			continue
		}

		kept = append(kept, ts)
	}

	c.timestamps = kept

	if len(c.timestamps) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptyCalendar, "no trading timestamps between %s and %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	return c, nil
}

func (c *Clock) appendSession(cal calendar.Calendar, date time.Time, step time.Duration, extendedHours bool) error {
	regularOpen, err := cal.RegularOpen(date)
	if err != nil {
		return err
	}

	regularClose, err := cal.RegularClose(date)
	if err != nil {
		return err
	}

	sessionStart, sessionEnd := regularOpen, regularClose

	if extendedHours {
		sessionStart, err = cal.ExtendedOpen(date)
		if err != nil {
			return err
		}

		sessionEnd, err = cal.ExtendedClose(date)
		if err != nil {
			return err
		}
	}

	// Step toward the regular close, then land on it exactly: the close tick
	// must be emitted even when the step size does not divide the session
	// length (an hourly step from 09:30 never reaches 16:00 on its own).
	for ts := sessionStart; ts.Before(regularClose); ts = ts.Add(step) {
		c.timestamps = append(c.timestamps, ts)
	}

	c.timestamps = append(c.timestamps, regularClose)

	if sessionEnd.After(regularClose) {
		for ts := regularClose.Add(step); ts.Before(sessionEnd); ts = ts.Add(step) {
			c.timestamps = append(c.timestamps, ts)
		}

		c.timestamps = append(c.timestamps, sessionEnd)
	}

	c.opens[regularOpen.Unix()] = struct{}{}
	c.closes[regularClose.Unix()] = struct{}{}

	return nil
}

// Advance returns the next timestamp. Fails with ErrCodeClockExhausted once
// the sequence is consumed; this is the expected termination signal, not a
// failure.
func (c *Clock) Advance() (time.Time, error) {
	if c.Exhausted() {
		return time.Time{}, errors.New(errors.ErrCodeClockExhausted, "simulation clock exhausted")
	}

	ts := c.timestamps[c.cursor]
	c.cursor++

	return ts, nil
}

// Exhausted reports whether all timestamps have been consumed.
func (c *Clock) Exhausted() bool {
	return c.cursor >= len(c.timestamps)
}

// Len returns the total number of timestamps in the sequence.
func (c *Clock) Len() int {
	return len(c.timestamps)
}

// SessionBoundary reports whether ts is a session open or close.
func (c *Clock) SessionBoundary(ts time.Time) Boundary {
	if _, ok := c.closes[ts.Unix()]; ok {
		return BoundaryClose
	}

	if _, ok := c.opens[ts.Unix()]; ok {
		return BoundaryOpen
	}

	return BoundaryNone
}

// IsFinal reports whether ts is the last timestamp of the sequence.
func (c *Clock) IsFinal(ts time.Time) bool {
	return len(c.timestamps) > 0 && c.timestamps[len(c.timestamps)-1].Equal(ts)
}
