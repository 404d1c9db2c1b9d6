// Package calendar models trading-session schedules: which dates trade,
// when the regular session opens, and when it closes on a given date
// (closes vary because of early-close days).
package calendar

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Calendar answers session-schedule questions for the simulation clock.
// Dates passed in are truncated to midnight in the calendar's location.
type Calendar interface {
	// IsTradingDate reports whether the market trades on the given date.
	IsTradingDate(date time.Time) bool
	// RegularOpen returns the regular session open for the date.
	RegularOpen(date time.Time) (time.Time, error)
	// RegularClose returns the regular session close for the date,
	// honoring early closes.
	RegularClose(date time.Time) (time.Time, error)
	// ExtendedOpen and ExtendedClose bound the extended-hours session.
	ExtendedOpen(date time.Time) (time.Time, error)
	ExtendedClose(date time.Time) (time.Time, error)
	// TradingDates returns all trading dates in [start, end], ordered ascending.
	TradingDates(start time.Time, end time.Time) []time.Time
	// Location is the exchange timezone.
	Location() *time.Location
}

type usEquityCalendar struct {
	config   Config
	loc      *time.Location
	open     sessionTime
	close    sessionTime
	extOpen  sessionTime
	extClose sessionTime

	holidays    map[string]struct{}
	earlyCloses map[string]sessionTime
}

// sessionTime is a wall-clock time of day.
type sessionTime struct {
	hour   int
	minute int
}

// NewUSEquityCalendar builds a weekday calendar from the given config.
// Returns ErrCodeInvalidConfiguration if the config does not parse.
func NewUSEquityCalendar(config Config) (Calendar, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "unknown timezone: %s", config.Timezone)
	}

	c := &usEquityCalendar{
		config:      config,
		loc:         loc,
		open:        mustParseSessionTime(config.RegularOpen),
		close:       mustParseSessionTime(config.RegularClose),
		extOpen:     mustParseSessionTime(config.ExtendedOpen),
		extClose:    mustParseSessionTime(config.ExtendedClose),
		holidays:    make(map[string]struct{}, len(config.Holidays)),
		earlyCloses: make(map[string]sessionTime, len(config.EarlyCloses)),
	}

	for _, holiday := range config.Holidays {
		c.holidays[holiday] = struct{}{}
	}

	for date, closeTime := range config.EarlyCloses {
		c.earlyCloses[date] = mustParseSessionTime(closeTime)
	}

	return c, nil
}

func (c *usEquityCalendar) Location() *time.Location {
	return c.loc
}

func (c *usEquityCalendar) IsTradingDate(date time.Time) bool {
	date = c.midnight(date)

	weekday := date.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return false
	}

	_, isHoliday := c.holidays[date.Format(time.DateOnly)]

	return !isHoliday
}

func (c *usEquityCalendar) RegularOpen(date time.Time) (time.Time, error) {
	if !c.IsTradingDate(date) {
		return time.Time{}, errors.Newf(errors.ErrCodeNonTradingDate, "%s is not a trading date", date.Format(time.DateOnly))
	}

	return c.at(date, c.open), nil
}

func (c *usEquityCalendar) RegularClose(date time.Time) (time.Time, error) {
	if !c.IsTradingDate(date) {
		return time.Time{}, errors.Newf(errors.ErrCodeNonTradingDate, "%s is not a trading date", date.Format(time.DateOnly))
	}

	if earlyClose, ok := c.earlyCloses[c.midnight(date).Format(time.DateOnly)]; ok {
		return c.at(date, earlyClose), nil
	}

	return c.at(date, c.close), nil
}

func (c *usEquityCalendar) ExtendedOpen(date time.Time) (time.Time, error) {
	if !c.IsTradingDate(date) {
		return time.Time{}, errors.Newf(errors.ErrCodeNonTradingDate, "%s is not a trading date", date.Format(time.DateOnly))
	}

	return c.at(date, c.extOpen), nil
}

func (c *usEquityCalendar) ExtendedClose(date time.Time) (time.Time, error) {
	if !c.IsTradingDate(date) {
		return time.Time{}, errors.Newf(errors.ErrCodeNonTradingDate, "%s is not a trading date", date.Format(time.DateOnly))
	}

	// Early-close days end the extended session at the early close too.
	if earlyClose, ok := c.earlyCloses[c.midnight(date).Format(time.DateOnly)]; ok {
		return c.at(date, earlyClose), nil
	}

	return c.at(date, c.extClose), nil
}

func (c *usEquityCalendar) TradingDates(start time.Time, end time.Time) []time.Time {
	var dates []time.Time

	for date := c.midnight(start); !date.After(c.midnight(end)); date = date.AddDate(0, 0, 1) {
		if c.IsTradingDate(date) {
			dates = append(dates, date)
		}
	}

	return dates
}

func (c *usEquityCalendar) midnight(t time.Time) time.Time {
	t = t.In(c.loc)

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

func (c *usEquityCalendar) at(date time.Time, st sessionTime) time.Time {
	date = c.midnight(date)

	return time.Date(date.Year(), date.Month(), date.Day(), st.hour, st.minute, 0, 0, c.loc)
}

// mustParseSessionTime assumes the value already passed config validation.
func mustParseSessionTime(value string) sessionTime {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		panic(err)
	}

	return sessionTime{hour: parsed.Hour(), minute: parsed.Minute()}
}
