// Package session answers NYSE trading-day questions used to pick the
// default expiry of a chain.
package session

import (
	"fmt"
	"time"

	"github.com/scmhub/calendar"
)

const (
	DefaultTimezone = "America/New_York"
	DateLayout      = "2006-01-02"

	// a run of closed days never exceeds this (weekend plus holidays)
	maxClosedRun = 10
)

type Calendar struct {
	location *time.Location
	nyse     *calendar.Calendar
}

// New returns a calendar evaluated in timezone. An empty timezone uses
// America/New_York.
func New(timezone string) (*Calendar, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Calendar{location: loc, nyse: calendar.XNYS()}, nil
}

// IsMarketDay reports whether date (YYYY-MM-DD) is an NYSE trading day.
func (c *Calendar) IsMarketDay(date string) bool {
	// noon avoids the date shifting across a zone boundary
	t, err := time.ParseInLocation("2006-01-02 15:04:05", date+" 12:00:00", c.location)
	if err != nil {
		return false
	}
	return c.nyse.IsBusinessDay(t)
}

// SessionDate returns t's date when it is a trading day, otherwise the next
// trading day after it.
func (c *Calendar) SessionDate(t time.Time) string {
	local := t.In(c.location)
	day := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, c.location)
	for i := 0; i < maxClosedRun; i++ {
		if c.nyse.IsBusinessDay(day) {
			break
		}
		day = day.AddDate(0, 0, 1)
	}
	return day.Format(DateLayout)
}

// Today is SessionDate for the current time.
func (c *Calendar) Today() string {
	return c.SessionDate(time.Now())
}

func (c *Calendar) Location() *time.Location {
	return c.location
}
