// Package calendar measures the age of an instant in hours, optionally
// counting only business hours.
package calendar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spiffcs/nudge/internal/constants"
)

// Calendar restricts which hours count towards an age. A nil *Calendar
// counts every wall-clock hour.
type Calendar struct {
	weekdays [7]bool
	hours    [24]bool
	loc      *time.Location
}

// New builds a calendar from permitted weekdays (0 = Sunday) and hours of
// day, evaluated in loc. A nil loc means time.Local.
func New(weekdays, hours []int, loc *time.Location) (*Calendar, error) {
	if len(weekdays) == 0 || len(hours) == 0 {
		return nil, fmt.Errorf("business calendar needs both weekdays and hours")
	}
	if loc == nil {
		loc = time.Local
	}
	c := &Calendar{loc: loc}
	for _, d := range weekdays {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("weekday %d out of range 0-6", d)
		}
		c.weekdays[d] = true
	}
	for _, h := range hours {
		if h < 0 || h > 23 {
			return nil, fmt.Errorf("hour %d out of range 0-23", h)
		}
		c.hours[h] = true
	}
	return c, nil
}

// Counts reports whether the hour starting at t is a business hour.
func (c *Calendar) Counts(t time.Time) bool {
	if c == nil {
		return true
	}
	local := t.In(c.loc)
	return c.weekdays[local.Weekday()] && c.hours[local.Hour()]
}

// Weekdays returns the permitted weekdays in ascending order.
func (c *Calendar) Weekdays() []int { return members(c.weekdays[:]) }

// Hours returns the permitted hours in ascending order.
func (c *Calendar) Hours() []int { return members(c.hours[:]) }

// Location returns the zone the calendar is evaluated in.
func (c *Calendar) Location() *time.Location { return c.loc }

func members(set []bool) []int {
	var out []int
	for i, ok := range set {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// Age returns the whole hours between ref and now. It is 0 when now is not
// after ref. Spans longer than thirty days, or a nil calendar, are measured
// in wall-clock hours; otherwise only business hours are counted by walking
// forward from ref one hour at a time.
func (c *Calendar) Age(ref, now time.Time) int {
	if !now.After(ref) {
		return 0
	}
	elapsed := now.Sub(ref)
	if c == nil || elapsed > constants.CalendarWalkLimit {
		return int(elapsed / time.Hour)
	}

	hours := 0
	for t := ref; t.Before(now); t = t.Add(time.Hour) {
		if c.Counts(t) {
			hours++
		}
	}
	return hours
}

// ParseSet parses a comma separated list of integers and inclusive ranges,
// such as "1-5" or "9,10,13-17". Every member must lie in [min, max].
func ParseSet(s string, min, max int) ([]int, error) {
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", part, err)
		}
		to := from
		if isRange {
			if to, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid entry %q: %w", part, err)
			}
		}
		if from > to {
			return nil, fmt.Errorf("invalid range %q", part)
		}
		if from < min || to > max {
			return nil, fmt.Errorf("entry %q out of range %d-%d", part, min, max)
		}
		for v := from; v <= to; v++ {
			seen[v] = true
		}
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out, nil
}
