package airac

import (
	"fmt"
	"strconv"
	"time"
)

// Period is the length of one publication cycle.
const Period = 28 * 24 * time.Hour

// maxBackSteps caps the backward search for the 56-day slot. Parity flips on
// every step, so one step is always enough while the anchor table is sound.
const maxBackSteps = 1

// epoch is the start of cycle 2001, the first entry of the anchor table.
var epoch = time.Date(2020, time.January, 2, 9, 0, 0, 0, time.UTC)

// firstCycleDays maps a calendar year to the January day its first cycle starts.
var firstCycleDays = map[int]int{
	2020: 2,
	2021: 28,
	2022: 27,
	2023: 26,
	2024: 25,
	2025: 23,
	2026: 22,
	2027: 21,
	2028: 20,
	2029: 18,
}

// Cycle describes one 28-day publication period.
type Cycle struct {
	Year     int
	Sequence int
	Start    time.Time
	// SlotB is set on cycles that also start a 56-day chart period.
	SlotB bool
}

// ID returns the four digit YYcc identifier.
func (c Cycle) ID() string {
	return fmt.Sprintf("%04d", (c.Year%100)*100+c.Sequence)
}

// End returns the instant the next cycle takes effect.
func (c Cycle) End() time.Time {
	return c.Start.Add(Period)
}

// FirstCycleDay reports the January day the first cycle of year begins.
// The boolean is false when the year is outside the anchor table.
func FirstCycleDay(year int) (int, bool) {
	day, ok := firstCycleDays[year]
	return day, ok
}

// At returns the cycle in effect at t. It reports false when t precedes the
// anchor epoch or when the walk reaches a year missing from the anchor table.
func At(t time.Time) (Cycle, bool) {
	t = t.UTC()
	if t.Before(epoch) {
		return Cycle{}, false
	}
	current := Cycle{Year: epoch.Year(), Sequence: 1, Start: epoch}
	for {
		next := current.Start.Add(Period)
		if next.After(t) {
			return current, true
		}
		if next.Year() != current.Start.Year() {
			day, ok := FirstCycleDay(next.Year())
			if !ok || next.Month() != time.January || next.Day() != day {
				return Cycle{}, false
			}
			current.Sequence = 1
		} else {
			current.Sequence++
		}
		current.Year = next.Year()
		current.Start = next
		current.SlotB = !current.SlotB
	}
}

// CurrentAndEffective returns the cycle in effect offset periods after now,
// together with the 56-day cycle that applies at the same point. When the
// current cycle is itself a 56-day slot both values are the same identifier.
// Two empty strings mean the cycle cannot be determined from the anchor table.
func CurrentAndEffective(now time.Time, offset int) (string, string) {
	current, ok := At(shift(now, offset))
	if !ok {
		return "", ""
	}
	if current.SlotB {
		return current.ID(), current.ID()
	}
	for step := 1; step <= maxBackSteps; step++ {
		prior, ok := At(shift(now, offset-step))
		if !ok {
			return "", ""
		}
		if prior.SlotB {
			return current.ID(), prior.ID()
		}
	}
	return "", ""
}

// VersionStart returns the YYYY-MM-DD start date of a YYcc cycle identifier,
// or "" when the identifier is malformed or its year is not in the table.
func VersionStart(cycle string) string {
	start, ok := StartOf(cycle)
	if !ok {
		return ""
	}
	return start.Format("2006-01-02")
}

// StartOf returns the effective instant of a YYcc cycle identifier.
func StartOf(cycle string) (time.Time, bool) {
	value, err := strconv.Atoi(cycle)
	if err != nil || value < 0 {
		return time.Time{}, false
	}
	year := 2000 + value/100
	sequence := value % 100
	day, ok := FirstCycleDay(year)
	if !ok || sequence < 1 {
		return time.Time{}, false
	}
	start := time.Date(year, time.January, day, 9, 0, 0, 0, time.UTC)
	return start.Add(time.Duration(sequence-1) * Period), true
}

func shift(t time.Time, periods int) time.Time {
	return t.Add(time.Duration(periods) * Period)
}
