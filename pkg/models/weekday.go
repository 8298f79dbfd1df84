package models

import (
	"strconv"
	"strings"
)

// Weekday is a working day recognized by the shop schedule.
// WeekdayInvalid marks a schedule entry whose weekday text could not be
// parsed; rows for such shops are routed to the Unassigned bucket.
type Weekday int

const (
	WeekdayInvalid Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
)

// WorkWeek lists the valid weekdays in schedule order.
var WorkWeek = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// BucketUnassigned is the fallback bucket for rows whose shop has no
// schedule entry or an unrecognized weekday.
const BucketUnassigned = "Unassigned"

func (d Weekday) String() string {
	switch d {
	case Monday:
		return "Monday"
	case Tuesday:
		return "Tuesday"
	case Wednesday:
		return "Wednesday"
	case Thursday:
		return "Thursday"
	case Friday:
		return "Friday"
	}
	return "Invalid"
}

// BucketNames returns the six output bucket names in delivery order.
func BucketNames() []string {
	names := make([]string, 0, len(WorkWeek)+1)
	for _, d := range WorkWeek {
		names = append(names, d.String())
	}
	return append(names, BucketUnassigned)
}

var englishDays = map[string]Weekday{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
}

var georgianDays = map[string]Weekday{
	"ორშაბათი":  Monday,
	"სამშაბათი": Tuesday,
	"ოთხშაბათი": Wednesday,
	"ხუთშაბათი": Thursday,
	"პარასკევი": Friday,
}

// ParseWeekday parses a schedule weekday cell. It accepts English names
// (case-insensitive), the digits 1-5 (Monday=1), and Georgian names, all
// trimmed of surrounding whitespace. Unrecognized text yields
// WeekdayInvalid, which is an expected data-quality outcome, not an error.
func ParseWeekday(s string) Weekday {
	s = strings.TrimSpace(s)
	if s == "" {
		return WeekdayInvalid
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 5 {
			return WorkWeek[n-1]
		}
		return WeekdayInvalid
	}
	if d, ok := englishDays[strings.ToLower(s)]; ok {
		return d
	}
	if d, ok := georgianDays[s]; ok {
		return d
	}
	return WeekdayInvalid
}
