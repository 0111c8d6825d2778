package domain

import (
	"strconv"
	"time"
)

// Recurrence codes select which ISO weeks a location is due:
//
//	""  / unknown  always due (fail-open)
//	"0"            never due here (reserved for weekend-only visits,
//	               enforced outside this engine)
//	"4"            every week
//	"2,1" / "2,2"  odd / even ISO weeks
//	"1,1".."1,4"   only when the cycle slot matches
//
// The cycle repeats every 4 ISO weeks based on the week's position in the
// year, not on a fixed business epoch. Slot assignment therefore drifts
// across ISO year boundaries with 53-week years.

// ISOWeekOf returns the ISO-8601 week number of t.
func ISOWeekOf(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// CycleSlot maps an ISO week to its position 1..4 in the rolling 4-week cycle.
func CycleSlot(isoWeek int) int {
	return ((isoWeek-1)%4+4)%4 + 1
}

// SlotKey is the cycle slot as the string key used in Location.Ranks.
func SlotKey(isoWeek int) string {
	return strconv.Itoa(CycleSlot(isoWeek))
}

// IsActive reports whether a recurrence code is due in the given ISO week.
// Unrecognized codes are treated as always active.
func IsActive(code string, isoWeek int) bool {
	switch code {
	case "0":
		return false
	case "4":
		return true
	case "2,1":
		return isoWeek%2 == 1
	case "2,2":
		return isoWeek%2 == 0
	case "1,1", "1,2", "1,3", "1,4":
		want := int(code[2] - '0')
		return CycleSlot(isoWeek) == want
	default:
		return true
	}
}

// WeekForOffset resolves a cycle-week offset (0 = this week) to a concrete
// ISO week number relative to today.
func WeekForOffset(today time.Time, offset int) int {
	return ISOWeekOf(today.AddDate(0, 0, offset*7))
}
