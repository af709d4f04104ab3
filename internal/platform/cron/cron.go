// Package cron implements the five-field schedule expressions used by the
// scoreboard scheduler. Expressions are matched against a wall-clock minute,
// never parsed ahead of time: a malformed field simply never matches.
//
// Field order is minute, hour, day-of-month, month, day-of-week. Day-of-week
// runs Monday=0 through Sunday=6.
package cron

import (
	"strconv"
	"strings"
	"time"
)

// Matches reports whether t falls on a minute described by expr.
// Expressions with anything other than five fields never match.
func Matches(expr string, t time.Time) bool {
	fields := strings.Fields(strings.TrimSpace(expr))
	if len(fields) != 5 {
		return false
	}

	return matchField(fields[0], t.Minute()) &&
		matchField(fields[1], t.Hour()) &&
		matchField(fields[2], t.Day()) &&
		matchField(fields[3], int(t.Month())) &&
		matchField(fields[4], Weekday(t))
}

// Weekday returns the day-of-week for t with Monday=0 and Sunday=6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// matchField evaluates one field against the current value. Syntax checks run
// in a fixed order: "*", then "/", then "-", then ",", then an exact value.
func matchField(field string, cur int) bool {
	field = strings.TrimSpace(field)
	if field == "*" {
		return true
	}

	if strings.Contains(field, "/") {
		return matchStep(field, cur)
	}

	if strings.Contains(field, "-") {
		lo, hi, ok := parseRange(field)
		if !ok {
			return false
		}
		return lo <= cur && cur <= hi
	}

	if strings.Contains(field, ",") {
		want := strconv.Itoa(cur)
		for _, part := range strings.Split(field, ",") {
			if strings.TrimSpace(part) == want {
				return true
			}
		}
		return false
	}

	value, err := strconv.Atoi(field)
	if err != nil {
		return false
	}
	return value == cur
}

func matchStep(field string, cur int) bool {
	parts := strings.SplitN(field, "/", 2)
	if len(parts) != 2 {
		return false
	}

	step, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || step <= 0 {
		return false
	}

	base := strings.TrimSpace(parts[0])
	switch {
	case base == "*":
		return cur%step == 0
	case strings.Contains(base, "-"):
		lo, hi, ok := parseRange(base)
		if !ok {
			return false
		}
		return lo <= cur && cur <= hi && (cur-lo)%step == 0
	default:
		lo, err := strconv.Atoi(base)
		if err != nil {
			return false
		}
		return cur >= lo && (cur-lo)%step == 0
	}
}

func parseRange(field string) (int, int, bool) {
	parts := strings.SplitN(field, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}
