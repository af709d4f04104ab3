package schedule

import "time"

const gateLocation = "America/New_York"

// InScrapeWindow reports whether now falls inside the default football
// scrape window: Thursday through Saturday, 18:00-23:59 US Eastern.
// Forced runs and explicit date overrides bypass this gate entirely.
func InScrapeWindow(now time.Time) bool {
	loc, err := time.LoadLocation(gateLocation)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	switch Weekday(local) {
	case 3, 4, 5: // Thu, Fri, Sat
	default:
		return false
	}

	return local.Hour() >= 18 && local.Hour() <= 23
}

// Weekday returns the day-of-week with Monday=0 and Sunday=6, matching the
// convention the cron tables use.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DefaultLocation is the zone used when a request carries no explicit game
// date: US Eastern, where the earliest games of the evening tip off.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(gateLocation)
	if err != nil {
		return time.UTC
	}
	return loc
}
