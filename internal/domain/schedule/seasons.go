package schedule

import (
	"strings"
	"time"
)

// Season maps calendar months to the sports expected to have games.
type Season struct {
	Name   string
	Months []time.Month
	Sports []string
}

// Seasons overlap on purpose (November belongs to both fall and late_fall);
// the first entry whose months contain the current month wins.
var Seasons = []Season{
	{
		Name:   "fall",
		Months: []time.Month{time.August, time.September, time.October, time.November},
		Sports: []string{"football", "volleyball"},
	},
	{
		Name:   "late_fall",
		Months: []time.Month{time.November, time.December},
		Sports: []string{"football", "volleyball", "basketball"},
	},
	{
		Name:   "winter",
		Months: []time.Month{time.December, time.January, time.February},
		Sports: []string{"basketball"},
	},
	{
		Name:   "late_winter",
		Months: []time.Month{time.February, time.March},
		Sports: []string{"basketball", "baseball", "soccer", "softball"},
	},
	{
		Name:   "spring",
		Months: []time.Month{time.March, time.April, time.May, time.June},
		Sports: []string{"baseball", "softball", "soccer"},
	},
}

// ImplementedSports are the sports with cron tables and parser support.
// Season entries may name more sports than we can scrape yet.
var ImplementedSports = []string{"football", "volleyball", "basketball"}

// CurrentSeason picks the season for the given month, defaulting to fall.
func CurrentSeason(month time.Month) Season {
	for _, season := range Seasons {
		for _, m := range season.Months {
			if m == month {
				return season
			}
		}
	}
	return Seasons[0]
}

// ActiveSports returns the implemented sports in season for the given month.
func ActiveSports(month time.Month) []string {
	season := CurrentSeason(month)
	out := make([]string, 0, len(season.Sports))
	for _, sport := range season.Sports {
		if IsImplementedSport(sport) {
			out = append(out, sport)
		}
	}
	return out
}

// IsSportInSeason reports whether the sport has games in the given month.
// Compound names such as "basketball-boys" match their base sport.
func IsSportInSeason(sport string, month time.Month) bool {
	base := strings.ToLower(strings.TrimSpace(sport))
	if idx := strings.IndexByte(base, '-'); idx > 0 {
		base = base[:idx]
	}
	for _, item := range CurrentSeason(month).Sports {
		if item == base {
			return true
		}
	}
	return false
}

// IsImplementedSport reports whether the base sport has scrape support.
// Compound names such as "basketball-boys" match their base sport.
func IsImplementedSport(sport string) bool {
	base := strings.ToLower(strings.TrimSpace(sport))
	if idx := strings.IndexByte(base, '-'); idx > 0 {
		base = base[:idx]
	}
	for _, item := range ImplementedSports {
		if item == base {
			return true
		}
	}
	return false
}
