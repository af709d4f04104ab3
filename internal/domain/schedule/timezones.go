// Package schedule holds the static scheduling knowledge of the service:
// which US timezones group which states, which sports are in season, and the
// cron tables that drive scoreboard scraping and finalization.
package schedule

import (
	"sort"
	"strings"
	"time"
)

// Timezone groups the two-letter state codes that share a scoreboard window.
type Timezone struct {
	Name     string
	Location string
	States   []string
}

// A state can belong to more than one timezone (fl and mi straddle a
// boundary); those states are scraped by both groups.
var Timezones = []Timezone{
	{
		Name:     "eastern",
		Location: "America/New_York",
		States:   []string{"ct", "de", "dc", "fl", "ga", "me", "md", "ma", "nh", "nj", "ny", "nc", "oh", "pa", "ri", "sc", "vt", "va", "wv"},
	},
	{
		Name:     "central",
		Location: "America/Chicago",
		States:   []string{"al", "ar", "fl", "ia", "il", "in", "ky", "la", "mi", "mn", "ms", "mo", "tn", "tx", "wi"},
	},
	{
		Name:     "mountain",
		Location: "America/Denver",
		States:   []string{"az", "co", "id", "ks", "mt", "ne", "nm", "nd", "ok", "sd", "ut", "wy"},
	},
	{
		Name:     "pacific",
		Location: "America/Los_Angeles",
		States:   []string{"ca", "nv", "or", "wa"},
	},
	{
		Name:     "alaska",
		Location: "America/Anchorage",
		States:   []string{"ak"},
	},
	{
		Name:     "hawaii",
		Location: "Pacific/Honolulu",
		States:   []string{"hi"},
	},
}

// TimezoneByName looks up a timezone group by its short name.
func TimezoneByName(name string) (Timezone, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, tz := range Timezones {
		if tz.Name == name {
			return tz, true
		}
	}
	return Timezone{}, false
}

// TimezoneNames returns the group names in declaration order.
func TimezoneNames() []string {
	out := make([]string, 0, len(Timezones))
	for _, tz := range Timezones {
		out = append(out, tz.Name)
	}
	return out
}

// AllStates returns the deduplicated union of every group's states, sorted.
func AllStates() []string {
	seen := make(map[string]struct{}, 64)
	for _, tz := range Timezones {
		for _, state := range tz.States {
			seen[state] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for state := range seen {
		out = append(out, state)
	}
	sort.Strings(out)
	return out
}

// LoadLocation resolves the group's IANA location, falling back to UTC when
// the zone database is unavailable.
func (tz Timezone) LoadLocation() *time.Location {
	loc, err := time.LoadLocation(tz.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}
