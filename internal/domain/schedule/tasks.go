package schedule

import (
	"fmt"
	"strings"
)

type TaskKind string

const (
	TaskKindScrape   TaskKind = "scrape"
	TaskKindFinalize TaskKind = "finalize"
)

// TaskSpec is a single scheduler entry: a cron expression bound to a sport
// and a timezone group. Expressions are evaluated against UTC wall time.
type TaskSpec struct {
	Name     string
	Expr     string
	Timezone string
	Sport    string
	Kind     TaskKind
}

// The scrape tables follow local prime-time game windows shifted into UTC,
// which is why western groups only carry the after-midnight half. Football
// weekday lists use Monday=0, so 3,4,5 is Thu/Fri/Sat and the after-midnight
// half shifts to 4,5,6 (Fri/Sat/Sun UTC).
var footballScrapeExprs = map[string][]string{
	"eastern":  {"*/3 21-23 * * 3,4,5", "0-30/3 0-3 * * 4,5,6"},
	"central":  {"*/3 22-23 * * 3,4,5", "0-30/3 0-4 * * 4,5,6"},
	"mountain": {"*/3 23 * * 3,4,5", "0-30/3 0-5 * * 4,5,6"},
	"pacific":  {"0-30/3 0-6 * * 4,5,6"},
	"alaska":   {"0-30/3 1-7 * * 4,5,6"},
	"hawaii":   {"0-30/3 3-9 * * 4,5,6"},
}

var footballFinalizeExprs = map[string][]string{
	"eastern":  {"30 4 * * 5,6,0"},
	"central":  {"30 5 * * 5,6,0"},
	"mountain": {"30 6 * * 5,6,0"},
	"pacific":  {"30 7 * * 5,6,0"},
	"alaska":   {"30 8 * * 5,6,0"},
	"hawaii":   {"30 10 * * 5,6,0"},
}

// Volleyball runs every night of the week; girls and boys share one window.
var volleyballScrapeExprs = map[string][]string{
	"eastern":  {"*/15 19-23 * * *", "*/15 0-3 * * *"},
	"central":  {"*/15 20-23 * * *", "*/15 0-4 * * *"},
	"mountain": {"*/15 21-23 * * *", "*/15 0-5 * * *"},
	"pacific":  {"*/15 22-23 * * *", "*/15 0-6 * * *"},
	"alaska":   {"*/15 23 * * *", "*/15 0-7 * * *"},
	"hawaii":   {"*/15 1-9 * * *"},
}

var volleyballFinalizeExprs = map[string][]string{
	"eastern":  {"30 3 * * 0,1,2,3,4,5,6"},
	"central":  {"30 3 * * 0,1,2,3,4,5,6"},
	"mountain": {"30 4 * * 0,1,2,3,4,5,6"},
	"pacific":  {"30 5 * * 0,1,2,3,4,5,6"},
	"alaska":   {"30 6 * * 0,1,2,3,4,5,6"},
	"hawaii":   {"30 8 * * 0,1,2,3,4,5,6"},
}

// Basketball plays Tue-Fri local evenings; boys and girls share one window.
var basketballScrapeExprs = map[string][]string{
	"eastern":  {"*/10 22-23 * * 1,3,4,5", "*/10 0-1 * * 2,4,5,6"},
	"central":  {"*/10 23 * * 1,3,4,5", "*/10 0-2 * * 2,4,5,6"},
	"mountain": {"*/10 0-3 * * 2,4,5,6"},
	"pacific":  {"*/10 1-4 * * 2,4,5,6"},
	"alaska":   {"*/10 2-5 * * 2,4,5,6"},
	"hawaii":   {"*/10 4-7 * * 2,4,5,6"},
}

var basketballFinalizeExprs = map[string][]string{
	"eastern":  {"0 4 * * 2,4,5,6"},
	"central":  {"0 5 * * 2,4,5,6"},
	"mountain": {"0 6 * * 2,4,5,6"},
	"pacific":  {"0 7 * * 2,4,5,6"},
	"alaska":   {"0 8 * * 2,4,5,6"},
	"hawaii":   {"0 9 * * 2,4,5,6"},
}

type sportTable struct {
	sport    string
	scrape   map[string][]string
	finalize map[string][]string
}

var sportTables = []sportTable{
	{sport: "football", scrape: footballScrapeExprs, finalize: footballFinalizeExprs},
	{sport: "volleyball-girls", scrape: volleyballScrapeExprs, finalize: volleyballFinalizeExprs},
	{sport: "volleyball-boys", scrape: volleyballScrapeExprs, finalize: volleyballFinalizeExprs},
	{sport: "basketball-boys", scrape: basketballScrapeExprs, finalize: basketballFinalizeExprs},
	{sport: "basketball-girls", scrape: basketballScrapeExprs, finalize: basketballFinalizeExprs},
}

// Tasks expands the per-sport cron tables into a flat task list, one entry
// per expression, in stable declaration order.
func Tasks() []TaskSpec {
	out := make([]TaskSpec, 0, 128)
	for _, table := range sportTables {
		for _, tz := range Timezones {
			for i, expr := range table.scrape[tz.Name] {
				out = append(out, TaskSpec{
					Name:     taskName(table.sport, tz.Name, TaskKindScrape, i, len(table.scrape[tz.Name])),
					Expr:     expr,
					Timezone: tz.Name,
					Sport:    table.sport,
					Kind:     TaskKindScrape,
				})
			}
			for i, expr := range table.finalize[tz.Name] {
				out = append(out, TaskSpec{
					Name:     taskName(table.sport, tz.Name, TaskKindFinalize, i, len(table.finalize[tz.Name])),
					Expr:     expr,
					Timezone: tz.Name,
					Sport:    table.sport,
					Kind:     TaskKindFinalize,
				})
			}
		}
	}
	return out
}

// TasksForSport filters the full task list down to one sport.
func TasksForSport(sport string) []TaskSpec {
	sport = strings.ToLower(strings.TrimSpace(sport))
	out := make([]TaskSpec, 0, 16)
	for _, task := range Tasks() {
		if task.Sport == sport {
			out = append(out, task)
		}
	}
	return out
}

func taskName(sport, timezone string, kind TaskKind, idx, total int) string {
	base := strings.ReplaceAll(sport, "-", "_") + "_" + timezone + "_" + string(kind)
	if total > 1 {
		return fmt.Sprintf("%s_%d", base, idx+1)
	}
	return base
}
