// Command prepscoresctl runs the scrape and finalize pipeline from the
// command line against the configured database, without the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prepscores/internal/app"
	"github.com/riskibarqy/prepscores/internal/config"
	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/domain/schedule"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
	"github.com/riskibarqy/prepscores/internal/usecase"
)

type jobFlags struct {
	states   string
	sport    string
	date     string
	force    bool
	workers  int
	timezone string
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	if cmd == "seasons" {
		runSeasons()
		return
	}

	flags, err := parseJobFlags(cmd, os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	services, err := app.NewServices(cfg, logger)
	if err != nil {
		logger.Error("build services", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = services.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := runCommand(ctx, cmd, cfg, services, flags)
	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
	printResult(out)
}

func runCommand(ctx context.Context, cmd string, cfg config.Config, services *app.Services, flags jobFlags) (any, error) {
	states := cfg.DefaultStates
	if flags.states != "" {
		states = splitStates(flags.states)
	}
	sport := cfg.DefaultSport
	if flags.sport != "" {
		sport = flags.sport
	}

	switch cmd {
	case "scrape":
		return services.Scrape.Scrape(ctx, usecase.ScrapeInput{
			States: states,
			Sport:  sport,
			Date:   flags.date,
			Force:  flags.force,
		})
	case "finalize":
		return services.Finalize.Finalize(ctx, usecase.FinalizeInput{
			States: states,
			Sport:  sport,
		})
	case "timezone-scrape":
		tz, err := lookupTimezone(flags.timezone)
		if err != nil {
			return nil, err
		}
		return services.Scrape.Scrape(ctx, usecase.ScrapeInput{
			States: tz.States,
			Sport:  sport,
			Date:   timezoneDate(flags.date, tz),
			Force:  true,
		})
	case "timezone-finalize":
		tz, err := lookupTimezone(flags.timezone)
		if err != nil {
			return nil, err
		}
		return services.Finalize.Finalize(ctx, usecase.FinalizeInput{
			States: tz.States,
			Sport:  sport,
		})
	case "sweep-scrape":
		return services.Sweep.SweepScrape(ctx, usecase.SweepInput{
			Sport:      sport,
			Date:       flags.date,
			MaxWorkers: flags.workers,
		})
	case "sweep-finalize":
		return services.Sweep.SweepFinalize(ctx, usecase.SweepInput{
			Sport:      sport,
			Date:       flags.date,
			MaxWorkers: flags.workers,
		})
	default:
		printUsage()
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func parseJobFlags(cmd string, args []string) (jobFlags, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var flags jobFlags
	fs.StringVar(&flags.states, "states", "", "comma separated two-letter state codes")
	fs.StringVar(&flags.sport, "sport", "", "sport name, optionally compound such as volleyball-girls")
	fs.StringVar(&flags.date, "date", "", "game date, M/D/YYYY or YYYY-MM-DD, defaults to today")
	fs.BoolVar(&flags.force, "force", false, "run even outside the scoreboard window")
	fs.IntVar(&flags.workers, "workers", 0, "sweep worker count")
	fs.StringVar(&flags.timezone, "timezone", "", "timezone group name, e.g. eastern")
	if err := fs.Parse(args); err != nil {
		return jobFlags{}, err
	}
	return flags, nil
}

func lookupTimezone(name string) (schedule.Timezone, error) {
	tz, ok := schedule.TimezoneByName(name)
	if !ok {
		return schedule.Timezone{}, fmt.Errorf("unknown timezone %q (known: %s)", name, strings.Join(schedule.TimezoneNames(), ", "))
	}
	return tz, nil
}

func timezoneDate(date string, tz schedule.Timezone) string {
	if strings.TrimSpace(date) != "" {
		return date
	}
	return game.FormatDate(time.Now().In(tz.LoadLocation()))
}

func splitStates(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if state := strings.ToLower(strings.TrimSpace(part)); state != "" {
			out = append(out, state)
		}
	}
	return out
}

func runSeasons() {
	month := time.Now().In(schedule.DefaultLocation()).Month()
	season := schedule.CurrentSeason(month)
	printResult(map[string]any{
		"season":       season.Name,
		"sports":       season.Sports,
		"activeSports": schedule.ActiveSports(month),
	})
}

func printResult(out any) {
	raw, err := sonic.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(raw))
}

func printUsage() {
	prog := os.Args[0]
	fmt.Fprintf(os.Stderr, "usage: %s <command> [flags]\n\n", prog)
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  scrape             scrape the configured or given states")
	fmt.Fprintln(os.Stderr, "  finalize           settle stale in-progress rows")
	fmt.Fprintln(os.Stderr, "  timezone-scrape    scrape every state in one timezone group (forced)")
	fmt.Fprintln(os.Stderr, "  timezone-finalize  finalize every state in one timezone group")
	fmt.Fprintln(os.Stderr, "  sweep-scrape       scrape all timezone groups")
	fmt.Fprintln(os.Stderr, "  sweep-finalize     finalize all timezone groups")
	fmt.Fprintln(os.Stderr, "  seasons            print the current season and active sports")
	fmt.Fprintf(os.Stderr, "\nexample: %s scrape -states al,ga -sport football -force\n", prog)
}
