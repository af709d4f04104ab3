package maxpreps

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/riskibarqy/prepscores/internal/domain/game"
)

const defaultBaseURL = "https://www.maxpreps.com"

// FormatGameDate renders the scoreboard date query value, unpadded M/D/YYYY.
func FormatGameDate(t time.Time) string {
	return game.FormatDate(t)
}

// BuildScoresURL builds a state scoreboard page URL for a sport path and a
// game date already formatted by FormatGameDate.
func BuildScoresURL(baseURL, stateCode, sportPath, gameDate string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	// The provider expects the raw M/D/YYYY value, slashes unescaped.
	return fmt.Sprintf("%s/%s/%s/scores/?date=%s",
		base,
		strings.ToLower(strings.TrimSpace(stateCode)),
		strings.Trim(sportPath, "/"),
		gameDate,
	)
}

// parseDateFromURL extracts the ?date=M/D/YYYY query value from a scoreboard
// or game URL and returns it in ISO YYYY-MM-DD form, or "" when absent.
func parseDateFromURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return isoFromMDY(parsed.Query().Get("date"))
}

func isoFromMDY(mdy string) string {
	t, err := time.Parse("1/2/2006", strings.TrimSpace(mdy))
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// resolveURL resolves a possibly relative href against the page it came from.
func resolveURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
