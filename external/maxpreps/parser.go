package maxpreps

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/prepscores/internal/domain/game"
)

// Team rank prefixes like "(#3) " or "( 12 ) " get stripped from names.
var teamRankRegex = regexp.MustCompile(`\(\s*#?\d+\s*\)\s*`)
var nonDigitRegex = regexp.MustCompile(`\D`)

// ParseInput carries the page context attached to every parsed row.
type ParseInput struct {
	StateCode string
	Sport     CompoundSport
	PageURL   string
	// GameDate is the M/D/YYYY date the page was requested for.
	GameDate  string
	ScrapedAt time.Time
}

// ParseScoreboard extracts contest rows from a scoreboard page. Boxes
// without a contest id are skipped; everything else is best-effort, missing
// scores stay nil rather than zero.
func ParseScoreboard(html []byte, input ParseInput) ([]game.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse scoreboard html: %w", err)
	}

	scrapedAt := input.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now().UTC()
	}

	out := make([]game.Record, 0, 32)
	doc.Find("li.c .contest-box-item").Each(func(_ int, box *goquery.Selection) {
		li := box.Closest("li")
		contestID := strings.TrimSpace(attrOrFallback(li, box, "data-contest-id"))
		if contestID == "" {
			return
		}

		record := game.Record{
			ID:           contestID,
			StateCode:    strings.ToLower(strings.TrimSpace(input.StateCode)),
			PageURL:      input.PageURL,
			ContestState: strings.TrimSpace(attrOrFallback(li, box, "data-contest-state")),
			IsLive:       strings.TrimSpace(attrOrFallback(li, box, "data-contest-live")) == "1",
			TeamsAttr:    attrOrFallback(li, box, "data-teams"),
			Details:      strings.TrimSpace(box.Find(".details").First().Text()),
			Sport:        strings.ToUpper(input.Sport.Sport),
			Gender:       input.Sport.Gender,
			ScrapedAt:    scrapedAt,
		}

		if href, ok := box.Find("a.c-c").First().Attr("href"); ok {
			record.GameURL = resolveURL(input.PageURL, href)
		}

		// Stored game dates are ISO, taken from a date query on the game or
		// page URL, falling back to the day the page was requested for.
		gameDate := parseDateFromURL(record.GameURL)
		if gameDate == "" {
			gameDate = parseDateFromURL(input.PageURL)
		}
		if gameDate == "" {
			gameDate = isoFromMDY(input.GameDate)
		}
		if gameDate == "" {
			gameDate = scrapedAt.Format("2006-01-02")
		}
		record.GameDate = gameDate

		teamCount := 0
		box.Find("ul.teams > li").EachWithBreak(func(i int, team *goquery.Selection) bool {
			name := cleanTeamName(team.Find(".name").First().Text())
			score := parseScore(team.Find(".score").First().Text())
			winner := team.HasClass("winner")
			result := strings.TrimSpace(team.AttrOr("data-result", ""))

			switch i {
			case 0:
				record.Team1Name = name
				record.Team1Score = score
				record.Team1Winner = winner
				record.Team1Result = result
			case 1:
				record.Team2Name = name
				record.Team2Score = score
				record.Team2Winner = winner
				record.Team2Result = result
			default:
				return false
			}
			teamCount++
			return true
		})

		// A matchup needs both sides; stray single-team boxes are noise.
		if teamCount < 2 {
			return
		}

		out = append(out, record)
	})

	return out, nil
}

func attrOrFallback(primary, fallback *goquery.Selection, name string) string {
	if value, ok := primary.Attr(name); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback.AttrOr(name, "")
}

func cleanTeamName(raw string) string {
	return strings.TrimSpace(teamRankRegex.ReplaceAllString(raw, ""))
}

// parseScore accepts purely numeric score text; anything else means the score
// has not been reported.
func parseScore(raw string) *int {
	text := strings.TrimSpace(raw)
	if text == "" || nonDigitRegex.MatchString(text) {
		return nil
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &value
}
