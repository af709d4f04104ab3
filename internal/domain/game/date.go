package game

import (
	"fmt"
	"strings"
	"time"
)

// FormatDate renders the game date the way scoreboard rows store it,
// unpadded M/D/YYYY.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

var acceptedDateLayouts = []string{"1/2/2006", "2006-01-02"}

// NormalizeDate canonicalizes a user-supplied game date to unpadded M/D/YYYY.
// Accepts M/D/YYYY (padded or not) and ISO YYYY-MM-DD. Empty input stays
// empty so callers can apply their own default.
func NormalizeDate(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", nil
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return FormatDate(t), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q, want M/D/YYYY or YYYY-MM-DD", text)
}
