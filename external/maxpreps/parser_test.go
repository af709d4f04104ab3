package maxpreps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardFixture = `
<html><body>
<ul>
  <li class="c" data-contest-id="abc123" data-contest-state="boxscore" data-contest-live="0" data-teams="Central,Northside">
    <div class="contest-box-item">
      <a class="c-c" href="/games/abc123.htm"></a>
      <div class="details">Final</div>
      <ul class="teams">
        <li class="winner" data-result="W"><span class="name">(#3) Central</span><span class="score">28</span></li>
        <li data-result="L"><span class="name">Northside</span><span class="score">14</span></li>
      </ul>
    </div>
  </li>
  <li class="c" data-contest-state="pregame">
    <div class="contest-box-item">
      <div class="details">7:00 PM</div>
    </div>
  </li>
  <li class="c" data-contest-id="solo789" data-contest-state="pregame">
    <div class="contest-box-item">
      <ul class="teams">
        <li><span class="name">Lonely Team</span><span class="score"></span></li>
      </ul>
    </div>
  </li>
  <li class="c" data-contest-id="live456" data-contest-state="contest-in-progress" data-contest-live="1">
    <div class="contest-box-item">
      <a class="c-c" href="https://scores.example.com/games/live456.htm?date=9/3/2025"></a>
      <div class="details">Q3 4:12</div>
      <ul class="teams">
        <li><span class="name">( 12 ) East Valley</span><span class="score"></span></li>
        <li><span class="name">West Ridge</span><span class="score">TBD</span></li>
      </ul>
    </div>
  </li>
</ul>
</body></html>`

func TestParseScoreboard(t *testing.T) {
	sport, err := ParseCompoundSport("football")
	require.NoError(t, err)

	scrapedAt := time.Date(2025, 9, 5, 2, 30, 0, 0, time.UTC)
	records, err := ParseScoreboard([]byte(scoreboardFixture), ParseInput{
		StateCode: "AL",
		Sport:     sport,
		PageURL:   "https://www.maxpreps.com/al/football/scores/?date=9/4/2025",
		GameDate:  "9/4/2025",
		ScrapedAt: scrapedAt,
	})
	require.NoError(t, err)
	// The box without a contest id and the one-team box are both skipped.
	require.Len(t, records, 2)

	final := records[0]
	assert.Equal(t, "abc123", final.ID)
	assert.Equal(t, "al", final.StateCode)
	assert.Equal(t, "FOOTBALL", final.Sport)
	assert.Equal(t, "Male", final.Gender)
	assert.Equal(t, "boxscore", final.ContestState)
	assert.False(t, final.IsLive)
	assert.Equal(t, "Final", final.Details)
	assert.Equal(t, "Central,Northside", final.TeamsAttr)
	assert.Equal(t, "https://www.maxpreps.com/games/abc123.htm", final.GameURL)
	// The game URL carries no date, so the page URL's date is stored as ISO.
	assert.Equal(t, "2025-09-04", final.GameDate)
	assert.Equal(t, scrapedAt, final.ScrapedAt)

	// Rank prefix is stripped from team names.
	assert.Equal(t, "Central", final.Team1Name)
	require.NotNil(t, final.Team1Score)
	assert.Equal(t, 28, *final.Team1Score)
	assert.True(t, final.Team1Winner)
	assert.Equal(t, "W", final.Team1Result)
	assert.Equal(t, "Northside", final.Team2Name)
	require.NotNil(t, final.Team2Score)
	assert.Equal(t, 14, *final.Team2Score)
	assert.False(t, final.Team2Winner)
	assert.Equal(t, "L", final.Team2Result)

	live := records[1]
	assert.Equal(t, "live456", live.ID)
	assert.True(t, live.IsLive)
	assert.Equal(t, "contest-in-progress", live.ContestState)
	// Absolute hrefs are kept untouched.
	assert.Equal(t, "https://scores.example.com/games/live456.htm?date=9/3/2025", live.GameURL)
	// A date on the game URL itself wins over the page URL's.
	assert.Equal(t, "2025-09-03", live.GameDate)
	assert.Equal(t, "East Valley", live.Team1Name)
	// Scoreless and digit-free score cells both stay nil.
	assert.Nil(t, live.Team1Score)
	assert.Nil(t, live.Team2Score)
}

func TestParseScoreboardEmptyPage(t *testing.T) {
	records, err := ParseScoreboard([]byte("<html><body></body></html>"), ParseInput{StateCode: "tx"})
	require.NoError(t, err)
	assert.Empty(t, records)
}
