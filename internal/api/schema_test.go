package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseV4(t *testing.T) {
	details, err := parseMatch(SchemaV4, "match_v4", fixture(t, "match_v4.json"))
	require.NoError(t, err)

	assert.Equal(t, "b3a8c1d2-0000-4000-8000-000000000001", details.MatchID)
	assert.Equal(t, "competitive", details.Mode)
	assert.Equal(t, time.Date(2024, 10, 20, 18, 30, 0, 0, time.UTC), details.StartedAt)
	assert.Equal(t, int64(2143000), details.DurationMs)
	assert.Equal(t, "season-1", details.SeasonID)

	require.Len(t, details.Teams, 2)
	assert.Equal(t, MatchTeam{TeamID: "Red", Won: true, RoundsWon: 13, RoundsLost: 8}, details.Teams[0])

	require.Len(t, details.Players, 3)
	alpha := details.Players[0]
	assert.Equal(t, "Red", alpha.TeamID)
	assert.Equal(t, "Jett", alpha.AgentName)
	assert.Equal(t, 20, alpha.Kills)
	assert.Equal(t, 12, alpha.Headshots)
	assert.Equal(t, 3400, alpha.DamageDealt)

	// missing optional fields default instead of failing
	ghost := details.Players[2]
	assert.Equal(t, "", ghost.Puuid)
	assert.Equal(t, "8e253930-4c05-31dd-1b6c-968525494517", ghost.AgentID)
	assert.Equal(t, 0, ghost.Headshots)

	require.Len(t, details.Rounds, 2)
	assert.Equal(t, MatchRound{Number: 1, WinningTeam: "Red", EndType: "Elimination"}, details.Rounds[0])
	assert.True(t, details.Rounds[1].BombPlanted)
	assert.True(t, details.Rounds[1].BombDefused)
}

func TestParseV2(t *testing.T) {
	details, err := parseMatch(SchemaV2, "match_v2", fixture(t, "match_v2.json"))
	require.NoError(t, err)

	assert.Equal(t, "legacy-0000-0001", details.MatchID)
	assert.Equal(t, "Bind", details.MapName)
	assert.Equal(t, "2c9d57ec-4431-9c5e-2939-8f9ef6dd5cba", details.MapID)
	assert.Equal(t, "competitive", details.Mode)
	assert.Equal(t, time.Unix(1697040000, 0).UTC(), details.StartedAt)

	require.Len(t, details.Teams, 2)
	assert.Equal(t, "Red", details.Teams[0].TeamID)
	assert.False(t, details.Teams[0].Won)
	assert.Equal(t, "Blue", details.Teams[1].TeamID)
	assert.True(t, details.Teams[1].Won)

	require.Len(t, details.Players, 2)
	assert.Equal(t, "601dbbe7-43ce-be57-2a40-4abd24953621", details.Players[1].AgentID)
	assert.Equal(t, 2500, details.Players[1].DamageDealt)
	assert.Equal(t, 4, details.Players[1].Legshots)

	require.Len(t, details.Rounds, 1)
	assert.True(t, details.Rounds[0].BombPlanted)
	assert.Equal(t, "Blue", details.Rounds[0].WinningTeam)
}

func TestParseV2PlayersKeyedByTeam(t *testing.T) {
	body := []byte(`{"data": {
		"metadata": {"matchid": "m-1", "game_start": 1697040000123, "mode": "Swiftplay"},
		"players": {
			"blue": [{"puuid": "b1", "character": "Sage", "stats": {"kills": 3}}],
			"red": [{"puuid": "r1", "team": "Red", "character": "Reyna", "stats": {"kills": 9}}]
		},
		"teams": {"red": {"rounds_won": 5}, "blue": {"rounds_won": 3}}
	}}`)

	details, err := parseMatch(SchemaV2, "match_v2", body)
	require.NoError(t, err)

	assert.Equal(t, time.UnixMilli(1697040000123).UTC(), details.StartedAt)
	assert.Equal(t, "swiftplay", details.Mode)

	require.Len(t, details.Players, 2)
	assert.Equal(t, "r1", details.Players[0].Puuid)
	assert.Equal(t, "Blue", details.Players[1].TeamID)

	assert.True(t, details.Teams[0].Won)
	assert.False(t, details.Teams[1].Won)
}

func TestParseV2DrawHasNoWinner(t *testing.T) {
	body := []byte(`{"data": {"metadata": {"matchid": "m-2"}, "teams": {"red": {"rounds_won": 12}, "blue": {"rounds_won": 12}}}}`)

	details, err := parseMatch(SchemaV2, "match_v2", body)
	require.NoError(t, err)
	for _, team := range details.Teams {
		assert.False(t, team.Won)
	}
	assert.True(t, details.StartedAt.IsZero())
}

func TestParseMatchWithoutIDIsNotFound(t *testing.T) {
	_, err := parseMatch(SchemaV4, "match_v4", []byte(`{"status": 200, "data": {}}`))
	assert.True(t, IsNotFound(err))
}

func TestParseMatchMalformed(t *testing.T) {
	_, err := parseMatch(SchemaV2, "match_v2", []byte(`not json`))
	assert.True(t, IsPermanent(err))

	_, err = parseMatch(SchemaVersion(9), "match", []byte(`{}`))
	assert.True(t, IsPermanent(err))
}

func TestEpochToTime(t *testing.T) {
	assert.True(t, epochToTime(0).IsZero())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), epochToTime(1700000000))
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), epochToTime(1700000000000))
}

func TestIsoToTimeInvalid(t *testing.T) {
	assert.True(t, isoToTime("yesterday").IsZero())
	assert.True(t, isoToTime("").IsZero())
}
