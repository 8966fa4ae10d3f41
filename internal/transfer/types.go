package transfer

import (
	"time"

	"github.com/mauv0809/mahjong-league/internal/league"
)

// Column orders of the tabular formats. Readers reject any other header.
var (
	TeamColumns       = []string{"id", "name", "color", "created_at", "updated_at"}
	PlayerColumns     = []string{"id", "name", "team_id", "created_at", "updated_at"}
	GameResultColumns = []string{"game_id", "game_date", "player_id", "player_name", "points", "score", "rank", "created_at"}
)

// Sheet names used by the workbook export and the CSV file names.
const (
	TeamsSheet       = "teams"
	PlayersSheet     = "players"
	GameResultsSheet = "gameResults"
)

// Bundle is the full export of a league.
type Bundle struct {
	Teams       []league.Team       `json:"teams"`
	Players     []league.Player     `json:"players"`
	GameResults []league.GameResult `json:"gameResults"`
	ExportDate  time.Time           `json:"exportDate"`
}

// Summary reports what an import wrote.
type Summary struct {
	Teams   int `json:"teams"`
	Players int `json:"players"`
	Games   int `json:"games"`
}
