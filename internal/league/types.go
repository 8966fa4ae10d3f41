package league

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for the league.
type store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Team groups players for the team leaderboard.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Player is a league member. A nil TeamID means the player is unaffiliated.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TeamID    *string   `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameResult is one finished game and its four seats.
type GameResult struct {
	ID        string             `json:"id"`
	GameDate  time.Time          `json:"game_date"`
	CreatedAt time.Time          `json:"created_at"`
	Players   []PlayerGameResult `json:"players"`
}

// PlayerGameResult is one seat of a game.
type PlayerGameResult struct {
	ID         string    `json:"id"`
	GameID     string    `json:"game_id"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Points     int       `json:"points"`
	Score      float64   `json:"score"`
	Rank       int       `json:"rank"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewGameResult is the game-creation request. Scores and ranks are expected to
// have been computed already; they are validated, not recomputed.
type NewGameResult struct {
	GameDate time.Time         `json:"gameDate"`
	Entries  []NewPlayerResult `json:"entries"`
}

// NewPlayerResult is one seat of a NewGameResult.
type NewPlayerResult struct {
	PlayerID string  `json:"playerId"`
	Points   int     `json:"points"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

// Batch is a set of fully identified records written in one transaction.
type Batch struct {
	Teams   []Team
	Players []Player
	Games   []GameResult
}
