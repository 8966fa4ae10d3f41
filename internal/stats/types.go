package stats

import "time"

// Record is one player's result in one game, joined with the player's team.
type Record struct {
	GameID     string    `json:"game_id"`
	GameDate   time.Time `json:"game_date"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	TeamID     *string   `json:"team_id"`
	TeamName   string    `json:"team_name"`
	TeamColor  string    `json:"team_color"`
	Points     int       `json:"points"`
	Score      float64   `json:"score"`
	Rank       int       `json:"rank"`
}

// Placings counts finishes per rank.
type Placings struct {
	Wins    int `json:"wins"`
	Seconds int `json:"seconds"`
	Thirds  int `json:"thirds"`
	Fourths int `json:"fourths"`
}

// Total is the number of placings recorded.
func (p Placings) Total() int {
	return p.Wins + p.Seconds + p.Thirds + p.Fourths
}

// PlayerStats is a player's leaderboard row.
type PlayerStats struct {
	PlayerID     string  `json:"player_id"`
	PlayerName   string  `json:"player_name"`
	TeamID       *string `json:"team_id"`
	TeamName     string  `json:"team_name,omitempty"`
	TeamColor    string  `json:"team_color,omitempty"`
	TotalScore   float64 `json:"total_score"`
	GameCount    int     `json:"game_count"`
	AverageScore float64 `json:"average_score"`
	AverageRank  float64 `json:"average_rank"`
	Placings
}

// TeamStats is a team's leaderboard row.
type TeamStats struct {
	TeamID       string  `json:"team_id"`
	TeamName     string  `json:"team_name"`
	TeamColor    string  `json:"team_color"`
	TotalScore   float64 `json:"total_score"`
	GameCount    int     `json:"game_count"`
	AverageScore float64 `json:"average_score"`
	AverageRank  float64 `json:"average_rank"`
	PlayerCount  int     `json:"player_count"`
	Placings
}

// Leaderboard bundles both views computed from the same records.
type Leaderboard struct {
	Players []PlayerStats `json:"players"`
	Teams   []TeamStats   `json:"teams"`
}

// PlayerDelta is the change in a player's total score between two snapshots.
type PlayerDelta struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Before     float64 `json:"before"`
	After      float64 `json:"after"`
	Delta      float64 `json:"delta"`
	Games      int     `json:"games"`
}
