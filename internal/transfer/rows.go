package transfer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mauv0809/mahjong-league/internal/apperr"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/scoring"
)

// The row helpers are shared by the CSV and XLSX codecs.

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(value, column string, line int) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: line %d: invalid %s %q", apperr.ErrInvalidInput, line, column, value)
	}
	return t, nil
}

func teamRows(teams []league.Team) [][]string {
	rows := make([][]string, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, []string{t.ID, t.Name, t.Color, formatTime(t.CreatedAt), formatTime(t.UpdatedAt)})
	}
	return rows
}

func playerRows(players []league.Player) [][]string {
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		teamID := ""
		if p.TeamID != nil {
			teamID = *p.TeamID
		}
		rows = append(rows, []string{p.ID, p.Name, teamID, formatTime(p.CreatedAt), formatTime(p.UpdatedAt)})
	}
	return rows
}

func gameResultRows(games []league.GameResult) [][]string {
	var rows [][]string
	for _, g := range games {
		for _, r := range g.Players {
			rows = append(rows, []string{
				g.ID,
				formatTime(g.GameDate),
				r.PlayerID,
				r.PlayerName,
				strconv.Itoa(r.Points),
				strconv.FormatFloat(r.Score, 'f', 1, 64),
				strconv.Itoa(r.Rank),
				formatTime(r.CreatedAt),
			})
		}
	}
	return rows
}

// checkHeader verifies the first row names the expected columns in order.
func checkHeader(kind string, header, want []string) error {
	if len(header) != len(want) {
		return fmt.Errorf("%w: %s header has %d columns, want %d", apperr.ErrInvalidInput, kind, len(header), len(want))
	}
	for i, col := range want {
		// Spreadsheet tools like to prepend a BOM.
		got := strings.TrimPrefix(strings.TrimSpace(header[i]), "\ufeff")
		if got != col {
			return fmt.Errorf("%w: %s column %d is %q, want %q", apperr.ErrInvalidInput, kind, i+1, got, col)
		}
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// pad extends short rows; XLSX readers drop trailing empty cells.
func pad(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

func parseTeamRows(rows [][]string) ([]league.Team, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s data is empty", apperr.ErrInvalidInput, TeamsSheet)
	}
	if err := checkHeader(TeamsSheet, rows[0], TeamColumns); err != nil {
		return nil, err
	}
	teams := []league.Team{}
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		row = pad(row, len(TeamColumns))
		created, err := parseTime(row[3], "created_at", line)
		if err != nil {
			return nil, err
		}
		updated, err := parseTime(row[4], "updated_at", line)
		if err != nil {
			return nil, err
		}
		teams = append(teams, league.Team{
			ID:        strings.TrimSpace(row[0]),
			Name:      row[1],
			Color:     row[2],
			CreatedAt: created,
			UpdatedAt: updated,
		})
	}
	return teams, nil
}

func parsePlayerRows(rows [][]string) ([]league.Player, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s data is empty", apperr.ErrInvalidInput, PlayersSheet)
	}
	if err := checkHeader(PlayersSheet, rows[0], PlayerColumns); err != nil {
		return nil, err
	}
	players := []league.Player{}
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		row = pad(row, len(PlayerColumns))
		created, err := parseTime(row[3], "created_at", line)
		if err != nil {
			return nil, err
		}
		updated, err := parseTime(row[4], "updated_at", line)
		if err != nil {
			return nil, err
		}
		player := league.Player{
			ID:        strings.TrimSpace(row[0]),
			Name:      row[1],
			CreatedAt: created,
			UpdatedAt: updated,
		}
		if teamID := strings.TrimSpace(row[2]); teamID != "" {
			player.TeamID = &teamID
		}
		players = append(players, player)
	}
	return players, nil
}

// parseGameResultRows groups result rows into games by game_id, or by
// game_date when the id column is empty. Every game needs exactly four rows.
func parseGameResultRows(rows [][]string) ([]league.GameResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s data is empty", apperr.ErrInvalidInput, GameResultsSheet)
	}
	if err := checkHeader(GameResultsSheet, rows[0], GameResultColumns); err != nil {
		return nil, err
	}

	var order []string
	games := make(map[string]*league.GameResult)
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		row = pad(row, len(GameResultColumns))

		gameID := strings.TrimSpace(row[0])
		date, err := parseTime(row[1], "game_date", line)
		if err != nil {
			return nil, err
		}
		if date.IsZero() {
			return nil, fmt.Errorf("%w: line %d: game_date is required", apperr.ErrInvalidInput, line)
		}
		points, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid points %q", apperr.ErrInvalidInput, line, row[4])
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid score %q", apperr.ErrInvalidInput, line, row[5])
		}
		rank, err := strconv.Atoi(strings.TrimSpace(row[6]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid rank %q", apperr.ErrInvalidInput, line, row[6])
		}
		created, err := parseTime(row[7], "created_at", line)
		if err != nil {
			return nil, err
		}

		key := gameID
		if key == "" {
			key = formatTime(date)
		}
		game, ok := games[key]
		if !ok {
			game = &league.GameResult{ID: gameID, GameDate: date, CreatedAt: created}
			games[key] = game
			order = append(order, key)
		}
		game.Players = append(game.Players, league.PlayerGameResult{
			GameID:     gameID,
			PlayerID:   strings.TrimSpace(row[2]),
			PlayerName: row[3],
			Points:     points,
			Score:      score,
			Rank:       rank,
			CreatedAt:  created,
		})
	}

	out := make([]league.GameResult, 0, len(order))
	for _, key := range order {
		game := games[key]
		if len(game.Players) != scoring.PlayersPerGame {
			return nil, fmt.Errorf("%w: game %s has %d result rows, want %d",
				apperr.ErrInvalidInput, key, len(game.Players), scoring.PlayersPerGame)
		}
		out = append(out, *game)
	}
	return out, nil
}
