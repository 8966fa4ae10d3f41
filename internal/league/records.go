package league

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/stats"
)

// ListResultRecords joins every stored result with its game, player and team,
// narrowed by the filter. Date bounds compare the game's own wall-clock time.
func (s *store) ListResultRecords(ctx context.Context, filter stats.Filter) ([]stats.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if filter.TeamID != "" {
		where = append(where, "p.team_id = ?")
		args = append(args, filter.TeamID)
	}
	from, to := filter.Bounds()
	if from != "" {
		where = append(where, "g.game_wall_clock >= ?")
		args = append(args, from)
	}
	if to != "" {
		where = append(where, "g.game_wall_clock <= ?")
		args = append(args, to)
	}

	query := `
		SELECT g.id, g.game_date, p.id, p.name, p.team_id, t.name, t.color, pgr.points, pgr.score, pgr.rank
		FROM player_game_results pgr
		JOIN game_results g ON g.id = pgr.game_id
		JOIN players p ON p.id = pgr.player_id
		LEFT JOIN teams t ON t.id = p.team_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY g.game_wall_clock, g.id, pgr.rank"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("Failed to query result records", "error", err)
		return nil, err
	}
	defer rows.Close()

	records := []stats.Record{}
	for rows.Next() {
		var r stats.Record
		var gameDate string
		var teamID, teamName, teamColor sql.NullString
		if err := rows.Scan(&r.GameID, &gameDate, &r.PlayerID, &r.PlayerName, &teamID, &teamName, &teamColor,
			&r.Points, &r.Score, &r.Rank); err != nil {
			return nil, err
		}
		if r.GameDate, err = time.Parse(time.RFC3339, gameDate); err != nil {
			return nil, fmt.Errorf("game %s has malformed date %q: %w", r.GameID, gameDate, err)
		}
		if teamID.Valid {
			r.TeamID = &teamID.String
			r.TeamName = teamName.String
			r.TeamColor = teamColor.String
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
