package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/mahjong-league/internal/apperr"
	"github.com/mauv0809/mahjong-league/internal/scoring"
	"github.com/mauv0809/mahjong-league/internal/stats"
)

// ValidateGame checks a game-creation request without touching storage:
// four distinct players, points summing to the table total, ranks in 1..4
// that agree with the points.
func ValidateGame(game NewGameResult) error {
	if game.GameDate.IsZero() {
		return fmt.Errorf("%w: game date is required", apperr.ErrInvalidInput)
	}
	if len(game.Entries) != scoring.PlayersPerGame {
		return fmt.Errorf("%w: expected %d results, got %d", apperr.ErrInvalidInput, scoring.PlayersPerGame, len(game.Entries))
	}

	points := make([]int, len(game.Entries))
	seen := make(map[string]bool, len(game.Entries))
	for i, e := range game.Entries {
		if e.PlayerID == "" {
			return fmt.Errorf("%w: result %d has no player", apperr.ErrInvalidInput, i+1)
		}
		if seen[e.PlayerID] {
			return fmt.Errorf("%w: player %q appears twice", apperr.ErrInvalidInput, e.PlayerID)
		}
		seen[e.PlayerID] = true
		points[i] = e.Points
	}
	if err := scoring.Validate(points); err != nil {
		return err
	}

	for i, want := range scoring.Ranks(points) {
		if game.Entries[i].Rank != want {
			return fmt.Errorf("%w: player %q has rank %d, points give rank %d",
				apperr.ErrInvalidInput, game.Entries[i].PlayerID, game.Entries[i].Rank, want)
		}
	}
	return nil
}

// CreateGameResult stores a game and its four results as one unit.
func (s *store) CreateGameResult(ctx context.Context, game NewGameResult) (*GameResult, error) {
	if err := ValidateGame(game); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.buildGame(uuid.NewString(), game)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkPlayerRefs(ctx, tx, game.Entries); err != nil {
			return err
		}
		return insertGame(ctx, tx, result)
	})
	if err != nil {
		return nil, err
	}
	fillPlayerNames(ctx, s.db, result)
	log.Info("Recorded game", "gameID", result.ID, "gameDate", result.GameDate)
	return result, nil
}

// UpdateGameResult replaces a game's date and all four results.
func (s *store) UpdateGameResult(ctx context.Context, id string, game NewGameResult) (*GameResult, error) {
	if err := ValidateGame(game); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *GameResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getGameHeader(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := checkPlayerRefs(ctx, tx, game.Entries); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM player_game_results WHERE game_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete previous results: %w", err)
		}
		result = s.buildGame(id, game)
		result.CreatedAt = current.CreatedAt
		_, err = tx.ExecContext(ctx, "UPDATE game_results SET game_date = ?, game_wall_clock = ? WHERE id = ?",
			formatGameDate(result.GameDate), result.GameDate.Format(stats.WallClockLayout), id)
		if err != nil {
			return fmt.Errorf("failed to update game: %w", err)
		}
		return insertPlayerResults(ctx, tx, result.Players)
	})
	if err != nil {
		return nil, err
	}
	fillPlayerNames(ctx, s.db, result)
	log.Info("Updated game", "gameID", id)
	return result, nil
}

// DeleteGameResult removes a game together with its results.
func (s *store) DeleteGameResult(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getGameHeader(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM player_game_results WHERE game_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete game results: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM game_results WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete game: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("Deleted game", "gameID", id)
	return nil
}

// GetGameResult retrieves one game with its results.
func (s *store) GetGameResult(ctx context.Context, id string) (*GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, err := getGameHeader(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	children, err := listPlayerResults(ctx, s.db, "WHERE pgr.game_id = ?", id)
	if err != nil {
		return nil, err
	}
	game.Players = children[id]
	return game, nil
}

// ListGameResults returns all games, most recent first.
func (s *store) ListGameResults(ctx context.Context) ([]GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, game_date, created_at FROM game_results ORDER BY game_wall_clock DESC, created_at DESC, id")
	if err != nil {
		log.Error("Failed to query games", "error", err)
		return nil, err
	}
	defer rows.Close()

	games := []GameResult{}
	for rows.Next() {
		game, err := scanGameHeader(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *game)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	children, err := listPlayerResults(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	for i := range games {
		games[i].Players = children[games[i].ID]
	}
	return games, nil
}

func (s *store) buildGame(id string, game NewGameResult) *GameResult {
	now := s.now().UTC().Truncate(time.Second)
	result := &GameResult{
		ID:        id,
		GameDate:  game.GameDate.Truncate(time.Second),
		CreatedAt: now,
		Players:   make([]PlayerGameResult, len(game.Entries)),
	}
	for i, e := range game.Entries {
		result.Players[i] = PlayerGameResult{
			ID:        uuid.NewString(),
			GameID:    id,
			PlayerID:  e.PlayerID,
			Points:    e.Points,
			Score:     e.Score,
			Rank:      e.Rank,
			CreatedAt: now,
		}
	}
	return result
}

func checkPlayerRefs(ctx context.Context, q querier, entries []NewPlayerResult) error {
	for _, e := range entries {
		found, err := exists(ctx, q, "SELECT 1 FROM players WHERE id = ?", e.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to check player: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: player %q not found", apperr.ErrMissingReference, e.PlayerID)
		}
	}
	return nil
}

func formatGameDate(t time.Time) string {
	return t.Format(time.RFC3339)
}

func insertGame(ctx context.Context, q querier, game *GameResult) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO game_results (id, game_date, game_wall_clock, created_at) VALUES (?, ?, ?, ?)",
		game.ID, formatGameDate(game.GameDate), game.GameDate.Format(stats.WallClockLayout), game.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return insertPlayerResults(ctx, q, game.Players)
}

func insertPlayerResults(ctx context.Context, q querier, results []PlayerGameResult) error {
	for _, r := range results {
		_, err := q.ExecContext(ctx,
			"INSERT INTO player_game_results (id, game_id, player_id, points, score, rank, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			r.ID, r.GameID, r.PlayerID, r.Points, r.Score, r.Rank, r.CreatedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert result for player %s: %w", r.PlayerID, err)
		}
	}
	return nil
}

func getGameHeader(ctx context.Context, q querier, id string) (*GameResult, error) {
	row := q.QueryRowContext(ctx, "SELECT id, game_date, created_at FROM game_results WHERE id = ?", id)
	game, err := scanGameHeader(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: game %q not found", apperr.ErrMissingReference, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

func scanGameHeader(scanner interface{ Scan(...any) error }) (*GameResult, error) {
	var game GameResult
	var gameDate string
	var createdAt int64
	if err := scanner.Scan(&game.ID, &gameDate, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339, gameDate)
	if err != nil {
		return nil, fmt.Errorf("game %s has malformed date %q: %w", game.ID, gameDate, err)
	}
	game.GameDate = parsed
	game.CreatedAt = time.Unix(createdAt, 0).UTC()
	game.Players = []PlayerGameResult{}
	return &game, nil
}

// listPlayerResults returns results grouped by game id, best rank first.
func listPlayerResults(ctx context.Context, q querier, where string, args ...any) (map[string][]PlayerGameResult, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT pgr.id, pgr.game_id, pgr.player_id, COALESCE(p.name, ''), pgr.points, pgr.score, pgr.rank, pgr.created_at
		FROM player_game_results pgr
		LEFT JOIN players p ON p.id = pgr.player_id
		`+where+`
		ORDER BY pgr.game_id, pgr.rank, pgr.points DESC, p.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query player results: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]PlayerGameResult)
	for rows.Next() {
		var r PlayerGameResult
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.GameID, &r.PlayerID, &r.PlayerName, &r.Points, &r.Score, &r.Rank, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(createdAt, 0).UTC()
		grouped[r.GameID] = append(grouped[r.GameID], r)
	}
	return grouped, rows.Err()
}

func fillPlayerNames(ctx context.Context, q querier, game *GameResult) {
	for i := range game.Players {
		var name string
		err := q.QueryRowContext(ctx, "SELECT name FROM players WHERE id = ?", game.Players[i].PlayerID).Scan(&name)
		if err != nil {
			log.Warn("Failed to look up player name", "playerID", game.Players[i].PlayerID, "error", err)
			continue
		}
		game.Players[i].PlayerName = name
	}
}
