package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/mahjong-league/internal/apperr"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new league Store.
func New(db *sql.DB) Store {
	return &store{
		db:  db,
		now: time.Now,
	}
}

// withTx runs fn in a transaction, rolling back on error.
func (s *store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	return tx.Commit()
}

func exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var found bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS("+query+")", args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func requireName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s name is required", apperr.ErrInvalidInput, kind)
	}
	return name, nil
}

// CreateTeam adds a team. Names are unique, compared case-sensitively.
func (s *store) CreateTeam(ctx context.Context, name, color string) (*Team, error) {
	name, err := requireName("team", name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Truncate(time.Second)
	team := &Team{ID: uuid.NewString(), Name: name, Color: color, CreatedAt: now, UpdatedAt: now}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		return insertTeam(ctx, tx, *team)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Created team", "teamID", team.ID, "name", team.Name)
	return team, nil
}

func insertTeam(ctx context.Context, q querier, team Team) error {
	taken, err := exists(ctx, q, "SELECT 1 FROM teams WHERE name = ?", team.Name)
	if err != nil {
		return fmt.Errorf("failed to check team name: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: team %q already exists", apperr.ErrDuplicateName, team.Name)
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO teams (id, name, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		team.ID, team.Name, team.Color, team.CreatedAt.Unix(), team.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// UpdateTeam renames or recolors a team.
func (s *store) UpdateTeam(ctx context.Context, id, name, color string) (*Team, error) {
	name, err := requireName("team", name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var team *Team
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getTeam(ctx, tx, id)
		if err != nil {
			return err
		}
		taken, err := exists(ctx, tx, "SELECT 1 FROM teams WHERE name = ? AND id != ?", name, id)
		if err != nil {
			return fmt.Errorf("failed to check team name: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: team %q already exists", apperr.ErrDuplicateName, name)
		}
		current.Name, current.Color = name, color
		current.UpdatedAt = s.now().UTC().Truncate(time.Second)
		_, err = tx.ExecContext(ctx, "UPDATE teams SET name = ?, color = ?, updated_at = ? WHERE id = ?",
			current.Name, current.Color, current.UpdatedAt.Unix(), id)
		if err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}
		team = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Updated team", "teamID", id, "name", name)
	return team, nil
}

// DeleteTeam removes a team that no player references.
func (s *store) DeleteTeam(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getTeam(ctx, tx, id); err != nil {
			return err
		}
		var members int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM players WHERE team_id = ?", id).Scan(&members); err != nil {
			return fmt.Errorf("failed to count team members: %w", err)
		}
		if members > 0 {
			return fmt.Errorf("%w: team %q still has %d players", apperr.ErrDependentRecordsExist, id, members)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("Deleted team", "teamID", id)
	return nil
}

// GetTeam retrieves a team by id.
func (s *store) GetTeam(ctx context.Context, id string) (*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTeam(ctx, s.db, id)
}

func getTeam(ctx context.Context, q querier, id string) (*Team, error) {
	row := q.QueryRowContext(ctx, "SELECT id, name, color, created_at, updated_at FROM teams WHERE id = ?", id)
	team, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: team %q not found", apperr.ErrMissingReference, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

func scanTeam(scanner interface{ Scan(...any) error }) (*Team, error) {
	var team Team
	var createdAt, updatedAt int64
	if err := scanner.Scan(&team.ID, &team.Name, &team.Color, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	team.CreatedAt = time.Unix(createdAt, 0).UTC()
	team.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &team, nil
}

// ListTeams returns all teams ordered by name.
func (s *store) ListTeams(ctx context.Context) ([]Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, color, created_at, updated_at FROM teams ORDER BY name")
	if err != nil {
		log.Error("Failed to query teams", "error", err)
		return nil, err
	}
	defer rows.Close()

	teams := []Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

// CreatePlayer adds a player, optionally assigned to a team.
func (s *store) CreatePlayer(ctx context.Context, name string, teamID *string) (*Player, error) {
	name, err := requireName("player", name)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Truncate(time.Second)
	player := &Player{ID: uuid.NewString(), Name: name, TeamID: normalizeTeamID(teamID), CreatedAt: now, UpdatedAt: now}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		return insertPlayer(ctx, tx, *player)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Created player", "playerID", player.ID, "name", player.Name)
	return player, nil
}

func normalizeTeamID(teamID *string) *string {
	if teamID == nil || *teamID == "" {
		return nil
	}
	id := *teamID
	return &id
}

func checkTeamRef(ctx context.Context, q querier, teamID *string) error {
	if teamID == nil {
		return nil
	}
	found, err := exists(ctx, q, "SELECT 1 FROM teams WHERE id = ?", *teamID)
	if err != nil {
		return fmt.Errorf("failed to check team: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: team %q not found", apperr.ErrMissingReference, *teamID)
	}
	return nil
}

func insertPlayer(ctx context.Context, q querier, player Player) error {
	taken, err := exists(ctx, q, "SELECT 1 FROM players WHERE name = ?", player.Name)
	if err != nil {
		return fmt.Errorf("failed to check player name: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: player %q already exists", apperr.ErrDuplicateName, player.Name)
	}
	if err := checkTeamRef(ctx, q, player.TeamID); err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		"INSERT INTO players (id, name, team_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		player.ID, player.Name, player.TeamID, player.CreatedAt.Unix(), player.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

// UpdatePlayer renames a player and overwrites their team assignment.
func (s *store) UpdatePlayer(ctx context.Context, id, name string, teamID *string) (*Player, error) {
	name, err := requireName("player", name)
	if err != nil {
		return nil, err
	}
	teamID = normalizeTeamID(teamID)
	s.mu.Lock()
	defer s.mu.Unlock()

	var player *Player
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getPlayer(ctx, tx, id)
		if err != nil {
			return err
		}
		taken, err := exists(ctx, tx, "SELECT 1 FROM players WHERE name = ? AND id != ?", name, id)
		if err != nil {
			return fmt.Errorf("failed to check player name: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: player %q already exists", apperr.ErrDuplicateName, name)
		}
		if err := checkTeamRef(ctx, tx, teamID); err != nil {
			return err
		}
		current.Name, current.TeamID = name, teamID
		current.UpdatedAt = s.now().UTC().Truncate(time.Second)
		_, err = tx.ExecContext(ctx, "UPDATE players SET name = ?, team_id = ?, updated_at = ? WHERE id = ?",
			current.Name, current.TeamID, current.UpdatedAt.Unix(), id)
		if err != nil {
			return fmt.Errorf("failed to update player: %w", err)
		}
		player = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Updated player", "playerID", id, "name", name)
	return player, nil
}

// DeletePlayer removes a player without recorded results.
func (s *store) DeletePlayer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getPlayer(ctx, tx, id); err != nil {
			return err
		}
		var results int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM player_game_results WHERE player_id = ?", id).Scan(&results); err != nil {
			return fmt.Errorf("failed to count player results: %w", err)
		}
		if results > 0 {
			return fmt.Errorf("%w: player %q has %d recorded results", apperr.ErrDependentRecordsExist, id, results)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM players WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete player: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info("Deleted player", "playerID", id)
	return nil
}

// GetPlayer retrieves a player by id.
func (s *store) GetPlayer(ctx context.Context, id string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPlayer(ctx, s.db, id)
}

func getPlayer(ctx context.Context, q querier, id string) (*Player, error) {
	row := q.QueryRowContext(ctx, "SELECT id, name, team_id, created_at, updated_at FROM players WHERE id = ?", id)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: player %q not found", apperr.ErrMissingReference, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var player Player
	var teamID sql.NullString
	var createdAt, updatedAt int64
	if err := scanner.Scan(&player.ID, &player.Name, &teamID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if teamID.Valid {
		player.TeamID = &teamID.String
	}
	player.CreatedAt = time.Unix(createdAt, 0).UTC()
	player.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &player, nil
}

// ListPlayers returns all players ordered by name.
func (s *store) ListPlayers(ctx context.Context) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, team_id, created_at, updated_at FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query players", "error", err)
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

// Clear wipes every league record.
func (s *store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"player_game_results", "game_results", "players", "teams"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("Failed to clear league store", "error", err)
		return err
	}
	log.Info("League store cleared")
	return nil
}
