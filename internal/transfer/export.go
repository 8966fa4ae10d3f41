package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/mauv0809/mahjong-league/internal/league"
)

// Snapshot reads every team, player and game from the store.
func Snapshot(ctx context.Context, store league.Store) (*Bundle, error) {
	teams, err := store.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	players, err := store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	games, err := store.ListGameResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return &Bundle{
		Teams:       teams,
		Players:     players,
		GameResults: games,
		ExportDate:  time.Now().UTC().Truncate(time.Second),
	}, nil
}
