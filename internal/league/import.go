package league

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/apperr"
	"github.com/mauv0809/mahjong-league/internal/scoring"
)

// ImportBatch writes teams, then players, then games inside one transaction.
// Any failure rolls the whole batch back.
func (s *store) ImportBatch(ctx context.Context, batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, team := range batch.Teams {
			if err := insertTeam(ctx, tx, team); err != nil {
				return err
			}
		}
		for _, player := range batch.Players {
			if err := insertPlayer(ctx, tx, player); err != nil {
				return err
			}
		}
		for i := range batch.Games {
			game := &batch.Games[i]
			if len(game.Players) != scoring.PlayersPerGame {
				return fmt.Errorf("%w: game %s has %d results", apperr.ErrInvalidInput, game.ID, len(game.Players))
			}
			entries := make([]NewPlayerResult, len(game.Players))
			for j, p := range game.Players {
				entries[j] = NewPlayerResult{PlayerID: p.PlayerID, Points: p.Points, Score: p.Score, Rank: p.Rank}
			}
			if err := checkPlayerRefs(ctx, tx, entries); err != nil {
				return err
			}
			if err := insertGame(ctx, tx, game); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("Import batch rolled back", "error", err)
		return err
	}
	log.Info("Imported batch", "teams", len(batch.Teams), "players", len(batch.Players), "games", len(batch.Games))
	return nil
}
