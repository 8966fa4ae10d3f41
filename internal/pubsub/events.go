package pubsub

import "github.com/mauv0809/mahjong-league/internal/league"

// NewGameRecorded builds the event published after game has been stored.
func NewGameRecorded(game *league.GameResult) GameRecorded {
	event := GameRecorded{
		GameID:   game.ID,
		GameDate: game.GameDate,
		Seats:    make([]SeatResult, 0, len(game.Players)),
	}
	for _, p := range game.Players {
		event.Seats = append(event.Seats, SeatResult{
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			Points:     p.Points,
			Score:      p.Score,
			Rank:       p.Rank,
		})
	}
	return event
}

// GameResult turns the event back into the game it announces.
func (e GameRecorded) GameResult() *league.GameResult {
	game := &league.GameResult{
		ID:       e.GameID,
		GameDate: e.GameDate,
		Players:  make([]league.PlayerGameResult, 0, len(e.Seats)),
	}
	for _, s := range e.Seats {
		game.Players = append(game.Players, league.PlayerGameResult{
			GameID:     e.GameID,
			PlayerID:   s.PlayerID,
			PlayerName: s.PlayerName,
			Points:     s.Points,
			Score:      s.Score,
			Rank:       s.Rank,
		})
	}
	return game
}
