package notifier

import (
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/stats"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For recorded games
	SendGameResult(game *league.GameResult, dryRun bool) error
	// For leaderboards posted to the channel
	SendLeaderboard(board stats.Leaderboard, dryRun bool) error
	SendSessionSummary(deltas []stats.PlayerDelta, dryRun bool) error

	// For formatting responses for slash commands
	FormatLeaderboardResponse(board stats.Leaderboard) (any, error)
	FormatPlayerStatsResponse(stats *stats.PlayerStats, query string) (any, error)
	FormatPlayerNotFoundResponse(query string) (any, error)
}
