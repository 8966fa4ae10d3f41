package notifier

import (
	"sync"

	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/stats"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for send functions
	SendGameResultFunc func(game *league.GameResult, dryRun bool) error

	// Call records
	SendGameResultCalls []struct {
		Game   *league.GameResult
		DryRun bool
	}
	SendLeaderboardCalls    []stats.Leaderboard
	SendSessionSummaryCalls [][]stats.PlayerDelta

	// Spies for format functions
	FormatLeaderboardResponseFunc    func(board stats.Leaderboard) (any, error)
	FormatPlayerStatsResponseFunc    func(stats *stats.PlayerStats, query string) (any, error)
	FormatPlayerNotFoundResponseFunc func(query string) (any, error)

	// Call records for format functions
	LastLeaderboardResponse    any
	LastPlayerStatsResponse    any
	LastPlayerNotFoundResponse any
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendGameResultCalls = nil
	m.SendLeaderboardCalls = nil
	m.SendSessionSummaryCalls = nil
	m.LastLeaderboardResponse = nil
	m.LastPlayerStatsResponse = nil
	m.LastPlayerNotFoundResponse = nil
}

func (m *Mock) SendGameResult(game *league.GameResult, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendGameResultCalls = append(m.SendGameResultCalls, struct {
		Game   *league.GameResult
		DryRun bool
	}{game, dryRun})
	if m.SendGameResultFunc != nil {
		return m.SendGameResultFunc(game, dryRun)
	}
	return nil
}

func (m *Mock) SendLeaderboard(board stats.Leaderboard, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, board)
	return nil
}

func (m *Mock) SendSessionSummary(deltas []stats.PlayerDelta, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSessionSummaryCalls = append(m.SendSessionSummaryCalls, deltas)
	return nil
}

// GameResultCalls returns the number of games sent so far.
func (m *Mock) GameResultCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendGameResultCalls)
}

func (m *Mock) FormatLeaderboardResponse(board stats.Leaderboard) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatLeaderboardResponseFunc != nil {
		resp, err := m.FormatLeaderboardResponseFunc(board)
		m.LastLeaderboardResponse = resp
		return resp, err
	}
	return "formatted_leaderboard", nil
}

func (m *Mock) FormatPlayerStatsResponse(stats *stats.PlayerStats, query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerStatsResponseFunc != nil {
		resp, err := m.FormatPlayerStatsResponseFunc(stats, query)
		m.LastPlayerStatsResponse = resp
		return resp, err
	}
	return "formatted_player_stats", nil
}

func (m *Mock) FormatPlayerNotFoundResponse(query string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FormatPlayerNotFoundResponseFunc != nil {
		resp, err := m.FormatPlayerNotFoundResponseFunc(query)
		m.LastPlayerNotFoundResponse = resp
		return resp, err
	}
	return "formatted_player_not_found", nil
}
