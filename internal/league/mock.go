package league

import (
	"context"
	"sync"

	"github.com/mauv0809/mahjong-league/internal/stats"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateTeamFunc        func(name, color string) (*Team, error)
	UpdateTeamFunc        func(id, name, color string) (*Team, error)
	DeleteTeamFunc        func(id string) error
	GetTeamFunc           func(id string) (*Team, error)
	ListTeamsFunc         func() ([]Team, error)
	CreatePlayerFunc      func(name string, teamID *string) (*Player, error)
	UpdatePlayerFunc      func(id, name string, teamID *string) (*Player, error)
	DeletePlayerFunc      func(id string) error
	GetPlayerFunc         func(id string) (*Player, error)
	ListPlayersFunc       func() ([]Player, error)
	CreateGameResultFunc  func(game NewGameResult) (*GameResult, error)
	UpdateGameResultFunc  func(id string, game NewGameResult) (*GameResult, error)
	DeleteGameResultFunc  func(id string) error
	GetGameResultFunc     func(id string) (*GameResult, error)
	ListGameResultsFunc   func() ([]GameResult, error)
	ListResultRecordsFunc func(filter stats.Filter) ([]stats.Record, error)
	ImportBatchFunc       func(batch Batch) error
	ClearFunc             func() error

	// Call records
	CreateTeamCalls []struct {
		Name  string
		Color string
	}
	CreatePlayerCalls []struct {
		Name   string
		TeamID *string
	}
	CreateGameResultCalls  []NewGameResult
	DeleteTeamCalls        []string
	DeletePlayerCalls      []string
	DeleteGameResultCalls  []string
	ListResultRecordsCalls []stats.Filter
	ImportBatchCalls       []Batch
	ClearCalls             int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateTeamCalls = nil
	m.CreatePlayerCalls = nil
	m.CreateGameResultCalls = nil
	m.DeleteTeamCalls = nil
	m.DeletePlayerCalls = nil
	m.DeleteGameResultCalls = nil
	m.ListResultRecordsCalls = nil
	m.ImportBatchCalls = nil
	m.ClearCalls = 0
}

func (m *MockStore) CreateTeam(_ context.Context, name, color string) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateTeamCalls = append(m.CreateTeamCalls, struct {
		Name  string
		Color string
	}{name, color})
	if m.CreateTeamFunc != nil {
		return m.CreateTeamFunc(name, color)
	}
	return &Team{ID: "team-" + name, Name: name, Color: color}, nil
}

func (m *MockStore) UpdateTeam(_ context.Context, id, name, color string) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateTeamFunc != nil {
		return m.UpdateTeamFunc(id, name, color)
	}
	return &Team{ID: id, Name: name, Color: color}, nil
}

func (m *MockStore) DeleteTeam(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteTeamCalls = append(m.DeleteTeamCalls, id)
	if m.DeleteTeamFunc != nil {
		return m.DeleteTeamFunc(id)
	}
	return nil
}

func (m *MockStore) GetTeam(_ context.Context, id string) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetTeamFunc != nil {
		return m.GetTeamFunc(id)
	}
	return &Team{ID: id}, nil
}

func (m *MockStore) ListTeams(_ context.Context) ([]Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListTeamsFunc != nil {
		return m.ListTeamsFunc()
	}
	return []Team{}, nil
}

func (m *MockStore) CreatePlayer(_ context.Context, name string, teamID *string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatePlayerCalls = append(m.CreatePlayerCalls, struct {
		Name   string
		TeamID *string
	}{name, teamID})
	if m.CreatePlayerFunc != nil {
		return m.CreatePlayerFunc(name, teamID)
	}
	return &Player{ID: "player-" + name, Name: name, TeamID: teamID}, nil
}

func (m *MockStore) UpdatePlayer(_ context.Context, id, name string, teamID *string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdatePlayerFunc != nil {
		return m.UpdatePlayerFunc(id, name, teamID)
	}
	return &Player{ID: id, Name: name, TeamID: teamID}, nil
}

func (m *MockStore) DeletePlayer(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletePlayerCalls = append(m.DeletePlayerCalls, id)
	if m.DeletePlayerFunc != nil {
		return m.DeletePlayerFunc(id)
	}
	return nil
}

func (m *MockStore) GetPlayer(_ context.Context, id string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return &Player{ID: id}, nil
}

func (m *MockStore) ListPlayers(_ context.Context) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListPlayersFunc != nil {
		return m.ListPlayersFunc()
	}
	return []Player{}, nil
}

func (m *MockStore) CreateGameResult(_ context.Context, game NewGameResult) (*GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateGameResultCalls = append(m.CreateGameResultCalls, game)
	if m.CreateGameResultFunc != nil {
		return m.CreateGameResultFunc(game)
	}
	return &GameResult{ID: "game", GameDate: game.GameDate, Players: []PlayerGameResult{}}, nil
}

func (m *MockStore) UpdateGameResult(_ context.Context, id string, game NewGameResult) (*GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateGameResultFunc != nil {
		return m.UpdateGameResultFunc(id, game)
	}
	return &GameResult{ID: id, GameDate: game.GameDate, Players: []PlayerGameResult{}}, nil
}

func (m *MockStore) DeleteGameResult(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteGameResultCalls = append(m.DeleteGameResultCalls, id)
	if m.DeleteGameResultFunc != nil {
		return m.DeleteGameResultFunc(id)
	}
	return nil
}

func (m *MockStore) GetGameResult(_ context.Context, id string) (*GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetGameResultFunc != nil {
		return m.GetGameResultFunc(id)
	}
	return &GameResult{ID: id, Players: []PlayerGameResult{}}, nil
}

func (m *MockStore) ListGameResults(_ context.Context) ([]GameResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListGameResultsFunc != nil {
		return m.ListGameResultsFunc()
	}
	return []GameResult{}, nil
}

func (m *MockStore) ListResultRecords(_ context.Context, filter stats.Filter) ([]stats.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListResultRecordsCalls = append(m.ListResultRecordsCalls, filter)
	if m.ListResultRecordsFunc != nil {
		return m.ListResultRecordsFunc(filter)
	}
	return []stats.Record{}, nil
}

func (m *MockStore) ImportBatch(_ context.Context, batch Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImportBatchCalls = append(m.ImportBatchCalls, batch)
	if m.ImportBatchFunc != nil {
		return m.ImportBatchFunc(batch)
	}
	return nil
}

func (m *MockStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearFunc != nil {
		return m.ClearFunc()
	}
	return nil
}
