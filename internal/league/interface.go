package league

import (
	"context"

	"github.com/mauv0809/mahjong-league/internal/stats"
)

// Store defines the interface for interacting with the league's records.
type Store interface {
	CreateTeam(ctx context.Context, name, color string) (*Team, error)
	UpdateTeam(ctx context.Context, id, name, color string) (*Team, error)
	DeleteTeam(ctx context.Context, id string) error
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeams(ctx context.Context) ([]Team, error)

	CreatePlayer(ctx context.Context, name string, teamID *string) (*Player, error)
	UpdatePlayer(ctx context.Context, id, name string, teamID *string) (*Player, error)
	DeletePlayer(ctx context.Context, id string) error
	GetPlayer(ctx context.Context, id string) (*Player, error)
	ListPlayers(ctx context.Context) ([]Player, error)

	CreateGameResult(ctx context.Context, game NewGameResult) (*GameResult, error)
	UpdateGameResult(ctx context.Context, id string, game NewGameResult) (*GameResult, error)
	DeleteGameResult(ctx context.Context, id string) error
	GetGameResult(ctx context.Context, id string) (*GameResult, error)
	ListGameResults(ctx context.Context) ([]GameResult, error)

	// ListResultRecords is the filtered scan feeding the stats aggregator.
	ListResultRecords(ctx context.Context, filter stats.Filter) ([]stats.Record, error)
	// ImportBatch writes all records of the batch or none of them.
	ImportBatch(ctx context.Context, batch Batch) error
	Clear(ctx context.Context) error
}
