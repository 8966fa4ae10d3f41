package http

import (
	"net/http"

	"github.com/mauv0809/mahjong-league/internal/config"
	"github.com/mauv0809/mahjong-league/internal/http/handlers"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/metrics"
	"github.com/mauv0809/mahjong-league/internal/notifier"
	"github.com/mauv0809/mahjong-league/internal/pubsub"
	"github.com/mauv0809/mahjong-league/internal/transfer"
)

func NewServer(store league.Store, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Importer:       transfer.NewImporter(store),
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Mutating routes additionally require the admin token.
	admin := adminMiddleware(s.Cfg.AdminToken)
	slackAuth := slackVerifyMiddleware(s.Cfg.Slack.SigningSecret)

	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(handlers.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("POST /clear", Chain(s.ClearStoreHandler(), paramsMiddleware, admin))

	s.Router.Handle("GET /api/teams", Chain(handlers.ListTeamsHandler(s.Store), paramsMiddleware))
	s.Router.Handle("POST /api/teams", Chain(handlers.CreateTeamHandler(s.Store), paramsMiddleware, admin))
	s.Router.Handle("PUT /api/teams/{id}", Chain(handlers.UpdateTeamHandler(s.Store), paramsMiddleware, admin))
	s.Router.Handle("DELETE /api/teams/{id}", Chain(handlers.DeleteTeamHandler(s.Store), paramsMiddleware, admin))

	s.Router.Handle("GET /api/players", Chain(handlers.ListPlayersHandler(s.Store), paramsMiddleware))
	s.Router.Handle("POST /api/players", Chain(handlers.CreatePlayerHandler(s.Store), paramsMiddleware, admin))
	s.Router.Handle("PUT /api/players/{id}", Chain(handlers.UpdatePlayerHandler(s.Store), paramsMiddleware, admin))
	s.Router.Handle("DELETE /api/players/{id}", Chain(handlers.DeletePlayerHandler(s.Store), paramsMiddleware, admin))
	s.Router.Handle("GET /api/players/{id}/chart", Chain(handlers.PlayerChartHandler(s.Store), paramsMiddleware))

	s.Router.Handle("POST /api/games/calculate", Chain(handlers.CalculateHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/games", Chain(handlers.ListGamesHandler(s.Store), paramsMiddleware))
	s.Router.Handle("POST /api/games", Chain(handlers.CreateGameHandler(s.Store, s.Metrics, s.Notifier, s.pubsub), paramsMiddleware, admin))
	s.Router.Handle("GET /api/games/{id}", Chain(handlers.GetGameHandler(s.Store), paramsMiddleware))
	s.Router.Handle("PUT /api/games/{id}", Chain(handlers.UpdateGameHandler(s.Store), paramsMiddleware, admin))
	s.Router.Handle("DELETE /api/games/{id}", Chain(handlers.DeleteGameHandler(s.Store), paramsMiddleware, admin))

	s.Router.Handle("GET /api/stats", Chain(handlers.StatsHandler(s.Store, s.Metrics), paramsMiddleware))
	s.Router.Handle("POST /api/stats/announce", Chain(handlers.AnnounceStatsHandler(s.Store, s.Notifier), paramsMiddleware, admin))
	s.Router.Handle("GET /api/stats/session", Chain(handlers.SessionHandler(s.Store), paramsMiddleware))
	s.Router.Handle("POST /api/stats/session/announce", Chain(handlers.AnnounceSessionHandler(s.Store, s.Notifier), paramsMiddleware, admin))

	s.Router.Handle("GET /api/export", Chain(handlers.ExportHandler(s.Store, s.Metrics), paramsMiddleware))
	s.Router.Handle("GET /api/export/{file}", Chain(handlers.ExportCSVHandler(s.Store, s.Metrics), paramsMiddleware))
	s.Router.Handle("POST /api/import", Chain(handlers.ImportHandler(s.Importer, s.Metrics), paramsMiddleware, admin))

	s.Router.Handle("POST /slack/command/leaderboard", Chain(handlers.LeaderboardCommandHandler(s.Store, s.Notifier), paramsMiddleware, slackAuth))
	s.Router.Handle("POST /slack/command/player-stats", Chain(handlers.PlayerStatsCommandHandler(s.Store, s.Notifier), paramsMiddleware, slackAuth))

	if s.pubsub != nil {
		s.Router.Handle("POST /pubsub/game-recorded", Chain(handlers.GameRecordedHandler(s.Notifier, s.pubsub), paramsMiddleware))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
