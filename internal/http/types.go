package http

import (
	"net/http"

	"github.com/mauv0809/mahjong-league/internal/config"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/metrics"
	"github.com/mauv0809/mahjong-league/internal/notifier"
	"github.com/mauv0809/mahjong-league/internal/pubsub"
	"github.com/mauv0809/mahjong-league/internal/transfer"
)

type Server struct {
	Store          league.Store
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Importer       *transfer.Importer
	Router         *http.ServeMux
	// pubsub is nil when no GCP project is configured; games are then
	// announced inline.
	pubsub pubsub.PubSubClient
}
