package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/metrics"
	"github.com/mauv0809/mahjong-league/internal/notifier"
	"github.com/mauv0809/mahjong-league/internal/pubsub"
	"github.com/mauv0809/mahjong-league/internal/scoring"
)

type calculateRequest struct {
	Entries []scoring.Entry `json:"entries"`
}

type calculateResponse struct {
	Results []scoring.Result `json:"results"`
	// Sum can differ from zero by a few tenths after rounding.
	Sum float64 `json:"sum"`
}

// CalculateHandler runs the score calculator without storing anything.
func CalculateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req calculateRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondWithError(w, "Failed to calculate scores", err)
			return
		}
		results, err := scoring.Calculate(req.Entries)
		if err != nil {
			respondWithError(w, "Failed to calculate scores", err)
			return
		}
		respondWithJSON(w, http.StatusOK, calculateResponse{Results: results, Sum: scoring.Sum(results)})
	}
}

func ListGamesHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := store.ListGameResults(r.Context())
		if err != nil {
			respondWithError(w, "Failed to list games", err)
			return
		}
		respondWithJSON(w, http.StatusOK, games)
	}
}

func GetGameHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, err := store.GetGameResult(r.Context(), r.PathValue("id"))
		if err != nil {
			respondWithError(w, "Failed to get game", err)
			return
		}
		respondWithJSON(w, http.StatusOK, game)
	}
}

// CreateGameHandler stores a game and announces it. The announcement goes
// through pubsub when a client is configured and straight to the notifier
// otherwise.
func CreateGameHandler(store league.Store, metrics metrics.Metrics, notifier notifier.Notifier, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req league.NewGameResult
		if err := decodeBody(w, r, &req); err != nil {
			respondWithError(w, "Failed to record game", err)
			return
		}
		game, err := store.CreateGameResult(r.Context(), req)
		if err != nil {
			respondWithError(w, "Failed to record game", err)
			return
		}
		metrics.IncGamesRecorded()
		log.Info("Game recorded", "id", game.ID, "date", game.GameDate)

		announceGame(game, metrics, notifier, pubsubClient, IsDryRunFromContext(r))
		respondWithJSON(w, http.StatusCreated, game)
	}
}

// announceGame never fails the request: the game is stored at this point.
func announceGame(game *league.GameResult, metrics metrics.Metrics, notifier notifier.Notifier, pubsubClient pubsub.PubSubClient, dryRun bool) {
	if pubsubClient == nil || dryRun {
		if err := notifier.SendGameResult(game, dryRun); err != nil {
			log.Error("Failed to notify game result", "id", game.ID, "error", err)
		}
		return
	}
	if err := pubsubClient.SendMessage(pubsub.EventGameRecorded, pubsub.NewGameRecorded(game)); err != nil {
		log.Error("Failed to publish game recorded event", "id", game.ID, "error", err)
		return
	}
	metrics.IncEventsPublished()
}

func UpdateGameHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req league.NewGameResult
		if err := decodeBody(w, r, &req); err != nil {
			respondWithError(w, "Failed to update game", err)
			return
		}
		game, err := store.UpdateGameResult(r.Context(), r.PathValue("id"), req)
		if err != nil {
			respondWithError(w, "Failed to update game", err)
			return
		}
		log.Info("Game updated", "id", game.ID)
		respondWithJSON(w, http.StatusOK, game)
	}
}

func DeleteGameHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := store.DeleteGameResult(r.Context(), id); err != nil {
			respondWithError(w, "Failed to delete game", err)
			return
		}
		log.Info("Game deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
