package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/notifier"
	"github.com/mauv0809/mahjong-league/internal/stats"
	"github.com/slack-go/slack"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg any) {
	slackMsg, ok := msg.(slack.Message)
	if !ok {
		http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
		log.Error("Failed to cast message to slack.Message")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(slackMsg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// findPlayer matches the query against player names: an exact
// case-insensitive match wins, then the first name containing the query.
func findPlayer(players []stats.PlayerStats, query string) *stats.PlayerStats {
	q := strings.ToLower(query)
	for i := range players {
		if strings.ToLower(players[i].PlayerName) == q {
			return &players[i]
		}
	}
	for i := range players {
		if strings.Contains(strings.ToLower(players[i].PlayerName), q) {
			return &players[i]
		}
	}
	return nil
}

func LeaderboardCommandHandler(store league.Store, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := leaderboard(r.Context(), store, stats.Filter{})
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err)
			return
		}

		msg, err := notifier.FormatLeaderboardResponse(board)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}

func PlayerStatsCommandHandler(store league.Store, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		query := strings.TrimSpace(r.FormValue("text"))
		if query == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", query)
		board, err := leaderboard(r.Context(), store, stats.Filter{})
		if err != nil {
			http.Error(w, "Failed to get player stats", http.StatusInternalServerError)
			log.Error("Failed to get player stats from store", "error", err)
			return
		}

		var msg any
		if found := findPlayer(board.Players, query); found != nil {
			msg, err = notifier.FormatPlayerStatsResponse(found, query)
		} else {
			log.Warn("Could not find player stats", "player", query)
			msg, err = notifier.FormatPlayerNotFoundResponse(query)
		}
		if err != nil {
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			log.Error("Failed to format player stats", "error", err)
			return
		}
		respondWithSlackMsg(w, msg)
	}
}
