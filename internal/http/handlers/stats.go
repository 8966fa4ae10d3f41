package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/metrics"
	"github.com/mauv0809/mahjong-league/internal/notifier"
	"github.com/mauv0809/mahjong-league/internal/stats"
)

const dateLayout = "2006-01-02"

type sessionResponse struct {
	Since  string              `json:"since"`
	Deltas []stats.PlayerDelta `json:"deltas"`
}

// leaderboard scans by date only; the team filter is applied to the player
// view after the scan.
func leaderboard(ctx context.Context, store league.Store, filter stats.Filter) (stats.Leaderboard, error) {
	records, err := store.ListResultRecords(ctx, filter.DateRange())
	if err != nil {
		return stats.Leaderboard{}, err
	}
	return stats.AggregateForTeam(records, filter.TeamID)
}

// StatsHandler answers the player and team leaderboards for the filter in the
// query string (teamFilter, dateFrom, dateTo).
func StatsHandler(store league.Store, metrics metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.IncStatsRequests()
		defer func() { metrics.ObserveStatsDuration(time.Since(start).Seconds()) }()

		filter, err := stats.ParseFilter(r.URL.Query())
		if err != nil {
			respondWithError(w, "Invalid stats filter", err)
			return
		}
		board, err := leaderboard(r.Context(), store, filter)
		if err != nil {
			respondWithError(w, "Failed to compute stats", err)
			return
		}
		log.FromContext(r.Context()).Debug("Computed leaderboard", "players", len(board.Players), "teams", len(board.Teams))
		respondWithJSON(w, http.StatusOK, board)
	}
}

// AnnounceStatsHandler posts the filtered leaderboard to the league channel.
func AnnounceStatsHandler(store league.Store, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := stats.ParseFilter(r.URL.Query())
		if err != nil {
			respondWithError(w, "Invalid stats filter", err)
			return
		}
		board, err := leaderboard(r.Context(), store, filter)
		if err != nil {
			respondWithError(w, "Failed to compute stats", err)
			return
		}
		if err := notifier.SendLeaderboard(board, IsDryRunFromContext(r)); err != nil {
			respondWithError(w, "Failed to post leaderboard", err)
			return
		}
		respondWithJSON(w, http.StatusOK, board)
	}
}

// sessionDeltas compares the leaderboard before the session day with the
// current one. since defaults to today.
func sessionDeltas(ctx context.Context, store league.Store, since string) (sessionResponse, error) {
	if since == "" {
		since = time.Now().Format(dateLayout)
	}
	sinceFilter, err := stats.ParseFilter(url.Values{"dateFrom": {since}})
	if err != nil {
		return sessionResponse{}, fmt.Errorf("since: %w", err)
	}
	day, err := time.Parse(dateLayout, sinceFilter.DateFrom)
	if err != nil {
		return sessionResponse{}, err
	}

	before, err := leaderboard(ctx, store, stats.Filter{DateTo: day.AddDate(0, 0, -1).Format(dateLayout)})
	if err != nil {
		return sessionResponse{}, err
	}
	after, err := leaderboard(ctx, store, stats.Filter{})
	if err != nil {
		return sessionResponse{}, err
	}

	deltas := stats.SessionDeltas(before.Players, after.Players)
	if deltas == nil {
		deltas = []stats.PlayerDelta{}
	}
	return sessionResponse{Since: sinceFilter.DateFrom, Deltas: deltas}, nil
}

// SessionHandler answers how much each player gained or lost since a date.
func SessionHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionDeltas(r.Context(), store, r.URL.Query().Get("since"))
		if err != nil {
			respondWithError(w, "Failed to compute session", err)
			return
		}
		respondWithJSON(w, http.StatusOK, session)
	}
}

// AnnounceSessionHandler posts the session summary to the league channel.
func AnnounceSessionHandler(store league.Store, notifier notifier.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := sessionDeltas(r.Context(), store, r.URL.Query().Get("since"))
		if err != nil {
			respondWithError(w, "Failed to compute session", err)
			return
		}
		if err := notifier.SendSessionSummary(session.Deltas, IsDryRunFromContext(r)); err != nil {
			respondWithError(w, "Failed to post session summary", err)
			return
		}
		respondWithJSON(w, http.StatusOK, session)
	}
}
