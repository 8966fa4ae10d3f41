package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/charts"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/stats"
)

// PlayerChartHandler renders the player's cumulative score as a PNG, drawn in
// the player's team color.
func PlayerChartHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		player, err := store.GetPlayer(ctx, r.PathValue("id"))
		if err != nil {
			respondWithError(w, "Failed to get player", err)
			return
		}

		var color string
		if player.TeamID != nil {
			team, err := store.GetTeam(ctx, *player.TeamID)
			if err != nil {
				respondWithError(w, "Failed to get team", err)
				return
			}
			color = team.Color
		}

		records, err := store.ListResultRecords(ctx, stats.Filter{})
		if err != nil {
			respondWithError(w, "Failed to list results", err)
			return
		}
		own := records[:0]
		for _, rec := range records {
			if rec.PlayerID == player.ID {
				own = append(own, rec)
			}
		}

		png, err := charts.CumulativeScoreChart(player.Name, color, own)
		if err != nil {
			respondWithError(w, "Failed to render chart", err)
			return
		}
		log.FromContext(ctx).Debug("Rendered score chart", "player", player.Name, "games", len(own))
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
