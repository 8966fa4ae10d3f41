package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/league"
)

// playerRequest carries the team reference; null or an absent teamId leaves
// the player unaffiliated.
type playerRequest struct {
	Name   string  `json:"name"`
	TeamID *string `json:"teamId"`
}

func ListPlayersHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := store.ListPlayers(r.Context())
		if err != nil {
			respondWithError(w, "Failed to list players", err)
			return
		}
		respondWithJSON(w, http.StatusOK, players)
	}
}

func CreatePlayerHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondWithError(w, "Failed to create player", err)
			return
		}
		player, err := store.CreatePlayer(r.Context(), req.Name, req.TeamID)
		if err != nil {
			respondWithError(w, "Failed to create player", err)
			return
		}
		log.Info("Player created", "id", player.ID, "name", player.Name)
		respondWithJSON(w, http.StatusCreated, player)
	}
}

func UpdatePlayerHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondWithError(w, "Failed to update player", err)
			return
		}
		player, err := store.UpdatePlayer(r.Context(), r.PathValue("id"), req.Name, req.TeamID)
		if err != nil {
			respondWithError(w, "Failed to update player", err)
			return
		}
		respondWithJSON(w, http.StatusOK, player)
	}
}

func DeletePlayerHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := store.DeletePlayer(r.Context(), id); err != nil {
			respondWithError(w, "Failed to delete player", err)
			return
		}
		log.Info("Player deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
