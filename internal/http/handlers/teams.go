package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/league"
)

type teamRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func ListTeamsHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := store.ListTeams(r.Context())
		if err != nil {
			respondWithError(w, "Failed to list teams", err)
			return
		}
		respondWithJSON(w, http.StatusOK, teams)
	}
}

func CreateTeamHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req teamRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondWithError(w, "Failed to create team", err)
			return
		}
		team, err := store.CreateTeam(r.Context(), req.Name, req.Color)
		if err != nil {
			respondWithError(w, "Failed to create team", err)
			return
		}
		log.Info("Team created", "id", team.ID, "name", team.Name)
		respondWithJSON(w, http.StatusCreated, team)
	}
}

func UpdateTeamHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req teamRequest
		if err := decodeBody(w, r, &req); err != nil {
			respondWithError(w, "Failed to update team", err)
			return
		}
		team, err := store.UpdateTeam(r.Context(), r.PathValue("id"), req.Name, req.Color)
		if err != nil {
			respondWithError(w, "Failed to update team", err)
			return
		}
		respondWithJSON(w, http.StatusOK, team)
	}
}

func DeleteTeamHandler(store league.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := store.DeleteTeam(r.Context(), id); err != nil {
			respondWithError(w, "Failed to delete team", err)
			return
		}
		log.Info("Team deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
