package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/apperr"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/metrics"
	"github.com/mauv0809/mahjong-league/internal/transfer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

// ExportHandler downloads the whole league as a JSON bundle (default) or an
// XLSX workbook, selected with ?format=.
func ExportHandler(store league.Store, metrics metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "json"
		}
		if format != "json" && format != "xlsx" {
			respondWithError(w, "Unsupported export format", fmt.Errorf("%w: unsupported export format %q", apperr.ErrInvalidInput, format))
			return
		}

		bundle, err := transfer.Snapshot(r.Context(), store)
		if err != nil {
			respondWithError(w, "Failed to export league", err)
			return
		}
		// Encode before writing headers so a failure can still answer 500.
		var buf bytes.Buffer
		if format == "xlsx" {
			err = transfer.WriteXLSX(&buf, bundle)
		} else {
			err = transfer.EncodeJSON(&buf, bundle)
		}
		if err != nil {
			respondWithError(w, "Failed to encode export", err)
			return
		}

		metrics.IncExports(format)
		filename := fmt.Sprintf("mahjong-league-%s.%s", bundle.ExportDate.Format("2006-01-02"), format)
		if format == "xlsx" {
			attachment(w, xlsxContentType, filename)
		} else {
			attachment(w, "application/json", filename)
		}
		log.Info("League exported", "format", format, "teams", len(bundle.Teams), "players", len(bundle.Players), "games", len(bundle.GameResults))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

// ExportCSVHandler downloads one table as CSV: teams.csv, players.csv or
// gameResults.csv.
func ExportCSVHandler(store league.Store, metrics metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := r.PathValue("file")
		kind, ok := strings.CutSuffix(file, ".csv")
		if !ok {
			http.NotFound(w, r)
			return
		}

		ctx := r.Context()
		var buf bytes.Buffer
		var err error
		switch kind {
		case transfer.TeamsSheet:
			var teams []league.Team
			if teams, err = store.ListTeams(ctx); err == nil {
				err = transfer.WriteTeamsCSV(&buf, teams)
			}
		case transfer.PlayersSheet:
			var players []league.Player
			if players, err = store.ListPlayers(ctx); err == nil {
				err = transfer.WritePlayersCSV(&buf, players)
			}
		case transfer.GameResultsSheet:
			var games []league.GameResult
			if games, err = store.ListGameResults(ctx); err == nil {
				err = transfer.WriteGameResultsCSV(&buf, games)
			}
		default:
			http.NotFound(w, r)
			return
		}
		if err != nil {
			respondWithError(w, "Failed to export "+kind, err)
			return
		}

		metrics.IncExports("csv")
		attachment(w, "text/csv; charset=utf-8", file)
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

// ImportHandler accepts a JSON bundle, an XLSX workbook, or a multipart form
// carrying either a "workbook" file or the teams, players and gameResults CSV
// files. The import is all or nothing.
func ImportHandler(importer *transfer.Importer, metrics metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		bundle, err := readBundle(r)
		if err != nil {
			metrics.IncImports(false)
			respondWithError(w, "Failed to read import", err)
			return
		}

		summary, err := importer.Import(r.Context(), bundle)
		if err != nil {
			metrics.IncImports(false)
			respondWithError(w, "Failed to import league", err)
			return
		}
		metrics.IncImports(true)
		log.Info("League imported", "teams", summary.Teams, "players", summary.Players, "games", summary.Games)
		respondWithJSON(w, http.StatusOK, summary)
	}
}

func readBundle(r *http.Request) (*transfer.Bundle, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = "application/json"
	}

	switch mediaType {
	case "multipart/form-data":
		return readMultipartBundle(r)
	case xlsxContentType:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read workbook: %v", apperr.ErrInvalidInput, err)
		}
		return transfer.ReadXLSX(data)
	default:
		return transfer.DecodeJSON(r.Body)
	}
}

func readMultipartBundle(r *http.Request) (*transfer.Bundle, error) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		return nil, fmt.Errorf("%w: malformed multipart form: %v", apperr.ErrInvalidInput, err)
	}

	if workbook, _, err := r.FormFile("workbook"); err == nil {
		defer workbook.Close()
		data, err := io.ReadAll(workbook)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read workbook: %v", apperr.ErrInvalidInput, err)
		}
		return transfer.ReadXLSX(data)
	}

	bundle := &transfer.Bundle{ExportDate: time.Now()}
	found := 0
	readers := []struct {
		field string
		read  func(io.Reader) error
	}{
		{transfer.TeamsSheet, func(f io.Reader) (err error) {
			bundle.Teams, err = transfer.ReadTeamsCSV(f)
			return err
		}},
		{transfer.PlayersSheet, func(f io.Reader) (err error) {
			bundle.Players, err = transfer.ReadPlayersCSV(f)
			return err
		}},
		{transfer.GameResultsSheet, func(f io.Reader) (err error) {
			bundle.GameResults, err = transfer.ReadGameResultsCSV(f)
			return err
		}},
	}
	for _, rd := range readers {
		file, _, err := r.FormFile(rd.field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidInput, rd.field, err)
		}
		err = rd.read(file)
		file.Close()
		if err != nil {
			return nil, err
		}
		found++
	}
	if found == 0 {
		return nil, fmt.Errorf("%w: no teams, players or gameResults file in form", apperr.ErrInvalidInput)
	}
	return bundle, nil
}
