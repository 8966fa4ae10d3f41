package transfer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mauv0809/mahjong-league/internal/apperr"
	"github.com/mauv0809/mahjong-league/internal/league"
)

// WriteTeamsCSV writes teams with a header row.
func WriteTeamsCSV(w io.Writer, teams []league.Team) error {
	return writeCSV(w, TeamColumns, teamRows(teams))
}

// WritePlayersCSV writes players with a header row. Unaffiliated players have
// an empty team_id.
func WritePlayersCSV(w io.Writer, players []league.Player) error {
	return writeCSV(w, PlayerColumns, playerRows(players))
}

// WriteGameResultsCSV writes one row per player result.
func WriteGameResultsCSV(w io.Writer, games []league.GameResult) error {
	return writeCSV(w, GameResultColumns, gameResultRows(games))
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// ReadTeamsCSV parses the output of WriteTeamsCSV.
func ReadTeamsCSV(r io.Reader) ([]league.Team, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return parseTeamRows(rows)
}

// ReadPlayersCSV parses the output of WritePlayersCSV.
func ReadPlayersCSV(r io.Reader) ([]league.Player, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return parsePlayerRows(rows)
}

// ReadGameResultsCSV parses result rows and groups them into games.
func ReadGameResultsCSV(r io.Reader) ([]league.GameResult, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return parseGameResultRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read CSV: %v", apperr.ErrInvalidInput, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
