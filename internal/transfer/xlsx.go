package transfer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/apperr"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes the bundle as a workbook with one sheet per record kind.
func WriteXLSX(w io.Writer, bundle *Bundle) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("Failed to close workbook", "error", err)
		}
	}()

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{TeamsSheet, TeamColumns, teamRows(bundle.Teams)},
		{PlayersSheet, PlayerColumns, playerRows(bundle.Players)},
		{GameResultsSheet, GameResultColumns, gameResultRows(bundle.GameResults)},
	}

	// The default sheet is renamed rather than left empty.
	first := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(first, TeamsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, sheet := range sheets[1:] {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}
	}

	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, append([][]string{sheet.header}, sheet.rows...)); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(row))
		for i, val := range row {
			cells[i] = val
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, idx+1, err)
		}
	}
	return nil
}

// ReadXLSX parses a workbook produced by WriteXLSX.
func ReadXLSX(data []byte) (*Bundle, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open XLSX file: %v", apperr.ErrInvalidInput, err)
	}
	defer f.Close()

	read := func(sheet string) ([][]string, error) {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read sheet %q: %v", apperr.ErrInvalidInput, sheet, err)
		}
		return rows, nil
	}

	var bundle Bundle
	rows, err := read(TeamsSheet)
	if err != nil {
		return nil, err
	}
	if bundle.Teams, err = parseTeamRows(rows); err != nil {
		return nil, err
	}
	if rows, err = read(PlayersSheet); err != nil {
		return nil, err
	}
	if bundle.Players, err = parsePlayerRows(rows); err != nil {
		return nil, err
	}
	if rows, err = read(GameResultsSheet); err != nil {
		return nil, err
	}
	if bundle.GameResults, err = parseGameResultRows(rows); err != nil {
		return nil, err
	}
	return &bundle, nil
}
