package transfer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mauv0809/mahjong-league/internal/apperr"
)

// EncodeJSON writes the bundle as indented JSON.
func EncodeJSON(w io.Writer, bundle *Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bundle)
}

// DecodeJSON reads a bundle. Missing collections decode as empty.
func DecodeJSON(r io.Reader) (*Bundle, error) {
	var bundle Bundle
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON bundle: %v", apperr.ErrInvalidInput, err)
	}
	return &bundle, nil
}
