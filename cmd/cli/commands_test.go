package main

import (
	"testing"

	"github.com/mauv0809/mahjong-league/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntries(t *testing.T) {
	entries, err := parseEntries([]string{"Alice:40000", "Bob:30000", "Mr: Colon:20000", "Dave:10000"})
	require.NoError(t, err)
	assert.Equal(t, []scoring.Entry{
		{Label: "Alice", Points: 40000},
		{Label: "Bob", Points: 30000},
		{Label: "Mr: Colon", Points: 20000},
		{Label: "Dave", Points: 10000},
	}, entries)

	_, err = parseEntries([]string{"Alice"})
	assert.Error(t, err)
	_, err = parseEntries([]string{"Alice:lots"})
	assert.Error(t, err)
	_, err = parseEntries([]string{":100"})
	assert.Error(t, err)
}
