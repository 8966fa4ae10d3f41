package pubsub_test

import (
	"testing"
	"time"

	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRecordedEncoding(t *testing.T) {
	event := pubsub.GameRecorded{
		GameID:   "g1",
		GameDate: time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC),
		Seats: []pubsub.SeatResult{
			{PlayerID: "p1", PlayerName: "Alice", Points: 40000, Score: 60, Rank: 1},
			{PlayerID: "p2", PlayerName: "Bob", Points: 25000, Score: 5, Rank: 2},
		},
	}

	data, err := pubsub.Encode(event)
	require.NoError(t, err)

	client := pubsub.NewMock()
	var decoded pubsub.GameRecorded
	require.NoError(t, client.ProcessMessage(data, &decoded))

	assert.Equal(t, "g1", decoded.GameID)
	assert.True(t, event.GameDate.Equal(decoded.GameDate))
	assert.Equal(t, event.Seats, decoded.Seats)
	assert.Len(t, client.ProcessMessageCalls, 1)
}

func TestGameRecordedFromGame(t *testing.T) {
	game := &league.GameResult{
		ID:       "g1",
		GameDate: time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC),
		Players: []league.PlayerGameResult{
			{ID: "r1", GameID: "g1", PlayerID: "p1", PlayerName: "Alice", Points: 40000, Score: 60, Rank: 1},
			{ID: "r2", GameID: "g1", PlayerID: "p2", PlayerName: "Bob", Points: 30000, Score: 10, Rank: 2},
		},
	}

	event := pubsub.NewGameRecorded(game)
	require.Len(t, event.Seats, 2)
	assert.Equal(t, "Alice", event.Seats[0].PlayerName)

	back := event.GameResult()
	assert.Equal(t, "g1", back.ID)
	require.Len(t, back.Players, 2)
	assert.Equal(t, "g1", back.Players[1].GameID)
	assert.Equal(t, 10.0, back.Players[1].Score)
	// Seat row ids are not part of the event.
	assert.Empty(t, back.Players[0].ID)
}
