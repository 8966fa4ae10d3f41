package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventGameRecorded EventType = "game-recorded"
)

// GameRecorded is published after a game has been stored.
type GameRecorded struct {
	GameID   string       `msgpack:"game_id"`
	GameDate time.Time    `msgpack:"game_date"`
	Seats    []SeatResult `msgpack:"seats"`
}

// SeatResult is one player's line in a GameRecorded event.
type SeatResult struct {
	PlayerID   string  `msgpack:"player_id"`
	PlayerName string  `msgpack:"player_name"`
	Points     int     `msgpack:"points"`
	Score      float64 `msgpack:"score"`
	Rank       int     `msgpack:"rank"`
}
