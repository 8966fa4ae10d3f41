package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/mahjong-league/internal/database"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/scoring"
)

var (
	seedTeams = []struct{ name, color string }{
		{"Dragons", "#dc2626"},
		{"Winds", "#2563eb"},
		{"Bamboo", "#16a34a"},
	}
	seedPlayers = []string{
		"Seeder Player A", "Seeder Player B", "Seeder Player C", "Seeder Player D",
		"Seeder Player E", "Seeder Player F", "Seeder Player G", "Seeder Player H",
		"Seeder Player I",
	}
)

// randomTable deals 100,000 points over four seats by moving random amounts
// between seats, the way hands move points at a real table.
func randomTable(rng *rand.Rand) [scoring.PlayersPerGame]int {
	points := [scoring.PlayersPerGame]int{25000, 25000, 25000, 25000}
	hands := 8 + rng.Intn(8)
	for hand := 0; hand < hands; hand++ {
		from, to := rng.Intn(4), rng.Intn(4)
		if from == to {
			continue
		}
		amount := (10 + rng.Intn(110)) * 100
		points[from] -= amount
		points[to] += amount
	}
	return points
}

func main() {
	numGames := flag.Int("games", 200, "Number of games to insert")
	days := flag.Int("days", 180, "Spread the games over this many past days")
	flag.Parse()

	log.Info("Starting database seeder...")
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "league.db"
	}

	db, teardown, err := database.InitDB(dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"))
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	store := league.New(db)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var teamIDs []string
	for _, t := range seedTeams {
		team, err := store.CreateTeam(ctx, t.name, t.color)
		if err != nil {
			log.Fatalf("Failed to create team %s: %s", t.name, err)
		}
		teamIDs = append(teamIDs, team.ID)
	}

	var players []*league.Player
	for i, name := range seedPlayers {
		// The last player stays unaffiliated.
		var teamID *string
		if i < len(seedPlayers)-1 {
			teamID = &teamIDs[i%len(teamIDs)]
		}
		p, err := store.CreatePlayer(ctx, name, teamID)
		if err != nil {
			log.Fatalf("Failed to create player %s: %s", name, err)
		}
		players = append(players, p)
	}
	log.Info("Created teams and players", "teams", len(teamIDs), "players", len(players))

	startTime := time.Now()
	for i := 0; i < *numGames; i++ {
		seats := rng.Perm(len(players))[:scoring.PlayersPerGame]
		points := randomTable(rng)

		entries := make([]scoring.Entry, scoring.PlayersPerGame)
		for s, idx := range seats {
			entries[s] = scoring.Entry{Label: players[idx].ID, Points: points[s]}
		}
		results, err := scoring.Calculate(entries)
		if err != nil {
			log.Fatalf("Failed to score seeded game: %s", err)
		}

		game := league.NewGameResult{
			GameDate: time.Now().Add(-time.Duration(rng.Intn(*days*24)) * time.Hour).Truncate(time.Minute),
		}
		for _, r := range results {
			game.Entries = append(game.Entries, league.NewPlayerResult{
				PlayerID: r.Label,
				Points:   r.Points,
				Score:    r.Score,
				Rank:     r.Rank,
			})
		}
		if _, err := store.CreateGameResult(ctx, game); err != nil {
			log.Fatalf("Failed to insert game %d: %s", i+1, err)
		}
		if (i+1)%50 == 0 {
			log.Info("Inserted games", "completed", i+1, "total", *numGames)
		}
	}

	fmt.Printf("Seeded %d games in %s\n", *numGames, time.Since(startTime))
}
