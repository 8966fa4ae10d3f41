package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/mahjong-league/internal/apperr"
	"github.com/mauv0809/mahjong-league/internal/league"
)

// Importer validates a bundle against the store and writes it as one batch.
// Exported ids are replaced by fresh ones; references inside the bundle are
// rewritten to match.
type Importer struct {
	store league.Store
	newID func() string
	now   func() time.Time
}

// NewImporter creates an importer writing to store.
func NewImporter(store league.Store) *Importer {
	return &Importer{store: store, newID: uuid.NewString, now: time.Now}
}

// importState tracks names and id mappings while a bundle is resolved.
type importState struct {
	teamNames    map[string]bool
	playerNames  map[string]bool
	existingTeam map[string]bool
	existingByID map[string]bool
	playerByName map[string]string
	teamIDs      map[string]string
	playerIDs    map[string]string
}

// Import rejects the whole bundle on the first invalid, duplicate or
// unresolvable record; nothing is written in that case.
func (im *Importer) Import(ctx context.Context, bundle *Bundle) (*Summary, error) {
	state, err := im.loadState(ctx)
	if err != nil {
		return nil, err
	}
	now := im.now().UTC().Truncate(time.Second)

	var batch league.Batch
	for _, t := range bundle.Teams {
		team, err := im.resolveTeam(state, t, now)
		if err != nil {
			return nil, err
		}
		batch.Teams = append(batch.Teams, team)
	}
	for _, p := range bundle.Players {
		player, err := im.resolvePlayer(state, p, now)
		if err != nil {
			return nil, err
		}
		batch.Players = append(batch.Players, player)
	}
	for _, g := range bundle.GameResults {
		game, err := im.resolveGame(state, g, now)
		if err != nil {
			return nil, err
		}
		batch.Games = append(batch.Games, game)
	}

	if err := im.store.ImportBatch(ctx, batch); err != nil {
		return nil, err
	}
	summary := &Summary{Teams: len(batch.Teams), Players: len(batch.Players), Games: len(batch.Games)}
	log.Info("Import finished", "teams", summary.Teams, "players", summary.Players, "games", summary.Games)
	return summary, nil
}

func (im *Importer) loadState(ctx context.Context) (*importState, error) {
	teams, err := im.store.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	players, err := im.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	state := &importState{
		teamNames:    make(map[string]bool),
		playerNames:  make(map[string]bool),
		existingTeam: make(map[string]bool),
		existingByID: make(map[string]bool),
		playerByName: make(map[string]string),
		teamIDs:      make(map[string]string),
		playerIDs:    make(map[string]string),
	}
	for _, t := range teams {
		state.teamNames[t.Name] = true
		state.existingTeam[t.ID] = true
	}
	for _, p := range players {
		state.playerNames[p.Name] = true
		state.existingByID[p.ID] = true
		state.playerByName[p.Name] = p.ID
	}
	return state, nil
}

func stamp(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t.UTC().Truncate(time.Second)
}

func (im *Importer) resolveTeam(state *importState, t league.Team, now time.Time) (league.Team, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return league.Team{}, fmt.Errorf("%w: team %q has no name", apperr.ErrInvalidInput, t.ID)
	}
	if state.teamNames[name] {
		return league.Team{}, fmt.Errorf("%w: team %q already exists", apperr.ErrDuplicateName, name)
	}
	state.teamNames[name] = true

	id := im.newID()
	if t.ID != "" {
		state.teamIDs[t.ID] = id
	}
	created := stamp(t.CreatedAt, now)
	return league.Team{
		ID:        id,
		Name:      name,
		Color:     t.Color,
		CreatedAt: created,
		UpdatedAt: stamp(t.UpdatedAt, created),
	}, nil
}

func (im *Importer) resolvePlayer(state *importState, p league.Player, now time.Time) (league.Player, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return league.Player{}, fmt.Errorf("%w: player %q has no name", apperr.ErrInvalidInput, p.ID)
	}
	if state.playerNames[name] {
		return league.Player{}, fmt.Errorf("%w: player %q already exists", apperr.ErrDuplicateName, name)
	}
	state.playerNames[name] = true

	var teamID *string
	if p.TeamID != nil && *p.TeamID != "" {
		mapped, ok := state.teamIDs[*p.TeamID]
		switch {
		case ok:
			teamID = &mapped
		case state.existingTeam[*p.TeamID]:
			id := *p.TeamID
			teamID = &id
		default:
			return league.Player{}, fmt.Errorf("%w: player %q references unknown team %q",
				apperr.ErrMissingReference, name, *p.TeamID)
		}
	}

	id := im.newID()
	if p.ID != "" {
		state.playerIDs[p.ID] = id
	}
	state.playerByName[name] = id
	created := stamp(p.CreatedAt, now)
	return league.Player{
		ID:        id,
		Name:      name,
		TeamID:    teamID,
		CreatedAt: created,
		UpdatedAt: stamp(p.UpdatedAt, created),
	}, nil
}

// resolvePlayerRef maps a result's player to a stored or imported player:
// first by exported id, then by stored id, then by exact name.
func (state *importState) resolvePlayerRef(r league.PlayerGameResult) (string, bool) {
	if id, ok := state.playerIDs[r.PlayerID]; ok && r.PlayerID != "" {
		return id, true
	}
	if state.existingByID[r.PlayerID] {
		return r.PlayerID, true
	}
	if id, ok := state.playerByName[strings.TrimSpace(r.PlayerName)]; ok {
		return id, true
	}
	return "", false
}

func (im *Importer) resolveGame(state *importState, g league.GameResult, now time.Time) (league.GameResult, error) {
	label := g.ID
	if label == "" {
		label = formatTime(g.GameDate)
	}

	request := league.NewGameResult{GameDate: g.GameDate}
	for _, r := range g.Players {
		playerID, ok := state.resolvePlayerRef(r)
		if !ok {
			return league.GameResult{}, fmt.Errorf("%w: game %s references unknown player %q (%s)",
				apperr.ErrMissingReference, label, r.PlayerName, r.PlayerID)
		}
		request.Entries = append(request.Entries, league.NewPlayerResult{
			PlayerID: playerID, Points: r.Points, Score: r.Score, Rank: r.Rank,
		})
	}
	if err := league.ValidateGame(request); err != nil {
		return league.GameResult{}, fmt.Errorf("game %s: %w", label, err)
	}

	id := im.newID()
	created := stamp(g.CreatedAt, now)
	game := league.GameResult{ID: id, GameDate: g.GameDate, CreatedAt: created}
	for i, e := range request.Entries {
		game.Players = append(game.Players, league.PlayerGameResult{
			ID:        im.newID(),
			GameID:    id,
			PlayerID:  e.PlayerID,
			Points:    e.Points,
			Score:     e.Score,
			Rank:      e.Rank,
			CreatedAt: stamp(g.Players[i].CreatedAt, created),
		})
	}
	return game, nil
}
