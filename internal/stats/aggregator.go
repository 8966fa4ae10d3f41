package stats

import (
	"fmt"
	"sort"

	"github.com/mauv0809/mahjong-league/internal/apperr"
	"github.com/shopspring/decimal"
)

// tally accumulates one key's results.
type tally struct {
	total decimal.Decimal
	games int
	Placings
}

func (t *tally) add(r Record) {
	t.total = t.total.Add(decimal.NewFromFloat(r.Score))
	t.games++
	switch r.Rank {
	case 1:
		t.Wins++
	case 2:
		t.Seconds++
	case 3:
		t.Thirds++
	case 4:
		t.Fourths++
	}
}

func (t *tally) totals() (total, averageScore, averageRank float64) {
	if t.games == 0 {
		return 0, 0, 0
	}
	games := decimal.NewFromInt(int64(t.games))
	rankSum := t.Wins + 2*t.Seconds + 3*t.Thirds + 4*t.Fourths
	return t.total.InexactFloat64(),
		t.total.Div(games).InexactFloat64(),
		float64(rankSum) / float64(t.games)
}

func validate(r Record) error {
	if r.PlayerID == "" || r.PlayerName == "" {
		return fmt.Errorf("%w: result in game %q has no player", apperr.ErrMissingReference, r.GameID)
	}
	if r.TeamID != nil && (*r.TeamID == "" || r.TeamName == "") {
		return fmt.Errorf("%w: player %q references an unknown team", apperr.ErrMissingReference, r.PlayerID)
	}
	if r.Rank < 1 || r.Rank > 4 {
		return fmt.Errorf("%w: player %q has rank %d in game %q", apperr.ErrInvalidInput, r.PlayerID, r.Rank, r.GameID)
	}
	return nil
}

// Aggregate computes both leaderboards from the same records.
func Aggregate(records []Record) (Leaderboard, error) {
	players, err := AggregatePlayers(records)
	if err != nil {
		return Leaderboard{}, err
	}
	teams, err := AggregateTeams(records)
	if err != nil {
		return Leaderboard{}, err
	}
	return Leaderboard{Players: players, Teams: teams}, nil
}

// AggregateForTeam builds both leaderboards from date-filtered records. A
// non-empty teamID narrows the player leaderboard only; every team with games
// in the window stays on the team leaderboard.
func AggregateForTeam(records []Record, teamID string) (Leaderboard, error) {
	if teamID == "" {
		return Aggregate(records)
	}
	players, err := AggregatePlayers(Filter{TeamID: teamID}.Apply(records))
	if err != nil {
		return Leaderboard{}, err
	}
	teams, err := AggregateTeams(records)
	if err != nil {
		return Leaderboard{}, err
	}
	return Leaderboard{Players: players, Teams: teams}, nil
}

// AggregatePlayers reduces records to one row per player, ordered by total
// score descending, then name and id ascending. The team label comes from the
// first record seen for the player.
func AggregatePlayers(records []Record) ([]PlayerStats, error) {
	rows := make(map[string]*PlayerStats)
	tallies := make(map[string]*tally)
	for _, r := range records {
		if err := validate(r); err != nil {
			return nil, err
		}
		if _, ok := rows[r.PlayerID]; !ok {
			rows[r.PlayerID] = &PlayerStats{
				PlayerID:   r.PlayerID,
				PlayerName: r.PlayerName,
				TeamID:     r.TeamID,
				TeamName:   r.TeamName,
				TeamColor:  r.TeamColor,
			}
			tallies[r.PlayerID] = &tally{}
		}
		tallies[r.PlayerID].add(r)
	}

	out := make([]PlayerStats, 0, len(rows))
	for id, row := range rows {
		t := tallies[id]
		row.TotalScore, row.AverageScore, row.AverageRank = t.totals()
		row.GameCount = t.games
		row.Placings = t.Placings
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		if out[i].PlayerName != out[j].PlayerName {
			return out[i].PlayerName < out[j].PlayerName
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

// AggregateTeams reduces records to one row per team. Records of unaffiliated
// players are skipped; teams without records do not appear.
func AggregateTeams(records []Record) ([]TeamStats, error) {
	rows := make(map[string]*TeamStats)
	tallies := make(map[string]*tally)
	members := make(map[string]map[string]struct{})
	for _, r := range records {
		if err := validate(r); err != nil {
			return nil, err
		}
		if r.TeamID == nil {
			continue
		}
		id := *r.TeamID
		if _, ok := rows[id]; !ok {
			rows[id] = &TeamStats{TeamID: id, TeamName: r.TeamName, TeamColor: r.TeamColor}
			tallies[id] = &tally{}
			members[id] = make(map[string]struct{})
		}
		tallies[id].add(r)
		members[id][r.PlayerID] = struct{}{}
	}

	out := make([]TeamStats, 0, len(rows))
	for id, row := range rows {
		t := tallies[id]
		row.TotalScore, row.AverageScore, row.AverageRank = t.totals()
		row.GameCount = t.games
		row.Placings = t.Placings
		row.PlayerCount = len(members[id])
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		if out[i].TeamName != out[j].TeamName {
			return out[i].TeamName < out[j].TeamName
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

// SessionDeltas compares two player snapshots, typically the leaderboard up to
// the start of a session and the leaderboard now. Only players who played in
// between are returned, biggest gain first.
func SessionDeltas(before, after []PlayerStats) []PlayerDelta {
	previous := make(map[string]PlayerStats, len(before))
	for _, p := range before {
		previous[p.PlayerID] = p
	}

	var deltas []PlayerDelta
	for _, p := range after {
		prev := previous[p.PlayerID]
		games := p.GameCount - prev.GameCount
		if games <= 0 {
			continue
		}
		delta := decimal.NewFromFloat(p.TotalScore).Sub(decimal.NewFromFloat(prev.TotalScore))
		deltas = append(deltas, PlayerDelta{
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			Before:     prev.TotalScore,
			After:      p.TotalScore,
			Delta:      delta.InexactFloat64(),
			Games:      games,
		})
	}
	sort.SliceStable(deltas, func(i, j int) bool {
		if deltas[i].Delta != deltas[j].Delta {
			return deltas[i].Delta > deltas[j].Delta
		}
		return deltas[i].PlayerName < deltas[j].PlayerName
	})
	return deltas
}
