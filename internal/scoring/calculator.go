package scoring

import (
	"fmt"
	"sort"

	"github.com/mauv0809/mahjong-league/internal/apperr"
	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// Calculate scores a game with DefaultRules.
func Calculate(entries []Entry) ([]Result, error) {
	return DefaultRules.Calculate(entries)
}

// Validate checks a game's point totals against DefaultRules.
func Validate(points []int) error {
	return DefaultRules.Validate(points)
}

// Validate checks that there are exactly four totals within MaxAbsPoints and
// that they sum to TotalPoints.
func (r Rules) Validate(points []int) error {
	if len(points) != PlayersPerGame {
		return fmt.Errorf("%w: expected %d players, got %d", apperr.ErrInvalidInput, PlayersPerGame, len(points))
	}
	total := 0
	for _, p := range points {
		if p > MaxAbsPoints || p < -MaxAbsPoints {
			return fmt.Errorf("%w: %d points is out of range", apperr.ErrInvalidInput, p)
		}
		total += p
	}
	if total != r.TotalPoints {
		return fmt.Errorf("%w: points sum to %d, expected %d", apperr.ErrInvalidInput, total, r.TotalPoints)
	}
	return nil
}

// Calculate converts four point totals into scores and ranks. Results are
// ordered by rank; tied seats keep their input order.
func (r Rules) Calculate(entries []Entry) ([]Result, error) {
	points := make([]int, len(entries))
	for i, e := range entries {
		points[i] = e.Points
	}
	if err := r.Validate(points); err != nil {
		return nil, err
	}

	ranks := Ranks(points)
	sharing := make(map[int]int, len(ranks))
	for _, rank := range ranks {
		sharing[rank]++
	}

	results := make([]Result, len(entries))
	for i, e := range entries {
		rank := ranks[i]
		score := decimal.NewFromInt(int64(e.Points - r.ReturnPoints)).
			Div(thousand).
			Add(r.rankBonus(rank, sharing[rank]))
		results[i] = Result{
			Label:  e.Label,
			Points: e.Points,
			Score:  score.Round(1).InexactFloat64(),
			Rank:   rank,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rank < results[j].Rank
	})
	return results, nil
}

// rankBonus averages the k table slots starting at rank. Slots past the end
// of the table count as zero.
func (r Rules) rankBonus(rank, k int) decimal.Decimal {
	sum := decimal.Zero
	for i := rank - 1; i < rank-1+k; i++ {
		if i >= 0 && i < len(r.RankPoints) {
			sum = sum.Add(decimal.NewFromFloat(r.RankPoints[i]))
		}
	}
	return sum.Div(decimal.NewFromInt(int64(k)))
}

// Ranks assigns competition ranks ("1224"): each value's rank is one plus
// the number of strictly greater values.
func Ranks(points []int) []int {
	ranks := make([]int, len(points))
	for i, p := range points {
		rank := 1
		for _, other := range points {
			if other > p {
				rank++
			}
		}
		ranks[i] = rank
	}
	return ranks
}

// Sum adds up result scores without float drift.
func Sum(results []Result) float64 {
	total := decimal.Zero
	for _, res := range results {
		total = total.Add(decimal.NewFromFloat(res.Score))
	}
	return total.InexactFloat64()
}
