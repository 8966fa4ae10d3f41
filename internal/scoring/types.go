package scoring

// PlayersPerGame is the number of seats at a table.
const PlayersPerGame = 4

// MaxAbsPoints bounds a single seat's total so four of them can be summed
// without overflow.
const MaxAbsPoints = 10_000_000

// Entry is one seat's raw table points at the end of a game.
type Entry struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Result is an Entry with its computed score and placement.
type Result struct {
	Label  string  `json:"label"`
	Points int     `json:"points"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// Rules holds the league's scoring parameters.
type Rules struct {
	// ReturnPoints is subtracted from every seat before the rank bonus is applied.
	ReturnPoints int
	// TotalPoints is the sum every game's four point totals must match.
	TotalPoints int
	// RankPoints is the bonus for 1st..4th place.
	RankPoints [PlayersPerGame]float64
}

// DefaultRules are the rules the league plays with.
var DefaultRules = Rules{
	ReturnPoints: 30000,
	TotalPoints:  100000,
	RankPoints:   [PlayersPerGame]float64{50, 10, -10, -30},
}
