package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Categories(t *testing.T) {
	tests := []struct {
		name     string
		grid     Grid
		expected int64
	}{
		{
			name:     "triple",
			grid:     Grid{SymbolBell, SymbolBell, SymbolBell},
			expected: TripleOffset + 15,
		},
		{
			name:     "adjacent pair first two",
			grid:     Grid{SymbolBar, SymbolBar, SymbolCherry},
			expected: PairOffset + 21,
		},
		{
			name:     "adjacent pair last two",
			grid:     Grid{SymbolCherry, SymbolSeven, SymbolSeven},
			expected: PairOffset + 41,
		},
		{
			name:     "outer pair does not count",
			grid:     Grid{SymbolBar, SymbolCherry, SymbolBar},
			expected: 21,
		},
		{
			name:     "no match",
			grid:     Grid{SymbolCherry, SymbolLemon, SymbolOrange},
			expected: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score(tt.grid))
		})
	}
}

func TestScore_CategoryOrdering(t *testing.T) {
	// The weakest triple must beat the strongest pair, and the weakest pair
	// must beat the strongest possible no-match grid.
	lowestTriple := Score(Grid{SymbolCherry, SymbolCherry, SymbolCherry})
	highestPair := Score(Grid{SymbolJackpot, SymbolJackpot, SymbolSeven})
	lowestPair := Score(Grid{SymbolCherry, SymbolCherry, SymbolLemon})
	highestNoMatch := Score(Grid{SymbolJackpot, SymbolSeven, SymbolBar})

	assert.Greater(t, lowestTriple, highestPair)
	assert.Greater(t, lowestPair, highestNoMatch)
}

func TestScore_UnknownSymbolScoresZero(t *testing.T) {
	// Corrupted data should degrade to a zero contribution, not panic.
	grid := Grid{Symbol("garbage"), SymbolCherry, SymbolLemon}
	assert.Equal(t, int64(3), Score(grid))
}

func TestResolveDuel(t *testing.T) {
	tests := []struct {
		name            string
		challengerScore int64
		targetScore     int64
		amount          int64
		expectedWinner  Winner
	}{
		{"challenger wins", TripleOffset + 3, 42, 200, WinnerChallenger},
		{"target wins", 10, PairOffset + 4, 200, WinnerTarget},
		{"equal scores tie", 17, 17, 500, WinnerNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ResolveDuel(tt.challengerScore, tt.targetScore, tt.amount)
			assert.Equal(t, tt.expectedWinner, outcome.Winner)
			assert.Equal(t, 2*tt.amount, outcome.Pot)
		})
	}
}

func TestResolveDuel_TieBreakLaw(t *testing.T) {
	// Same category, same symbol sum: always a true tie, for every category.
	pairs := [][2]Grid{
		{
			{SymbolBell, SymbolBell, SymbolBell},
			{SymbolBell, SymbolBell, SymbolBell},
		},
		{
			{SymbolBar, SymbolBar, SymbolCherry}, // 10+10+1
			{SymbolCherry, SymbolBar, SymbolBar}, // 1+10+10
		},
		{
			{SymbolCherry, SymbolOrange, SymbolLemon}, // 1+3+2
			{SymbolLemon, SymbolCherry, SymbolOrange}, // 2+1+3
		},
	}

	for _, p := range pairs {
		outcome := ResolveDuel(Score(p[0]), Score(p[1]), 100)
		assert.Equal(t, WinnerNone, outcome.Winner, "grids %v vs %v", p[0], p[1])
	}
}

func TestResolveDuel_PairBeatsNoMatchAtEqualSum(t *testing.T) {
	// Equal symbol sums are a tie only within the same category. A trailing
	// pair still outranks a no-match grid of the same sum.
	noMatch := Grid{SymbolCherry, SymbolOrange, SymbolLemon} // 1+3+2
	pair := Grid{SymbolGrape, SymbolCherry, SymbolCherry}    // 4+1+1, pair in 2-3

	outcome := ResolveDuel(Score(noMatch), Score(pair), 100)
	assert.Equal(t, WinnerTarget, outcome.Winner)
}

func TestPayout(t *testing.T) {
	assert.Equal(t, int64(5000), Payout(Grid{SymbolJackpot, SymbolJackpot, SymbolJackpot}, 100, Modifiers{}))
	assert.Equal(t, int64(1000), Payout(Grid{SymbolBell, SymbolBell, SymbolBell}, 100, Modifiers{}))
	assert.Equal(t, int64(200), Payout(Grid{SymbolBell, SymbolBell, SymbolBar}, 100, Modifiers{}))
	assert.Equal(t, int64(0), Payout(Grid{SymbolBell, SymbolBar, SymbolBell}, 100, Modifiers{}))

	boosted := Payout(Grid{SymbolBell, SymbolBell, SymbolBar}, 100, Modifiers{PayoutBoost: 0.5})
	assert.Equal(t, int64(300), boosted)
}
