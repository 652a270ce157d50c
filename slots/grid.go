package slots

import (
	"math/rand"
	"strings"
	"time"
)

// DefaultJackpotChance is the base probability that a single draw produces the
// jackpot symbol instead of a weighted draw from the regular table.
const DefaultJackpotChance = 0.01

// Grid is one slot outcome: three independent draws.
type Grid [3]Symbol

func (g Grid) String() string {
	parts := make([]string, len(g))
	for i, s := range g {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}

// Sum returns the total point value of the grid's symbols.
func (g Grid) Sum() int64 {
	var sum int64
	for _, s := range g {
		sum += Points(s)
	}
	return sum
}

// Modifiers are the per-player buffs applied to ordinary spins. Duels never
// apply any of them: both duelists draw from the identical, unmodified
// distribution so the contest stays symmetric.
type Modifiers struct {
	// LuckBoost is added to the jackpot base probability.
	LuckBoost float64
	// PayoutBoost multiplies the payout of a winning spin.
	PayoutBoost float64
}

// Generator produces slot grids from weighted random draws.
type Generator struct {
	rng           *rand.Rand
	jackpotChance float64
	totalWeight   int
}

// NewGenerator creates a generator with the given random source. A nil source
// gets a time-seeded one.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	total := 0
	for _, w := range symbolWeights {
		total += w.Weight
	}
	return &Generator{
		rng:           rng,
		jackpotChance: DefaultJackpotChance,
		totalWeight:   total,
	}
}

// Generate produces a grid of three independent draws with the player's
// modifiers applied.
func (g *Generator) Generate(mods Modifiers) Grid {
	var grid Grid
	for i := range grid {
		grid[i] = g.draw(mods)
	}
	return grid
}

// FairGrid produces a grid for a duel: the same three independent draws, but
// with every modifier bypassed regardless of what the player has active.
func (g *Generator) FairGrid() Grid {
	return g.Generate(Modifiers{})
}

func (g *Generator) draw(mods Modifiers) Symbol {
	if g.rng.Float64() < g.jackpotChance+mods.LuckBoost {
		return SymbolJackpot
	}
	roll := g.rng.Intn(g.totalWeight)
	for _, w := range symbolWeights {
		roll -= w.Weight
		if roll < 0 {
			return w.Symbol
		}
	}
	// Unreachable while the weight table is non-empty.
	return symbolWeights[len(symbolWeights)-1].Symbol
}
