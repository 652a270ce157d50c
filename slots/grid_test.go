package slots

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_DrawsKnownSymbols(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(1)))

	for i := 0; i < 1000; i++ {
		grid := gen.FairGrid()
		for _, sym := range grid {
			_, known := symbolPoints[sym]
			require.True(t, known, "generator produced unknown symbol %q", sym)
		}
	}
}

func TestGenerator_LuckBoostRaisesJackpotOdds(t *testing.T) {
	// A luck boost of 1.0 forces every draw to the jackpot symbol.
	gen := NewGenerator(rand.New(rand.NewSource(2)))

	grid := gen.Generate(Modifiers{LuckBoost: 1.0})
	assert.Equal(t, Grid{SymbolJackpot, SymbolJackpot, SymbolJackpot}, grid)
}

func TestGenerator_FairGridIgnoresModifiers(t *testing.T) {
	// FairGrid draws at the base jackpot probability. At 1% per draw, 300
	// grids (900 draws) of all-jackpot outcomes would be astronomically
	// unlikely; seeing mostly regular symbols shows no boost leaked in.
	gen := NewGenerator(rand.New(rand.NewSource(3)))

	jackpots := 0
	for i := 0; i < 300; i++ {
		for _, sym := range gen.FairGrid() {
			if sym == SymbolJackpot {
				jackpots++
			}
		}
	}
	assert.Less(t, jackpots, 50)
}

func TestGrid_String(t *testing.T) {
	grid := Grid{SymbolCherry, SymbolBell, SymbolSeven}
	assert.Equal(t, "cherry bell seven", grid.String())
}
