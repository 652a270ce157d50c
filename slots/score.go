package slots

// Score category offsets. Either offset exceeds any possible symbol point sum,
// so any triple outscores any pair and any pair outscores any no-match.
const (
	PairOffset   int64 = 1_000
	TripleOffset int64 = 10_000
)

// Score maps a grid to a comparable score. Precedence: triple, then adjacent
// pair (positions 1-2 or 2-3; 1-3 alone does not count), then the bare point
// sum. The point sum breaks ties within a category.
func Score(g Grid) int64 {
	sum := g.Sum()
	switch {
	case g[0] == g[1] && g[1] == g[2]:
		return TripleOffset + sum
	case g[0] == g[1] || g[1] == g[2]:
		return PairOffset + sum
	default:
		return sum
	}
}

// Payout returns the winnings of an ordinary spin for a given stake. Duels do
// not use this; they move the wager between the two players instead.
func Payout(g Grid, stake int64, mods Modifiers) int64 {
	var payout int64
	switch {
	case g[0] == g[1] && g[1] == g[2] && g[0] == SymbolJackpot:
		payout = stake * 50
	case g[0] == g[1] && g[1] == g[2]:
		payout = stake * 10
	case g[0] == g[1] || g[1] == g[2]:
		payout = stake * 2
	default:
		return 0
	}
	if mods.PayoutBoost > 0 {
		payout = int64(float64(payout) * (1 + mods.PayoutBoost))
	}
	return payout
}
