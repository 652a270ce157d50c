package slots

// Winner identifies which side of a duel won.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerChallenger
	WinnerTarget
)

// Outcome is the result of comparing two duel scores.
type Outcome struct {
	Winner Winner
	Pot    int64
}

// ResolveDuel compares two scores and returns the winner and the pot (twice
// the wager). Pure function: the caller moves the money. Exactly equal scores
// is a true tie.
func ResolveDuel(challengerScore, targetScore, amount int64) Outcome {
	outcome := Outcome{Pot: 2 * amount}
	switch {
	case challengerScore > targetScore:
		outcome.Winner = WinnerChallenger
	case targetScore > challengerScore:
		outcome.Winner = WinnerTarget
	}
	return outcome
}
