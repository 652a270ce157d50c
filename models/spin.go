package models

// SpinResult represents the outcome of a slot spin (returned to the user)
type SpinResult struct {
	Stake      int64
	Grid       string
	Payout     int64
	NewBalance int64
}

// TransferResult represents the outcome of a transfer (returned to the user)
type TransferResult struct {
	Amount        int64
	RecipientName string
	NewBalance    int64
}
