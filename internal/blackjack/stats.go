package blackjack

// Stats tracks session-wide counters. Counters move only at the documented
// points: HandsPlayed and TotalWagered when a round starts, everything else at
// resolution.
type Stats struct {
	HandsPlayed   int
	HandsWon      int
	HandsLost     int
	HandsPushed   int
	Blackjacks    int
	TotalWagered  int
	MaxBankroll   int
	SessionProfit int
}

// WinRate returns the fraction of played hands won, or 0 before any play.
func (s Stats) WinRate() float64 {
	if s.HandsPlayed == 0 {
		return 0
	}
	return float64(s.HandsWon) / float64(s.HandsPlayed)
}
