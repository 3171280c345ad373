package statistics

import (
	"fmt"
	"math"
	"sort"
)

// SessionResult represents the outcome of a single simulated session
type SessionResult struct {
	Seed          int64   // RNG seed for this session (for replay)
	NetProfit     float64 // Final bankroll minus starting bankroll, in dollars
	FinalBankroll int
	MaxBankroll   int
	Rounds        int // Betting rounds played
	HandsWon      int // Includes naturals
	HandsLost     int // Includes busts
	HandsPushed   int // Includes surrenders
	Blackjacks    int
	Busted        bool // Session ended with the bankroll below the table minimum
}

// Statistics tracks aggregate results across simulated sessions
type Statistics struct {
	Sessions int
	Sum      float64
	Sum2     float64   // Sum of squares for variance calculation
	Values   []float64 // Per-session profits for median/percentile calculation

	Rounds       int
	HandsWon     int
	HandsLost    int
	HandsPushed  int
	Blackjacks   int
	Bankruptcies int
	MaxBankroll  int // Largest bankroll observed in any session
}

// Mean returns the arithmetic mean profit per session in dollars
func (s *Statistics) Mean() float64 {
	if s.Sessions == 0 {
		return 0
	}
	return s.Sum / float64(s.Sessions)
}

// Variance returns the sample variance of session profits
func (s *Statistics) Variance() float64 {
	if s.Sessions < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Sessions)*mean*mean) / float64(s.Sessions-1)
}

// StdDev returns the sample standard deviation of session profits
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Sessions == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Sessions))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a session result into the statistics
func (s *Statistics) Add(result SessionResult) {
	profit := result.NetProfit
	s.Sessions++
	s.Sum += profit
	s.Sum2 += profit * profit
	s.Values = append(s.Values, profit)

	s.Rounds += result.Rounds
	s.HandsWon += result.HandsWon
	s.HandsLost += result.HandsLost
	s.HandsPushed += result.HandsPushed
	s.Blackjacks += result.Blackjacks

	if result.Busted {
		s.Bankruptcies++
	}
	if result.MaxBankroll > s.MaxBankroll {
		s.MaxBankroll = result.MaxBankroll
	}
}

// Median returns the median session profit
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the session profit at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// WinRate returns won hands as a fraction of all settled hands
func (s *Statistics) WinRate() float64 {
	settled := s.HandsWon + s.HandsLost + s.HandsPushed
	if settled == 0 {
		return 0
	}
	return float64(s.HandsWon) / float64(settled)
}

// Validate performs consistency checks on the aggregated data
func (s *Statistics) Validate() error {
	if s.Sessions <= 0 {
		return fmt.Errorf("invalid session count: %d", s.Sessions)
	}

	if len(s.Values) != s.Sessions {
		return fmt.Errorf("values array length (%d) does not match session count (%d)",
			len(s.Values), s.Sessions)
	}

	if s.Bankruptcies > s.Sessions {
		return fmt.Errorf("bankruptcies (%d) exceed session count (%d)", s.Bankruptcies, s.Sessions)
	}

	settled := s.HandsWon + s.HandsLost + s.HandsPushed
	if settled < s.Rounds {
		return fmt.Errorf("settled hands (%d) fewer than rounds played (%d)", settled, s.Rounds)
	}

	if s.Blackjacks > s.HandsWon {
		return fmt.Errorf("blackjacks (%d) exceed hands won (%d)", s.Blackjacks, s.HandsWon)
	}

	return nil
}
