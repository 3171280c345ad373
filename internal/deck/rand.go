package deck

import "math/rand/v2"

// NewRNG returns a PCG-backed *rand.Rand derived from a single int64 seed.
// rand/v2 wants two 64-bit words; splitting one seed here keeps every call
// site reproducible from a single flag value.
func NewRNG(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(u, u^0x9e3779b97f4a7c15))
}
