package simulation

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSeed is the seed the historical backtests were produced with.
const DefaultSeed uint64 = 15

// Normals is a source of standard normal draws.
type Normals interface {
	Next() float64
}

// Stream is an explicitly owned, seeded standard normal generator. It is not
// safe for concurrent use; each goroutine owns its own Stream.
type Stream struct {
	normal distuv.Normal
}

// NewStream returns a stream seeded with seed. Two streams with the same seed
// produce the same sequence.
func NewStream(seed uint64) *Stream {
	return &Stream{normal: distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}}
}

// Next returns the next standard normal draw.
func (s *Stream) Next() float64 { return s.normal.Rand() }

// Policy selects how draws are shared between iterations.
type Policy string

const (
	// PolicyShared consumes one stream for the whole run in a fixed global
	// order: iteration-major, then row-major, 12 draws per row.
	PolicyShared Policy = "shared"
	// PolicySubstream gives each iteration its own stream seeded from the run
	// seed and the iteration index, so iterations can run in parallel.
	PolicySubstream Policy = "substream"
)

// ParsePolicy maps a config string to a Policy. Empty means PolicyShared.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyShared:
		return PolicyShared, nil
	case PolicySubstream:
		return PolicySubstream, nil
	default:
		return "", fmt.Errorf("unsupported stream policy: %q", s)
	}
}

// SubstreamSeed derives the seed of iteration's stream with a splitmix64
// finalizer, so neighbouring iterations get unrelated sequences.
func SubstreamSeed(seed uint64, iteration int) uint64 {
	z := seed + uint64(iteration)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
