// Package matcher implements nearest-neighbor face matching against the
// enrolled candidate list.
package matcher

import (
	"context"
	"fmt"

	"github.com/hajiri-labs/hajiri/internal/facestore"
	"github.com/hajiri-labs/hajiri/internal/provider"
)

// DefaultTolerance is the dlib-style Euclidean distance cutoff: the nearest
// candidate is accepted only when its distance is at or below this value.
const DefaultTolerance = 0.60

// Outcome classifies a match attempt
type Outcome int

const (
	// OutcomeMatched means the nearest candidate was within tolerance
	OutcomeMatched Outcome = iota
	// OutcomeUnknown means the nearest candidate was too far away
	OutcomeUnknown
	// OutcomeNoCandidates means nothing is enrolled yet
	OutcomeNoCandidates
)

// Result is the outcome of matching one probe vector
type Result struct {
	Outcome  Outcome
	Label    string
	Distance float64
}

// Matcher scans a candidate list with the provider's distance function
type Matcher struct {
	provider  provider.FaceProvider
	tolerance float64
}

func New(p provider.FaceProvider, tolerance float64) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Matcher{provider: p, tolerance: tolerance}
}

// Tolerance returns the configured acceptance cutoff
func (m *Matcher) Tolerance() float64 {
	return m.tolerance
}

// Match finds the candidate nearest to probe. With an empty candidate list it
// short-circuits to OutcomeNoCandidates without touching the distance
// function. On equal minimum distances the first candidate encountered wins;
// candidate order follows the enrollment directory scan, and this
// nondeterminism is accepted rather than stabilized.
func (m *Matcher) Match(ctx context.Context, probe []float64, candidates []facestore.EnrolledFace) (Result, error) {
	if len(candidates) == 0 {
		return Result{Outcome: OutcomeNoCandidates}, nil
	}

	best := -1
	bestDist := 0.0
	for i, candidate := range candidates {
		dist, err := m.provider.Distance(ctx, candidate.Embedding, probe)
		if err != nil {
			return Result{}, fmt.Errorf("distance to %s: %w", candidate.Label, err)
		}
		if best == -1 || dist < bestDist {
			best, bestDist = i, dist
		}
	}

	if bestDist > m.tolerance {
		return Result{Outcome: OutcomeUnknown, Distance: bestDist}, nil
	}

	return Result{
		Outcome:  OutcomeMatched,
		Label:    candidates[best].Label,
		Distance: bestDist,
	}, nil
}
