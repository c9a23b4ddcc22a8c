package ink

import "time"

// naiveStrategy passes raw inputs through with trivial local
// derivatives: velocity and acceleration come from a single backward
// finite difference against the immediately preceding modeled input.
// Real inputs are stable the moment they are processed; predicted inputs
// are always unstable and fully recomputed on each call.
type naiveStrategy struct {
	strategyCore
}

func newNaiveStrategy() *naiveStrategy {
	return &naiveStrategy{}
}

func (s *naiveStrategy) extendStroke(real, predicted StrokeInputBatch, currentElapsedTime time.Duration) {
	s.truncateToStable()
	s.noteFormat(&real)
	s.noteFormat(&predicted)

	for _, in := range real.All() {
		s.modelPassThrough(in)
	}
	s.st.StableInputCount = len(s.modeled)
	s.markRealProcessed()

	for _, in := range predicted.All() {
		s.modelPassThrough(in)
	}
	s.markCompleteProcessed(currentElapsedTime)
}
