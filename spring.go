package ink

import (
	"time"

	"github.com/gogpu/ink/internal/dynamics"
)

// Loop-contraction mitigation engages between these physical speeds.
// At the lower bound the emitted position is the pure spring position;
// at the upper bound most of the raw position shows through, keeping
// fast loops from contracting.
const (
	loopMitigationSpeedLower    = 5.0  // cm/s
	loopMitigationSpeedUpper    = 25.0 // cm/s
	loopMitigationStrengthLower = 1.0
	loopMitigationStrengthUpper = 0.3
)

// springStrategy drives the spring-damper simulation in
// internal/dynamics and maintains the stable/unstable split on top of
// its checkpoint protocol.
//
// The simulator's persistent state always reflects every real input
// except the stroke's most recent one. That last real input is carried
// and re-fed speculatively each call — as an end-of-stroke lift event
// when no predicted input follows, so the simulated tip catches up to
// the true latest position — under a Save/Restore pair, together with
// all predicted inputs. Samples produced by permanent feeds are stable;
// samples produced inside the speculative region are recomputed on
// every call.
//
// In raw-position mode (ExperimentalRawPositionModel) the simulation is
// bypassed: accepted inputs pass through with finite-difference
// derivatives, while the coalescing, event ordering and stability
// bookkeeping stay identical.
type springStrategy struct {
	strategyCore
	brushEpsilon float64
	rawPosition  bool

	sim *dynamics.Modeler

	feed springFeedState

	carried     StrokeInput // most recent real input, not yet fed permanently
	haveCarried bool
}

// springFeedState is the part of the feeding state that speculative
// processing mutates; it is snapshotted alongside the simulator
// checkpoint.
type springFeedState struct {
	started      bool  // a down event has been fed
	haveAccepted bool
	lastAccepted Point // coalescing reference
}

func newSpringStrategy(brushEpsilon float64, rawPosition bool) *springStrategy {
	return &springStrategy{brushEpsilon: brushEpsilon, rawPosition: rawPosition}
}

func (s *springStrategy) extendStroke(real, predicted StrokeInputBatch, currentElapsedTime time.Duration) {
	s.truncateToStable()
	s.noteFormat(&real)
	s.noteFormat(&predicted)

	newReal := collectInputs(real)
	predInputs := collectInputs(predicted)

	// Permanent region: once a real input has successors, it can never
	// be re-fed, so its samples are stable for the stroke's lifetime.
	if len(newReal) > 0 {
		if s.haveCarried {
			s.feedInput(s.carried, dynamics.EventMove)
		}
		for _, in := range newReal[:len(newReal)-1] {
			s.feedInput(in, dynamics.EventMove)
		}
		s.carried = newReal[len(newReal)-1]
		s.haveCarried = true
	}
	s.st.StableInputCount = len(s.modeled)

	// Speculative region: checkpoint, model the unstable tail, rewind.
	// The simulator must exist before the checkpoint, or a first-ever
	// input fed speculatively would survive the rewind.
	if !s.rawPosition && s.sim == nil && (s.haveCarried || len(predInputs) > 0) {
		s.sim = dynamics.NewModeler(s.simParams())
	}
	if s.sim != nil {
		s.sim.Save()
	}
	savedFeed := s.feed

	if s.haveCarried {
		ev := dynamics.EventMove
		if len(predInputs) == 0 {
			ev = dynamics.EventUp
		}
		s.feedInput(s.carried, ev)
	}
	s.markRealProcessed()

	for i, in := range predInputs {
		ev := dynamics.EventMove
		if i == len(predInputs)-1 {
			ev = dynamics.EventUp
		}
		s.feedInput(in, ev)
	}
	s.markCompleteProcessed(currentElapsedTime)

	if s.sim != nil {
		s.sim.Restore()
	}
	s.feed = savedFeed

	Logger().Debug("ink: extended spring-modeled stroke",
		"modeled", len(s.modeled),
		"stable", s.st.StableInputCount,
		"real", s.st.RealInputCount)
}

// feedInput feeds one raw input, coalescing sub-epsilon movement. The
// stroke's first-ever input is always a down event regardless of the
// requested type.
func (s *springStrategy) feedInput(in StrokeInput, ev dynamics.EventType) {
	if s.feed.haveAccepted && in.Position.Distance(s.feed.lastAccepted) < s.brushEpsilon {
		return
	}
	if !s.feed.started {
		ev = dynamics.EventDown
	}
	if s.rawPosition {
		s.modelPassThrough(in)
	} else {
		if s.sim == nil {
			s.sim = dynamics.NewModeler(s.simParams())
		}
		for _, sample := range s.sim.Update(s.event(in, ev)) {
			s.appendModeled(ModeledStrokeInput{
				Position:     Pt(sample.Position.X, sample.Position.Y),
				Velocity:     Pt(sample.Velocity.X, sample.Velocity.Y),
				Acceleration: Pt(sample.Acceleration.X, sample.Acceleration.Y),
				ElapsedTime:  durationFromSeconds(sample.Time),
				Pressure:     sample.Pressure,
				Tilt:         sample.Tilt,
				Orientation:  sample.Orientation,
			})
		}
	}
	s.feed.started = true
	s.feed.haveAccepted = true
	s.feed.lastAccepted = in.Position
}

// simParams configures the simulation for this stroke: minimum output
// rate and spring constants from the tuned defaults, the brush epsilon
// as stopping distance, and loop-contraction mitigation only when the
// stroke-unit length is known, since mitigation thresholds are physical
// speeds.
func (s *springStrategy) simParams() dynamics.Params {
	p := dynamics.DefaultParams()
	p.StoppingDistance = s.brushEpsilon
	if unitLength, ok := s.st.StrokeUnitLength.Get(); ok {
		p.LoopMitigation = dynamics.LoopMitigationParams{
			Enabled:              true,
			StrokeUnitLength:     unitLength,
			SpeedLowerBound:      loopMitigationSpeedLower,
			SpeedUpperBound:      loopMitigationSpeedUpper,
			StrengthAtLowerBound: loopMitigationStrengthLower,
			StrengthAtUpperBound: loopMitigationStrengthUpper,
		}
	}
	return p
}

func (s *springStrategy) event(in StrokeInput, t dynamics.EventType) dynamics.Event {
	return dynamics.Event{
		Type:        t,
		Position:    dynamics.Vec2{X: in.Position.X, Y: in.Position.Y},
		Time:        in.ElapsedTime.Seconds(),
		Pressure:    attrOr(in.Pressure),
		Tilt:        attrOr(in.Tilt),
		Orientation: attrOr(in.Orientation),
	}
}

func collectInputs(b StrokeInputBatch) []StrokeInput {
	if b.IsEmpty() {
		return nil
	}
	out := make([]StrokeInput, 0, b.Size())
	for _, in := range b.All() {
		out = append(out, in)
	}
	return out
}
