package ink

import (
	"fmt"
	"time"
)

// StrokeInputModeler converts raw stroke input into modeled input for
// rendering. It owns one modeling strategy per stroke, selected by the
// InputModel passed to StartStroke, and maintains the streaming contract:
// each ExtendStroke call discards the previous call's unstable modeled
// inputs and recomputes them, while modeled inputs that have become
// stable are never altered again.
//
// A StrokeInputModeler is a single-owner object; callers must serialize
// all access to one stroke's modeler. The zero value is ready for
// StartStroke.
type StrokeInputModeler struct {
	strategy inputModelStrategy
}

// inputModelStrategy is the capability every modeling strategy
// implements. Strategies own their modeled output and state, exposed
// through the shared core.
type inputModelStrategy interface {
	extendStroke(real, predicted StrokeInputBatch, currentElapsedTime time.Duration)
	core() *strategyCore
}

// StartStroke resets the modeler and begins a new stroke using the given
// model. brushEpsilon is the smallest stroke-space distance considered
// visually distinct; it bounds modeled output density and serves as the
// spring model's end-of-stroke stopping distance.
//
// Panics if brushEpsilon is not positive or the model is not one of the
// InputModel variants; both are caller bugs, not recoverable input
// errors.
func (m *StrokeInputModeler) StartStroke(model InputModel, brushEpsilon float64) {
	if !(brushEpsilon > 0) {
		panic(fmt.Sprintf("ink: brush epsilon must be positive, got %v", brushEpsilon))
	}
	switch mdl := model.(type) {
	case SpringModel:
		m.strategy = newSpringStrategy(brushEpsilon, false)
	case ExperimentalRawPositionModel:
		m.strategy = newSpringStrategy(brushEpsilon, true)
	case ExperimentalNaiveModel:
		m.strategy = newNaiveStrategy()
	case ExperimentalSlidingWindowModel:
		if mdl.WindowSize <= 0 {
			panic(fmt.Sprintf("ink: sliding window size must be positive, got %v", mdl.WindowSize))
		}
		m.strategy = newSlidingWindowStrategy(mdl.WindowSize)
	default:
		panic(fmt.Sprintf("ink: unknown input model %T", model))
	}
}

// ExtendStroke feeds the next frame of input to the stroke. real holds
// samples that actually occurred and predicted holds speculative future
// samples; either batch may be empty. Predicted-derived modeled inputs
// are always discarded and fully recomputed on the next call.
//
// currentElapsedTime denotes "now" and lower-bounds the complete elapsed
// time in the resulting state. Inputs may be timestamped in the future
// relative to it, as predicted input usually is.
//
// Callers must pre-validate both batches via the StrokeInputBatch
// contract; the modeler performs no full-sequence re-validation. Panics
// if StartStroke has not been called, or after FinishInputs.
func (m *StrokeInputModeler) ExtendStroke(real, predicted StrokeInputBatch, currentElapsedTime time.Duration) {
	if m.strategy == nil {
		panic("ink: ExtendStroke called before StartStroke")
	}
	if m.strategy.core().st.InputsFinished {
		panic("ink: ExtendStroke called after FinishInputs")
	}
	m.strategy.extendStroke(real, predicted, currentElapsedTime)
}

// FinishInputs declares the stroke's input sequence complete. Further
// ExtendStroke calls panic until the next StartStroke. Panics if
// StartStroke has not been called.
func (m *StrokeInputModeler) FinishInputs() {
	if m.strategy == nil {
		panic("ink: FinishInputs called before StartStroke")
	}
	m.strategy.core().st.InputsFinished = true
}

// State returns a snapshot of the stroke's modeling state. Before
// StartStroke it returns the zero state.
func (m *StrokeInputModeler) State() ModelerState {
	if m.strategy == nil {
		return ModelerState{}
	}
	return m.strategy.core().st
}

// ModeledInputs returns the stroke's modeled inputs. The prefix of length
// State().StableInputCount is guaranteed never to change again during the
// stroke; the remainder may be recomputed by the next ExtendStroke call.
// The returned slice is a read-only view owned by the modeler.
func (m *StrokeInputModeler) ModeledInputs() []ModeledStrokeInput {
	if m.strategy == nil {
		return nil
	}
	return m.strategy.core().modeled
}

// strategyCore holds the state and modeled output shared by all
// strategies, along with the bookkeeping every strategy performs in the
// same way.
type strategyCore struct {
	st      ModelerState
	modeled []ModeledStrokeInput
}

func (c *strategyCore) core() *strategyCore { return c }

// truncateToStable discards the unstable modeled suffix left by the
// previous extension.
func (c *strategyCore) truncateToStable() {
	c.modeled = c.modeled[:c.st.StableInputCount]
}

// noteFormat records the stroke-wide format carried by the first
// non-empty batch of the stroke.
func (c *strategyCore) noteFormat(b *StrokeInputBatch) {
	if c.st.ToolType != ToolTypeUnknown || c.st.StrokeUnitLength.Present() || len(c.modeled) > 0 {
		return
	}
	if b.IsEmpty() {
		return
	}
	c.st.ToolType = b.ToolType()
	c.st.StrokeUnitLength = b.StrokeUnitLength()
}

// appendModeled adds one modeled input, extending the cumulative
// traveled distance from its predecessor.
func (c *strategyCore) appendModeled(in ModeledStrokeInput) {
	if n := len(c.modeled); n > 0 {
		prev := c.modeled[n-1]
		in.TraveledDistance = prev.TraveledDistance + prev.Position.Distance(in.Position)
	} else {
		in.TraveledDistance = 0
	}
	c.modeled = append(c.modeled, in)
}

// markRealProcessed snapshots the real-only metrics after all modeled
// inputs derived from real raw input have been produced for this call.
func (c *strategyCore) markRealProcessed() {
	c.st.RealInputCount = len(c.modeled)
	if n := len(c.modeled); n > 0 {
		c.st.TotalRealElapsedTime = c.modeled[n-1].ElapsedTime
		c.st.TotalRealDistance = c.modeled[n-1].TraveledDistance
	}
}

// markCompleteProcessed recomputes the complete metrics after predicted
// input has been processed. Both are derived from this call's modeled
// inputs alone, so a discarded prediction's far-future timestamp cannot
// survive its own replacement; currentElapsedTime lower-bounds the
// complete elapsed time.
func (c *strategyCore) markCompleteProcessed(currentElapsedTime time.Duration) {
	elapsed := currentElapsedTime
	if n := len(c.modeled); n > 0 {
		if t := c.modeled[n-1].ElapsedTime; t > elapsed {
			elapsed = t
		}
		c.st.CompleteTraveledDistance = c.modeled[n-1].TraveledDistance
	}
	c.st.CompleteElapsedTime = elapsed
}

// modelPassThrough appends a modeled input that carries the raw sample
// through unmodeled, with velocity and acceleration from a single
// backward finite difference against the preceding modeled input.
func (c *strategyCore) modelPassThrough(in StrokeInput) {
	m := ModeledStrokeInput{
		Position:    in.Position,
		ElapsedTime: in.ElapsedTime,
		Pressure:    attrOr(in.Pressure),
		Tilt:        attrOr(in.Tilt),
		Orientation: attrOr(in.Orientation),
	}
	if n := len(c.modeled); n > 0 {
		prev := c.modeled[n-1]
		// Zero derivatives when time does not advance; a finite
		// difference over a zero interval has no meaning.
		if dt := (in.ElapsedTime - prev.ElapsedTime).Seconds(); dt > 0 {
			m.Velocity = in.Position.Sub(prev.Position).Div(dt)
			m.Acceleration = m.Velocity.Sub(prev.Velocity).Div(dt)
		}
	}
	c.appendModeled(m)
}

// attrOr returns the attribute value for modeled output: the raw value
// when present, -1 when the stroke's format lacks the attribute.
func attrOr(o Optional) float64 {
	return o.Or(-1)
}
