package dynamics

import (
	"fmt"
	"math"
)

// EventType classifies an input event fed to the Modeler.
type EventType int

const (
	// EventDown begins a stroke. It must be the first event and must not
	// repeat.
	EventDown EventType = iota
	// EventMove advances the stroke toward a new raw position.
	EventMove
	// EventUp advances the stroke like a move, then runs the
	// end-of-stroke catch-up loop so the tip settles onto the final
	// position.
	EventUp
)

// Event is one raw input driving the simulation. Attribute values of -1
// mean the input source does not report that attribute.
type Event struct {
	Type     EventType
	Position Vec2
	// Time in seconds since the start of the stroke.
	Time                        float64
	Pressure, Tilt, Orientation float64
}

// Sample is one simulated output of the stroke tip.
type Sample struct {
	Position     Vec2
	Velocity     Vec2
	Acceleration Vec2
	// Time in seconds since the start of the stroke. Catch-up samples
	// extend past the final event's time.
	Time                        float64
	Pressure, Tilt, Orientation float64
}

// LoopMitigationParams configure loop-contraction mitigation: at high
// physical speeds the spring cuts the inside of tight loops, so the
// emitted position is blended toward the raw input as speed rises.
// Speeds are physical (cm/s), which is why mitigation requires a known
// stroke-unit length.
type LoopMitigationParams struct {
	Enabled bool

	// StrokeUnitLength is the physical length of one stroke unit in
	// centimeters; it scales simulated speeds to physical ones.
	StrokeUnitLength float64

	// SpeedLowerBound and SpeedUpperBound bracket the blend, in cm/s.
	SpeedLowerBound, SpeedUpperBound float64

	// StrengthAtLowerBound and StrengthAtUpperBound give the modeled
	// share of the emitted position at each bound: 1 emits the spring
	// position unchanged, 0 emits the raw position.
	StrengthAtLowerBound, StrengthAtUpperBound float64
}

// Params configure a Modeler for one stroke.
type Params struct {
	// SpringMassConstant is the spring constant divided by the mass, in
	// seconds squared.
	SpringMassConstant float64

	// DragConstant damps the tip velocity, in 1/seconds.
	DragConstant float64

	// MinOutputRate is the minimum rate of output samples per second;
	// sparse input is upsampled to maintain it.
	MinOutputRate float64

	// StoppingDistance ends the catch-up loop once the tip is within
	// this distance of the final raw position, in stroke units.
	StoppingDistance float64

	// MaxCatchUpSamples bounds the catch-up loop.
	MaxCatchUpSamples int

	// StylusWindow is the number of raw samples retained for attribute
	// queries.
	StylusWindow int

	LoopMitigation LoopMitigationParams
}

// DefaultParams returns the tuned simulation constants. StoppingDistance
// is zero and must be set by the caller.
func DefaultParams() Params {
	return Params{
		SpringMassConstant: 11.0 / 32400.0,
		DragConstant:       72.0,
		MinOutputRate:      180.0,
		MaxCatchUpSamples:  20,
		StylusWindow:       10,
	}
}

// state is the complete dynamic state of a simulation, copyable for
// checkpointing.
type state struct {
	started      bool
	position     Vec2
	velocity     Vec2
	acceleration Vec2
	time         float64
	anchor       Vec2 // raw position driving the spring
}

// Modeler runs the spring-damper simulation for one stroke.
//
// A Modeler is a single-owner object with no internal synchronization.
type Modeler struct {
	params Params

	st     state
	stylus stylusModeler

	saved       state
	savedStylus stylusModeler
	hasSaved    bool
}

// NewModeler creates a modeler configured by p.
func NewModeler(p Params) *Modeler {
	m := &Modeler{}
	m.Reset(p)
	return m
}

// Reset discards all stroke state and reconfigures the modeler.
func (m *Modeler) Reset(p Params) {
	m.params = p
	m.st = state{}
	m.stylus = stylusModeler{window: p.StylusWindow}
	m.saved = state{}
	m.savedStylus = stylusModeler{}
	m.hasSaved = false
}

// Save checkpoints the complete simulation state. A later Restore rolls
// back to it; updates between the two are discarded.
func (m *Modeler) Save() {
	m.saved = m.st
	m.savedStylus = m.stylus.clone()
	m.hasSaved = true
}

// Restore rolls the simulation back to the last checkpoint. The
// checkpoint remains valid, so repeated speculative updates can each be
// rolled back to the same point. No-op without a checkpoint.
func (m *Modeler) Restore() {
	if !m.hasSaved {
		return
	}
	m.st = m.saved
	m.stylus = m.savedStylus.clone()
}

// Update feeds one event and returns the samples it produces. Down
// events produce one sample; move and up events produce at least one
// sample per elapsed 1/MinOutputRate, and up events append catch-up
// samples until the tip settles or the iteration budget runs out.
//
// Panics on a protocol violation (down on a started stroke, move/up on
// an unstarted one); event ordering is the caller's contract.
func (m *Modeler) Update(ev Event) []Sample {
	switch ev.Type {
	case EventDown:
		if m.st.started {
			panic("dynamics: down event on a started stroke")
		}
		m.st = state{
			started:  true,
			position: ev.Position,
			time:     ev.Time,
			anchor:   ev.Position,
		}
		m.stylus.add(ev.Position, ev.Pressure, ev.Tilt, ev.Orientation)
		return []Sample{m.sample(ev.Position)}

	case EventMove:
		if !m.st.started {
			panic("dynamics: move event before down")
		}
		m.stylus.add(ev.Position, ev.Pressure, ev.Tilt, ev.Orientation)
		return m.advance(ev)

	case EventUp:
		if !m.st.started {
			panic("dynamics: up event before down")
		}
		m.stylus.add(ev.Position, ev.Pressure, ev.Tilt, ev.Orientation)
		out := m.advance(ev)
		return append(out, m.catchUp()...)

	default:
		panic(fmt.Sprintf("dynamics: unknown event type %d", ev.Type))
	}
}

// advance steps the spring from the current state to the event,
// upsampling so the output rate does not fall below MinOutputRate. The
// anchor is interpolated linearly between the previous and new raw
// positions across the sub-steps.
func (m *Modeler) advance(ev Event) []Sample {
	dtTotal := ev.Time - m.st.time
	n := 1
	if dtTotal > 0 {
		n = int(math.Ceil(dtTotal * m.params.MinOutputRate))
		if n < 1 {
			n = 1
		}
	}
	prevAnchor := m.st.anchor
	startTime := m.st.time
	out := make([]Sample, 0, n)
	for k := 1; k <= n; k++ {
		frac := float64(k) / float64(n)
		anchor := prevAnchor.Lerp(ev.Position, frac)
		m.step(anchor, dtTotal/float64(n))
		m.st.time = startTime + dtTotal*frac
		m.st.anchor = anchor
		out = append(out, m.sample(anchor))
	}
	return out
}

// catchUp lets the tip settle onto the final anchor after an up event,
// emitting samples at the minimum output rate until the tip is within
// the stopping distance or the budget is exhausted.
func (m *Modeler) catchUp() []Sample {
	dt := 1 / m.params.MinOutputRate
	var out []Sample
	for range m.params.MaxCatchUpSamples {
		if m.st.position.Distance(m.st.anchor) <= m.params.StoppingDistance {
			break
		}
		m.step(m.st.anchor, dt)
		m.st.time += dt
		out = append(out, m.sample(m.st.anchor))
	}
	return out
}

// step advances the spring-damper dynamics by dt toward anchor.
func (m *Modeler) step(anchor Vec2, dt float64) {
	m.st.acceleration = anchor.Sub(m.st.position).
		Scale(1 / m.params.SpringMassConstant).
		Sub(m.st.velocity.Scale(m.params.DragConstant))
	m.st.velocity = m.st.velocity.Add(m.st.acceleration.Scale(dt))
	m.st.position = m.st.position.Add(m.st.velocity.Scale(dt))
}

// sample emits the current state as an output sample. The emitted
// position is blended toward the raw anchor when loop-contraction
// mitigation engages; the internal state keeps the pure spring position.
func (m *Modeler) sample(anchor Vec2) Sample {
	pos := m.st.position
	if lm := m.params.LoopMitigation; lm.Enabled {
		strength := lm.strengthAt(m.st.velocity.Length() * lm.StrokeUnitLength)
		pos = anchor.Lerp(pos, strength)
	}
	pressure, tilt, orientation := m.stylus.query(pos)
	return Sample{
		Position:     pos,
		Velocity:     m.st.velocity,
		Acceleration: m.st.acceleration,
		Time:         m.st.time,
		Pressure:     pressure,
		Tilt:         tilt,
		Orientation:  orientation,
	}
}

// strengthAt maps a physical speed to the modeled share of the emitted
// position.
func (lm LoopMitigationParams) strengthAt(speed float64) float64 {
	switch {
	case speed <= lm.SpeedLowerBound:
		return lm.StrengthAtLowerBound
	case speed >= lm.SpeedUpperBound:
		return lm.StrengthAtUpperBound
	default:
		frac := (speed - lm.SpeedLowerBound) / (lm.SpeedUpperBound - lm.SpeedLowerBound)
		return lm.StrengthAtLowerBound + (lm.StrengthAtUpperBound-lm.StrengthAtLowerBound)*frac
	}
}
