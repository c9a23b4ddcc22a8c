package ink

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/integrate"
)

// slidingWindowStrategy replaces each raw sample by the time-weighted
// average of the raw signal over a window of fixed duration centered on
// the sample's timestamp, clamped to the extent of buffered data.
//
// The strategy keeps a rolling raw-input buffer: predicted samples are
// dropped at the end of every extension (they are speculative and fully
// replaced on the next call), and stable samples are dropped once no
// remaining or future window can reach them. A sample becomes stable
// once its look-ahead half-window no longer extends past the last known
// real timestamp, at which point future real input cannot change its
// average.
type slidingWindowStrategy struct {
	strategyCore
	halfWindow time.Duration

	buf          StrokeInputBatch // rolling raw buffer
	trimmed      int              // raw samples dropped from the front of buf
	realCount    int              // real raw samples seen over the stroke
	lastRealTime time.Duration
	haveReal     bool
}

func newSlidingWindowStrategy(windowSize time.Duration) *slidingWindowStrategy {
	return &slidingWindowStrategy{halfWindow: windowSize / 2}
}

func (s *slidingWindowStrategy) extendStroke(real, predicted StrokeInputBatch, currentElapsedTime time.Duration) {
	s.truncateToStable()
	s.noteFormat(&real)
	s.noteFormat(&predicted)

	if err := s.buf.AppendBatch(real); err != nil {
		panic(fmt.Sprintf("ink: real inputs do not extend the stroke: %v", err))
	}
	s.realCount += real.Size()
	if !real.IsEmpty() {
		s.lastRealTime = real.Last().ElapsedTime
		s.haveReal = true
	}
	if err := s.buf.AppendBatch(predicted); err != nil {
		panic(fmt.Sprintf("ink: predicted inputs do not extend the stroke: %v", err))
	}

	total := s.trimmed + s.buf.Size()
	first := len(s.modeled)
	if first < total {
		s.modelPositions(first, total)
		s.modelDerivatives(first, total)
	}

	// Advance the stable prefix. Only real-derived samples can become
	// stable; predicted ones are replaced wholesale next call.
	stable := s.st.StableInputCount
	for i := stable; i < s.realCount; i++ {
		if s.modeled[i].ElapsedTime+s.halfWindow > s.lastRealTime {
			break
		}
		stable = i + 1
	}
	s.st.StableInputCount = stable

	s.st.RealInputCount = s.realCount
	if s.realCount > 0 {
		last := s.modeled[s.realCount-1]
		s.st.TotalRealElapsedTime = last.ElapsedTime
		s.st.TotalRealDistance = last.TraveledDistance
	}
	s.markCompleteProcessed(currentElapsedTime)

	s.trimBuffer(total)
}

// modelPositions computes windowed positions and attributes for modeled
// indices [first, total). Orientation is averaged as a circular mean so
// wraparound near 0/2π does not corrupt the result.
func (s *slidingWindowStrategy) modelPositions(first, total int) {
	n := s.buf.Size()
	ts := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	var ps, tl, oc, os []float64
	if s.buf.HasPressure() {
		ps = make([]float64, n)
	}
	if s.buf.HasTilt() {
		tl = make([]float64, n)
	}
	if s.buf.HasOrientation() {
		oc = make([]float64, n)
		os = make([]float64, n)
	}
	for i, in := range s.buf.All() {
		ts[i] = in.ElapsedTime.Seconds()
		xs[i] = in.Position.X
		ys[i] = in.Position.Y
		if ps != nil {
			ps[i] = in.Pressure.Value()
		}
		if tl != nil {
			tl[i] = in.Tilt.Value()
		}
		if oc != nil {
			oc[i] = math.Cos(in.Orientation.Value())
			os[i] = math.Sin(in.Orientation.Value())
		}
	}

	half := s.halfWindow.Seconds()
	for g := first; g < total; g++ {
		raw := s.buf.Get(g - s.trimmed)
		t := raw.ElapsedTime.Seconds()
		start, end := t-half, t+half
		m := ModeledStrokeInput{
			ElapsedTime: raw.ElapsedTime,
			Position: Pt(
				windowAverage(ts, xs, start, end, raw.Position.X),
				windowAverage(ts, ys, start, end, raw.Position.Y),
			),
			Pressure:    -1,
			Tilt:        -1,
			Orientation: -1,
		}
		if ps != nil {
			m.Pressure = windowAverage(ts, ps, start, end, raw.Pressure.Value())
		}
		if tl != nil {
			m.Tilt = windowAverage(ts, tl, start, end, raw.Tilt.Value())
		}
		if oc != nil {
			m.Orientation = circularMean(
				windowAverage(ts, oc, start, end, math.Cos(raw.Orientation.Value())),
				windowAverage(ts, os, start, end, math.Sin(raw.Orientation.Value())),
				raw.Orientation.Value(),
			)
		}
		s.appendModeled(m)
	}
}

// modelDerivatives computes velocity and acceleration for modeled
// indices [first, total) as the average rate of change of the modeled
// position (resp. velocity) across the sample's window, interpolating
// linearly at window edges.
func (s *slidingWindowStrategy) modelDerivatives(first, total int) {
	n := len(s.modeled)
	ts := make([]float64, n)
	px := make([]float64, n)
	py := make([]float64, n)
	for i, m := range s.modeled {
		ts[i] = m.ElapsedTime.Seconds()
		px[i] = m.Position.X
		py[i] = m.Position.Y
	}

	half := s.halfWindow.Seconds()
	for i := first; i < total; i++ {
		t := ts[i]
		s.modeled[i].Velocity = windowRate(ts, px, py, t-half, t+half)
	}

	vx := make([]float64, n)
	vy := make([]float64, n)
	for i, m := range s.modeled {
		vx[i] = m.Velocity.X
		vy[i] = m.Velocity.Y
	}
	for i := first; i < total; i++ {
		t := ts[i]
		s.modeled[i].Acceleration = windowRate(ts, vx, vy, t-half, t+half)
	}
}

// trimBuffer drops predicted raw samples and any stable raw samples that
// no longer contribute to a remaining or future window. total is the
// global raw count including this call's predicted samples.
func (s *slidingWindowStrategy) trimBuffer(total int) {
	if predicted := total - s.realCount; predicted > 0 {
		s.buf.Erase(s.realCount-s.trimmed, predicted)
	}
	if !s.haveReal {
		return
	}
	tMin := s.lastRealTime - s.halfWindow
	if s.st.StableInputCount < s.realCount {
		tMin = s.modeled[s.st.StableInputCount].ElapsedTime - s.halfWindow
	}
	// Keep the newest sample at or before the window start; it anchors
	// edge interpolation.
	drop := 0
	for drop+1 < s.buf.Size() && s.buf.Get(drop+1).ElapsedTime <= tMin {
		drop++
	}
	if drop > 0 {
		s.buf.Erase(0, drop)
		s.trimmed += drop
		Logger().Debug("ink: trimmed sliding window buffer",
			"dropped", drop, "remaining", s.buf.Size())
	}
}

// windowAverage returns the time-weighted average of the sampled signal
// (ts, vs) over [start, end], clamped to the sampled extent, using
// trapezoidal integration with linear interpolation at the window edges.
// fallback is returned when the clamped window is degenerate.
func windowAverage(ts, vs []float64, start, end, fallback float64) float64 {
	if start < ts[0] {
		start = ts[0]
	}
	if last := ts[len(ts)-1]; end > last {
		end = last
	}
	if end <= start {
		return fallback
	}
	xs := []float64{start}
	ws := []float64{interpAt(ts, vs, start)}
	for k := range ts {
		if ts[k] > start && ts[k] < end {
			xs = append(xs, ts[k])
			ws = append(ws, vs[k])
		}
	}
	xs = append(xs, end)
	ws = append(ws, interpAt(ts, vs, end))
	return integrate.Trapezoidal(xs, ws) / (end - start)
}

// windowRate returns the average rate of change of the sampled 2D signal
// over [start, end], clamped to the sampled extent.
func windowRate(ts, xs, ys []float64, start, end float64) Point {
	if start < ts[0] {
		start = ts[0]
	}
	if last := ts[len(ts)-1]; end > last {
		end = last
	}
	if end <= start {
		return Point{}
	}
	delta := Pt(
		interpAt(ts, xs, end)-interpAt(ts, xs, start),
		interpAt(ts, ys, end)-interpAt(ts, ys, start),
	)
	return delta.Div(end - start)
}

// interpAt evaluates the piecewise-linear signal (ts, vs) at time t.
// t outside the sampled extent clamps to the boundary values.
func interpAt(ts, vs []float64, t float64) float64 {
	idx := sort.SearchFloat64s(ts, t)
	if idx >= len(ts) {
		return vs[len(vs)-1]
	}
	if ts[idx] == t || idx == 0 {
		return vs[idx]
	}
	dt := ts[idx] - ts[idx-1]
	if dt <= 0 {
		return vs[idx]
	}
	frac := (t - ts[idx-1]) / dt
	return vs[idx-1] + (vs[idx]-vs[idx-1])*frac
}

// circularMean converts averaged unit-vector components back to an angle
// in [0, 2π). fallback is used when the averaged vector is too short to
// carry a direction.
func circularMean(c, s, fallback float64) float64 {
	if math.Hypot(c, s) < 1e-12 {
		return fallback
	}
	a := math.Atan2(s, c)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
