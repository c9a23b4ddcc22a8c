package dynamics

import (
	"math"
	"slices"
)

// stylusSample is one raw input retained for attribute queries.
type stylusSample struct {
	position                    Vec2
	pressure, tilt, orientation float64
}

// stylusModeler derives pressure, tilt and orientation for modeled
// positions. The simulated tip lags the raw input, so a modeled position
// generally falls between raw samples; the modeler projects it onto the
// polyline of recent raw positions and interpolates the attributes of
// the nearest segment.
type stylusModeler struct {
	window  int
	samples []stylusSample
}

// add retains a raw sample, dropping the oldest beyond the window.
func (m *stylusModeler) add(position Vec2, pressure, tilt, orientation float64) {
	m.samples = append(m.samples, stylusSample{
		position:    position,
		pressure:    pressure,
		tilt:        tilt,
		orientation: orientation,
	})
	if len(m.samples) > m.window {
		m.samples = m.samples[1:]
	}
}

// query returns interpolated attributes for a modeled position. Absent
// attributes (carried as -1) stay -1.
func (m *stylusModeler) query(pos Vec2) (pressure, tilt, orientation float64) {
	switch len(m.samples) {
	case 0:
		return -1, -1, -1
	case 1:
		s := m.samples[0]
		return s.pressure, s.tilt, s.orientation
	}

	bestDist := math.Inf(1)
	bestIdx := 0
	bestFrac := 0.0
	for i := 0; i+1 < len(m.samples); i++ {
		a, b := m.samples[i].position, m.samples[i+1].position
		frac := projectOntoSegment(a, b, pos)
		d := pos.Distance(a.Lerp(b, frac))
		if d < bestDist {
			bestDist = d
			bestIdx = i
			bestFrac = frac
		}
	}

	a, b := m.samples[bestIdx], m.samples[bestIdx+1]
	return lerpAttr(a.pressure, b.pressure, bestFrac),
		lerpAttr(a.tilt, b.tilt, bestFrac),
		lerpAngle(a.orientation, b.orientation, bestFrac)
}

// clone returns an independent copy for checkpointing.
func (m *stylusModeler) clone() stylusModeler {
	return stylusModeler{window: m.window, samples: slices.Clone(m.samples)}
}

// projectOntoSegment returns the parameter in [0, 1] of the point on
// segment ab closest to p.
func projectOntoSegment(a, b, p Vec2) float64 {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den == 0 {
		return 0
	}
	t := p.Sub(a).Dot(ab) / den
	return math.Max(0, math.Min(1, t))
}

// lerpAttr interpolates an attribute, propagating absence.
func lerpAttr(a, b, t float64) float64 {
	if a < 0 || b < 0 {
		return -1
	}
	return a + (b-a)*t
}

// lerpAngle interpolates an angle along the shortest arc, normalized to
// [0, 2π). Absence propagates.
func lerpAngle(a, b, t float64) float64 {
	if a < 0 || b < 0 {
		return -1
	}
	diff := math.Mod(b-a, 2*math.Pi)
	if diff > math.Pi {
		diff -= 2 * math.Pi
	} else if diff < -math.Pi {
		diff += 2 * math.Pi
	}
	angle := math.Mod(a+diff*t, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}
