package dynamics

import (
	"math"
	"testing"
)

func testParams() Params {
	p := DefaultParams()
	p.StoppingDistance = 0.01
	return p
}

func TestModeler_DownEmitsAnchor(t *testing.T) {
	m := NewModeler(testParams())
	out := m.Update(Event{Type: EventDown, Position: Vec2{X: 3, Y: 4}, Time: 0, Pressure: 0.5, Tilt: -1, Orientation: -1})

	if len(out) != 1 {
		t.Fatalf("down produced %d samples, want 1", len(out))
	}
	if out[0].Position != (Vec2{X: 3, Y: 4}) {
		t.Errorf("down sample position = %v, want (3, 4)", out[0].Position)
	}
	if out[0].Velocity != (Vec2{}) {
		t.Errorf("down sample velocity = %v, want zero", out[0].Velocity)
	}
	if out[0].Pressure != 0.5 {
		t.Errorf("down sample pressure = %v, want 0.5", out[0].Pressure)
	}
	if out[0].Tilt != -1 || out[0].Orientation != -1 {
		t.Errorf("absent attributes not propagated as -1: tilt %v orientation %v", out[0].Tilt, out[0].Orientation)
	}
}

func TestModeler_MoveUpsamples(t *testing.T) {
	m := NewModeler(testParams())
	m.Update(Event{Type: EventDown, Position: Vec2{}, Time: 0, Pressure: -1, Tilt: -1, Orientation: -1})
	out := m.Update(Event{Type: EventMove, Position: Vec2{X: 1}, Time: 0.1, Pressure: -1, Tilt: -1, Orientation: -1})

	// 0.1s at a 180Hz minimum output rate upsamples to 18 steps.
	if len(out) != 18 {
		t.Fatalf("move produced %d samples, want 18", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Time <= out[i-1].Time {
			t.Fatalf("sample times not increasing at %d: %v then %v", i, out[i-1].Time, out[i].Time)
		}
	}
	if last := out[len(out)-1].Time; math.Abs(last-0.1) > 1e-12 {
		t.Errorf("final sample time = %v, want 0.1", last)
	}
	// The spring lags the input; it should have moved toward x=1 without
	// wild overshoot.
	if x := out[len(out)-1].Position.X; x <= 0 || x > 1.5 {
		t.Errorf("final position x = %v, want in (0, 1.5]", x)
	}
}

func TestModeler_UpCatchesUp(t *testing.T) {
	m := NewModeler(testParams())
	m.Update(Event{Type: EventDown, Position: Vec2{}, Time: 0, Pressure: -1, Tilt: -1, Orientation: -1})
	m.Update(Event{Type: EventMove, Position: Vec2{X: 1}, Time: 0.05, Pressure: -1, Tilt: -1, Orientation: -1})
	before := m.st.position.Distance(Vec2{X: 2})

	out := m.Update(Event{Type: EventUp, Position: Vec2{X: 2}, Time: 0.1, Pressure: -1, Tilt: -1, Orientation: -1})
	if len(out) == 0 {
		t.Fatal("up produced no samples")
	}
	after := out[len(out)-1].Position.Distance(Vec2{X: 2})
	if after >= before {
		t.Errorf("catch-up did not approach the anchor: %v -> %v", before, after)
	}
	// Catch-up samples extend past the event time.
	if last := out[len(out)-1].Time; last < 0.1 {
		t.Errorf("final sample time = %v, want >= 0.1", last)
	}
}

func TestModeler_SaveRestoreRoundTrip(t *testing.T) {
	move := func(x, tm float64) Event {
		return Event{Type: EventMove, Position: Vec2{X: x}, Time: tm, Pressure: 0.5, Tilt: -1, Orientation: -1}
	}
	m := NewModeler(testParams())
	m.Update(Event{Type: EventDown, Position: Vec2{}, Time: 0, Pressure: 0.5, Tilt: -1, Orientation: -1})
	m.Update(move(1, 0.02))

	m.Save()
	first := m.Update(move(2, 0.04))
	m.Restore()
	second := m.Update(move(2, 0.04))

	if len(first) != len(second) {
		t.Fatalf("replay after Restore produced %d samples, want %d", len(second), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("sample %d differs after Restore: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestModeler_RestoreIsRepeatable(t *testing.T) {
	m := NewModeler(testParams())
	m.Update(Event{Type: EventDown, Position: Vec2{}, Time: 0, Pressure: -1, Tilt: -1, Orientation: -1})
	m.Save()

	up := Event{Type: EventUp, Position: Vec2{X: 1}, Time: 0.05, Pressure: -1, Tilt: -1, Orientation: -1}
	first := m.Update(up)
	m.Restore()
	second := m.Update(up)
	m.Restore()

	if len(first) != len(second) {
		t.Fatalf("second speculative replay produced %d samples, want %d", len(second), len(first))
	}
}

func TestModeler_ProtocolViolationsPanic(t *testing.T) {
	tests := []struct {
		name string
		run  func(m *Modeler)
	}{
		{
			name: "move before down",
			run: func(m *Modeler) {
				m.Update(Event{Type: EventMove, Time: 0.1})
			},
		},
		{
			name: "double down",
			run: func(m *Modeler) {
				m.Update(Event{Type: EventDown})
				m.Update(Event{Type: EventDown, Time: 0.1})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.run(NewModeler(testParams()))
		})
	}
}

func TestLoopMitigation_Strength(t *testing.T) {
	lm := LoopMitigationParams{
		Enabled:              true,
		StrokeUnitLength:     1,
		SpeedLowerBound:      5,
		SpeedUpperBound:      25,
		StrengthAtLowerBound: 1,
		StrengthAtUpperBound: 0.3,
	}
	tests := []struct {
		speed float64
		want  float64
	}{
		{speed: 0, want: 1},
		{speed: 5, want: 1},
		{speed: 15, want: 0.65},
		{speed: 25, want: 0.3},
		{speed: 100, want: 0.3},
	}
	for _, tt := range tests {
		if got := lm.strengthAt(tt.speed); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("strengthAt(%v) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestStylus_QueryInterpolates(t *testing.T) {
	var s stylusModeler
	s.window = 10
	s.add(Vec2{X: 0}, 0.2, 0.1, -1)
	s.add(Vec2{X: 2}, 0.8, 0.5, -1)

	pressure, tilt, orientation := s.query(Vec2{X: 1})
	if math.Abs(pressure-0.5) > 1e-12 {
		t.Errorf("pressure at midpoint = %v, want 0.5", pressure)
	}
	if math.Abs(tilt-0.3) > 1e-12 {
		t.Errorf("tilt at midpoint = %v, want 0.3", tilt)
	}
	if orientation != -1 {
		t.Errorf("absent orientation = %v, want -1", orientation)
	}
}

func TestStylus_QueryEmpty(t *testing.T) {
	var s stylusModeler
	pressure, tilt, orientation := s.query(Vec2{})
	if pressure != -1 || tilt != -1 || orientation != -1 {
		t.Errorf("empty query = (%v, %v, %v), want all -1", pressure, tilt, orientation)
	}
}

func TestLerpAngle_Wraparound(t *testing.T) {
	// Interpolating across the 0/2π seam must take the short arc.
	a := 2*math.Pi - 0.1
	b := 0.1
	got := lerpAngle(a, b, 0.5)
	if math.Abs(got) > 1e-9 && math.Abs(got-2*math.Pi) > 1e-9 {
		t.Errorf("lerpAngle(%v, %v, 0.5) = %v, want ~0", a, b, got)
	}
}
