package ink

import (
	"slices"
	"testing"
	"time"
)

func TestSpring_SingleInput(t *testing.T) {
	var m StrokeInputModeler
	m.StartStroke(SpringModel{}, 0.001)
	m.ExtendStroke(mustBatch(t, stylusInput(3, 4, 0, 0.5)), StrokeInputBatch{}, 0)

	modeled := m.ModeledInputs()
	if len(modeled) == 0 {
		t.Fatal("no modeled inputs from a single real input")
	}
	if got := modeled[0].Position; got != Pt(3, 4) {
		t.Errorf("modeled[0].Position = %v, want the raw position (3, 4)", got)
	}
	if got := modeled[0].TraveledDistance; got != 0 {
		t.Errorf("modeled[0].TraveledDistance = %v, want 0", got)
	}
	if got := modeled[0].Pressure; got != 0.5 {
		t.Errorf("modeled[0].Pressure = %v, want 0.5", got)
	}

	st := m.State()
	// The sole input is still speculative end-of-stroke modeling; nothing
	// is permanent yet.
	if st.StableInputCount != 0 {
		t.Errorf("StableInputCount = %d, want 0", st.StableInputCount)
	}
	if st.RealInputCount != len(modeled) {
		t.Errorf("RealInputCount = %d, want %d", st.RealInputCount, len(modeled))
	}
	if st.ToolType != ToolTypeStylus {
		t.Errorf("ToolType = %v, want Stylus", st.ToolType)
	}
}

func TestSpring_RepeatedEmptyExtendIsIdempotent(t *testing.T) {
	var m StrokeInputModeler
	m.StartStroke(SpringModel{}, 0.001)
	m.ExtendStroke(mustBatch(t,
		stylusInput(0, 0, 0, 0.5),
		stylusInput(1, 0, 16*time.Millisecond, 0.5),
		stylusInput(2, 1, 32*time.Millisecond, 0.5),
	), StrokeInputBatch{}, 32*time.Millisecond)

	first := slices.Clone(m.ModeledInputs())
	firstState := m.State()

	for range 3 {
		m.ExtendStroke(StrokeInputBatch{}, StrokeInputBatch{}, 32*time.Millisecond)
		if !slices.Equal(m.ModeledInputs(), first) {
			t.Fatal("empty extension changed the modeled inputs")
		}
		if got := m.State(); got != firstState {
			t.Fatalf("empty extension changed the state: %+v vs %+v", got, firstState)
		}
	}
}

func TestSpring_PredictedInputsLeaveNoTrace(t *testing.T) {
	real1 := []StrokeInput{
		stylusInput(0, 0, 0, 0.5),
		stylusInput(1, 0, 16*time.Millisecond, 0.5),
	}
	real2 := []StrokeInput{
		stylusInput(2, 0, 32*time.Millisecond, 0.5),
		stylusInput(3, 0, 48*time.Millisecond, 0.5),
	}
	// Predictions reach far past the real input that will supersede them;
	// no metric may remember their positions or their timestamps.
	predicted := []StrokeInput{
		stylusInput(5, 5, 500*time.Millisecond, 0.5),
		stylusInput(9, 9, time.Second, 0.5),
	}

	var with, without StrokeInputModeler
	with.StartStroke(SpringModel{}, 0.001)
	with.ExtendStroke(mustBatch(t, real1...), mustBatch(t, predicted...), 16*time.Millisecond)
	with.ExtendStroke(mustBatch(t, real2...), StrokeInputBatch{}, 48*time.Millisecond)

	without.StartStroke(SpringModel{}, 0.001)
	without.ExtendStroke(mustBatch(t, real1...), StrokeInputBatch{}, 16*time.Millisecond)
	without.ExtendStroke(mustBatch(t, real2...), StrokeInputBatch{}, 48*time.Millisecond)

	if !slices.Equal(with.ModeledInputs(), without.ModeledInputs()) {
		t.Error("a discarded prediction left a trace in later modeled inputs")
	}
	if with.State() != without.State() {
		t.Errorf("states diverged: %+v vs %+v", with.State(), without.State())
	}
}

func TestSpring_StablePrefixNeverChanges(t *testing.T) {
	var m StrokeInputModeler
	m.StartStroke(SpringModel{}, 0.001)

	var prefix []ModeledStrokeInput
	stable := 0
	for i := 1; i <= 6; i++ {
		at := time.Duration(i) * 16 * time.Millisecond
		m.ExtendStroke(mustBatch(t, stylusInput(float64(i), 0, at, 0.5)), StrokeInputBatch{}, at)

		st := m.State()
		if st.StableInputCount < stable {
			t.Fatalf("StableInputCount decreased: %d -> %d", stable, st.StableInputCount)
		}
		if st.RealInputCount < st.StableInputCount {
			t.Fatalf("RealInputCount %d below StableInputCount %d",
				st.RealInputCount, st.StableInputCount)
		}
		if !slices.Equal(m.ModeledInputs()[:len(prefix)], prefix) {
			t.Fatal("previously stable modeled inputs changed")
		}
		stable = st.StableInputCount
		prefix = slices.Clone(m.ModeledInputs()[:stable])
	}
	if stable == 0 {
		t.Error("no modeled inputs ever became stable")
	}
}

func TestSpring_SmoothsTowardInput(t *testing.T) {
	var m StrokeInputModeler
	m.StartStroke(SpringModel{}, 0.001)
	m.ExtendStroke(mustBatch(t,
		stylusInput(0, 0, 0, 0.5),
		stylusInput(10, 0, 50*time.Millisecond, 0.5),
	), StrokeInputBatch{}, 50*time.Millisecond)

	modeled := m.ModeledInputs()
	if len(modeled) < 3 {
		t.Fatalf("only %d modeled inputs; the spring should upsample", len(modeled))
	}
	for i := 1; i < len(modeled); i++ {
		// A lightly underdamped spring may overshoot the anchor a little,
		// but it must stay near the segment the input traced.
		if x := modeled[i].Position.X; x < -1 || x > 11 {
			t.Fatalf("modeled x left the input's neighborhood at %d: %v", i, x)
		}
		if modeled[i].ElapsedTime < modeled[i-1].ElapsedTime {
			t.Fatalf("modeled time went backward at %d", i)
		}
	}
	// End-of-stroke catch-up should bring the tip close to the raw input.
	last := modeled[len(modeled)-1]
	if d := last.Position.Distance(Pt(10, 0)); d > 1 {
		t.Errorf("final modeled position %v is %v away from the input", last.Position, d)
	}
}

func TestRawPosition_PassThroughWithCoalescing(t *testing.T) {
	var m StrokeInputModeler
	m.StartStroke(ExperimentalRawPositionModel{}, 0.5)
	m.ExtendStroke(mustBatch(t,
		stylusInput(0, 0, 0, 0.5),
		stylusInput(0.1, 0, 10*time.Millisecond, 0.5), // within brush epsilon
		stylusInput(1, 0, 20*time.Millisecond, 0.5),
	), StrokeInputBatch{}, 20*time.Millisecond)

	modeled := m.ModeledInputs()
	if len(modeled) != 2 {
		t.Fatalf("%d modeled inputs, want 2 after coalescing", len(modeled))
	}
	if modeled[0].Position != Pt(0, 0) || modeled[1].Position != Pt(1, 0) {
		t.Errorf("modeled positions = %v, %v; want (0, 0) and (1, 0)",
			modeled[0].Position, modeled[1].Position)
	}
	// Pass-through derivatives come from a backward finite difference;
	// the coalesced sample does not shorten the interval.
	if got := modeled[1].Velocity; got != Pt(50, 0) {
		t.Errorf("modeled[1].Velocity = %v, want (50, 0)", got)
	}
}
