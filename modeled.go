package ink

import "time"

// ModeledStrokeInput is one sample produced by a modeling strategy.
//
// Modeled inputs are always derived from raw StrokeInput sequences by a
// StrokeInputModeler; callers never construct them by hand. Unlike raw
// inputs they form a dense, render-facing sequence: attributes the
// stroke's input format lacks are carried as -1 rather than as optionals.
type ModeledStrokeInput struct {
	// Position of the modeled sample in stroke space.
	Position Point

	// Velocity of the stroke tip in stroke units per second.
	Velocity Point

	// Acceleration of the stroke tip in stroke units per second squared.
	Acceleration Point

	// TraveledDistance is the cumulative modeled path length from the
	// start of the stroke, in stroke units.
	TraveledDistance float64

	// ElapsedTime since the start of the stroke.
	ElapsedTime time.Duration

	// Pressure in [0, 1], or -1 if the stroke reports no pressure.
	Pressure float64

	// Tilt in [0, π/2] radians, or -1 if the stroke reports no tilt.
	Tilt float64

	// Orientation in [0, 2π) radians, or -1 if the stroke reports no
	// orientation.
	Orientation float64
}

// ModelerState is the incremental state of a stroke being modeled.
//
// The "real" metrics cover modeled inputs derived from real raw inputs
// only; the "complete" metrics additionally cover inputs derived from
// predicted raw inputs.
type ModelerState struct {
	// ToolType of the stroke, fixed by its first raw input.
	ToolType ToolType

	// StrokeUnitLength is the physical length of one stroke-space unit,
	// when the input source reports it.
	StrokeUnitLength Optional

	// TotalRealElapsedTime is the elapsed time through the last modeled
	// input derived from real raw input.
	TotalRealElapsedTime time.Duration

	// TotalRealDistance is the traveled distance through the last modeled
	// input derived from real raw input.
	TotalRealDistance float64

	// CompleteElapsedTime is the elapsed time through the last modeled
	// input, real or predicted, and never less than the current elapsed
	// time passed to ExtendStroke.
	CompleteElapsedTime time.Duration

	// CompleteTraveledDistance is the traveled distance through the last
	// modeled input, real or predicted.
	CompleteTraveledDistance float64

	// StableInputCount is the length of the prefix of modeled inputs that
	// is guaranteed never to change again during the stroke. It is
	// non-decreasing across ExtendStroke calls.
	StableInputCount int

	// RealInputCount is the length of the prefix of modeled inputs
	// derived purely from real raw inputs. Always >= StableInputCount.
	RealInputCount int

	// InputsFinished reports whether the caller has declared the stroke's
	// input sequence complete via FinishInputs.
	InputsFinished bool
}
