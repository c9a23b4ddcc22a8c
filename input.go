package ink

import (
	"fmt"
	"math"
	"time"
)

// ToolType identifies the kind of pointer that produced a stroke input.
type ToolType int

const (
	// ToolTypeUnknown is used when the input source is not known.
	ToolTypeUnknown ToolType = iota
	// ToolTypeMouse indicates mouse input.
	ToolTypeMouse
	// ToolTypeTouch indicates direct touch input.
	ToolTypeTouch
	// ToolTypeStylus indicates stylus/pen input.
	ToolTypeStylus
)

// String returns the name of the tool type.
func (t ToolType) String() string {
	switch t {
	case ToolTypeUnknown:
		return "Unknown"
	case ToolTypeMouse:
		return "Mouse"
	case ToolTypeTouch:
		return "Touch"
	case ToolTypeStylus:
		return "Stylus"
	default:
		return fmt.Sprintf("ToolType(%d)", int(t))
	}
}

// isNamed reports whether t is one of the named enumerators.
func (t ToolType) isNamed() bool {
	return t >= ToolTypeUnknown && t <= ToolTypeStylus
}

// Optional holds a float attribute that may be absent. The zero Optional
// is absent. Absence is part of a batch's format: within one
// StrokeInputBatch an attribute is either present on every input or on
// none.
type Optional struct {
	value   float64
	present bool
}

// Opt returns an Optional holding v.
func Opt(v float64) Optional {
	return Optional{value: v, present: true}
}

// Present reports whether a value is held.
func (o Optional) Present() bool { return o.present }

// Value returns the held value, or 0 if absent.
func (o Optional) Value() float64 { return o.value }

// Get returns the held value and whether one is present.
func (o Optional) Get() (float64, bool) { return o.value, o.present }

// Or returns the held value, or def if absent.
func (o Optional) Or(def float64) float64 {
	if o.present {
		return o.value
	}
	return def
}

// StrokeInput is a single raw pointer sample.
//
// Position is in stroke space and ElapsedTime is measured from the start
// of the stroke. StrokeUnitLength, when present, is the physical distance
// in centimeters covered by one stroke-space unit. Pressure, Tilt and
// Orientation are present only when the input source reports them;
// presence must be uniform across a batch.
type StrokeInput struct {
	// ToolType is the kind of pointer that produced this sample.
	ToolType ToolType

	// Position of the sample in stroke space.
	Position Point

	// ElapsedTime since the start of the stroke. Non-negative, and
	// non-decreasing across a batch.
	ElapsedTime time.Duration

	// StrokeUnitLength is the physical length of one stroke-space unit,
	// in centimeters, when known.
	StrokeUnitLength Optional

	// Pressure in [0, 1], when reported.
	Pressure Optional

	// Tilt is the angle between the stylus and the surface normal, in
	// [0, π/2] radians, when reported.
	Tilt Optional

	// Orientation is the angle of the stylus projection onto the surface,
	// in [0, 2π) radians, when reported.
	Orientation Optional
}

// Validate checks that the input is well formed on its own: a named tool
// type, a finite position, a non-negative elapsed time, and every present
// optional attribute within its valid range. An absent attribute is
// always valid.
func (in StrokeInput) Validate() error {
	if err := in.validate(); err != nil {
		return fmt.Errorf("ink: %w", err)
	}
	return nil
}

// validate is Validate without the module prefix, for callers that add
// positional context of their own.
func (in StrokeInput) validate() error {
	if !in.ToolType.isNamed() {
		return fmt.Errorf("invalid tool type %v", in.ToolType)
	}
	if !in.Position.IsFinite() {
		return fmt.Errorf("non-finite position (%v, %v)", in.Position.X, in.Position.Y)
	}
	if in.ElapsedTime < 0 {
		return fmt.Errorf("negative elapsed time %v", in.ElapsedTime)
	}
	if v, ok := in.StrokeUnitLength.Get(); ok && (v <= 0 || math.IsInf(v, 0) || math.IsNaN(v)) {
		return fmt.Errorf("stroke unit length must be finite and positive, got %v", v)
	}
	if v, ok := in.Pressure.Get(); ok && (math.IsNaN(v) || v < 0 || v > 1) {
		return fmt.Errorf("pressure %v outside [0, 1]", v)
	}
	if v, ok := in.Tilt.Get(); ok && (math.IsNaN(v) || v < 0 || v > math.Pi/2) {
		return fmt.Errorf("tilt %v outside [0, π/2]", v)
	}
	if v, ok := in.Orientation.Get(); ok && (math.IsNaN(v) || v < 0 || v >= 2*math.Pi) {
		return fmt.Errorf("orientation %v outside [0, 2π)", v)
	}
	return nil
}
