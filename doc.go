// Package ink models raw stroke input for real-time ink rendering.
//
// # Overview
//
// ink is a Pure Go stroke input modeling library for the GoGPU ecosystem.
// It converts raw, irregularly-timed pointer samples (position, pressure,
// tilt, orientation) into a temporally dense, physically plausible sequence
// of modeled samples suitable for incremental rendering, for example by
// extruding stroke geometry with github.com/gogpu/gg.
//
// # Quick Start
//
//	import "github.com/gogpu/ink"
//
//	var modeler ink.StrokeInputModeler
//	modeler.StartStroke(ink.SpringModel{}, 0.1)
//
//	// Per input frame: append validated raw samples to batches and extend.
//	modeler.ExtendStroke(realInputs, predictedInputs, now)
//
//	state := modeler.State()
//	modeled := modeler.ModeledInputs()
//	// modeled[:state.StableInputCount] is frozen for the stroke's lifetime;
//	// the rest may be recomputed on the next extension.
//
// # Architecture
//
// The library is organized into:
//   - Public API: StrokeInput, StrokeInputBatch, StrokeInputModeler,
//     InputModel, ModeledStrokeInput, ModelerState, Point, Matrix
//   - Internal: cow (copy-on-write value container), dynamics
//     (spring-damper position simulation and stylus attribute modeling)
//
// Three modeling strategies are available, selected by the InputModel
// passed to StartStroke: a physically based spring model (the default
// choice for production strokes), an experimental sliding-window averaging
// model, and an experimental naive pass-through model.
//
// # Coordinate System
//
// Positions are in stroke space: an arbitrary 2D coordinate system chosen
// by the caller. Distances such as the brush epsilon are expressed in the
// same units. The optional stroke-unit length relates one stroke-space
// unit to physical centimeters; when known, it enables speed-dependent
// behavior such as loop-contraction mitigation.
//
// # Concurrency
//
// A StrokeInputModeler and the batches feeding it are single-owner
// objects: callers must serialize all access to one stroke's modeler.
// No operation blocks or schedules work.
package ink

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
