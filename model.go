package ink

import "time"

// InputModel selects the modeling strategy a StrokeInputModeler uses for
// one stroke. It is a closed set: SpringModel,
// ExperimentalRawPositionModel, ExperimentalNaiveModel and
// ExperimentalSlidingWindowModel. The façade dispatches over the variants
// exhaustively, so a new variant cannot be added without teaching
// StartStroke about it.
type InputModel interface {
	isInputModel()
}

// SpringModel models the stroke tip as a mass dragged by a critically
// damped spring toward the raw input, resampled to a minimum output rate.
// This is the model production strokes should use.
type SpringModel struct{}

func (SpringModel) isInputModel() {}

// ExperimentalRawPositionModel passes raw positions through unmodeled
// while keeping the spring model's stability bookkeeping and
// finite-difference derivatives. Experimental; its behavior may change.
type ExperimentalRawPositionModel struct{}

func (ExperimentalRawPositionModel) isInputModel() {}

// ExperimentalNaiveModel passes raw inputs through with trivial backward
// finite-difference derivatives and no smoothing delay. Experimental; its
// behavior may change.
type ExperimentalNaiveModel struct{}

func (ExperimentalNaiveModel) isInputModel() {}

// ExperimentalSlidingWindowModel replaces each raw sample by the
// time-weighted average of the raw signal over a window of WindowSize
// centered on the sample. Experimental; its behavior may change.
type ExperimentalSlidingWindowModel struct {
	// WindowSize is the full duration of the averaging window. Must be
	// positive.
	WindowSize time.Duration
}

func (ExperimentalSlidingWindowModel) isInputModel() {}
