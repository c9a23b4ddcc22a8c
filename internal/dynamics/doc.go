// Package dynamics simulates a stroke tip as a mass dragged by a damped
// spring toward the raw pointer position.
//
// The package exposes an event-driven modeler: a stroke is a Down event,
// any number of Move events and an Up event. Each event yields zero or
// more output samples, upsampled so the output rate never falls below a
// configured minimum. The Up event additionally runs a bounded catch-up
// loop so the simulated tip, which lags the driving input by design,
// settles onto the final position.
//
// The modeler's complete state can be checkpointed with Save and rolled
// back with Restore. Callers use this to feed speculative input (the
// unstable tail of a stroke, including predicted samples) and rewind
// before the next update.
package dynamics
