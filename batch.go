package ink

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"time"

	"github.com/gogpu/ink/internal/cow"
)

// batchFormat is the attribute layout shared by every input in a batch.
// It is fixed by the first input and cannot vary within the batch.
type batchFormat struct {
	toolType         ToolType
	strokeUnitLength Optional
	hasPressure      bool
	hasTilt          bool
	hasOrientation   bool
}

// formatOf derives the batch format from a single input.
func formatOf(in StrokeInput) batchFormat {
	return batchFormat{
		toolType:         in.ToolType,
		strokeUnitLength: in.StrokeUnitLength,
		hasPressure:      in.Pressure.Present(),
		hasTilt:          in.Tilt.Present(),
		hasOrientation:   in.Orientation.Present(),
	}
}

// stride is the number of packed floats per input: position x, position y
// and elapsed seconds, plus one per present optional attribute in the
// fixed order pressure, tilt, orientation.
func (f batchFormat) stride() int {
	s := 3
	if f.hasPressure {
		s++
	}
	if f.hasTilt {
		s++
	}
	if f.hasOrientation {
		s++
	}
	return s
}

// StrokeInputBatch is an ordered sequence of StrokeInput sharing one
// attribute format. It maintains three invariants: elapsed time is
// non-decreasing across consecutive inputs, no two consecutive inputs
// share both position and elapsed time, and the tool type, stroke-unit
// length and optional-attribute presence are constant across the batch.
//
// Inputs are stored packed in a flat float sequence behind a copy-on-write
// container, so Clone is O(1) until either copy is mutated. The zero
// StrokeInputBatch is an empty batch ready for use. Copy a batch with
// Clone, not by assignment.
//
// Every mutating method validates the affected inputs first and leaves
// the batch unchanged when it returns an error.
type StrokeInputBatch struct {
	data      cow.Value[[]float64]
	format    batchFormat
	noiseSeed uint32
}

// NewStrokeInputBatch creates a batch from a full candidate sequence,
// validating every input and every consecutive pair. The noise seed is
// carried on the batch for downstream brush-noise consumers.
func NewStrokeInputBatch(inputs []StrokeInput, noiseSeed uint32) (StrokeInputBatch, error) {
	b := StrokeInputBatch{noiseSeed: noiseSeed}
	if err := b.Append(inputs...); err != nil {
		return StrokeInputBatch{}, err
	}
	return b, nil
}

// Clone returns a batch sharing this batch's storage. O(1); the storage
// is copied lazily when either batch is next mutated.
func (b *StrokeInputBatch) Clone() StrokeInputBatch {
	return StrokeInputBatch{
		data:      b.data.Acquire(),
		format:    b.format,
		noiseSeed: b.noiseSeed,
	}
}

// Size returns the number of inputs in the batch.
func (b *StrokeInputBatch) Size() int {
	return len(b.data.Get()) / b.format.stride()
}

// IsEmpty reports whether the batch holds no inputs.
func (b *StrokeInputBatch) IsEmpty() bool {
	return len(b.data.Get()) == 0
}

// Get returns the input at index i, reconstructed from packed storage.
// Panics if i is out of range.
func (b *StrokeInputBatch) Get(i int) StrokeInput {
	if i < 0 || i >= b.Size() {
		panic(fmt.Sprintf("ink: input index %d out of range [0, %d)", i, b.Size()))
	}
	return b.unpack(b.data.Get(), i)
}

// First returns the first input. Panics if the batch is empty.
func (b *StrokeInputBatch) First() StrokeInput {
	return b.Get(0)
}

// Last returns the last input. Panics if the batch is empty.
func (b *StrokeInputBatch) Last() StrokeInput {
	return b.Get(b.Size() - 1)
}

// Duration returns the elapsed time between the first and last inputs,
// or zero for an empty batch.
func (b *StrokeInputBatch) Duration() time.Duration {
	if b.IsEmpty() {
		return 0
	}
	return b.Last().ElapsedTime - b.First().ElapsedTime
}

// ToolType returns the tool type shared by all inputs in the batch.
func (b *StrokeInputBatch) ToolType() ToolType {
	return b.format.toolType
}

// StrokeUnitLength returns the stroke-unit length shared by all inputs
// in the batch.
func (b *StrokeInputBatch) StrokeUnitLength() Optional {
	return b.format.strokeUnitLength
}

// HasPressure reports whether the batch's inputs carry pressure.
func (b *StrokeInputBatch) HasPressure() bool { return b.format.hasPressure }

// HasTilt reports whether the batch's inputs carry tilt.
func (b *StrokeInputBatch) HasTilt() bool { return b.format.hasTilt }

// HasOrientation reports whether the batch's inputs carry orientation.
func (b *StrokeInputBatch) HasOrientation() bool { return b.format.hasOrientation }

// NoiseSeed returns the noise seed the batch was created with.
func (b *StrokeInputBatch) NoiseSeed() uint32 { return b.noiseSeed }

// All returns an iterator over index/input pairs. The sequence is lazy,
// finite and restartable; it iterates the batch contents as of the call.
func (b *StrokeInputBatch) All() iter.Seq2[int, StrokeInput] {
	data := b.data.Acquire()
	format := b.format
	return func(yield func(int, StrokeInput) bool) {
		d := data.Get()
		n := len(d) / format.stride()
		for i := 0; i < n; i++ {
			if !yield(i, unpackInput(d, i, format)) {
				return
			}
		}
	}
}

// Append adds inputs to the end of the batch. The new inputs must be
// internally consistent and the first of them must be a valid successor
// to the batch's current last input. On any violation the batch is left
// unchanged and an error is returned.
func (b *StrokeInputBatch) Append(inputs ...StrokeInput) error {
	if len(inputs) == 0 {
		return nil
	}
	for i, in := range inputs {
		if err := in.validate(); err != nil {
			return fmt.Errorf("ink: input %d: %w", i, err)
		}
	}
	for i := 0; i+1 < len(inputs); i++ {
		if err := validateConsecutiveInputs(inputs[i], inputs[i+1]); err != nil {
			return fmt.Errorf("ink: inputs %d and %d: %w", i, i+1, err)
		}
	}
	if !b.IsEmpty() {
		if err := validateConsecutiveInputs(b.Last(), inputs[0]); err != nil {
			return fmt.Errorf("ink: cannot append: %w", err)
		}
	} else {
		b.format = formatOf(inputs[0])
	}
	d := b.mutableData()
	for _, in := range inputs {
		*d = b.pack(*d, in)
	}
	return nil
}

// AppendBatch appends all of other's inputs to the batch.
func (b *StrokeInputBatch) AppendBatch(other StrokeInputBatch) error {
	return b.AppendBatchRange(other, 0, other.Size())
}

// AppendBatchRange appends count of other's inputs starting at start.
// Panics if the range is out of bounds; the contents of a valid batch
// range need no re-validation beyond the boundary pair.
func (b *StrokeInputBatch) AppendBatchRange(other StrokeInputBatch, start, count int) error {
	if start < 0 || count < 0 || start+count > other.Size() {
		panic(fmt.Sprintf("ink: batch range [%d, %d) out of range [0, %d)", start, start+count, other.Size()))
	}
	if count == 0 {
		return nil
	}
	if b.IsEmpty() {
		b.format = formatOf(other.Get(start))
	} else {
		if err := validateConsecutiveInputs(b.Last(), other.Get(start)); err != nil {
			return fmt.Errorf("ink: cannot append: %w", err)
		}
	}
	stride := other.format.stride()
	src := other.data.Get()[start*stride : (start+count)*stride]
	d := b.mutableData()
	*d = append(*d, src...)
	return nil
}

// Set replaces the input at index i in place. The replacement must remain
// consistent with its neighbors; a single-input batch may freely replace
// its only element, resetting the batch format from it. Panics if i is
// out of range.
func (b *StrokeInputBatch) Set(i int, in StrokeInput) error {
	size := b.Size()
	if i < 0 || i >= size {
		panic(fmt.Sprintf("ink: input index %d out of range [0, %d)", i, size))
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if size == 1 {
		b.format = formatOf(in)
		b.data.Emplace(b.pack(nil, in))
		return nil
	}
	if i > 0 {
		if err := validateConsecutiveInputs(b.Get(i-1), in); err != nil {
			return fmt.Errorf("ink: inputs %d and %d: %w", i-1, i, err)
		}
	}
	if i < size-1 {
		if err := validateConsecutiveInputs(in, b.Get(i+1)); err != nil {
			return fmt.Errorf("ink: inputs %d and %d: %w", i, i+1, err)
		}
	}
	d := b.mutableData()
	stride := b.format.stride()
	packed := b.pack(nil, in)
	copy((*d)[i*stride:], packed)
	return nil
}

// Erase removes a contiguous range of count inputs starting at start,
// clamping count to the remaining length. Erasing the whole batch resets
// it to an empty batch with no format. Panics if start is out of range.
func (b *StrokeInputBatch) Erase(start, count int) {
	size := b.Size()
	if start < 0 || start > size {
		panic(fmt.Sprintf("ink: erase start %d out of range [0, %d]", start, size))
	}
	if count > size-start {
		count = size - start
	}
	if count <= 0 {
		return
	}
	if count == size {
		b.data.Release()
		b.format = batchFormat{}
		return
	}
	d := b.mutableData()
	stride := b.format.stride()
	*d = slices.Delete(*d, start*stride, (start+count)*stride)
}

// TransformInvariant selects the stroke property a Transform preserves.
type TransformInvariant int

const (
	// TransformPreservesDuration keeps every input's elapsed time
	// unchanged, so the stroke covers the transformed path over the same
	// timeline.
	//
	// TODO: add a velocity-preserving invariant that rescales elapsed
	// times so tip speeds survive a scaling transform.
	TransformPreservesDuration TransformInvariant = iota
)

// Transform applies a 2D affine transform to every position in place,
// preserving the chosen invariant. Panics on an unknown invariant.
func (b *StrokeInputBatch) Transform(m Matrix, invariant TransformInvariant) {
	if invariant != TransformPreservesDuration {
		panic(fmt.Sprintf("ink: unknown transform invariant %d", invariant))
	}
	if b.IsEmpty() {
		return
	}
	d := b.mutableData()
	stride := b.format.stride()
	for i := 0; i < len(*d); i += stride {
		p := m.TransformPoint(Pt((*d)[i], (*d)[i+1]))
		(*d)[i] = p.X
		(*d)[i+1] = p.Y
	}
}

// validateConsecutiveInputs checks that second is a valid successor to
// first: elapsed time does not decrease, the pair is not an exact
// duplicate in both position and time, and the attribute format matches.
// Equal position alone, or equal elapsed time alone, is allowed.
func validateConsecutiveInputs(first, second StrokeInput) error {
	if first.ElapsedTime > second.ElapsedTime {
		return fmt.Errorf("non-monotonic elapsed time: %v followed by %v",
			first.ElapsedTime, second.ElapsedTime)
	}
	if first.Position == second.Position && first.ElapsedTime == second.ElapsedTime {
		return fmt.Errorf("duplicate input: identical position (%g, %g) and elapsed time %v",
			first.Position.X, first.Position.Y, first.ElapsedTime)
	}
	if first.ToolType != second.ToolType {
		return fmt.Errorf("inconsistent tool type: %v vs %v", first.ToolType, second.ToolType)
	}
	if first.StrokeUnitLength != second.StrokeUnitLength {
		return fmt.Errorf("inconsistent stroke unit length: %v vs %v",
			optString(first.StrokeUnitLength), optString(second.StrokeUnitLength))
	}
	if first.Pressure.Present() != second.Pressure.Present() {
		return fmt.Errorf("inconsistent pressure: present on one input but not the other")
	}
	if first.Tilt.Present() != second.Tilt.Present() {
		return fmt.Errorf("inconsistent tilt: present on one input but not the other")
	}
	if first.Orientation.Present() != second.Orientation.Present() {
		return fmt.Errorf("inconsistent orientation: present on one input but not the other")
	}
	return nil
}

func optString(o Optional) string {
	if v, ok := o.Get(); ok {
		return fmt.Sprintf("%g", v)
	}
	return "absent"
}

// mutableData returns exclusively owned packed storage, cloning the
// copy-on-write snapshot if it is shared.
func (b *StrokeInputBatch) mutableData() *[]float64 {
	return b.data.Mutable(cloneFloats)
}

func cloneFloats(s []float64) []float64 { return slices.Clone(s) }

// pack appends in's packed floats to dst per the batch format.
func (b *StrokeInputBatch) pack(dst []float64, in StrokeInput) []float64 {
	dst = append(dst, in.Position.X, in.Position.Y, in.ElapsedTime.Seconds())
	if b.format.hasPressure {
		dst = append(dst, in.Pressure.Value())
	}
	if b.format.hasTilt {
		dst = append(dst, in.Tilt.Value())
	}
	if b.format.hasOrientation {
		dst = append(dst, in.Orientation.Value())
	}
	return dst
}

func (b *StrokeInputBatch) unpack(data []float64, i int) StrokeInput {
	return unpackInput(data, i, b.format)
}

// unpackInput reconstructs input i from packed storage plus the
// batch-wide format flags.
func unpackInput(data []float64, i int, f batchFormat) StrokeInput {
	base := i * f.stride()
	in := StrokeInput{
		ToolType:         f.toolType,
		Position:         Pt(data[base], data[base+1]),
		ElapsedTime:      durationFromSeconds(data[base+2]),
		StrokeUnitLength: f.strokeUnitLength,
	}
	k := base + 3
	if f.hasPressure {
		in.Pressure = Opt(data[k])
		k++
	}
	if f.hasTilt {
		in.Tilt = Opt(data[k])
		k++
	}
	if f.hasOrientation {
		in.Orientation = Opt(data[k])
	}
	return in
}

// durationFromSeconds converts packed seconds back to a duration,
// rounding to the nearest nanosecond so that packing round-trips.
func durationFromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
