package cow

import (
	"slices"
	"testing"
)

func cloneInts(s []int) []int { return slices.Clone(s) }

func TestValue_ZeroValue(t *testing.T) {
	var v Value[[]int]
	if got := v.Get(); got != nil {
		t.Errorf("Get() on zero Value = %v, want nil", got)
	}
	if v.Shared() {
		t.Error("zero Value reports Shared() = true")
	}

	d := v.Mutable(cloneInts)
	*d = append(*d, 1, 2)
	if got := v.Get(); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Get() after Mutable = %v, want [1 2]", got)
	}
}

func TestValue_AcquireShares(t *testing.T) {
	v := New([]int{1, 2, 3})
	w := v.Acquire()

	if !v.Shared() || !w.Shared() {
		t.Error("both holders should report Shared() after Acquire")
	}
	if !slices.Equal(v.Get(), w.Get()) {
		t.Errorf("snapshots differ: %v vs %v", v.Get(), w.Get())
	}
}

func TestValue_MutableClonesWhenShared(t *testing.T) {
	v := New([]int{1, 2, 3})
	w := v.Acquire()

	d := w.Mutable(cloneInts)
	(*d)[0] = 99

	if got := v.Get(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("mutation through one holder leaked into another: %v", got)
	}
	if got := w.Get(); !slices.Equal(got, []int{99, 2, 3}) {
		t.Errorf("mutated holder = %v, want [99 2 3]", got)
	}
	if v.Shared() {
		t.Error("original still reports Shared() after the copy detached")
	}
}

func TestValue_MutableInPlaceWhenExclusive(t *testing.T) {
	v := New([]int{1})
	calls := 0
	v.Mutable(func(s []int) []int {
		calls++
		return slices.Clone(s)
	})
	if calls != 0 {
		t.Errorf("exclusive Mutable cloned %d times, want 0", calls)
	}
}

func TestValue_Emplace(t *testing.T) {
	v := New([]int{1, 2})
	w := v.Acquire()

	w.Emplace([]int{7})
	if got := v.Get(); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Emplace through copy changed original: %v", got)
	}
	if got := w.Get(); !slices.Equal(got, []int{7}) {
		t.Errorf("Emplace = %v, want [7]", got)
	}
}

func TestValue_Release(t *testing.T) {
	v := New([]int{1})
	w := v.Acquire()
	w.Release()

	if v.Shared() {
		t.Error("original still shared after copy released")
	}
	if got := w.Get(); got != nil {
		t.Errorf("released Value Get() = %v, want nil", got)
	}
}
