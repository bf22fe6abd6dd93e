package state

import (
	"testing"

	"github.com/RainBoltz/v-network-graph/pkg/style"
)

func TestMarkerAllocatorRefCounting(t *testing.T) {
	a := NewMarkerAllocator()
	arrow := &style.Marker{Shape: "arrow", Width: 4}

	h1 := a.Acquire(arrow, 2)
	h2 := a.Acquire(arrow, 2)
	if h1 != h2 {
		t.Errorf("same style yielded distinct handles %q, %q", h1, h2)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}

	// Different stroke width is a different descriptor.
	h3 := a.Acquire(arrow, 4)
	if h3 == h1 {
		t.Error("distinct stroke widths share a handle")
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}

	a.Release(h1)
	if a.Len() != 2 {
		t.Errorf("Len() after partial release = %d, want 2", a.Len())
	}
	a.Release(h2)
	a.Release(h3)
	if a.Len() != 0 {
		t.Errorf("Len() after full release = %d, want 0", a.Len())
	}
}

func TestMarkerAllocatorNilAndUnknown(t *testing.T) {
	a := NewMarkerAllocator()
	if h := a.Acquire(nil, 2); h != "" {
		t.Errorf("Acquire(nil) = %q, want empty handle", h)
	}
	a.Release("")          // no-op
	a.Release("marker-??") // unknown, no-op
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.Len())
	}
}
