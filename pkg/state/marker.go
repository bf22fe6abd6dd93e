package state

import (
	"sort"

	"github.com/google/uuid"

	"github.com/RainBoltz/v-network-graph/pkg/style"
)

// MarkerHandle identifies an allocated marker descriptor. The empty handle
// means "no marker". Handles are referenced from edge states and resolved to
// SVG <marker> definitions by the rendering collaborator.
type MarkerHandle string

// MarkerDescriptor is the rendering-facing view of an allocated marker.
type MarkerDescriptor struct {
	ID          MarkerHandle
	Marker      style.Marker
	StrokeWidth float64
}

type markerEntry struct {
	desc MarkerDescriptor
	key  string
	refs int
}

// MarkerAllocator assigns one rendering handle per distinct marker style and
// retires it when the last referencing edge releases it.
type MarkerAllocator struct {
	byKey map[string]*markerEntry
	byID  map[MarkerHandle]*markerEntry
}

// NewMarkerAllocator creates an empty allocator.
func NewMarkerAllocator() *MarkerAllocator {
	return &MarkerAllocator{
		byKey: make(map[string]*markerEntry),
		byID:  make(map[MarkerHandle]*markerEntry),
	}
}

// Acquire returns the handle for the marker style, allocating one on first
// use and bumping its reference count otherwise. A nil marker yields the
// empty handle.
func (a *MarkerAllocator) Acquire(m *style.Marker, strokeWidth float64) MarkerHandle {
	if m == nil {
		return ""
	}
	key := m.Key(strokeWidth)
	if e, ok := a.byKey[key]; ok {
		e.refs++
		return e.desc.ID
	}
	e := &markerEntry{
		desc: MarkerDescriptor{
			ID:          MarkerHandle("marker-" + uuid.NewString()),
			Marker:      *m,
			StrokeWidth: strokeWidth,
		},
		key:  key,
		refs: 1,
	}
	a.byKey[key] = e
	a.byID[e.desc.ID] = e
	return e.desc.ID
}

// Release drops one reference to the handle, retiring the descriptor when
// the count reaches zero. Releasing the empty or an unknown handle is a
// no-op.
func (a *MarkerAllocator) Release(h MarkerHandle) {
	if h == "" {
		return
	}
	e, ok := a.byID[h]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(a.byID, h)
		delete(a.byKey, e.key)
	}
}

// Descriptors returns all live marker descriptors, sorted by handle for
// deterministic output.
func (a *MarkerAllocator) Descriptors() []MarkerDescriptor {
	out := make([]MarkerDescriptor, 0, len(a.byID))
	for _, e := range a.byID {
		out = append(out, e.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live descriptors.
func (a *MarkerAllocator) Len() int { return len(a.byID) }
