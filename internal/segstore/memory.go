// Package segstore provides the built-in segment store used when the
// embedder registers no receive_segment/return_segments handlers.
package segstore

import (
	"context"
	"sync"

	"github.com/foxcpp/gammu-gateway/internal/model"
)

// Memory is the default model.SegmentStore: it keeps every unreassembled
// segment in a map keyed by composite id.
//
// ReceiveSegment always reports shouldDelete=false: without durable
// storage backing it, the only safe place for a segment to live is the
// modem itself until its composite is fully reassembled and delivered.
//
// ReleaseSegments evicts the entry for id once the embedder has no
// further use for the parts, rather than retaining it indefinitely
// (see DESIGN.md for the tradeoffs of that choice).
type Memory struct {
	mu       sync.Mutex
	segments map[string][]model.Segment
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{segments: make(map[string][]model.Segment)}
}

func (m *Memory) ReceiveSegment(_ context.Context, seg model.Segment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.segments[seg.ID]
	for i, s := range existing {
		if s.SegmentNum == seg.SegmentNum {
			if seg.Timestamp.After(s.Timestamp) {
				existing[i] = seg
			}
			return false, nil
		}
	}
	m.segments[seg.ID] = append(existing, seg)
	return false, nil
}

func (m *Memory) ReturnSegments(_ context.Context, id string) ([]model.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.segments[id]
	out := make([]model.Segment, len(stored))
	copy(out, stored)
	return out, nil
}

func (m *Memory) ReleaseSegments(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.segments, id)
	return nil
}

var _ model.SegmentStore = (*Memory)(nil)
