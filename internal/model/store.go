package model

import "context"

// SegmentStore persists inbound multi-part segments on the embedder's
// behalf. The built-in default (internal/segstore.Memory) is used when
// the embedder registers no receive_segment/return_segments handlers.
type SegmentStore interface {
	// ReceiveSegment durably records seg. shouldDelete reports whether
	// the segment may now be deleted from the modem (true only once it
	// has actually been persisted).
	ReceiveSegment(ctx context.Context, seg Segment) (shouldDelete bool, err error)

	// ReturnSegments returns every previously stored segment sharing id,
	// to be offered to the reassembly engine as peers.
	ReturnSegments(ctx context.Context, id string) ([]Segment, error)

	// ReleaseSegments tells the store it may discard anything held for
	// id; the composite it described has been delivered.
	ReleaseSegments(ctx context.Context, id string) error
}
