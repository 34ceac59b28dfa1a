// Package reassembly implements the multi-part SMS reassembly engine:
// given a newly-arrived segment and its known peers, it determines
// whether every part of a concatenated SMS is now available and, if
// so, materializes the composite Message.
package reassembly

import (
	"sort"

	"github.com/foxcpp/gammu-gateway/internal/model"
)

// Reassemble attempts to build the composite message that trigger
// belongs to, given the set of peer segments returned by the segment
// store (which may include stale or duplicate copies, and may or may
// not already include trigger itself).
//
// It returns (nil, nil) when the composite is not yet complete. A
// non-nil error indicates a structural inconsistency while
// materializing an apparently-complete index (a slot the index
// believes is filled turns out to be empty) and should never happen if
// the index bookkeeping below is correct; it is surfaced as a
// *model.ReassemblyError.
func Reassemble(trigger model.Segment, peers []model.Segment) (*model.Message, error) {
	slots := make(map[int]model.Segment, trigger.TotalSegments)

	insert := func(seg model.Segment) {
		if seg.ID != trigger.ID {
			return
		}
		if seg.SegmentNum < 1 || seg.SegmentNum > trigger.TotalSegments {
			return
		}
		if seg.TotalSegments != trigger.TotalSegments {
			return
		}

		existing, ok := slots[seg.SegmentNum]
		if !ok || !seg.Timestamp.Before(existing.Timestamp) {
			slots[seg.SegmentNum] = seg
		}
	}

	for _, peer := range peers {
		insert(peer)
	}
	// The trigger is inserted last so that, among duplicates sharing a
	// timestamp, it wins ties - it is the one the caller just received.
	insert(trigger)

	if len(slots) != trigger.TotalSegments {
		return nil, nil
	}

	return materialize(trigger.ID, trigger.TotalSegments, slots)
}

func materialize(id string, total int, slots map[int]model.Segment) (*model.Message, error) {
	first, ok := slots[1]
	if !ok {
		return nil, &model.ReassemblyError{ID: id, Cause: "missing first entry"}
	}

	msg := &model.Message{
		From:          first.From,
		Content:       first.Content,
		Timestamp:     first.Timestamp,
		SMSCTimestamp: first.SMSCTimestamp,
		HasSMSCTime:   first.HasSMSCTime,
		ID:            id,
		Parts:         []model.Segment{first},
		Location:      []int{first.Location},
	}

	for i := 2; i <= total; i++ {
		seg, ok := slots[i]
		if !ok {
			return nil, &model.ReassemblyError{ID: id, Cause: "missing entry"}
		}

		msg.Content += seg.Content
		msg.Parts = append(msg.Parts, seg)
		msg.Location = append(msg.Location, seg.Location)

		if seg.Timestamp.After(msg.Timestamp) {
			msg.Timestamp = seg.Timestamp
		}
		if seg.HasSMSCTime && (!msg.HasSMSCTime || seg.SMSCTimestamp.After(msg.SMSCTimestamp)) {
			msg.SMSCTimestamp = seg.SMSCTimestamp
			msg.HasSMSCTime = true
		}
	}

	return msg, nil
}

// SortedParts returns msg.Parts sorted by segment number. Reassemble
// already builds Parts in order by construction; this helper exists for
// callers (tests, diagnostics) that received parts from elsewhere and
// need a canonical order.
func SortedParts(parts []model.Segment) []model.Segment {
	out := make([]model.Segment, len(parts))
	copy(out, parts)
	sort.Slice(out, func(i, j int) bool { return out[i].SegmentNum < out[j].SegmentNum })
	return out
}
