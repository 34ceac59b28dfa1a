package reassembly

import (
	"testing"
	"time"

	"github.com/foxcpp/gammu-gateway/internal/model"
)

func seg(id string, num, total int, content string, ts time.Time) model.Segment {
	return model.Segment{
		ID:            id,
		From:          "+15550001111",
		Content:       content,
		SegmentNum:    num,
		TotalSegments: total,
		Location:      100 + num,
		Timestamp:     ts,
	}
}

func TestReassembleIncomplete(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trigger := seg("a-0-2", 1, 2, "hello ", base)

	msg, err := Reassemble(trigger, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != nil {
		t.Fatalf("expected incomplete reassembly to return nil, got %+v", msg)
	}
}

func TestReassembleComplete(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	part1 := seg("a-0-2", 1, 2, "hello ", base)
	part2 := seg("a-0-2", 2, 2, "world", base.Add(time.Second))

	msg, err := Reassemble(part2, []model.Segment{part1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg == nil {
		t.Fatal("expected a composite message")
	}
	if msg.Content != "hello world" {
		t.Errorf("Content = %q, want %q", msg.Content, "hello world")
	}
	if len(msg.Location) != 2 || msg.Location[0] != 101 || msg.Location[1] != 102 {
		t.Errorf("Location = %v, want [101 102]", msg.Location)
	}
	if !msg.Timestamp.Equal(part2.Timestamp) {
		t.Errorf("Timestamp = %v, want %v (the later part)", msg.Timestamp, part2.Timestamp)
	}
}

func TestReassembleNewerTimestampWins(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stale := seg("a-0-2", 1, 2, "stale", base)
	fresh := seg("a-0-2", 1, 2, "fresh", base.Add(time.Minute))
	part2 := seg("a-0-2", 2, 2, "tail", base)

	msg, err := Reassemble(part2, []model.Segment{stale, fresh})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg == nil {
		t.Fatal("expected a composite message")
	}
	if msg.Content != "freshtail" {
		t.Errorf("Content = %q, want %q (the newer slot-1 candidate should win)", msg.Content, "freshtail")
	}
}

func TestReassembleOlderTimestampLoses(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := seg("a-0-2", 1, 2, "fresh", base.Add(time.Minute))
	stale := seg("a-0-2", 1, 2, "stale", base)
	part2 := seg("a-0-2", 2, 2, "tail", base)

	msg, err := Reassemble(part2, []model.Segment{fresh, stale})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Content != "freshtail" {
		t.Errorf("Content = %q, a strictly older duplicate must not overwrite the slot", msg.Content)
	}
}

func TestReassembleRejectsForeignID(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trigger := seg("a-0-2", 2, 2, "tail", base)
	foreign := seg("b-0-2", 1, 2, "nope", base)

	msg, err := Reassemble(trigger, []model.Segment{foreign})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != nil {
		t.Fatalf("a peer from a different id must not complete the composite, got %+v", msg)
	}
}

func TestReassembleMissingFirstSlot(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Three-part group, but slot 1 never supplied as peer or trigger.
	part2 := seg("a-0-3", 2, 3, "mid", base)
	part3 := seg("a-0-3", 3, 3, "end", base)

	msg, err := Reassemble(part3, []model.Segment{part2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != nil {
		t.Fatalf("expected incomplete (only 2 of 3 slots filled), got %+v", msg)
	}
}

func TestSortedParts(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	parts := []model.Segment{
		seg("a-0-3", 3, 3, "c", base),
		seg("a-0-3", 1, 3, "a", base),
		seg("a-0-3", 2, 3, "b", base),
	}

	sorted := SortedParts(parts)
	for i, p := range sorted {
		if p.SegmentNum != i+1 {
			t.Fatalf("sorted[%d].SegmentNum = %d, want %d", i, p.SegmentNum, i+1)
		}
	}
}
