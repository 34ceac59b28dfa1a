package gammu

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/foxcpp/gammu-gateway/framework/future"
	"github.com/foxcpp/gammu-gateway/internal/model"
	"github.com/foxcpp/gammu-gateway/internal/reassembly"
	"github.com/foxcpp/gammu-gateway/internal/subprocess"
)

// receivePhase runs the Inbound Pipeline: retrieve, transform, route
// singles vs multi-part segments, reassemble, then deliver everything
// queued to the receive handler.
func (g *Gateway) receivePhase(ctx context.Context) error {
	start := time.Now()
	pollID := uuid.NewString()

	var records []subprocess.RetrieveRecord
	err := g.runner.Run(ctx, []string{"retrieve"}, &records)
	g.metrics.ObservePhase("receive", start, err)
	if err != nil {
		g.log.Error("retrieve failed", err)
		return err
	}
	g.log.Debugf("poll %s: retrieved %d record(s)", pollID, len(records))

	if len(records) == 0 {
		return nil
	}

	// Only the transform step is independent per record (pure parsing,
	// no shared state), so only it runs concurrently, mirroring the
	// teacher's check-runner fan-out. Routing, reassembly, and the
	// per-poll dedup index all touch shared state keyed by composite
	// id and must not race against each other, so they run serially on
	// the calling goroutine after every transform has finished.
	segs := make([]model.Segment, len(records))
	transformErrs := make([]error, len(records))

	g2, _ := errgroup.WithContext(ctx)
	for i, rec := range records {
		i, rec := i, rec
		g2.Go(func() error {
			segs[i], transformErrs[i] = g.transform(rec)
			return nil
		})
	}
	// g2.Wait's error is always nil: transform never returns one here;
	// failures are recorded per-index in transformErrs instead.
	_ = g2.Wait()

	// per-poll reassembly index: canonical segment key -> true, once a
	// composite covering it has been delivered to inbound_queue this
	// poll. Owned solely by this call; discarded on return.
	covered := make(map[string]bool)

	var toDeliver []Message
	for i, seg := range segs {
		if err := transformErrs[i]; err != nil {
			g.events.EmitError(&model.ReceiveError{Message: "transform", Cause: err}, nil)
			continue
		}

		if !seg.Multipart() {
			toDeliver = append(toDeliver, singleToMessage(seg))
			continue
		}

		msg, err := g.receiveMultipart(ctx, seg, covered)
		if err != nil {
			g.events.EmitError(&model.ReceiveError{Message: "reassembly", Cause: err}, nil)
			continue
		}
		if msg != nil {
			toDeliver = append(toDeliver, *msg)
		}
	}

	g.deliverIncoming(ctx, toDeliver)

	return nil
}

// transform converts one retrieve record into a Segment, parsing its
// timestamps and assigning id for multi-part records.
func (g *Gateway) transform(rec subprocess.RetrieveRecord) (model.Segment, error) {
	ts, ok, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return model.Segment{}, err
	}
	if !ok {
		ts = time.Time{}
	}

	smscTS, hasSMSC, err := parseTimestamp(rec.SMSCTimestamp)
	if err != nil {
		return model.Segment{}, err
	}

	seg := model.Segment{
		Location:      rec.Location,
		From:          rec.From,
		Content:       rec.Content,
		UDH:           rec.UDH,
		SegmentNum:    rec.Segment,
		TotalSegments: rec.TotalSegments,
		Timestamp:     ts,
		SMSCTimestamp: smscTS,
		HasSMSCTime:   hasSMSC,
	}

	if seg.Multipart() {
		seg.ID = fmt.Sprintf("%s-%d-%d", seg.From, seg.UDH, seg.TotalSegments)
	}

	return seg, nil
}

// receiveMultipart runs the multi-part path for one segment:
// receive_segment, per-poll dedup, deletion scheduling, and reassembly.
// Returns a non-nil *Message only when this call is the one that
// completed the composite. Called serially, one record at a time, from
// receivePhase: receive_segment/return_segments calls, the covered
// index, and deletionIndex pre-scheduling must not interleave across
// records of the same composite, or the composite can be reassembled
// and delivered more than once in a single poll.
func (g *Gateway) receiveMultipart(ctx context.Context, seg model.Segment, covered map[string]bool) (*Message, error) {
	shouldDelete, err := g.invokeReceiveSegment(ctx, seg)
	if err != nil {
		return nil, err
	}

	if covered[segmentKey(seg)] {
		return nil, nil
	}

	if shouldDelete {
		g.mu.Lock()
		g.deletionIndex[seg.Location] = Message{Location: []int{seg.Location}}
		g.mu.Unlock()
		// Zeroed so the composite built below doesn't carry this
		// location into deletionIndex a second time; deliverIncoming
		// drops zero entries from a composite's Location for exactly
		// this reason.
		seg.Location = 0
	}

	peers, err := g.invokeReturnSegments(ctx, seg.ID)
	if err != nil {
		return nil, err
	}

	msg, err := reassembly.Reassemble(seg, peers)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}

	for _, part := range msg.Parts {
		covered[segmentKey(part)] = true
	}

	return msg, nil
}

// invokeReceiveSegment calls the registered receive_segment handler,
// or the built-in default (reject deletion, retain in segment_cache)
// when none is registered.
func (g *Gateway) invokeReceiveSegment(ctx context.Context, seg model.Segment) (bool, error) {
	h, ok := g.events.ReceiveSegment()
	if !ok {
		return g.store.ReceiveSegment(ctx, seg)
	}

	// The handler's own error only ever means "don't delete this
	// segment"; it is carried as the future's value, not its error, so
	// that only context cancellation surfaces as an error here.
	fut := future.New()
	h(seg, func(err error) { fut.Set(err, nil) })

	val, err := fut.GetContext(ctx)
	if err != nil {
		return false, err
	}
	handlerErr, _ := val.(error)
	return handlerErr == nil, nil
}

// invokeReturnSegments calls the registered return_segments handler,
// or the built-in default (segment_cache[id]) when none is registered.
func (g *Gateway) invokeReturnSegments(ctx context.Context, id string) ([]model.Segment, error) {
	h, ok := g.events.ReturnSegments()
	if !ok {
		return g.store.ReturnSegments(ctx, id)
	}

	type outcome struct {
		err  error
		segs []model.Segment
	}
	fut := future.New()
	h(id, func(err error, segs []model.Segment) { fut.Set(outcome{err, segs}, nil) })

	val, err := fut.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	res := val.(outcome)
	return res.segs, res.err
}

// deliverIncoming drains the messages collected this poll to the
// receive handler, scheduling deletion and release_segments on
// success.
func (g *Gateway) deliverIncoming(ctx context.Context, messages []Message) {
	h, ok := g.events.Receive()
	if !ok {
		if len(messages) > 0 {
			g.events.EmitError(&model.ErrHandlerMissing{Event: "receive"}, nil)
		}
		return
	}

	for _, msg := range messages {
		msg := msg
		fut := future.New()
		h(msg, func(err error) { fut.Set(err, nil) })

		val, err := fut.GetContext(ctx)
		if err != nil {
			continue
		}
		handlerErr, _ := val.(error)
		if handlerErr != nil {
			continue
		}

		g.mu.Lock()
		for _, loc := range msg.Location {
			// A zero entry means that part's location was already
			// scheduled for deletion in receiveMultipart (the segment's
			// receive_segment handler returned should_delete=true); it
			// is not a real modem slot and must not be re-added here.
			if loc == 0 {
				continue
			}
			g.deletionIndex[loc] = msg
		}
		g.mu.Unlock()

		g.metrics.MessagesReceived.Inc()

		if msg.Composite() {
			g.events.EmitReleaseSegments(msg.ID)
			if err := g.store.ReleaseSegments(ctx, msg.ID); err != nil {
				g.log.Error("release_segments failed", err)
			}
		}
	}
}

func singleToMessage(seg model.Segment) Message {
	return Message{
		Location:      []int{seg.Location},
		From:          seg.From,
		Content:       seg.Content,
		Timestamp:     seg.Timestamp,
		SMSCTimestamp: seg.SMSCTimestamp,
		HasSMSCTime:   seg.HasSMSCTime,
	}
}

func segmentKey(seg model.Segment) string {
	return fmt.Sprintf("%s/%d", seg.ID, seg.SegmentNum)
}
