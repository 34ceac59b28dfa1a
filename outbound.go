package gammu

import (
	"context"
	"time"

	"github.com/foxcpp/gammu-gateway/internal/model"
	"github.com/foxcpp/gammu-gateway/internal/subprocess"
)

// transmitPhase runs the Outbound Pipeline: batch outbound_queue,
// invoke "send", and apply per-result success/retry/failure handling.
func (g *Gateway) transmitPhase(ctx context.Context) error {
	g.mu.Lock()
	batch := g.takeTransmitBatchLocked()
	g.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	start := time.Now()

	args := make([]string, 0, len(batch)*2+1)
	args = append(args, "send")
	for _, item := range batch {
		args = append(args, item.To, item.Content)
	}

	var results []subprocess.SendOutcome
	err := g.runner.Run(ctx, args, &results)
	g.metrics.ObservePhase("transmit", start, err)
	if err != nil {
		g.log.Error("send failed", err)
		// The whole batch failed to run; return every item to the
		// queue head so it is retried next cycle without counting as
		// a transmit attempt.
		g.mu.Lock()
		g.outboundQueue = append(batch, g.outboundQueue...)
		g.mu.Unlock()
		return err
	}

	sent := make(map[int]bool, len(results))
	abandoned := make(map[int]bool, len(results))

	for _, r := range results {
		queueIndex := r.Index - 1
		if queueIndex < 0 || queueIndex >= len(batch) {
			continue
		}
		item := batch[queueIndex]

		if r.Result == "success" {
			g.handleTransmitSuccess(ctx, item, model.SendResult{Index: r.Index, Result: r.Result})
			sent[queueIndex] = true
			continue
		}

		item.TxAttempts++
		limit := g.opts.MaxTransmitAttempts
		if limit != 0 && item.TxAttempts >= limit {
			g.handleTransmitExhausted(item)
			abandoned[queueIndex] = true
		} else {
			batch[queueIndex] = item
		}
	}

	var surviving []Outbound
	for i, item := range batch {
		if sent[i] || abandoned[i] {
			continue
		}
		surviving = append(surviving, item)
	}

	g.mu.Lock()
	g.outboundQueue = append(surviving, g.outboundQueue...)
	g.metrics.OutboundQueueSize.Set(float64(len(g.outboundQueue)))
	g.mu.Unlock()

	return nil
}

// takeTransmitBatchLocked removes up to TransmitBatchSize-1 items from
// the head of outboundQueue and returns them. Caller holds g.mu.
func (g *Gateway) takeTransmitBatchLocked() []Outbound {
	n := g.opts.TransmitBatchSize - 1
	if n <= 0 {
		n = 1
	}
	if n > len(g.outboundQueue) {
		n = len(g.outboundQueue)
	}

	batch := make([]Outbound, n)
	copy(batch, g.outboundQueue[:n])
	g.outboundQueue = g.outboundQueue[n:]
	return batch
}

func (g *Gateway) handleTransmitSuccess(ctx context.Context, item Outbound, result model.SendResult) {
	msg := Message{From: item.To, Content: item.Content, ID: item.ID}

	if h, ok := g.events.Transmit(); ok {
		h(msg, result)
	}
	if item.Callback != nil {
		item.Callback(nil, item, result)
	}
	g.metrics.MessagesSent.Inc()

	// release_segments fires whenever the transmitted item carries a
	// composite id, regardless of how that id got attached to it.
	if item.ID != "" {
		g.events.EmitReleaseSegments(item.ID)
		if err := g.store.ReleaseSegments(ctx, item.ID); err != nil {
			g.log.Error("release_segments failed", err)
		}
	}
}

func (g *Gateway) handleTransmitExhausted(item Outbound) {
	err := &model.TransmitError{Message: item.To, TxAttempts: item.TxAttempts}
	g.events.EmitError(err, nil)
	if item.Callback != nil {
		item.Callback(err, item, model.SendResult{})
	}
}
