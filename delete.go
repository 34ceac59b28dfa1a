package gammu

import (
	"context"
	"strconv"
	"time"

	"github.com/foxcpp/gammu-gateway/internal/subprocess"
)

// deletePhase runs the Deletion Pipeline: batch deletion_index,
// invoke "delete", and retain any location the helper did not confirm.
func (g *Gateway) deletePhase(ctx context.Context) error {
	g.mu.Lock()
	locations := g.takeDeleteBatchLocked()
	g.mu.Unlock()

	if len(locations) == 0 {
		return nil
	}

	start := time.Now()

	args := make([]string, 0, len(locations)+1)
	args = append(args, "delete")
	for _, loc := range locations {
		args = append(args, strconv.Itoa(loc))
	}

	var resp subprocess.DeleteResponse
	err := g.runner.Run(ctx, args, &resp)
	g.metrics.ObservePhase("delete", start, err)
	if err != nil {
		g.log.Error("delete failed", err)
		// Phase-level failure: the index is untouched, so put every
		// location we pulled back.
		g.mu.Lock()
		for _, loc := range locations {
			if msg, ok := g.pendingDeletes[loc]; ok {
				g.deletionIndex[loc] = msg
			}
		}
		g.mu.Unlock()
		return err
	}

	g.mu.Lock()
	for _, loc := range locations {
		msg, hadPending := g.pendingDeletes[loc]
		delete(g.pendingDeletes, loc)

		verdict := resp.Detail[strconv.Itoa(loc)]
		if verdict == "ok" {
			g.metrics.MessagesDeleted.Inc()
			continue
		}
		// Not confirmed: retained for a future attempt.
		if hadPending {
			g.deletionIndex[loc] = msg
		}
	}
	g.metrics.DeletionQueueSize.Set(float64(len(g.deletionIndex)))
	g.mu.Unlock()

	return nil
}

// takeDeleteBatchLocked removes up to DeleteBatchSize-1 locations from
// deletionIndex (iteration order unspecified) and stages them in
// pendingDeletes so a failed or partial delete call can restore them.
// Caller holds g.mu.
func (g *Gateway) takeDeleteBatchLocked() []int {
	n := g.opts.DeleteBatchSize - 1
	if n <= 0 {
		n = 1
	}

	locations := make([]int, 0, n)
	for loc, msg := range g.deletionIndex {
		if len(locations) >= n {
			break
		}
		locations = append(locations, loc)
		g.pendingDeletes[loc] = msg
		delete(g.deletionIndex, loc)
	}
	return locations
}
