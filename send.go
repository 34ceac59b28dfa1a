package gammu

import "errors"

// Send queues an outbound SMS for transmission on the next Transmit
// phase. callback, if non-nil, is invoked exactly once: with a nil
// error and the SendResult on success, or with a non-nil error once
// the retry budget (Options.MaxTransmitAttempts) is exhausted.
func (g *Gateway) Send(to, content string, callback func(error, Outbound, SendResult)) error {
	if to == "" {
		return errors.New("gammu: Send: to must not be empty")
	}

	item := Outbound{To: to, Content: content, Callback: callback}

	g.mu.Lock()
	g.outboundQueue = append(g.outboundQueue, item)
	g.mu.Unlock()

	g.metrics.OutboundQueueSize.Inc()

	return nil
}
