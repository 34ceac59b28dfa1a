package gammu

// On registers a handler for one of the six recognized events
// ("receive", "transmit", "error", "receive_segment", "return_segments",
// "release_segments"). handler must match that event's documented Go
// func type exactly.
func (g *Gateway) On(event string, handler interface{}) error {
	return g.events.Set(event, handler)
}

// OnAll registers every handler in handlers, the bulk form of On for
// callers that want to set up several events at once. It returns the
// first registration error encountered; map iteration order is
// unspecified, so callers relying on partial registration on error
// should call On one event at a time instead.
func (g *Gateway) OnAll(handlers map[string]interface{}) error {
	for name, h := range handlers {
		if err := g.events.Set(name, h); err != nil {
			return err
		}
	}
	return nil
}
