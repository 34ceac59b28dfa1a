package gammu

import (
	"fmt"
	"time"
)

// timestampLayouts lists the wall-clock formats gammu-json is known to
// emit for "timestamp" and "smsc_timestamp" fields, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s against the known gammu-json timestamp
// layouts. An empty string is not an error: it reports ok=false so
// callers can distinguish "field absent" from "field malformed".
func parseTimestamp(s string) (t time.Time, ok bool, err error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range timestampLayouts {
		if parsed, perr := time.Parse(layout, s); perr == nil {
			return parsed, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("gammu: unrecognized timestamp %q", s)
}
