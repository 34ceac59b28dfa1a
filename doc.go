// Package gammu is the core of an SMS gateway library: it drives the
// gammu-json helper subprocess to send, receive and delete short
// messages on an attached GSM modem.
//
// A Gateway polls the modem on a fixed interval (the Poll Scheduler),
// reassembles concatenated SMS into composite messages (the Reassembly
// Engine), maintains outbound transmit and deletion retry state, and
// dispatches the results to handlers the embedder registers with On.
//
// The gammu-json subprocess, the embedding application, and process
// bootstrap (flag parsing, PATH setup, logging configuration) are
// external collaborators; see cmd/gammu-gateway for one way to wire
// them together.
package gammu
