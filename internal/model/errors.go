package model

import "fmt"

// Fielder is implemented by the error types below so framework/log can
// merge their context into a structured log line.
type Fielder interface {
	Fields() map[string]interface{}
}

// SubprocessExitError is returned when the gammu-json helper exits with
// a non-zero status. It always surfaces as a phase-wide (scope=global)
// error: every call site that can produce it is a phase's top-level
// subprocess invocation, never a per-record failure.
type SubprocessExitError struct {
	Code int
	Argv []string
}

func (e *SubprocessExitError) Error() string {
	return fmt.Sprintf("gammu-json %v: exit status %d", e.Argv, e.Code)
}

func (e *SubprocessExitError) Fields() map[string]interface{} {
	return map[string]interface{}{"scope": "global", "exit_code": e.Code, "argv": e.Argv}
}

// SubprocessParseError is returned when the helper's stdout could not
// be parsed as JSON after it exited cleanly.
type SubprocessParseError struct {
	Argv  []string
	Cause error
}

func (e *SubprocessParseError) Error() string {
	return fmt.Sprintf("gammu-json %v: invalid JSON output: %v", e.Argv, e.Cause)
}

func (e *SubprocessParseError) Unwrap() error { return e.Cause }

func (e *SubprocessParseError) Fields() map[string]interface{} {
	return map[string]interface{}{"scope": "global", "argv": e.Argv}
}

// ReceiveError describes a per-record failure during the receive
// phase: transform, reassembly or receive_segment for a single record.
// It never aborts processing of sibling records.
type ReceiveError struct {
	Message string
	Cause   error
}

func (e *ReceiveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("receive: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("receive: %s", e.Message)
}

func (e *ReceiveError) Unwrap() error { return e.Cause }

func (e *ReceiveError) Fields() map[string]interface{} {
	return map[string]interface{}{"scope": "receive"}
}

// TransmitError is emitted once an outbound item exhausts its retry
// budget (tx_attempt_limit).
type TransmitError struct {
	Message    string
	TxAttempts int
}

func (e *TransmitError) Error() string {
	return fmt.Sprintf("transmit: %s (after %d attempts)", e.Message, e.TxAttempts)
}

func (e *TransmitError) Fields() map[string]interface{} {
	return map[string]interface{}{"scope": "transmit", "tx_attempts": e.TxAttempts}
}

// ReassemblyError describes a structural inconsistency found while
// materializing a composite message (a required segment slot is
// missing despite the index reporting it complete).
type ReassemblyError struct {
	Cause string
	ID    string
}

func (e *ReassemblyError) Error() string {
	return fmt.Sprintf("reassembly %s: %s", e.ID, e.Cause)
}

func (e *ReassemblyError) Fields() map[string]interface{} {
	return map[string]interface{}{"id": e.ID}
}

// ErrHandlerMissing is reported as a global error when the receive
// event fires with no handler registered.
type ErrHandlerMissing struct {
	Event string
}

func (e *ErrHandlerMissing) Error() string {
	return fmt.Sprintf("no handler registered for %q event", e.Event)
}

func (e *ErrHandlerMissing) Fields() map[string]interface{} {
	return map[string]interface{}{"scope": "global", "event": e.Event}
}
