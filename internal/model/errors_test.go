package model

import (
	"errors"
	"testing"
)

func TestSubprocessParseErrorUnwrap(t *testing.T) {
	cause := errors.New("unexpected token")
	err := &SubprocessParseError{Argv: []string{"retrieve"}, Cause: cause}

	if !errors.Is(err, cause) {
		t.Fatal("errors.Is did not see through Unwrap")
	}
}

func TestSubprocessExitErrorFieldsScopeIsGlobal(t *testing.T) {
	err := &SubprocessExitError{Code: 1, Argv: []string{"retrieve"}}
	fields := err.Fields()
	if fields["scope"] != "global" {
		t.Errorf(`Fields()["scope"] = %v, want "global"`, fields["scope"])
	}
}

func TestSubprocessParseErrorFieldsScopeIsGlobal(t *testing.T) {
	err := &SubprocessParseError{Argv: []string{"send"}, Cause: errors.New("bad json")}
	fields := err.Fields()
	if fields["scope"] != "global" {
		t.Errorf(`Fields()["scope"] = %v, want "global"`, fields["scope"])
	}
}

func TestReceiveErrorFields(t *testing.T) {
	err := &ReceiveError{Message: "transform"}
	fields := err.Fields()
	if fields["scope"] != "receive" {
		t.Errorf(`Fields()["scope"] = %v, want "receive"`, fields["scope"])
	}
}

func TestTransmitErrorFields(t *testing.T) {
	err := &TransmitError{Message: "+1", TxAttempts: 3}
	fields := err.Fields()
	if fields["tx_attempts"] != 3 {
		t.Errorf(`Fields()["tx_attempts"] = %v, want 3`, fields["tx_attempts"])
	}
}
