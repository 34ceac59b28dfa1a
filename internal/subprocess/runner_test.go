package subprocess

import (
	"context"
	"testing"

	"github.com/foxcpp/gammu-gateway/framework/log"
	"github.com/foxcpp/gammu-gateway/internal/model"
)

func TestExecRunParsesJSON(t *testing.T) {
	e := NewExec("/bin/sh", "", log.Logger{})

	var out []int
	err := e.Run(context.Background(), []string{"-c", `echo '[1,2,3]'`}, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 || out[0] != 1 || out[2] != 3 {
		t.Fatalf("out = %v, want [1 2 3]", out)
	}
}

func TestExecRunNonZeroExit(t *testing.T) {
	e := NewExec("/bin/sh", "", log.Logger{})

	var out interface{}
	err := e.Run(context.Background(), []string{"-c", `exit 7`}, &out)
	if err == nil {
		t.Fatal("expected an error for a non-zero exit status")
	}
	exitErr, ok := err.(*model.SubprocessExitError)
	if !ok {
		t.Fatalf("err = %T, want *model.SubprocessExitError", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("Code = %d, want 7", exitErr.Code)
	}
}

func TestExecRunInvalidJSON(t *testing.T) {
	e := NewExec("/bin/sh", "", log.Logger{})

	var out interface{}
	err := e.Run(context.Background(), []string{"-c", `echo 'not json'`}, &out)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if _, ok := err.(*model.SubprocessParseError); !ok {
		t.Fatalf("err = %T, want *model.SubprocessParseError", err)
	}
}

func TestExecRunPrefixExtendsPath(t *testing.T) {
	e := NewExec("/bin/sh", "/opt/gammu", log.Logger{})

	env := e.environ()
	found := false
	for _, kv := range env {
		if len(kv) > 5 && kv[:5] == "PATH=" {
			found = true
			if kv[5:19] != "/opt/gammu/bin" {
				t.Errorf("PATH = %q, want it to start with /opt/gammu/bin", kv)
			}
		}
	}
	if !found {
		t.Fatal("no PATH entry found in environ()")
	}
}
