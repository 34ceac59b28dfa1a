// Package subprocess implements the Subprocess Runner: it spawns the
// gammu-json helper, collects its complete standard output, and parses
// it as JSON, surfacing exit and parse errors as the typed errors the
// rest of the gateway expects. Stdin is never connected since the
// helper does not read it; stdout is captured in full rather than
// streamed, and stderr is kept for diagnostics only.
package subprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/foxcpp/gammu-gateway/framework/log"
	"github.com/foxcpp/gammu-gateway/internal/model"
)

// Runner spawns gammu-json with the given argument vector and decodes
// its stdout as JSON into out.
type Runner interface {
	Run(ctx context.Context, args []string, out interface{}) error
}

// Exec is the real Runner, spawning the helper named Path.
type Exec struct {
	// Path is the gammu-json executable; resolved via PATH if it is
	// not absolute.
	Path string

	// Prefix, if set, causes "<prefix>/bin" to be prepended to PATH in
	// the spawned process's environment.
	Prefix string

	Log log.Logger
}

func NewExec(path, prefix string, logger log.Logger) *Exec {
	return &Exec{Path: path, Prefix: prefix, Log: logger}
}

func (e *Exec) Run(ctx context.Context, args []string, out interface{}) error {
	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Stdin = nil // closed immediately; the helper does not read stdin.
	cmd.Env = e.environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if stderr.Len() > 0 {
		e.Log.Debugf("gammu-json %v: stderr: %s", args, strings.TrimRight(stderr.String(), "\n"))
	}

	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			return &model.SubprocessExitError{Code: exitErr.ExitCode(), Argv: args}
		}
		return runErr
	}

	if err := json.Unmarshal(stdout.Bytes(), out); err != nil {
		return &model.SubprocessParseError{Argv: args, Cause: err}
	}

	return nil
}

func (e *Exec) environ() []string {
	env := os.Environ()
	if e.Prefix == "" {
		return env
	}

	bin := filepath.Join(e.Prefix, "bin")
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = "PATH=" + bin + string(os.PathListSeparator) + strings.TrimPrefix(kv, "PATH=")
			return env
		}
	}
	return append(env, "PATH="+bin)
}

var _ Runner = (*Exec)(nil)
