//go:build !windows && !plan9
// +build !windows,!plan9

package log

import (
	"fmt"
	"log/syslog"
	"os"
	"time"
)

type syslogOut struct {
	w *syslog.Writer
}

func (s syslogOut) Write(stamp time.Time, debug bool, msg string) {
	var err error
	if debug {
		err = s.w.Debug(msg + "\n")
	} else {
		err = s.w.Info(msg + "\n")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "!!! Failed to send message to syslog daemon: %v\n", err)
	}
}

func (s syslogOut) Close() error {
	return s.w.Close()
}

// SyslogOutput returns an Output that sends messages to the system
// syslog daemon. Regular messages are logged at INFO, debug messages at
// DEBUG.
func SyslogOutput() (Output, error) {
	w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "gammu-gateway")
	return syslogOut{w}, err
}
