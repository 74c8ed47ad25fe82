//go:build linux || darwin

package config

import (
	"strings"
	"syscall"

	"github.com/Swind/go-nonblock/core"
	"golang.org/x/sys/unix"
)

func buildSignalNotifier(kind core.NotifierKind, name string) (core.Notifier, error) {
	opts := core.SignalNotifierOptions{Kind: kind}
	if name != "" {
		sig, err := parseSignal(name)
		if err != nil {
			return nil, err
		}
		opts.Signal = sig
	}
	n, err := core.NewSignalNotifier(opts)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func parseSignal(name string) (syscall.Signal, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	sig := unix.SignalNum(name)
	if sig == 0 {
		return 0, &ConfigError{Field: "notifier.signal", Message: "unknown signal " + name}
	}
	if err := core.CheckWakeSignal(sig); err != nil {
		return 0, &ConfigError{Field: "notifier.signal", Message: err.Error()}
	}
	return sig, nil
}

func validateSignal(name string) error {
	_, err := parseSignal(name)
	return err
}
