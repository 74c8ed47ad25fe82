//go:build !linux && !darwin

package config

import "github.com/Swind/go-nonblock/core"

func buildSignalNotifier(kind core.NotifierKind, name string) (core.Notifier, error) {
	n, err := core.NewSignalNotifier(core.SignalNotifierOptions{Kind: kind})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Signal names are not resolved here; NewSignalNotifier rejects the signal
// kinds on this platform.
func validateSignal(string) error { return nil }
