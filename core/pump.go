package core

import (
	"context"
	"runtime"
	"time"
)

// DefaultPollInterval is the drain cadence of a Pump under NotifierPoll,
// roughly one frame at 60Hz.
const DefaultPollInterval = 16 * time.Millisecond

// Pump is a ready-made main loop for hosts that have nothing else to do on
// the main thread.
type Pump struct {
	dispatcher   *Dispatcher
	pollInterval time.Duration
}

// NewPump creates a pump for d. pollInterval is only used with NotifierPoll;
// zero selects DefaultPollInterval.
func NewPump(d *Dispatcher, pollInterval time.Duration) *Pump {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Pump{dispatcher: d, pollInterval: pollInterval}
}

// Run locks the calling goroutine to its OS thread, makes it the main thread
// and dispatches until ctx is done or a main-thread callable returns an
// error. It returns ctx.Err() on cancellation.
func (p *Pump) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	d := p.dispatcher
	if err := d.EnableMainThreadEvent(); err != nil {
		return err
	}

	ready := d.Notifier().Ready()
	if ready == nil {
		return p.poll(ctx)
	}

	// Work queued before registration is drained up front.
	if _, err := d.drainActive(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ready:
			if _, err := d.DrainReady(); err != nil {
				return err
			}
		}
	}
}

func (p *Pump) poll(ctx context.Context) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := p.dispatcher.PollEvent(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
