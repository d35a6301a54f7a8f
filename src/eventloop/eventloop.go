// Package eventloop coordinates resident mode: hotkey and tray triggers
// start a selection session on the UI goroutine, one at a time.
package eventloop

import (
	"context"

	"fyne.io/fyne/v2"
	"go.uber.org/zap"
)

// StartFunc opens a new session and returns a channel closed when it ends.
// It is called on the UI goroutine.
type StartFunc func(ctx context.Context) (<-chan struct{}, error)

type Options struct {
	Start StartFunc
	// Dispatch runs f on the UI goroutine. Defaults to fyne.Do.
	Dispatch func(f func())
	// OnBusy is told when a session starts and ends.
	OnBusy func(busy bool)
	// OnRejected is called when a trigger arrives while a session runs.
	OnRejected func()
}

// Loop is the single-goroutine coordinator. Only Trigger may be called from
// other goroutines.
type Loop struct {
	opts     Options
	busy     bool
	triggers chan struct{}
	finished chan struct{}
}

func New(opts Options) *Loop {
	if opts.Dispatch == nil {
		opts.Dispatch = fyne.Do
	}
	return &Loop{
		opts:     opts,
		triggers: make(chan struct{}, 4),
		finished: make(chan struct{}, 1),
	}
}

// Trigger asks for a new session. Extra triggers beyond the queue are
// dropped.
func (l *Loop) Trigger() {
	select {
	case l.triggers <- struct{}{}:
	default:
		zap.S().Debugf("eventloop: trigger queue full, dropping")
	}
}

// Run processes triggers until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.triggers:
			l.handleTrigger(ctx)
		case <-l.finished:
			zap.S().Debugf("eventloop: session finished")
			l.setBusy(false)
		}
	}
}

func (l *Loop) handleTrigger(ctx context.Context) {
	if l.busy {
		zap.S().Infof("eventloop: busy, skipping trigger")
		if l.opts.OnRejected != nil {
			l.opts.OnRejected()
		}
		return
	}
	l.setBusy(true)

	l.opts.Dispatch(func() {
		done, err := l.opts.Start(ctx)
		if err != nil {
			zap.S().Warnf("eventloop: session failed to start: %v", err)
			l.finished <- struct{}{}
			return
		}
		go func() {
			<-done
			l.finished <- struct{}{}
		}()
	})
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if l.opts.OnBusy != nil {
		l.opts.OnBusy(b)
	}
}
