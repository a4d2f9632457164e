package util

import (
	"context"
	"sync"

	"github.com/agentjobs/validation-gateway/module"
)

// AllReady returns a channel that is closed when all given components are ready.
func AllReady(components ...module.ReadyDoneAware) <-chan struct{} {
	chans := make([]<-chan struct{}, 0, len(components))
	for _, c := range components {
		chans = append(chans, c.Ready())
	}
	return AllClosed(chans...)
}

// AllDone returns a channel that is closed when all given components are done.
func AllDone(components ...module.ReadyDoneAware) <-chan struct{} {
	chans := make([]<-chan struct{}, 0, len(components))
	for _, c := range components {
		chans = append(chans, c.Done())
	}
	return AllClosed(chans...)
}

// AllClosed returns a channel that is closed when all input channels are closed.
func AllClosed(channels ...<-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(len(channels))
	for _, ch := range channels {
		go func(ch <-chan struct{}) {
			<-ch
			wg.Done()
		}(ch)
	}
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// WaitClosed waits for the channel to be closed or the context to be
// cancelled. A closed channel wins if both happen at the same time.
func WaitClosed(ctx context.Context, ch <-chan struct{}) error {
	select {
	case <-ctx.Done():
		select {
		case <-ch:
			return nil
		default:
		}
		return ctx.Err()
	case <-ch:
		return nil
	}
}

// CheckClosed reports whether the channel was closed, without blocking.
func CheckClosed(done <-chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}

// WaitError waits for either an error on the error channel or for done to be
// closed. An error wins if both are available, so a shutdown caused by an
// irrecoverable error is never mistaken for a clean one.
func WaitError(errChan <-chan error, done <-chan struct{}) error {
	select {
	case err := <-errChan:
		return err
	case <-done:
		select {
		case err := <-errChan:
			return err
		default:
		}
		return nil
	}
}
