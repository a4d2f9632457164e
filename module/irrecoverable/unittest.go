package irrecoverable

import (
	"context"
	"sync"
	"testing"
)

// MockSignalerContext fails the test as soon as an error is thrown.
type MockSignalerContext struct {
	context.Context
	t testing.TB
}

var _ SignalerContext = &MockSignalerContext{}

func (m MockSignalerContext) sealed() {}

func (m MockSignalerContext) Throw(err error) {
	m.t.Fatalf("mock signaler context received error: %v", err)
}

func NewMockSignalerContext(t testing.TB, ctx context.Context) *MockSignalerContext {
	return &MockSignalerContext{
		Context: ctx,
		t:       t,
	}
}

func NewMockSignalerContextWithCancel(t testing.TB, parent context.Context) (*MockSignalerContext, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	return NewMockSignalerContext(t, ctx), cancel
}

// CapturingSignalerContext records thrown errors instead of failing, for
// tests asserting that a component gives up on an unusable environment.
type CapturingSignalerContext struct {
	context.Context
	mu     sync.Mutex
	errs   []error
	thrown chan struct{}
	once   sync.Once
}

var _ SignalerContext = (*CapturingSignalerContext)(nil)

func NewCapturingSignalerContext(ctx context.Context) *CapturingSignalerContext {
	return &CapturingSignalerContext{
		Context: ctx,
		thrown:  make(chan struct{}),
	}
}

func (c *CapturingSignalerContext) sealed() {}

func (c *CapturingSignalerContext) Throw(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
	c.once.Do(func() { close(c.thrown) })
}

// Thrown is closed once the first error was thrown.
func (c *CapturingSignalerContext) Thrown() <-chan struct{} {
	return c.thrown
}

func (c *CapturingSignalerContext) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}
