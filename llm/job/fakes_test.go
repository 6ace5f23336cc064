package job

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BaSui01/logomotion/types"
)

type fakeTicker struct {
	d     time.Duration
	c     chan time.Time
	stops atomic.Int32
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               { f.stops.Add(1) }

// Tick blocks until the poller has received the tick.
func (f *fakeTicker) Tick() { f.c <- time.Now() }

// fakeClock hands out tickers in creation order: message ticker first,
// then poll ticker.
type fakeClock struct {
	created chan *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{created: make(chan *fakeTicker, 8)}
}

func (c *fakeClock) Factory(d time.Duration) Ticker {
	t := &fakeTicker{d: d, c: make(chan time.Time)}
	c.created <- t
	return t
}

func (c *fakeClock) next() *fakeTicker {
	select {
	case t := <-c.created:
		return t
	case <-time.After(2 * time.Second):
		panic("ticker was not created")
	}
}

type scriptedBackend struct {
	mu        sync.Mutex
	handle    Handle
	submitErr error
	statuses  []Status
	errs      []error
	polls     int
}

func (b *scriptedBackend) Submit(_ context.Context, _ *types.GenerationRequest) (Handle, error) {
	if b.submitErr != nil {
		return "", b.submitErr
	}
	return b.handle, nil
}

func (b *scriptedBackend) Status(_ context.Context, _ Handle) (Status, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.polls
	b.polls++
	if i < len(b.errs) && b.errs[i] != nil {
		return Status{}, b.errs[i]
	}
	if i < len(b.statuses) {
		return b.statuses[i], nil
	}
	return Pending(), nil
}

// blockingBackend answers Status only when ctx ends, like a slow upstream
// whose request is cut off by the deadline.
type blockingBackend struct {
	scriptedBackend
}

func (b *blockingBackend) Status(ctx context.Context, _ Handle) (Status, error) {
	<-ctx.Done()
	return Status{}, types.NewError(types.ErrUpstreamError, "veo request failed: "+ctx.Err().Error()).
		WithCause(ctx.Err())
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
	ch   chan string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan string, 256)}
}

func (r *recorder) On(msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	r.ch <- msg
}

func (r *recorder) wait() string {
	select {
	case m := <-r.ch:
		return m
	case <-time.After(2 * time.Second):
		panic("no progress message")
	}
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

type awaitResult struct {
	res *Result
	err error
}
