package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/saptono/wicara/domain/entities"
	"github.com/saptono/wicara/domain/repositories"
)

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

type fakeChannel struct {
	id     string
	events chan entities.RawMessage
	err    error

	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func newFakeChannel(id string) *fakeChannel {
	return &fakeChannel{id: id, events: make(chan entities.RawMessage, 16)}
}

func (f *fakeChannel) ConversationID() string             { return f.id }
func (f *fakeChannel) Events() <-chan entities.RawMessage { return f.events }
func (f *fakeChannel) Err() error                         { return f.err }

func (f *fakeChannel) SendAudio(chunk []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return io.ErrClosedPipe
	}
	f.sent = append(f.sent, append([]byte(nil), chunk...))
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

func (f *fakeChannel) sentChunks() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeDialer struct {
	mu      sync.Mutex
	channel repositories.AgentChannel
	err     error
	calls   int
}

func (f *fakeDialer) Dial(ctx context.Context, config repositories.StreamConfig) (repositories.AgentChannel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.channel, nil
}

func (f *fakeDialer) dialCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCapture struct {
	mu     sync.Mutex
	chunks [][]byte

	stop     chan struct{}
	stopOnce sync.Once
}

func newFakeCapture(chunks ...[]byte) *fakeCapture {
	return &fakeCapture{chunks: chunks, stop: make(chan struct{})}
}

func (f *fakeCapture) Read(p []byte) (int, error) {
	f.mu.Lock()
	if len(f.chunks) > 0 {
		chunk := f.chunks[0]
		f.chunks = f.chunks[1:]
		f.mu.Unlock()
		n := copy(p, chunk)
		return n, nil
	}
	f.mu.Unlock()
	<-f.stop
	return 0, io.EOF
}

func (f *fakeCapture) Stop() error {
	f.stopOnce.Do(func() { close(f.stop) })
	return nil
}

func (f *fakeCapture) Close() error { return f.Stop() }

type fakeMicrophone struct {
	session repositories.CaptureSession
	err     error
}

func (f *fakeMicrophone) Acquire(ctx context.Context, config repositories.CaptureConfig) (repositories.CaptureSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

// fakePlayer records plays. When gated, each Play blocks until release is
// signalled or its context is cancelled.
type fakePlayer struct {
	mu        sync.Mutex
	played    [][]byte
	active    int
	maxActive int
	playErr   error

	gate chan struct{}
}

func (p *fakePlayer) Play(ctx context.Context, audio []byte) error {
	p.mu.Lock()
	p.active++
	if p.active > p.maxActive {
		p.maxActive = p.active
	}
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			p.mu.Lock()
			p.active--
			p.mu.Unlock()
			return ctx.Err()
		}
	}

	p.mu.Lock()
	p.played = append(p.played, append([]byte(nil), audio...))
	p.active--
	err := p.playErr
	p.mu.Unlock()
	return err
}

func (p *fakePlayer) playedChunks() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.played))
	copy(out, p.played)
	return out
}

func (p *fakePlayer) maxConcurrent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxActive
}
