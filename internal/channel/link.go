package channel

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrClosed is returned by Send after the link has been closed.
var ErrClosed = errors.New("channel: link closed")

// Frame is one encoded message plus the launch it belongs to. Receivers
// compare Launch against the link they hold so a stale frame from a previous
// worker instance is never acted on.
type Frame struct {
	Launch uuid.UUID
	Data   []byte
}

const frameBuffer = 64

// Link is the bidirectional transport for one worker launch. Each launch
// gets a fresh link; messages within one direction are delivered in send
// order. Sends never block: when a buffer is full the frame is dropped and
// counted.
type Link struct {
	launch       uuid.UUID
	toWorker     chan Frame
	toController chan Frame

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// New creates a link tied to the given launch ID.
func New(launch uuid.UUID) *Link {
	return &Link{
		launch:       launch,
		toWorker:     make(chan Frame, frameBuffer),
		toController: make(chan Frame, frameBuffer),
	}
}

// Launch returns the launch ID this link belongs to.
func (l *Link) Launch() uuid.UUID { return l.launch }

// Controller returns the controller-side endpoint.
func (l *Link) Controller() *Endpoint {
	return &Endpoint{link: l, send: l.toWorker, recv: l.toController}
}

// Worker returns the worker-side endpoint.
func (l *Link) Worker() *Endpoint {
	return &Endpoint{link: l, send: l.toController, recv: l.toWorker}
}

// Close tears down both directions. Pending frames remain readable until
// drained; further sends fail with ErrClosed.
func (l *Link) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.toWorker)
	close(l.toController)
}

// Dropped reports how many frames were discarded due to full buffers.
func (l *Link) Dropped() uint64 { return l.dropped.Load() }

// Endpoint is one side of a link.
type Endpoint struct {
	link *Link
	send chan Frame
	recv chan Frame
}

// Launch returns the launch ID of the underlying link.
func (e *Endpoint) Launch() uuid.UUID { return e.link.launch }

// Send encodes and enqueues a message without blocking. A full buffer drops
// the frame; a closed link returns ErrClosed.
func (e *Endpoint) Send(m Message) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	return e.SendRaw(data)
}

// SendRaw enqueues an already-encoded frame.
func (e *Endpoint) SendRaw(data []byte) error {
	e.link.mu.RLock()
	defer e.link.mu.RUnlock()
	if e.link.closed {
		return ErrClosed
	}
	select {
	case e.send <- Frame{Launch: e.link.launch, Data: data}:
	default:
		e.link.dropped.Add(1)
	}
	return nil
}

// Recv exposes the incoming frame stream. The channel is closed when the
// link is closed.
func (e *Endpoint) Recv() <-chan Frame { return e.recv }
