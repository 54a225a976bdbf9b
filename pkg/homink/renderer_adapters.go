package homink

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Birgenshire/homink/internal/domain"
)

// ErrChannelRendererClosed is returned when a channel renderer is asked to
// redraw after being closed.
var ErrChannelRendererClosed = errors.New("homink: channel renderer closed")

// NewCallbackRenderer adapts a RenderFunc into a full Renderer so callers can
// plug arbitrary display drivers without defining structs.
func NewCallbackRenderer(name string, fn RenderFunc) Renderer {
	if name == "" {
		name = "callback"
	}
	return &callbackRenderer{name: name, fn: fn}
}

// NewChannelRenderer exposes redraw snapshots via a channel; it returns the
// renderer, the read-only channel, and a close function that the caller
// should invoke during shutdown.
func NewChannelRenderer(name string, buffer int) (Renderer, <-chan []SensorView, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan []SensorView, buffer)
	r := &channelRenderer{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return r, ch, func() { r.close() }
}

type callbackRenderer struct {
	name string
	fn   RenderFunc
}

func (r *callbackRenderer) Redraw(views []domain.SensorView) error {
	if r.fn == nil {
		return fmt.Errorf("callback renderer %q: nil handler", r.name)
	}
	return r.fn(views)
}

func (r *callbackRenderer) Name() string { return r.name }

type channelRenderer struct {
	name   string
	ch     chan []SensorView
	closed chan struct{}
	once   sync.Once
}

func (r *channelRenderer) Redraw(views []domain.SensorView) error {
	select {
	case <-r.closed:
		return ErrChannelRendererClosed
	default:
	}

	snapshot := make([]SensorView, len(views))
	copy(snapshot, views)

	select {
	case <-r.closed:
		return ErrChannelRendererClosed
	case r.ch <- snapshot:
		return nil
	}
}

func (r *channelRenderer) Name() string { return r.name }

func (r *channelRenderer) close() {
	r.once.Do(func() {
		close(r.closed)
		close(r.ch)
	})
}
