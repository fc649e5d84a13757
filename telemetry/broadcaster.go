package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Broadcaster streams records to websocket viewers. Slow viewers lose
// records rather than slowing the tick.
type Broadcaster struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	// TransitionsOnly limits the stream to plan changes.
	TransitionsOnly bool

	nextID  atomic.Uint64
	mu      sync.RWMutex
	viewers map[uint64]chan []byte
}

func NewBroadcaster(log *slog.Logger) *Broadcaster {
	return &Broadcaster{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		viewers: make(map[uint64]chan []byte),
	}
}

func (b *Broadcaster) Publish(_ context.Context, r Record) {
	if b.TransitionsOnly && !r.Transition() {
		return
	}
	msg, err := json.Marshal(r)
	if err != nil {
		b.log.Warn("broadcast encode failed", "error", err)
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.viewers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Viewers is the number of connected viewers.
func (b *Broadcaster) Viewers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.viewers)
}

func (b *Broadcaster) join() (uint64, chan []byte) {
	id := b.nextID.Add(1)
	ch := make(chan []byte, 256)
	b.mu.Lock()
	b.viewers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Broadcaster) leave(id uint64) {
	b.mu.Lock()
	delete(b.viewers, id)
	b.mu.Unlock()
}

// Handler upgrades viewers. Anything a viewer sends is ignored.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out := b.join()
		defer b.leave(id)
		b.log.Info("viewer connected", "viewer", id, "remote", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case msg := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		b.log.Info("viewer disconnected", "viewer", id)
	}
}
