package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ApkSelected   = "apk_selected"
	ApkCleared    = "apk_cleared"
	Decompiled    = "decompiled"
	AssetAdded    = "asset_added"
	Recompiled    = "recompiled"
	ActionFailed  = "action_failed"
	AllEventTypes = "*"
)

type Event struct {
	ID        string
	Type      string
	Timestamp time.Time
	Data      map[string]interface{}
}

type EventHandler interface {
	Handle(event Event)
	GetID() string
}

// Publisher is the part of Bus the workflow depends on
type Publisher interface {
	Publish(event Event)
}

// Bus fans events out to subscribers on a worker goroutine. Publish never
// blocks; events are dropped when the buffer is full or the bus is closed.
type Bus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	buffer      chan Event
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	onPanic     func(handlerID string, r interface{})
}

func NewBus(bufferSize int) *Bus {
	ctx, cancel := context.WithCancel(context.Background())

	bus := &Bus{
		subscribers: make(map[string][]EventHandler),
		buffer:      make(chan Event, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	bus.startWorker()
	return bus
}

// OnHandlerPanic registers a callback for recovered subscriber panics
func (b *Bus) OnHandlerPanic(fn func(handlerID string, r interface{})) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPanic = fn
}

func (b *Bus) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.Timestamp = time.Now()

	if b.ctx.Err() != nil {
		return
	}

	select {
	case b.buffer <- event:
	case <-b.ctx.Done():
	default:
		// Drop event if buffer full to prevent blocking
	}
}

// Subscribe registers handler for eventType, or for everything with AllEventTypes
func (b *Bus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

func (b *Bus) Unsubscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subscribers[eventType]
	for i, h := range handlers {
		if h.GetID() == handler.GetID() {
			b.subscribers[eventType] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
}

// Shutdown drains queued events, waits for running handlers and stops the worker
func (b *Bus) Shutdown() {
	b.cancel()
	b.wg.Wait()
}

func (b *Bus) startWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for {
			select {
			case event := <-b.buffer:
				b.dispatchEvent(event)
			case <-b.ctx.Done():
				for {
					select {
					case event := <-b.buffer:
						b.dispatchEvent(event)
					default:
						return
					}
				}
			}
		}
	}()
}

func (b *Bus) dispatchEvent(event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.subscribers[event.Type])+len(b.subscribers[AllEventTypes]))
	handlers = append(handlers, b.subscribers[event.Type]...)
	handlers = append(handlers, b.subscribers[AllEventTypes]...)
	onPanic := b.onPanic
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.wg.Add(1)
		go func(h EventHandler) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil && onPanic != nil {
					onPanic(h.GetID(), r)
				}
			}()
			h.Handle(event)
		}(handler)
	}
}

// HandlerFunc adapts a function to EventHandler
type HandlerFunc struct {
	ID string
	Fn func(Event)
}

func (h HandlerFunc) Handle(event Event) {
	h.Fn(event)
}

func (h HandlerFunc) GetID() string {
	return h.ID
}
