package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rxtech-lab/argo-agents/internal/types"
)

// EventType identifies the payload carried by an Event.
type EventType string

const (
	// EventTypePriceUpdate carries a PriceUpdate payload.
	EventTypePriceUpdate EventType = "price_update"
	// EventTypeSignal carries a types.TradeSignal payload.
	EventTypeSignal EventType = "signal"
	// EventTypeTradeExecuted carries a TradeExecution payload.
	EventTypeTradeExecuted EventType = "trade_executed"
	// EventTypeError carries an AgentError payload.
	EventTypeError EventType = "error"
)

// PriceUpdate is emitted by the ticker agent for each successful fetch.
type PriceUpdate struct {
	Symbol string
	Bar    types.Bar
}

// TradeExecution is emitted by the trading agent after a signal is applied.
// Quantity is the post-trade position quantity, not the traded quantity: a
// full liquidation reports 0. Consumers must preserve this semantic.
type TradeExecution struct {
	Symbol   string
	Action   types.SignalAction
	Price    float64
	Quantity int64
	Cash     float64
	Time     time.Time
}

// AgentError is emitted when a work cycle or signal application fails.
type AgentError struct {
	Agent string
	Err   error
}

// Event is one message on an agent's event stream.
type Event struct {
	ID      string
	Type    EventType
	Source  string
	Time    time.Time
	Payload any
}

// NewEvent creates an event with a fresh ID and the current time.
func NewEvent(eventType EventType, source string, payload any) Event {
	return Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Source:  source,
		Time:    time.Now(),
		Payload: payload,
	}
}

// EventBus broadcasts events to all subscribers over buffered channels.
// Events are delivered in publish order per subscriber. If a subscriber's
// buffer is full the event is dropped for that subscriber so a slow consumer
// cannot block the publishing agent.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	bufSize     int
	closed      bool

	// onDrop is called with the subscriber index when an event is dropped.
	onDrop func(subscriberIdx int)
}

// NewEventBus creates a bus with the given per-subscriber buffer size.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = 64
	}

	return &EventBus{bufSize: bufferSize}
}

// SetOnDrop registers a callback invoked when a slow subscriber drops an
// event.
func (b *EventBus) SetOnDrop(fn func(subscriberIdx int)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.onDrop = fn
}

// Subscribe creates and returns a new subscriber channel.
func (b *EventBus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufSize)
	if b.closed {
		close(ch)

		return ch
	}

	b.subscribers = append(b.subscribers, ch)

	return ch
}

// Unsubscribe removes a channel returned by Subscribe and closes it.
// Channels the bus does not own are ignored.
func (b *EventBus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if (<-chan Event)(sub) == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub)

			return
		}
	}
}

// Publish delivers the event to every subscriber without blocking.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for i, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			if b.onDrop != nil {
				b.onDrop(i)
			}
		}
	}
}

// Close closes all subscriber channels. Publishing after Close is a no-op.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for _, ch := range b.subscribers {
		close(ch)
	}

	b.subscribers = nil
}
