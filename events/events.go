package events

import (
	"context"
	"sync"

	"slotbot/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypePlayerCreated EventType = "player_created"
	EventTypeSpin          EventType = "spin"
	EventTypeDuelResolved  EventType = "duel_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	PlayerID        int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// PlayerCreatedEvent represents a new player bootstrap
type PlayerCreatedEvent struct {
	PlayerID       int64
	Username       string
	InitialBalance int64
}

func (e PlayerCreatedEvent) Type() EventType {
	return EventTypePlayerCreated
}

// SpinEvent represents a completed slot spin
type SpinEvent struct {
	PlayerID int64
	Stake    int64
	Grid     string
	Payout   int64
}

func (e SpinEvent) Type() EventType {
	return EventTypeSpin
}

// DuelResolvedEvent represents a settled duel
type DuelResolvedEvent struct {
	ChallengerID int64
	TargetID     int64
	Amount       int64
	WinnerID     *int64 // nil on a tie
	Pot          int64
	Voided       bool
}

func (e DuelResolvedEvent) Type() EventType {
	return EventTypeDuelResolved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously so a slow subscriber cannot block the command that emitted.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}
