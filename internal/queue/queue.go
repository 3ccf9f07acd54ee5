package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"quickflip/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// EventType names what happened to a deal.
type EventType string

const (
	DealCreated  EventType = "deal.created"
	DealReviewed EventType = "deal.reviewed"
	DealClosed   EventType = "deal.closed"
)

// DealEvent is a snapshot of a deal taken right after it changed.
type DealEvent struct {
	Type    EventType
	Deal    models.Deal
	Matches []models.BuyerMatch
}

// DealQueue is an in-memory fan-out queue for deal events
type DealQueue struct {
	items    chan DealEvent
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func(DealEvent) error
}

// NewDealQueue creates a new deal queue with the specified buffer size
func NewDealQueue(bufferSize int, logger *logrus.Logger) *DealQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &DealQueue{
		items:    make(chan DealEvent, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func(DealEvent) error, 0),
	}
}

// Push enqueues an event without blocking the caller
func (q *DealQueue) Push(event DealEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- event:
		q.logger.WithFields(logrus.Fields{
			"event":   event.Type,
			"deal_id": event.Deal.ID,
		}).Debug("Pushed deal event to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each event
func (q *DealQueue) Subscribe(handler func(DealEvent) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins dispatching queued events
func (q *DealQueue) Start() {
	go q.process()
}

func (q *DealQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case event, ok := <-q.items:
			if !ok {
				return
			}
			q.dispatch(event)
		}
	}
}

// dispatch sends the event to all subscribed handlers
func (q *DealQueue) dispatch(event DealEvent) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			q.logger.WithError(err).WithField("event", event.Type).Error("Handler failed to process deal event")
		}
	}
}

// Close stops the queue and prevents new events from being added
func (q *DealQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of queued events
func (q *DealQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *DealQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
