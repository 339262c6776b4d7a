// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

// Package realtime routes live entity events from a backend stream to
// per-collection subscribers. The Router is plain dependency-injected
// state owned by the client instance; there is no package-level singleton
// and no lazy global initialization.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/driftstore/driftstore/internal/logger"
)

var (
	// ErrNotInitialized is returned when Subscribe is called before
	// Initialize, or after Shutdown.
	ErrNotInitialized = errors.New("realtime router is not initialized")

	// ErrAlreadyInitialized is returned by a second Initialize without an
	// intervening Shutdown.
	ErrAlreadyInitialized = errors.New("realtime router is already initialized")
)

// subscriptionBuffer is the channel capacity handed to each subscriber. A
// subscriber that falls further behind than this loses messages rather than
// stalling the fanout loop.
const subscriptionBuffer = 16

// Message is one realtime event scoped to a collection. The payload is the
// raw entity document; the subscriber decodes it with the type it expects.
type Message struct {
	Collection string          `json:"collection"`
	Payload    json.RawMessage `json:"payload"`
}

// StreamConnection is the transport feeding the router. Connect returns a
// channel the transport closes when the stream ends; Close tears the stream
// down from the client side.
type StreamConnection interface {
	Connect(ctx context.Context) (<-chan Message, error)
	Close() error
}

// Subscription is one subscriber's view of a collection's event stream.
// Messages arrive on C; the channel is closed by Unsubscribe or by router
// Shutdown.
type Subscription struct {
	// C delivers the collection's messages.
	C <-chan Message

	router     *Router
	collection string
	ch         chan Message
}

// Unsubscribe detaches the subscription and closes C. Safe to call more
// than once.
func (s *Subscription) Unsubscribe() {
	s.router.unsubscribe(s)
}

// Router fans stream messages out to per-collection subscriptions. All
// state is owned by the instance; construct one per client.
type Router struct {
	conn   StreamConnection
	logger *logger.Logger

	mu          sync.Mutex
	subs        map[string]map[*Subscription]struct{}
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	initialized bool
}

// NewRouter constructs a Router over conn. The router is inert until
// Initialize is called.
func NewRouter(conn StreamConnection, log *logger.Logger) *Router {
	if log == nil {
		log = logger.Nop()
	}
	return &Router{
		conn:   conn,
		logger: log,
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Initialize connects the stream and starts the fanout loop. The loop runs
// until Shutdown is called, ctx is cancelled, or the transport closes the
// stream.
func (r *Router) Initialize(ctx context.Context) error {
	r.mu.Lock()
	if r.initialized {
		r.mu.Unlock()
		return ErrAlreadyInitialized
	}

	ctx, cancel := context.WithCancel(ctx)
	messages, err := r.conn.Connect(ctx)
	if err != nil {
		cancel()
		r.mu.Unlock()
		return err
	}

	r.cancel = cancel
	r.initialized = true
	r.wg.Add(1)
	r.mu.Unlock()

	go r.fanout(ctx, messages)
	return nil
}

// Shutdown stops the fanout loop, closes the transport and every open
// subscription channel. Safe to call when the router was never initialized.
func (r *Router) Shutdown() {
	r.mu.Lock()
	if !r.initialized {
		r.mu.Unlock()
		return
	}
	r.initialized = false
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.wg.Wait()

	if err := r.conn.Close(); err != nil {
		r.logger.Warn().Err(err).Str("func", "Shutdown").Msg("realtime stream close failed")
	}

	r.mu.Lock()
	for _, subs := range r.subs {
		for sub := range subs {
			close(sub.ch)
		}
	}
	r.subs = make(map[string]map[*Subscription]struct{})
	r.mu.Unlock()
}

// Subscribe registers a subscriber for one collection's events.
func (r *Router) Subscribe(collection string) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return nil, ErrNotInitialized
	}

	ch := make(chan Message, subscriptionBuffer)
	sub := &Subscription{C: ch, router: r, collection: collection, ch: ch}

	if r.subs[collection] == nil {
		r.subs[collection] = make(map[*Subscription]struct{})
	}
	r.subs[collection][sub] = struct{}{}
	return sub, nil
}

func (r *Router) unsubscribe(s *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.subs[s.collection]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	if len(subs) == 0 {
		delete(r.subs, s.collection)
	}
	close(s.ch)
}

// fanout delivers stream messages to the collection's subscribers. Sends
// never block: a subscriber with a full buffer loses the message, which is
// logged and counted against that subscriber only.
func (r *Router) fanout(ctx context.Context, messages <-chan Message) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				r.logger.Info().Str("func", "fanout").Msg("realtime stream ended")
				return
			}
			r.deliver(msg)
		}
	}
}

func (r *Router) deliver(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sub := range r.subs[msg.Collection] {
		select {
		case sub.ch <- msg:
		default:
			r.logger.Warn().
				Str("func", "deliver").
				Str("collection", msg.Collection).
				Msg("subscriber buffer full, message dropped")
		}
	}
}
