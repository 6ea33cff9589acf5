// Package sync implements the content synchronization layer: live
// subscriptions that deliver full replacement snapshots of a collection
// or singleton document whenever the underlying data changes.
//
// Change signals fan out over Redis pub/sub so every API instance
// reloads on a write from any of them. Without Redis, subscriptions
// fall back to interval polling behind the same interface; in-process
// writes additionally signal local subscribers directly so a
// single-node deployment stays snappy.
package sync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMissing is reported by singleton loaders when the document does
// not exist. Subscriptions apply the caller-supplied default instead of
// surfacing an error or an empty snapshot.
var ErrMissing = errors.New("sync: document missing")

const channelPrefix = "sync:"

// Loader produces a complete snapshot of the subscribed target. It is
// invoked once at subscribe time and again on every change signal;
// snapshots replace local state wholesale, so the loader owns ordering.
type Loader func(ctx context.Context) (any, error)

// Snapshot is a point-in-time full replacement of the subscribed data.
type Snapshot struct {
	Topic string
	Data  any
}

// Options tune failure behavior per subscription.
type Options struct {
	// Fallback replaces the snapshot data when the loader fails. Load
	// errors are logged and degraded, never delivered to the consumer.
	Fallback any
	// Default replaces the snapshot data when a singleton loader
	// reports ErrMissing.
	Default any
}

type Hub struct {
	rdb       *redis.Client
	pollEvery time.Duration

	mu     sync.Mutex
	local  map[string]map[chan struct{}]struct{}
	closed bool
}

// NewHub creates a hub. rdb may be nil, in which case subscriptions
// poll their loader at pollEvery in addition to local signals.
func NewHub(rdb *redis.Client, pollEvery time.Duration) *Hub {
	if pollEvery <= 0 {
		pollEvery = 2 * time.Second
	}
	return &Hub{
		rdb:       rdb,
		pollEvery: pollEvery,
		local:     make(map[string]map[chan struct{}]struct{}),
	}
}

// Notify signals that the data behind a topic changed. Signals carry no
// payload; subscribers reload through their own loader.
func (h *Hub) Notify(ctx context.Context, topic string) {
	if h.rdb != nil {
		if err := h.rdb.Publish(ctx, channelPrefix+topic, "1").Err(); err != nil {
			log.Printf("sync: publish %s: %v", topic, err)
		}
	}
	h.signalLocal(topic)
}

func (h *Hub) signalLocal(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.local[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) register(topic string) chan struct{} {
	// Buffer of one: a signal that arrives while a reload is already
	// pending coalesces with it.
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.local[topic] == nil {
		h.local[topic] = make(map[chan struct{}]struct{})
	}
	h.local[topic][ch] = struct{}{}
	return ch
}

func (h *Hub) unregister(topic string, ch chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.local[topic]; subs != nil {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.local, topic)
		}
	}
}

// Collection subscribes to a list topic. Load errors degrade to the
// fallback slice.
func (h *Hub) Collection(ctx context.Context, topic string, load Loader, fallback any) *Subscription {
	return h.Subscribe(ctx, topic, load, Options{Fallback: fallback})
}

// Singleton subscribes to a single-document topic. A loader returning
// ErrMissing yields def instead of an error.
func (h *Hub) Singleton(ctx context.Context, topic string, load Loader, def any) *Subscription {
	return h.Subscribe(ctx, topic, load, Options{Default: def, Fallback: def})
}

// Subscribe opens a live subscription to a topic. The initial snapshot
// is delivered as soon as the loader returns; every change signal
// afterwards triggers a reload and a full replacement delivery.
// Subscriptions are independent: a slow or failing loader on one topic
// never blocks delivery on another.
func (h *Hub) Subscribe(ctx context.Context, topic string, load Loader, opts Options) *Subscription {
	sub := &Subscription{
		topic:  topic,
		ch:     make(chan Snapshot, 1),
		stop:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	signal := h.register(topic)

	var pubsub *redis.PubSub
	var remote <-chan *redis.Message
	if h.rdb != nil {
		pubsub = h.rdb.Subscribe(ctx, channelPrefix+topic)
		remote = pubsub.Channel()
	}

	go func() {
		defer close(sub.exited)
		defer h.unregister(topic, signal)
		if pubsub != nil {
			defer pubsub.Close()
		}

		sub.deliver(h.snapshot(ctx, topic, load, opts))

		var poll *time.Ticker
		var pollC <-chan time.Time
		if h.rdb == nil {
			poll = time.NewTicker(h.pollEvery)
			pollC = poll.C
			defer poll.Stop()
		}

		for {
			select {
			case <-sub.stop:
				return
			case <-ctx.Done():
				return
			case <-signal:
			case <-pollC:
			case _, ok := <-remote:
				if !ok {
					return
				}
			}
			snap := h.snapshot(ctx, topic, load, opts)
			select {
			case <-sub.stop:
				return
			default:
			}
			sub.deliver(snap)
		}
	}()

	return sub
}

func (h *Hub) snapshot(ctx context.Context, topic string, load Loader, opts Options) Snapshot {
	data, err := load(ctx)
	if errors.Is(err, ErrMissing) {
		return Snapshot{Topic: topic, Data: opts.Default}
	}
	if err != nil {
		log.Printf("sync: load %s: %v", topic, err)
		return Snapshot{Topic: topic, Data: opts.Fallback}
	}
	return Snapshot{Topic: topic, Data: data}
}

// Subscription is one live snapshot stream. Exactly one consumer reads
// Snapshots; Cancel must be called on every exit path.
type Subscription struct {
	topic  string
	ch     chan Snapshot
	stop   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// Snapshots returns the delivery channel. It is closed after Cancel.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.ch
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Cancel releases the subscription. It is idempotent and synchronous:
// when it returns, the delivery goroutine has exited and no further
// snapshots will arrive, even if the backend pushes afterwards.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.stop)
		<-s.exited
		close(s.ch)
	})
}

// deliver replaces any undrained snapshot with the newer one; consumers
// only ever need the latest full state.
func (s *Subscription) deliver(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
