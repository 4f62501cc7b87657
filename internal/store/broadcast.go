package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// broadcaster fans change events out to subscribers. The local implementation
// covers a single process; the redis one crosses process boundaries so every
// API instance invalidates its caches on any instance's writes.
type broadcaster interface {
	publish(ctx context.Context, ev Event)
	subscribe(ctx context.Context, collection string, fn func(Event)) (func(), error)
}

type localBroadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(Event)
}

func newLocalBroadcaster() *localBroadcaster {
	return &localBroadcaster{subs: make(map[string]map[int]func(Event))}
}

func (b *localBroadcaster) publish(_ context.Context, ev Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs[ev.Collection]))
	for _, fn := range b.subs[ev.Collection] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (b *localBroadcaster) subscribe(_ context.Context, collection string, fn func(Event)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[collection] == nil {
		b.subs[collection] = make(map[int]func(Event))
	}
	id := b.nextID
	b.nextID++
	b.subs[collection][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[collection], id)
	}, nil
}

const changeChannelPrefix = "store:changes:"

type redisBroadcaster struct {
	client *redis.Client
	logger *zap.Logger
}

func newRedisBroadcaster(client *redis.Client, logger *zap.Logger) *redisBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisBroadcaster{client: client, logger: logger}
}

func (b *redisBroadcaster) publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Warn("marshal change event", zap.Error(err))
		return
	}
	// Best effort: a dropped notification only delays cache invalidation
	// until the next one arrives.
	if err := b.client.Publish(ctx, changeChannelPrefix+ev.Collection, payload).Err(); err != nil {
		b.logger.Warn("publish change event",
			zap.String("collection", ev.Collection),
			zap.Error(err))
	}
}

func (b *redisBroadcaster) subscribe(ctx context.Context, collection string, fn func(Event)) (func(), error) {
	pubsub := b.client.Subscribe(ctx, changeChannelPrefix+collection)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	ch := pubsub.Channel()
	go func() {
		for msg := range ch {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Warn("decode change event", zap.Error(err))
				continue
			}
			fn(ev)
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}
