// Package redis provides a transit.Watcher that follows a selector key held
// in Redis, using keyspace notifications, and a loader for selector maps
// stored as Redis hashes.
package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/zoobzio/transit"
)

// Watcher watches a Redis string key holding a selector key.
// Requires Redis to have keyspace notifications enabled:
//
//	CONFIG SET notify-keyspace-events KEA
//
// Or in redis.conf:
//
//	notify-keyspace-events KEA
type Watcher struct {
	client *redis.Client
	key    string
	db     int
}

var _ transit.Watcher = (*Watcher)(nil)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDB sets the database number used in the keyspace channel. Default: 0.
// It must match the database the client is connected to.
func WithDB(db int) Option {
	return func(w *Watcher) {
		w.db = db
	}
}

// New creates a new Watcher for the given Redis key.
func New(client *redis.Client, key string, opts ...Option) *Watcher {
	w := &Watcher{
		client: client,
		key:    key,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch subscribes to the key and returns a channel that emits its trimmed
// value whenever it is set. The current value, if any, is emitted first.
// Repeated writes of the same value are emitted only once.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	channel := fmt.Sprintf("__keyspace@%d__:%s", w.db, w.key)
	pubsub := w.client.Subscribe(ctx, channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to keyspace notifications: %w", err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer pubsub.Close()

		var last []byte
		emit := func() bool {
			val, err := w.client.Get(ctx, w.key).Bytes()
			if err != nil {
				// Missing keys and transient errors wait for the next write.
				return ctx.Err() == nil
			}
			val = bytes.TrimSpace(val)
			if last != nil && bytes.Equal(val, last) {
				return true
			}
			last = val
			select {
			case out <- val:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				switch msg.Payload {
				case "set", "mset", "setex", "psetex", "setnx", "setrange", "append":
					if !emit() {
						return
					}
				}
			}
		}
	}()

	return out, nil
}

// ErrEmptySelectors is returned by Selectors when the hash is missing or empty.
var ErrEmptySelectors = errors.New("selector hash is empty")

// Selectors reads a Redis hash as a selector map, field to target:
//
//	HSET light on "#00ff00" off "#ff0000"
func Selectors(ctx context.Context, client *redis.Client, hash string) (map[string]string, error) {
	m, err := client.HGetAll(ctx, hash).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read selector hash %s: %w", hash, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySelectors, hash)
	}
	return m, nil
}
