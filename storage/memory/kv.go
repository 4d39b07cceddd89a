package memorystore

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value   []byte
	expires time.Time
}

// KV is an in-memory key-value store with TTL support, used for pending
// phone-login records in dev and single-process deployments. Expired entries
// are dropped lazily on read and opportunistically on write.
type KV struct {
	mu    sync.Mutex
	items map[string]item
}

func NewKV() *KV {
	return &KV{items: make(map[string]item)}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	k.mu.Lock()
	defer k.mu.Unlock()
	it, ok := k.items[key]
	if !ok {
		return nil, false, nil
	}
	if it.stale(time.Now()) {
		delete(k.items, key)
		return nil, false, nil
	}
	return it.value, true, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = ctx
	now := time.Now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	// Bound growth for long-lived processes without a janitor goroutine.
	if len(k.items) > 0 && len(k.items)%64 == 0 {
		for key, it := range k.items {
			if it.stale(now) {
				delete(k.items, key)
			}
		}
	}
	k.items[key] = item{value: append([]byte(nil), value...), expires: exp}
	return nil
}

func (k *KV) Del(ctx context.Context, key string) error {
	_ = ctx
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.items, key)
	return nil
}

func (it item) stale(now time.Time) bool {
	return !it.expires.IsZero() && now.After(it.expires)
}
