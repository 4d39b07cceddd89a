package memorylimiter

import (
	"sync"
	"time"
)

// Limit configures a named bucket: at most Limit allowances per Window.
type Limit struct {
	Limit  int
	Window time.Duration
}

type window struct {
	start time.Time
	count int
}

// Limiter is a fixed-window in-memory rate limiter keyed by (bucket, key).
// Suitable for dev and single-instance deployments; multi-instance setups
// should use the Redis limiter.
type Limiter struct {
	mu      sync.Mutex
	limits  map[string]Limit
	windows map[string]*window
}

// New builds a limiter from named bucket limits. A "default" bucket, if
// present, covers buckets with no explicit limit; unknown buckets without a
// default are unlimited.
func New(limits map[string]Limit) *Limiter {
	return &Limiter{limits: limits, windows: make(map[string]*window)}
}

func (l *Limiter) AllowNamed(bucket, key string) (bool, error) {
	lim, ok := l.limits[bucket]
	if !ok {
		lim, ok = l.limits["default"]
	}
	if !ok || lim.Limit <= 0 || lim.Window <= 0 {
		return true, nil
	}

	now := time.Now()
	id := bucket + "|" + key

	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.windows[id]
	if w == nil || now.Sub(w.start) >= lim.Window {
		l.windows[id] = &window{start: now, count: 1}
		l.sweep(now)
		return true, nil
	}
	if w.count >= lim.Limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// sweep drops windows that ended, so the map does not grow with IP churn.
// Called with the mutex held, on window rollover only.
func (l *Limiter) sweep(now time.Time) {
	if len(l.windows) < 4096 {
		return
	}
	for id, w := range l.windows {
		lim, ok := l.limits[idBucket(id)]
		if !ok {
			lim = l.limits["default"]
		}
		if lim.Window <= 0 || now.Sub(w.start) >= lim.Window {
			delete(l.windows, id)
		}
	}
}

func idBucket(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '|' {
			return id[:i]
		}
	}
	return id
}
