package memorylimiter

import (
	"testing"
	"time"
)

func TestAllowNamed(t *testing.T) {
	l := New(map[string]Limit{
		"login": {Limit: 2, Window: time.Hour},
	})

	for i := 0; i < 2; i++ {
		ok, err := l.AllowNamed("login", "ip:1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d should pass: ok=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := l.AllowNamed("login", "ip:1.2.3.4"); ok {
		t.Fatalf("third request in the window should be denied")
	}
	// Other keys have their own windows.
	if ok, _ := l.AllowNamed("login", "ip:5.6.7.8"); !ok {
		t.Fatalf("a different key must not share the window")
	}
}

func TestAllowNamedDefaultBucket(t *testing.T) {
	l := New(map[string]Limit{
		"default": {Limit: 1, Window: time.Hour},
	})

	if ok, _ := l.AllowNamed("unknown", "k"); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, _ := l.AllowNamed("unknown", "k"); ok {
		t.Fatalf("default bucket limit should apply to unknown buckets")
	}
}

func TestAllowNamedUnlimitedWithoutConfig(t *testing.T) {
	l := New(nil)
	for i := 0; i < 10; i++ {
		if ok, _ := l.AllowNamed("anything", "k"); !ok {
			t.Fatalf("unconfigured buckets are unlimited")
		}
	}
}

func TestAllowNamedWindowRollover(t *testing.T) {
	l := New(map[string]Limit{
		"login": {Limit: 1, Window: 20 * time.Millisecond},
	})

	if ok, _ := l.AllowNamed("login", "k"); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, _ := l.AllowNamed("login", "k"); ok {
		t.Fatalf("second request in the window should be denied")
	}
	time.Sleep(30 * time.Millisecond)
	if ok, _ := l.AllowNamed("login", "k"); !ok {
		t.Fatalf("a fresh window should admit again")
	}
}
