// Package authhttp mounts the OTP coordinator as a JSON API for net/http.
package authhttp

import (
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	core "github.com/open-rails/otpkit/core"
	memorylimiter "github.com/open-rails/otpkit/ratelimit/memory"
	redislimiter "github.com/open-rails/otpkit/ratelimit/redis"
	memorystore "github.com/open-rails/otpkit/storage/memory"
	redisstore "github.com/open-rails/otpkit/storage/redis"
)

// Service wraps core.Service with net/http mounting helpers.
type Service struct {
	svc      *core.Service
	rl       RateLimiter
	clientIP ClientIPFunc
}

// NewService constructs a core.Service and wraps it for net/http mounting.
// Defaults to the in-memory ephemeral store and limiter for dev and
// single-instance use; call WithRedis for anything multi-instance.
func NewService(cfg core.Config) *Service {
	coreSvc := core.NewService(cfg).
		WithEphemeralStore(memorystore.NewKV(), core.EphemeralMemory)
	return &Service{
		svc:      coreSvc,
		rl:       memorylimiter.New(ToMemoryLimits(DefaultRateLimits())),
		clientIP: DefaultClientIP(),
	}
}

func (s *Service) WithDirectory(d core.Directory) *Service {
	s.svc = s.svc.WithDirectory(d)
	return s
}

func (s *Service) WithChallengeDirectory(d core.ChallengeDirectory) *Service {
	s.svc = s.svc.WithChallengeDirectory(d)
	return s
}

func (s *Service) WithRegistrar(r core.Registrar) *Service {
	s.svc = s.svc.WithRegistrar(r)
	return s
}

func (s *Service) WithSMSSender(sender core.SMSSender) *Service {
	s.svc = s.svc.WithSMSSender(sender)
	return s
}

// WithRedis switches both the ephemeral store and the rate limiter to Redis.
func (s *Service) WithRedis(rd *redis.Client) *Service {
	if rd != nil {
		s.svc = s.svc.WithEphemeralStore(redisstore.NewKV(rd), core.EphemeralRedis)
		s.rl = redislimiter.New(rd, ToRedisLimits(DefaultRateLimits()))
	}
	return s
}

func (s *Service) WithEphemeralStore(store core.EphemeralStore, mode core.EphemeralMode) *Service {
	s.svc = s.svc.WithEphemeralStore(store, mode)
	return s
}

func (s *Service) WithRateLimiter(rl RateLimiter) *Service { s.rl = rl; return s }
func (s *Service) DisableRateLimiter() *Service            { s.rl = nil; return s }

func (s *Service) WithClientIPFunc(fn ClientIPFunc) *Service {
	if fn == nil {
		s.clientIP = DefaultClientIP()
		return s
	}
	s.clientIP = fn
	return s
}

func (s *Service) Core() *core.Service { return s.svc }

func (s *Service) allow(r *http.Request, bucket string) bool {
	if s == nil || s.rl == nil {
		return true
	}
	ipFn := s.clientIP
	if ipFn == nil {
		ipFn = DefaultClientIP()
	}
	ip := ipFn(r)
	if strings.TrimSpace(ip) == "" {
		return true
	}
	key := "auth:" + bucket + ":ip:" + ip
	ok, err := s.rl.AllowNamed(bucket, key)
	if err != nil {
		return true
	}
	return ok
}
