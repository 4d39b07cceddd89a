package authhttp

import (
	"time"

	memorylimiter "github.com/open-rails/otpkit/ratelimit/memory"
	redislimiter "github.com/open-rails/otpkit/ratelimit/redis"
)

// RateLimiter is the minimal limiter surface the adapter consumes.
// Implementations fail open by returning a non-nil error.
type RateLimiter interface {
	AllowNamed(bucket string, key string) (bool, error)
}

// Bucket names used by the endpoints.
const (
	RLPhoneLoginInitiate = "auth_phone_login_initiate"
	RLPhoneLoginConfirm  = "auth_phone_login_confirm"
	RLPhoneLoginResend   = "auth_phone_login_resend"

	RLSignUp        = "auth_signup"
	RLSignUpConfirm = "auth_signup_confirm"
	RLSignUpResend  = "auth_signup_resend"
	RLSignIn        = "auth_signin"

	RLPasswordForgot        = "auth_password_forgot"
	RLPasswordForgotConfirm = "auth_password_forgot_confirm"
)

// Limit configures a named rate limit bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

// DefaultRateLimits returns the built-in per-endpoint, per-IP limits.
// Code-issuing endpoints are the tightest: every allowance costs an SMS.
func DefaultRateLimits() map[string]Limit {
	return map[string]Limit{
		"default": {Limit: 120, Window: time.Minute},

		RLPhoneLoginInitiate: {Limit: 3, Window: 10 * time.Minute},
		RLPhoneLoginConfirm:  {Limit: 10, Window: 10 * time.Minute},
		RLPhoneLoginResend:   {Limit: 3, Window: 10 * time.Minute},

		RLSignUp:        {Limit: 10, Window: time.Hour},
		RLSignUpConfirm: {Limit: 10, Window: 10 * time.Minute},
		RLSignUpResend:  {Limit: 6, Window: 10 * time.Minute},
		RLSignIn:        {Limit: 20, Window: time.Hour},

		RLPasswordForgot:        {Limit: 6, Window: 10 * time.Minute},
		RLPasswordForgotConfirm: {Limit: 10, Window: 10 * time.Minute},
	}
}

func ToMemoryLimits(in map[string]Limit) map[string]memorylimiter.Limit {
	out := make(map[string]memorylimiter.Limit, len(in))
	for k, v := range in {
		out[k] = memorylimiter.Limit{Limit: v.Limit, Window: v.Window}
	}
	return out
}

func ToRedisLimits(in map[string]Limit) map[string]redislimiter.Limit {
	out := make(map[string]redislimiter.Limit, len(in))
	for k, v := range in {
		out[k] = redislimiter.Limit{Limit: v.Limit, Window: v.Window}
	}
	return out
}
