package authhttp

import (
	"net/http"

	core "github.com/open-rails/otpkit/core"
)

// APIHandler returns a handler serving the JSON API routes under /auth/*.
// It is intended to be mounted under the host's mux at any prefix.
func (s *Service) APIHandler() http.Handler {
	if s == nil || s.svc == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { serverErr(w, "otpkit_not_initialized") })
	}
	if !core.IsDevEnvironment() {
		if s.svc.EphemeralMode() != core.EphemeralRedis {
			panic("otpkit: redis-compatible ephemeral store is required in production")
		}
	}

	mux := http.NewServeMux()

	// Passwordless phone login
	mux.Handle("POST /auth/phone/login/initiate", http.HandlerFunc(s.handlePhoneLoginInitiatePOST))
	mux.Handle("POST /auth/phone/login/confirm", http.HandlerFunc(s.handlePhoneLoginConfirmPOST))
	mux.Handle("POST /auth/phone/login/resend", http.HandlerFunc(s.handlePhoneLoginResendPOST))

	// Registration + password sign-in (directory-managed codes)
	mux.Handle("POST /auth/signup", http.HandlerFunc(s.handleSignUpPOST))
	mux.Handle("POST /auth/signup/confirm", http.HandlerFunc(s.handleSignUpConfirmPOST))
	mux.Handle("POST /auth/signup/resend", http.HandlerFunc(s.handleSignUpResendPOST))
	mux.Handle("POST /auth/signin", http.HandlerFunc(s.handleSignInPOST))

	// Password reset
	mux.Handle("POST /auth/password/forgot", http.HandlerFunc(s.handlePasswordForgotPOST))
	mux.Handle("POST /auth/password/forgot/confirm", http.HandlerFunc(s.handlePasswordForgotConfirmPOST))

	return mux
}
