package authhttp

import (
	"encoding/json"
	"errors"
	"net/http"

	core "github.com/open-rails/otpkit/core"
)

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sendErr(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errResp{Error: code})
}

func badRequest(w http.ResponseWriter, code string)   { sendErr(w, http.StatusBadRequest, code) }
func unauthorized(w http.ResponseWriter, code string) { sendErr(w, http.StatusUnauthorized, code) }
func tooMany(w http.ResponseWriter)                   { sendErr(w, http.StatusTooManyRequests, "rate_limited") }
func serverErr(w http.ResponseWriter, code string)    { sendErr(w, http.StatusInternalServerError, code) }

// writeCoreErr maps coordinator errors onto stable wire codes. External-call
// failures never leak provider detail past their code.
func writeCoreErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidCode):
		badRequest(w, "invalid_or_expired_code")
	case errors.Is(err, core.ErrSessionExpired):
		badRequest(w, "session_expired")
	case errors.Is(err, core.ErrTooManyAttempts):
		badRequest(w, "too_many_attempts")
	case errors.Is(err, core.ErrUserExists):
		badRequest(w, "user_already_exists")
	case errors.Is(err, core.ErrUserNotFound):
		badRequest(w, "user_not_found")
	case errors.Is(err, core.ErrNotAuthorized):
		unauthorized(w, "not_authorized")
	default:
		var de *core.DeliveryError
		if errors.As(err, &de) {
			serverErr(w, "sms_delivery_failed")
			return
		}
		serverErr(w, "directory_unavailable")
	}
}
