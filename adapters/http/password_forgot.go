package authhttp

import (
	"errors"
	"net/http"
	"strings"

	core "github.com/open-rails/otpkit/core"
)

func (s *Service) handlePasswordForgotPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLPasswordForgot) {
		tooMany(w)
		return
	}

	var req struct {
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid_request")
		return
	}

	delivery, err := s.svc.RequestPasswordReset(r.Context(), strings.TrimSpace(req.Email), core.NormalizePhone(req.PhoneNumber))
	if err != nil {
		// Do not reveal whether the identifier exists.
		if writeOpaqueResetResponse(w, err) {
			return
		}
		writeCoreErr(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"ok": true,
		"code_delivery": map[string]any{
			"destination": delivery.Destination,
			"medium":      delivery.Medium,
		},
	})
}

// writeOpaqueResetResponse collapses "user not found" into the same 202 the
// success path returns, preventing account enumeration through reset.
func writeOpaqueResetResponse(w http.ResponseWriter, err error) bool {
	if errors.Is(err, core.ErrUserNotFound) {
		writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
		return true
	}
	return false
}

func (s *Service) handlePasswordForgotConfirmPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLPasswordForgotConfirm) {
		tooMany(w)
		return
	}

	var req struct {
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil || req.NewPassword == "" {
		badRequest(w, "invalid_request")
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		badRequest(w, "invalid_request")
		return
	}

	err := s.svc.ConfirmPasswordReset(r.Context(), strings.TrimSpace(req.Email), core.NormalizePhone(req.PhoneNumber), code, req.NewPassword)
	if err != nil {
		writeCoreErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
