package authhttp

import (
	"net/http"
	"strings"

	core "github.com/open-rails/otpkit/core"
)

func (s *Service) handlePhoneLoginConfirmPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLPhoneLoginConfirm) {
		tooMany(w)
		return
	}

	var req struct {
		PhoneNumber string `json:"phone_number"`
		Code        string `json:"code"`
		Session     string `json:"session"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid_request")
		return
	}

	phone := core.NormalizePhone(req.PhoneNumber)
	code := strings.TrimSpace(req.Code)
	if !reE164.MatchString(phone) {
		badRequest(w, "invalid_phone_number")
		return
	}
	if !reCode.MatchString(code) {
		badRequest(w, "invalid_code_format")
		return
	}

	tokens, err := s.svc.ConfirmPhoneLogin(r.Context(), phone, code, strings.TrimSpace(req.Session))
	if err != nil {
		writeCoreErr(w, err)
		return
	}

	resp := map[string]any{
		"tokens": map[string]any{
			"access":     tokens.Access,
			"refresh":    tokens.Refresh,
			"id":         tokens.ID,
			"expires_in": tokens.ExpiresIn,
		},
	}
	if sub := tokens.Subject(); sub != "" {
		resp["user_id"] = sub
	}
	writeJSON(w, http.StatusOK, resp)
}
