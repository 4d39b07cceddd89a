package authhttp

import (
	"net/http"
	"strings"

	core "github.com/open-rails/otpkit/core"
)

func (s *Service) handleSignUpConfirmPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLSignUpConfirm) {
		tooMany(w)
		return
	}

	var req struct {
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		Code        string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid_request")
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		badRequest(w, "invalid_request")
		return
	}

	err := s.svc.ConfirmSignUp(r.Context(), strings.TrimSpace(req.Email), core.NormalizePhone(req.PhoneNumber), code)
	if err != nil {
		writeCoreErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
