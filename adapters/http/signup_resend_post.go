package authhttp

import (
	"net/http"
	"strings"

	core "github.com/open-rails/otpkit/core"
)

func (s *Service) handleSignUpResendPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLSignUpResend) {
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

	delivery, err := s.svc.ResendSignUpCode(r.Context(), strings.TrimSpace(req.Email), core.NormalizePhone(req.PhoneNumber))
	if err != nil {
		writeCoreErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"code_delivery": map[string]any{
			"destination": delivery.Destination,
			"medium":      delivery.Medium,
		},
	})
}
