package authhttp

import (
	"net/http"

	core "github.com/open-rails/otpkit/core"
)

func (s *Service) handlePhoneLoginResendPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLPhoneLoginResend) {
		tooMany(w)
		return
	}

	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid_request")
		return
	}

	phone := core.NormalizePhone(req.PhoneNumber)
	if !reE164.MatchString(phone) {
		badRequest(w, "invalid_phone_number")
		return
	}

	start, err := s.svc.ResendPhoneLoginCode(r.Context(), phone)
	if err != nil {
		writeCoreErr(w, err)
		return
	}

	// No session in the resend response: the original handle stays valid.
	writeJSON(w, http.StatusOK, map[string]any{
		"masked_destination": start.MaskedDestination,
	})
}
