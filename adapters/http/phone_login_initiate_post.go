package authhttp

import (
	"net/http"

	core "github.com/open-rails/otpkit/core"
)

func (s *Service) handlePhoneLoginInitiatePOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLPhoneLoginInitiate) {
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

	start, err := s.svc.InitiatePhoneLogin(r.Context(), phone)
	if err != nil {
		writeCoreErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session":            start.Session,
		"masked_destination": start.MaskedDestination,
	})
}
