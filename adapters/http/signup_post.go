package authhttp

import (
	"net/http"
	"strings"

	core "github.com/open-rails/otpkit/core"
)

func (s *Service) handleSignUpPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLSignUp) {
		tooMany(w)
		return
	}

	var req struct {
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Password == "" {
		badRequest(w, "invalid_request")
		return
	}

	email := strings.TrimSpace(req.Email)
	phone := core.NormalizePhone(req.PhoneNumber)
	if phone != "" && !reE164.MatchString(phone) {
		badRequest(w, "invalid_phone_number")
		return
	}

	res, err := s.svc.SignUp(r.Context(), email, phone, req.Password)
	if err != nil {
		writeCoreErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_sub": res.UserSub,
		"code_delivery": map[string]any{
			"destination": res.Delivery.Destination,
			"medium":      res.Delivery.Medium,
		},
	})
}
