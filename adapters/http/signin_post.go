package authhttp

import (
	"net/http"
	"strings"

	core "github.com/open-rails/otpkit/core"
)

func (s *Service) handleSignInPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLSignIn) {
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

	tokens, err := s.svc.PasswordLogin(r.Context(), strings.TrimSpace(req.Email), core.NormalizePhone(req.PhoneNumber), req.Password)
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
