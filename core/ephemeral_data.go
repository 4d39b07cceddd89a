package core

import (
	"context"
	"time"
)

const keyPhoneLogin = "auth:phone_login:"

// phoneLoginData is the per-phone pending-login record (the only session
// state the coordinator keeps). Keyed by normalized phone, so issuing a new
// code always replaces the prior one.
type phoneLoginData struct {
	CodeHash  string `json:"code_hash"`
	Session   string `json:"session"`
	Attempts  int    `json:"attempts"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}

func (d phoneLoginData) expired(now time.Time) bool {
	return d.ExpiresAt > 0 && now.Unix() > d.ExpiresAt
}

func (s *Service) storePhoneLogin(ctx context.Context, phone string, data phoneLoginData) error {
	// Key TTL is hygiene; ExpiresAt inside the record is authoritative so a
	// re-store on a wrong attempt cannot stretch the code's lifetime.
	ttl := time.Until(time.Unix(data.ExpiresAt, 0))
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.ephemSetJSON(ctx, keyPhoneLogin+phone, data, ttl)
}

func (s *Service) loadPhoneLogin(ctx context.Context, phone string) (phoneLoginData, bool, error) {
	var data phoneLoginData
	ok, err := s.ephemGetJSON(ctx, keyPhoneLogin+phone, &data)
	if err != nil || !ok {
		return phoneLoginData{}, false, err
	}
	if data.expired(time.Now()) {
		_ = s.ephemDel(ctx, keyPhoneLogin+phone)
		return phoneLoginData{}, false, nil
	}
	return data, true, nil
}

func (s *Service) deletePhoneLogin(ctx context.Context, phone string) {
	_ = s.ephemDel(ctx, keyPhoneLogin+phone)
}
