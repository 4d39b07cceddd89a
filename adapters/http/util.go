package authhttp

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
)

func decodeJSON(r *http.Request, dst any) error {
	if r == nil || r.Body == nil {
		return errors.New("missing_body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Reject trailing garbage.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid_json")
	}
	return nil
}

// ClientIPFunc determines the client IP used for rate limiting.
// An empty return means "unknown" and causes rate limiting to fail open.
type ClientIPFunc func(r *http.Request) string

// DefaultClientIP uses RemoteAddr, which is correct for direct exposure and
// for reverse proxies that rewrite the peer address. Hosts behind other
// proxies should supply their own strategy via WithClientIPFunc.
func DefaultClientIP() ClientIPFunc {
	return func(r *http.Request) string {
		if r == nil {
			return ""
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
}
