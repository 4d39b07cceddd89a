package core

import jwt "github.com/golang-jwt/jwt/v5"

// Subject extracts the "sub" claim from the ID token without verifying the
// signature. The token was just handed to us by the directory over TLS;
// signature verification belongs to resource servers holding the directory's
// JWKS, not to this glue layer. Best-effort: returns "" on any parse problem.
func (t *Tokens) Subject() string {
	if t == nil || t.ID == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.ID, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
