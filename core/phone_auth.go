package core

import (
	"context"
	"errors"
	"time"
)

// tempCredentialSuffix is appended to the 6-digit code so the derived
// credential satisfies the directory's complexity policy. It is an adapter
// workaround, not a security property; the code alone is the secret.
const tempCredentialSuffix = "A!"

// PhoneLoginStart is returned by initiate/resend: the opaque session handle
// the client must echo on confirm, plus a redacted destination for display.
type PhoneLoginStart struct {
	Session           string
	MaskedDestination string
}

type phoneAuthStrategy interface {
	initiate(ctx context.Context, phone string) (*PhoneLoginStart, error)
	confirm(ctx context.Context, phone, code, session string) (*Tokens, error)
}

// InitiatePhoneLogin normalizes the phone, issues a fresh one-time code, and
// dispatches it. Issuing replaces any prior pending code for the same phone.
func (s *Service) InitiatePhoneLogin(ctx context.Context, rawPhone string) (*PhoneLoginStart, error) {
	return s.phoneAuth.initiate(ctx, NormalizePhone(rawPhone))
}

// ConfirmPhoneLogin trades a pending code for session tokens. A successful
// confirm consumes the code; a failed one leaves it pending (bounded by the
// attempt budget).
func (s *Service) ConfirmPhoneLogin(ctx context.Context, rawPhone, code, session string) (*Tokens, error) {
	return s.phoneAuth.confirm(ctx, NormalizePhone(rawPhone), code, session)
}

// ResendPhoneLoginCode issues and dispatches a new code, invalidating the
// prior one. The existing session handle is preserved when present.
func (s *Service) ResendPhoneLoginCode(ctx context.Context, rawPhone string) (*PhoneLoginStart, error) {
	return s.phoneAuth.initiate(ctx, NormalizePhone(rawPhone))
}

// tempCredentialAuth smuggles the one-time code through the directory's
// temporary-credential mechanism: the code (plus a fixed complexity suffix)
// becomes the record's single current credential, so the directory's own
// rotation-on-use semantics provide the single-use guarantee. Local
// bookkeeping adds what the directory does not: an explicit TTL, a bounded
// attempt counter, and a stable opaque session handle.
type tempCredentialAuth struct {
	svc *Service
}

func (st *tempCredentialAuth) initiate(ctx context.Context, phone string) (*PhoneLoginStart, error) {
	s := st.svc
	code := randDigits(6)
	cred := code + tempCredentialSuffix

	attrs := map[string]string{
		"phone_number": phone,
		// Receiving the SMS is the verification.
		"phone_number_verified": "true",
	}
	if err := s.directory.UpsertUserWithCredential(ctx, phone, attrs, cred, true); err != nil {
		if !errors.Is(err, ErrUserExists) {
			return nil, err
		}
		if err := s.directory.SetCredential(ctx, phone, cred, true); err != nil {
			return nil, err
		}
	}

	// Resend keeps the session handle stable so an in-flight confirmation
	// form stays valid.
	session := ""
	if old, ok, _ := s.loadPhoneLogin(ctx, phone); ok {
		session = old.Session
	}
	if session == "" {
		session = newSessionToken()
	}

	now := time.Now()
	data := phoneLoginData{
		CodeHash:  sha256Hex(code),
		Session:   session,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.cfg.CodeTTL).Unix(),
	}
	if err := s.storePhoneLogin(ctx, phone, data); err != nil {
		return nil, err
	}

	if err := s.sendLoginCode(ctx, phone, code); err != nil {
		// A code that was never delivered must not stay confirmable.
		s.deletePhoneLogin(ctx, phone)
		return nil, err
	}

	return &PhoneLoginStart{Session: session, MaskedDestination: MaskPhone(phone)}, nil
}

func (st *tempCredentialAuth) confirm(ctx context.Context, phone, code, session string) (*Tokens, error) {
	s := st.svc

	data, ok, err := s.loadPhoneLogin(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Never issued, expired, or already consumed.
		return nil, ErrInvalidCode
	}
	if session != "" && data.Session != "" && session != data.Session {
		return nil, ErrSessionExpired
	}
	if s.cfg.MaxCodeAttempts > 0 && data.Attempts >= s.cfg.MaxCodeAttempts {
		s.deletePhoneLogin(ctx, phone)
		return nil, ErrTooManyAttempts
	}
	if sha256Hex(code) != data.CodeHash {
		// Wrong guess: burn an attempt, keep the pending code confirmable.
		data.Attempts++
		_ = s.storePhoneLogin(ctx, phone, data)
		return nil, ErrInvalidCode
	}

	res, err := s.directory.SignIn(ctx, phone, code+tempCredentialSuffix)
	if err != nil {
		if errors.Is(err, ErrNotAuthorized) || errors.Is(err, ErrUserNotFound) {
			// Credential already rotated (consumed) or record gone.
			s.deletePhoneLogin(ctx, phone)
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	tokens := res.Tokens
	if res.RotationSession != "" {
		// The temporary credential must be replaced before the directory
		// issues a session; the replacement also invalidates the code.
		tokens, err = s.directory.FinalizeRotation(ctx, phone, res.RotationSession, randPermanentCredential())
		if err != nil {
			return nil, err
		}
	}

	s.deletePhoneLogin(ctx, phone)
	return tokens, nil
}
