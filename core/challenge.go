package core

import (
	"context"
	"errors"
	"fmt"
)

// challengeAuth runs phone login on the directory's native custom-challenge
// primitive. The directory generates and delivers the code; the opaque
// session is the provider's challenge session, so the coordinator keeps no
// local bookkeeping at all in this mode.
type challengeAuth struct {
	svc *Service
}

func (st *challengeAuth) initiate(ctx context.Context, phone string) (*PhoneLoginStart, error) {
	s := st.svc
	if s.challenge == nil {
		return nil, &DirectoryError{Op: "start_challenge", Err: fmt.Errorf("challenge capability not configured")}
	}

	session, err := s.challenge.StartChallenge(ctx, phone)
	if errors.Is(err, ErrUserNotFound) {
		// Phone-only signup: create the record on first login, then retry.
		attrs := map[string]string{
			"phone_number":          phone,
			"phone_number_verified": "true",
		}
		if cerr := s.directory.UpsertUserWithCredential(ctx, phone, attrs, randPermanentCredential(), true); cerr != nil && !errors.Is(cerr, ErrUserExists) {
			return nil, cerr
		}
		session, err = s.challenge.StartChallenge(ctx, phone)
	}
	if err != nil {
		return nil, err
	}

	return &PhoneLoginStart{Session: session, MaskedDestination: MaskPhone(phone)}, nil
}

func (st *challengeAuth) confirm(ctx context.Context, phone, code, session string) (*Tokens, error) {
	s := st.svc
	if s.challenge == nil {
		return nil, &DirectoryError{Op: "answer_challenge", Err: fmt.Errorf("challenge capability not configured")}
	}
	if session == "" {
		return nil, ErrSessionExpired
	}

	tokens, err := s.challenge.AnswerChallenge(ctx, phone, session, code)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrUserNotFound):
			return nil, ErrInvalidCode
		case errors.Is(err, ErrSessionExpired):
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return tokens, nil
}
