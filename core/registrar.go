package core

import (
	"context"
	"fmt"
	"strings"
)

// identifierScheme maps the user-supplied identifiers onto the directory's
// username and attribute set. One scheme is resolved at startup from
// Config.VerificationType; every code path goes through it, so sign-up,
// sign-in, confirmation, and reset always agree on the username.
type identifierScheme interface {
	username(email, phone string) (string, error)
	attributes(email, phone string) map[string]string
}

// emailAlias rewrites an email into a directory-safe username so the email
// itself can stay an alias attribute ("a@b.co" -> "a_at_b_co").
func emailAlias(email string) string {
	alias := strings.Replace(email, "@", "_at_", 1)
	return strings.ReplaceAll(alias, ".", "_")
}

type emailScheme struct{}

func (emailScheme) username(email, _ string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email required")
	}
	return emailAlias(email), nil
}

func (emailScheme) attributes(email, _ string) map[string]string {
	return map[string]string{"email": email}
}

type phoneScheme struct{}

func (phoneScheme) username(_, phone string) (string, error) {
	if phone = NormalizePhone(phone); phone == "" {
		return "", fmt.Errorf("phone number required")
	}
	return phone, nil
}

func (phoneScheme) attributes(_, phone string) map[string]string {
	return map[string]string{"phone_number": NormalizePhone(phone)}
}

type bothScheme struct{}

func (bothScheme) username(email, _ string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email required")
	}
	return emailAlias(email), nil
}

func (bothScheme) attributes(email, phone string) map[string]string {
	attrs := map[string]string{"email": email}
	if phone = NormalizePhone(phone); phone != "" {
		attrs["phone_number"] = phone
	}
	return attrs
}

// SignUpResult reports a completed registration request.
type SignUpResult struct {
	UserSub  string
	Delivery CodeDelivery
}

// SignUp registers a new identity with the directory. The directory sends its
// own confirmation code to the chosen destination.
func (s *Service) SignUp(ctx context.Context, email, phone, password string) (*SignUpResult, error) {
	if s.registrar == nil {
		return nil, &DirectoryError{Op: "sign_up", Err: fmt.Errorf("registrar not configured")}
	}
	username, err := s.scheme.username(email, phone)
	if err != nil {
		return nil, err
	}
	sub, delivery, err := s.registrar.SignUp(ctx, username, password, s.scheme.attributes(email, phone))
	if err != nil {
		return nil, err
	}
	return &SignUpResult{UserSub: sub, Delivery: delivery}, nil
}

// ConfirmSignUp confirms a registration with the directory-issued code.
func (s *Service) ConfirmSignUp(ctx context.Context, email, phone, code string) error {
	if s.registrar == nil {
		return &DirectoryError{Op: "confirm_sign_up", Err: fmt.Errorf("registrar not configured")}
	}
	username, err := s.scheme.username(email, phone)
	if err != nil {
		return err
	}
	return s.registrar.ConfirmSignUp(ctx, username, code)
}

// ResendSignUpCode asks the directory to re-deliver the confirmation code.
func (s *Service) ResendSignUpCode(ctx context.Context, email, phone string) (CodeDelivery, error) {
	if s.registrar == nil {
		return CodeDelivery{}, &DirectoryError{Op: "resend_sign_up_code", Err: fmt.Errorf("registrar not configured")}
	}
	username, err := s.scheme.username(email, phone)
	if err != nil {
		return CodeDelivery{}, err
	}
	return s.registrar.ResendSignUpCode(ctx, username)
}

// PasswordLogin performs a plain credential sign-in through the directory.
func (s *Service) PasswordLogin(ctx context.Context, email, phone, password string) (*Tokens, error) {
	username, err := s.scheme.username(email, phone)
	if err != nil {
		return nil, err
	}
	res, err := s.directory.SignIn(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if res.Tokens == nil {
		// A rotation demand on a permanent credential means the record is in
		// a forced-reset state; the caller has to go through reset.
		return nil, ErrNotAuthorized
	}
	return res.Tokens, nil
}

// RequestPasswordReset asks the directory to send a reset code.
func (s *Service) RequestPasswordReset(ctx context.Context, email, phone string) (CodeDelivery, error) {
	if s.registrar == nil {
		return CodeDelivery{}, &DirectoryError{Op: "forgot_password", Err: fmt.Errorf("registrar not configured")}
	}
	username, err := s.scheme.username(email, phone)
	if err != nil {
		return CodeDelivery{}, err
	}
	return s.registrar.ForgotPassword(ctx, username)
}

// ConfirmPasswordReset trades the directory-issued reset code for a new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, email, phone, code, newPassword string) error {
	if s.registrar == nil {
		return &DirectoryError{Op: "confirm_forgot_password", Err: fmt.Errorf("registrar not configured")}
	}
	username, err := s.scheme.username(email, phone)
	if err != nil {
		return err
	}
	return s.registrar.ConfirmForgotPassword(ctx, username, code, newPassword)
}
