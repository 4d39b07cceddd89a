package core

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	stdlog "log"

	"github.com/google/uuid"
)

// Tokens is the session token set returned by a successful sign-in.
type Tokens struct {
	Access    string
	Refresh   string
	ID        string
	ExpiresIn int32 // seconds, as reported by the directory
}

// SignInResult is the outcome of a credential sign-in attempt. Exactly one of
// Tokens or RotationSession is set: a non-empty RotationSession means the
// directory demands a fresh permanent credential before issuing tokens.
type SignInResult struct {
	Tokens          *Tokens
	RotationSession string
}

// CodeDelivery describes where the directory sent a provider-managed code.
type CodeDelivery struct {
	Destination string
	Medium      string
}

// Directory is the narrow identity-directory surface the coordinator needs:
// upsert a record keyed by a canonical identifier, set a single current
// credential on it, and attempt a credential sign-in.
//
// Implementations map provider rejections to ErrUserExists, ErrUserNotFound,
// and ErrNotAuthorized; anything else is wrapped in *DirectoryError.
type Directory interface {
	UpsertUserWithCredential(ctx context.Context, key string, attributes map[string]string, credential string, temporary bool) error
	SetCredential(ctx context.Context, key, credential string, temporary bool) error
	SignIn(ctx context.Context, key, credential string) (*SignInResult, error)
	FinalizeRotation(ctx context.Context, key, rotationSession, newCredential string) (*Tokens, error)
}

// ChallengeDirectory is the optional native custom-auth-challenge capability.
// StartChallenge triggers code generation and delivery provider-side and
// returns the opaque challenge session; AnswerChallenge trades the session
// plus the received code for tokens.
type ChallengeDirectory interface {
	StartChallenge(ctx context.Context, key string) (session string, err error)
	AnswerChallenge(ctx context.Context, key, session, answer string) (*Tokens, error)
}

// Registrar is the directory's self-service registration surface
// (provider-managed confirmation codes, not coordinator ones).
type Registrar interface {
	SignUp(ctx context.Context, username, password string, attributes map[string]string) (userSub string, delivery CodeDelivery, err error)
	ConfirmSignUp(ctx context.Context, username, code string) error
	ResendSignUpCode(ctx context.Context, username string) (CodeDelivery, error)
	ForgotPassword(ctx context.Context, username string) (CodeDelivery, error)
	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error
}

// SMSSender delivers short text messages. Implementations wrap failures in
// *DeliveryError.
type SMSSender interface {
	SendVerificationCode(ctx context.Context, phone, code string) error
	SendLoginCode(ctx context.Context, phone, code string) error
}

// Service is the passwordless phone OTP coordinator plus the thin
// registration/sign-in surface delegated to the directory. It holds no
// persistent state of its own: identities live in the directory, short-lived
// login bookkeeping in the ephemeral store.
type Service struct {
	cfg       Config
	directory Directory
	challenge ChallengeDirectory
	registrar Registrar
	sms       SMSSender

	phoneAuth phoneAuthStrategy
	scheme    identifierScheme

	ephemeralStore EphemeralStore
	ephemeralMode  EphemeralMode
}

// NewService constructs a Service. The phone auth strategy and the identifier
// scheme are resolved here, once, from the config.
func NewService(cfg Config) *Service {
	s := &Service{cfg: cfg.withDefaults(), ephemeralMode: EphemeralMemory}
	switch s.cfg.PhoneAuthMode {
	case PhoneAuthCustomChallenge:
		s.phoneAuth = &challengeAuth{svc: s}
	default:
		s.phoneAuth = &tempCredentialAuth{svc: s}
	}
	switch s.cfg.VerificationType {
	case VerifyPhone:
		s.scheme = phoneScheme{}
	case VerifyBoth:
		s.scheme = bothScheme{}
	default:
		s.scheme = emailScheme{}
	}
	return s
}

// Config returns the resolved configuration.
func (s *Service) Config() Config { return s.cfg }

// PhoneAuthMode returns the resolved phone login strategy.
func (s *Service) PhoneAuthMode() PhoneAuthMode { return s.cfg.PhoneAuthMode }

// WithDirectory sets the identity-directory dependency.
func (s *Service) WithDirectory(d Directory) *Service { s.directory = d; return s }

// WithChallengeDirectory sets the native challenge capability (required for
// PhoneAuthCustomChallenge).
func (s *Service) WithChallengeDirectory(d ChallengeDirectory) *Service { s.challenge = d; return s }

// WithRegistrar sets the registration capability.
func (s *Service) WithRegistrar(r Registrar) *Service { s.registrar = r; return s }

// WithSMSSender sets the SMS dispatch dependency.
func (s *Service) WithSMSSender(sender SMSSender) *Service { s.sms = sender; return s }

// HasSMSSender reports whether SMS dispatch is configured.
func (s *Service) HasSMSSender() bool { return s.sms != nil }

// sendLoginCode dispatches a login code, falling back to stdout in dev.
func (s *Service) sendLoginCode(ctx context.Context, phone, code string) error {
	if s.sms != nil {
		if err := s.sms.SendLoginCode(ctx, phone, code); err != nil {
			return err
		}
		return nil
	}
	if !isDevEnvironment(getEnvironment()) {
		return &DeliveryError{Err: fmt.Errorf("SMS sender not configured (phone login requires SMS in production)")}
	}
	stdlog.Printf("[otpkit/dev-sms] phone login phone=%s code=%s", phone, code)
	return nil
}

// helpers

func randBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

func randInt(max int) int {
	b := randBytes(4)
	n := int(b[0]) | int(b[1])<<8 | int(b[2])<<16 | int(b[3])<<24
	if n < 0 {
		n = -n
	}
	return n % max
}

// randDigits returns a zero-padded numeric code of length n.
func randDigits(n int) string {
	code := make([]byte, n)
	for i := range code {
		code[i] = '0' + byte(randInt(10))
	}
	return string(code)
}

// randPermanentCredential returns a strong random credential that satisfies
// common directory complexity policies (length, upper, digit, symbol).
func randPermanentCredential() string {
	return base64.RawURLEncoding.EncodeToString(randBytes(24)) + "A1!"
}

func newSessionToken() string { return uuid.NewString() }

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
