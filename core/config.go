package core

import "time"

// PhoneAuthMode selects which passwordless phone login strategy the service
// runs. The mode is resolved once at construction; both strategies present the
// same initiate/confirm/resend surface.
type PhoneAuthMode string

const (
	// PhoneAuthTempCredential stores the one-time code as a temporary
	// directory credential and signs in with it. Works against any directory
	// that supports forced credential rotation; SMS dispatch is ours.
	PhoneAuthTempCredential PhoneAuthMode = "temp_credential"

	// PhoneAuthCustomChallenge uses the directory's native custom auth
	// challenge primitive. Code generation and SMS delivery happen
	// provider-side; the opaque session is the provider's challenge session.
	PhoneAuthCustomChallenge PhoneAuthMode = "custom_challenge"
)

// VerificationType selects which identifier users register and sign in with.
type VerificationType string

const (
	VerifyEmail VerificationType = "email"
	VerifyPhone VerificationType = "phone_number"
	VerifyBoth  VerificationType = "both"
)

// Config is resolved once at startup. Zero values pick safe defaults.
type Config struct {
	// PhoneAuthMode defaults to PhoneAuthTempCredential.
	PhoneAuthMode PhoneAuthMode

	// VerificationType defaults to VerifyEmail.
	VerificationType VerificationType

	// CodeTTL bounds how long an issued phone login code is accepted.
	// Defaults to 10 minutes.
	CodeTTL time.Duration

	// MaxCodeAttempts bounds wrong guesses per issued code before a resend is
	// forced. Defaults to 5. Negative disables the limit.
	MaxCodeAttempts int
}

const (
	defaultCodeTTL         = 10 * time.Minute
	defaultMaxCodeAttempts = 5
)

func (c Config) withDefaults() Config {
	if c.PhoneAuthMode == "" {
		c.PhoneAuthMode = PhoneAuthTempCredential
	}
	if c.VerificationType == "" {
		c.VerificationType = VerifyEmail
	}
	if c.CodeTTL <= 0 {
		c.CodeTTL = defaultCodeTTL
	}
	if c.MaxCodeAttempts == 0 {
		c.MaxCodeAttempts = defaultMaxCodeAttempts
	}
	return c
}
