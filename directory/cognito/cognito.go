// Package cognito implements the identity-directory capabilities on an AWS
// Cognito user pool. Everything provider-specific (admin user creation with
// suppressed messaging, temporary passwords, the USER_PASSWORD_AUTH and
// CUSTOM_AUTH flows, NEW_PASSWORD_REQUIRED rotation) stays behind the core
// interfaces.
package cognito

import (
	"context"
	"errors"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	core "github.com/open-rails/otpkit/core"
)

// Config carries the pool coordinates and optional static credentials (for
// local stacks; the default credential chain is used otherwise).
type Config struct {
	Region     string
	UserPoolID string
	ClientID   string
	AccessKey  string
	SecretKey  string
	Endpoint   string // non-empty for cognito-local style endpoints
}

// API is the subset of the Cognito client the directory calls, split out so
// tests can substitute a fake.
type API interface {
	AdminCreateUser(ctx context.Context, in *cip.AdminCreateUserInput, opts ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	AdminSetUserPassword(ctx context.Context, in *cip.AdminSetUserPasswordInput, opts ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error)
	AdminInitiateAuth(ctx context.Context, in *cip.AdminInitiateAuthInput, opts ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, opts ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, in *cip.RespondToAuthChallengeInput, opts ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	SignUp(ctx context.Context, in *cip.SignUpInput, opts ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, opts ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, in *cip.ResendConfirmationCodeInput, opts ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, opts ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
}

// Directory implements core.Directory, core.ChallengeDirectory, and
// core.Registrar on a Cognito user pool.
type Directory struct {
	api        API
	userPoolID string
	clientID   string
}

// New loads AWS configuration (static credentials when provided, the default
// chain otherwise) and returns a ready Directory.
func New(ctx context.Context, cfg Config) (*Directory, error) {
	var awsCfg aws.Config
	var err error
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, err
	}
	client := cip.NewFromConfig(awsCfg, func(o *cip.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithAPI(client, cfg.UserPoolID, cfg.ClientID), nil
}

// NewWithAPI wires an existing client (or a test fake).
func NewWithAPI(api API, userPoolID, clientID string) *Directory {
	return &Directory{api: api, userPoolID: userPoolID, clientID: clientID}
}

// UpsertUserWithCredential creates the record with its attributes and initial
// credential, suppressing the provider's own welcome message. Returns
// core.ErrUserExists when the key is taken; callers overwrite the credential
// with SetCredential in that case.
func (d *Directory) UpsertUserWithCredential(ctx context.Context, key string, attributes map[string]string, credential string, temporary bool) error {
	in := &cip.AdminCreateUserInput{
		UserPoolId:        aws.String(d.userPoolID),
		Username:          aws.String(key),
		UserAttributes:    attributeList(attributes),
		MessageAction:     types.MessageActionTypeSuppress,
		TemporaryPassword: aws.String(credential),
	}
	if _, err := d.api.AdminCreateUser(ctx, in); err != nil {
		return mapErr("upsert_user", err)
	}
	if !temporary {
		return d.SetCredential(ctx, key, credential, false)
	}
	return nil
}

// SetCredential replaces the record's single current credential.
func (d *Directory) SetCredential(ctx context.Context, key, credential string, temporary bool) error {
	in := &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(d.userPoolID),
		Username:   aws.String(key),
		Password:   aws.String(credential),
		Permanent:  !temporary,
	}
	if _, err := d.api.AdminSetUserPassword(ctx, in); err != nil {
		return mapErr("set_credential", err)
	}
	return nil
}

// SignIn attempts USER_PASSWORD_AUTH. A NEW_PASSWORD_REQUIRED challenge is
// surfaced as a rotation session; any other challenge means the pool is
// configured beyond what this coordinator drives.
func (d *Directory) SignIn(ctx context.Context, key, credential string) (*core.SignInResult, error) {
	out, err := d.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(d.clientID),
		AuthParameters: map[string]string{
			"USERNAME": key,
			"PASSWORD": credential,
		},
	})
	if err != nil {
		return nil, mapErr("sign_in", err)
	}
	if out.ChallengeName == types.ChallengeNameTypeNewPasswordRequired {
		return &core.SignInResult{RotationSession: aws.ToString(out.Session)}, nil
	}
	if out.AuthenticationResult == nil {
		return nil, core.ErrNotAuthorized
	}
	return &core.SignInResult{Tokens: tokensFromResult(out.AuthenticationResult)}, nil
}

// FinalizeRotation answers NEW_PASSWORD_REQUIRED with a fresh permanent
// credential, completing the sign-in.
func (d *Directory) FinalizeRotation(ctx context.Context, key, rotationSession, newCredential string) (*core.Tokens, error) {
	out, err := d.api.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ClientId:      aws.String(d.clientID),
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
		Session:       aws.String(rotationSession),
		ChallengeResponses: map[string]string{
			"USERNAME":     key,
			"NEW_PASSWORD": newCredential,
		},
	})
	if err != nil {
		return nil, mapErr("finalize_rotation", err)
	}
	if out.AuthenticationResult == nil {
		return nil, core.ErrNotAuthorized
	}
	return tokensFromResult(out.AuthenticationResult), nil
}

// StartChallenge begins the pool's CUSTOM_AUTH flow; the pool's triggers
// generate and deliver the code.
func (d *Directory) StartChallenge(ctx context.Context, key string) (string, error) {
	out, err := d.api.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId:     aws.String(d.userPoolID),
		ClientId:       aws.String(d.clientID),
		AuthFlow:       types.AuthFlowTypeCustomAuth,
		AuthParameters: map[string]string{"USERNAME": key},
	})
	if err != nil {
		return "", mapErr("start_challenge", err)
	}
	return aws.ToString(out.Session), nil
}

// AnswerChallenge responds to the CUSTOM_CHALLENGE with the received code.
func (d *Directory) AnswerChallenge(ctx context.Context, key, session, answer string) (*core.Tokens, error) {
	out, err := d.api.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ClientId:      aws.String(d.clientID),
		ChallengeName: types.ChallengeNameTypeCustomChallenge,
		Session:       aws.String(session),
		ChallengeResponses: map[string]string{
			"USERNAME": key,
			"ANSWER":   answer,
		},
	})
	if err != nil {
		return nil, mapErr("answer_challenge", err)
	}
	if out.AuthenticationResult == nil {
		// Wrong answer: the pool re-issues the challenge instead of erroring.
		return nil, core.ErrNotAuthorized
	}
	return tokensFromResult(out.AuthenticationResult), nil
}

// SignUp registers a user through the pool's self-service flow; the pool
// delivers its own confirmation code.
func (d *Directory) SignUp(ctx context.Context, username, password string, attributes map[string]string) (string, core.CodeDelivery, error) {
	out, err := d.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(d.clientID),
		Username:       aws.String(username),
		Password:       aws.String(password),
		UserAttributes: attributeList(attributes),
	})
	if err != nil {
		return "", core.CodeDelivery{}, mapErr("sign_up", err)
	}
	return aws.ToString(out.UserSub), deliveryFrom(out.CodeDeliveryDetails), nil
}

func (d *Directory) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := d.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(d.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return mapErr("confirm_sign_up", err)
	}
	return nil
}

func (d *Directory) ResendSignUpCode(ctx context.Context, username string) (core.CodeDelivery, error) {
	out, err := d.api.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId: aws.String(d.clientID),
		Username: aws.String(username),
	})
	if err != nil {
		return core.CodeDelivery{}, mapErr("resend_sign_up_code", err)
	}
	return deliveryFrom(out.CodeDeliveryDetails), nil
}

func (d *Directory) ForgotPassword(ctx context.Context, username string) (core.CodeDelivery, error) {
	out, err := d.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(d.clientID),
		Username: aws.String(username),
	})
	if err != nil {
		return core.CodeDelivery{}, mapErr("forgot_password", err)
	}
	return deliveryFrom(out.CodeDeliveryDetails), nil
}

func (d *Directory) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	_, err := d.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(d.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	if err != nil {
		return mapErr("confirm_forgot_password", err)
	}
	return nil
}

func attributeList(attributes map[string]string) []types.AttributeType {
	if len(attributes) == 0 {
		return nil
	}
	out := make([]types.AttributeType, 0, len(attributes))
	// Stable order keeps request bodies deterministic for tests.
	for _, name := range sortedKeys(attributes) {
		out = append(out, types.AttributeType{Name: aws.String(name), Value: aws.String(attributes[name])})
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func tokensFromResult(res *types.AuthenticationResultType) *core.Tokens {
	if res == nil {
		return nil
	}
	return &core.Tokens{
		Access:    aws.ToString(res.AccessToken),
		Refresh:   aws.ToString(res.RefreshToken),
		ID:        aws.ToString(res.IdToken),
		ExpiresIn: res.ExpiresIn,
	}
}

func deliveryFrom(d *types.CodeDeliveryDetailsType) core.CodeDelivery {
	if d == nil {
		return core.CodeDelivery{}
	}
	return core.CodeDelivery{
		Destination: aws.ToString(d.Destination),
		Medium:      string(d.DeliveryMedium),
	}
}

// mapErr translates provider exceptions onto the core sentinels so the
// coordinator never sees Cognito types.
func mapErr(op string, err error) error {
	var (
		exists      *types.UsernameExistsException
		notFound    *types.UserNotFoundException
		notAuth     *types.NotAuthorizedException
		codeBad     *types.CodeMismatchException
		codeExpired *types.ExpiredCodeException
	)
	switch {
	case errors.As(err, &exists):
		return core.ErrUserExists
	case errors.As(err, &notFound):
		return core.ErrUserNotFound
	case errors.As(err, &notAuth), errors.As(err, &codeBad), errors.As(err, &codeExpired):
		return core.ErrNotAuthorized
	}
	return &core.DirectoryError{Op: op, Err: err}
}
