package cognito

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/require"

	core "github.com/open-rails/otpkit/core"
)

type fakeAPI struct {
	adminCreateUser        func(*cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error)
	adminSetUserPassword   func(*cip.AdminSetUserPasswordInput) (*cip.AdminSetUserPasswordOutput, error)
	adminInitiateAuth      func(*cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error)
	initiateAuth           func(*cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error)
	respondToAuthChallenge func(*cip.RespondToAuthChallengeInput) (*cip.RespondToAuthChallengeOutput, error)
	signUp                 func(*cip.SignUpInput) (*cip.SignUpOutput, error)
}

func (f *fakeAPI) AdminCreateUser(_ context.Context, in *cip.AdminCreateUserInput, _ ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	return f.adminCreateUser(in)
}

func (f *fakeAPI) AdminSetUserPassword(_ context.Context, in *cip.AdminSetUserPasswordInput, _ ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error) {
	return f.adminSetUserPassword(in)
}

func (f *fakeAPI) AdminInitiateAuth(_ context.Context, in *cip.AdminInitiateAuthInput, _ ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error) {
	return f.adminInitiateAuth(in)
}

func (f *fakeAPI) InitiateAuth(_ context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	return f.initiateAuth(in)
}

func (f *fakeAPI) RespondToAuthChallenge(_ context.Context, in *cip.RespondToAuthChallengeInput, _ ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error) {
	return f.respondToAuthChallenge(in)
}

func (f *fakeAPI) SignUp(_ context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	return f.signUp(in)
}

func (f *fakeAPI) ConfirmSignUp(_ context.Context, _ *cip.ConfirmSignUpInput, _ ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error) {
	return &cip.ConfirmSignUpOutput{}, nil
}

func (f *fakeAPI) ResendConfirmationCode(_ context.Context, _ *cip.ResendConfirmationCodeInput, _ ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error) {
	return &cip.ResendConfirmationCodeOutput{}, nil
}

func (f *fakeAPI) ForgotPassword(_ context.Context, _ *cip.ForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	return &cip.ForgotPasswordOutput{}, nil
}

func (f *fakeAPI) ConfirmForgotPassword(_ context.Context, _ *cip.ConfirmForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	return &cip.ConfirmForgotPasswordOutput{}, nil
}

const (
	testPoolID = "us-east-1_pool"
	testClient = "client-id"
	testPhone  = "+15550100200"
)

func TestUpsertUserWithCredential(t *testing.T) {
	var got *cip.AdminCreateUserInput
	api := &fakeAPI{
		adminCreateUser: func(in *cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
			got = in
			return &cip.AdminCreateUserOutput{}, nil
		},
	}
	d := NewWithAPI(api, testPoolID, testClient)

	attrs := map[string]string{
		"phone_number":          testPhone,
		"phone_number_verified": "true",
	}
	err := d.UpsertUserWithCredential(context.Background(), testPhone, attrs, "123456A!", true)
	require.NoError(t, err)

	require.Equal(t, testPoolID, aws.ToString(got.UserPoolId))
	require.Equal(t, testPhone, aws.ToString(got.Username))
	require.Equal(t, types.MessageActionTypeSuppress, got.MessageAction)
	require.Equal(t, "123456A!", aws.ToString(got.TemporaryPassword))
	require.Len(t, got.UserAttributes, 2)
	require.Equal(t, "phone_number", aws.ToString(got.UserAttributes[0].Name))
	require.Equal(t, "phone_number_verified", aws.ToString(got.UserAttributes[1].Name))
}

func TestUpsertUserExists(t *testing.T) {
	api := &fakeAPI{
		adminCreateUser: func(*cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
			return nil, &types.UsernameExistsException{}
		},
	}
	d := NewWithAPI(api, testPoolID, testClient)

	err := d.UpsertUserWithCredential(context.Background(), testPhone, nil, "123456A!", true)
	require.ErrorIs(t, err, core.ErrUserExists)
}

func TestSetCredential(t *testing.T) {
	var got *cip.AdminSetUserPasswordInput
	api := &fakeAPI{
		adminSetUserPassword: func(in *cip.AdminSetUserPasswordInput) (*cip.AdminSetUserPasswordOutput, error) {
			got = in
			return &cip.AdminSetUserPasswordOutput{}, nil
		},
	}
	d := NewWithAPI(api, testPoolID, testClient)

	require.NoError(t, d.SetCredential(context.Background(), testPhone, "123456A!", true))
	require.False(t, got.Permanent, "temporary credential must not be marked permanent")

	require.NoError(t, d.SetCredential(context.Background(), testPhone, "finalA1!", false))
	require.True(t, got.Permanent)
}

func TestSignInRotationDemand(t *testing.T) {
	api := &fakeAPI{
		initiateAuth: func(in *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
			return &cip.InitiateAuthOutput{
				ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
				Session:       aws.String("rot-session"),
			}, nil
		},
	}
	d := NewWithAPI(api, testPoolID, testClient)

	res, err := d.SignIn(context.Background(), testPhone, "123456A!")
	require.NoError(t, err)
	require.Nil(t, res.Tokens)
	require.Equal(t, "rot-session", res.RotationSession)
}

func TestSignInSuccess(t *testing.T) {
	var got *cip.InitiateAuthInput
	api := &fakeAPI{
		initiateAuth: func(in *cip.InitiateAuthInput) (*cip.InitiateAuthOutput, error) {
			got = in
			return &cip.InitiateAuthOutput{
				AuthenticationResult: &types.AuthenticationResultType{
					AccessToken:  aws.String("at"),
					RefreshToken: aws.String("rt"),
					IdToken:      aws.String("it"),
					ExpiresIn:    3600,
				},
			}, nil
		},
	}
	d := NewWithAPI(api, testPoolID, testClient)

	res, err := d.SignIn(context.Background(), testPhone, "pw")
	require.NoError(t, err)
	require.Equal(t, types.AuthFlowTypeUserPasswordAuth, got.AuthFlow)
	require.Equal(t, testPhone, got.AuthParameters["USERNAME"])
	require.Equal(t, &core.Tokens{Access: "at", Refresh: "rt", ID: "it", ExpiresIn: 3600}, res.Tokens)
}

func TestFinalizeRotation(t *testing.T) {
	var got *cip.RespondToAuthChallengeInput
	api := &fakeAPI{
		respondToAuthChallenge: func(in *cip.RespondToAuthChallengeInput) (*cip.RespondToAuthChallengeOutput, error) {
			got = in
			return &cip.RespondToAuthChallengeOutput{
				AuthenticationResult: &types.AuthenticationResultType{AccessToken: aws.String("at")},
			}, nil
		},
	}
	d := NewWithAPI(api, testPoolID, testClient)

	tokens, err := d.FinalizeRotation(context.Background(), testPhone, "rot-session", "newCredA1!")
	require.NoError(t, err)
	require.Equal(t, "at", tokens.Access)
	require.Equal(t, types.ChallengeNameTypeNewPasswordRequired, got.ChallengeName)
	require.Equal(t, "rot-session", aws.ToString(got.Session))
	require.Equal(t, "newCredA1!", got.ChallengeResponses["NEW_PASSWORD"])
}

func TestChallengeFlow(t *testing.T) {
	api := &fakeAPI{
		adminInitiateAuth: func(in *cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error) {
			require.Equal(t, types.AuthFlowTypeCustomAuth, in.AuthFlow)
			return &cip.AdminInitiateAuthOutput{Session: aws.String("chal-session")}, nil
		},
		respondToAuthChallenge: func(in *cip.RespondToAuthChallengeInput) (*cip.RespondToAuthChallengeOutput, error) {
			require.Equal(t, types.ChallengeNameTypeCustomChallenge, in.ChallengeName)
			if in.ChallengeResponses["ANSWER"] != "654321" {
				// The pool re-issues the challenge on a wrong answer.
				return &cip.RespondToAuthChallengeOutput{Session: aws.String("chal-session-2")}, nil
			}
			return &cip.RespondToAuthChallengeOutput{
				AuthenticationResult: &types.AuthenticationResultType{AccessToken: aws.String("at")},
			}, nil
		},
	}
	d := NewWithAPI(api, testPoolID, testClient)
	ctx := context.Background()

	session, err := d.StartChallenge(ctx, testPhone)
	require.NoError(t, err)
	require.Equal(t, "chal-session", session)

	_, err = d.AnswerChallenge(ctx, testPhone, session, "000000")
	require.ErrorIs(t, err, core.ErrNotAuthorized)

	tokens, err := d.AnswerChallenge(ctx, testPhone, session, "654321")
	require.NoError(t, err)
	require.Equal(t, "at", tokens.Access)
}

func TestSignUpDelivery(t *testing.T) {
	api := &fakeAPI{
		signUp: func(in *cip.SignUpInput) (*cip.SignUpOutput, error) {
			return &cip.SignUpOutput{
				UserSub: aws.String("sub-123"),
				CodeDeliveryDetails: &types.CodeDeliveryDetailsType{
					Destination:    aws.String("+***00"),
					DeliveryMedium: types.DeliveryMediumTypeSms,
				},
			}, nil
		},
	}
	d := NewWithAPI(api, testPoolID, testClient)

	sub, delivery, err := d.SignUp(context.Background(), testPhone, "hunter2A!", map[string]string{"phone_number": testPhone})
	require.NoError(t, err)
	require.Equal(t, "sub-123", sub)
	require.Equal(t, core.CodeDelivery{Destination: "+***00", Medium: "SMS"}, delivery)
}

func TestMapErr(t *testing.T) {
	cases := []struct {
		in   error
		want error
	}{
		{&types.UsernameExistsException{}, core.ErrUserExists},
		{&types.UserNotFoundException{}, core.ErrUserNotFound},
		{&types.NotAuthorizedException{}, core.ErrNotAuthorized},
		{&types.CodeMismatchException{}, core.ErrNotAuthorized},
		{&types.ExpiredCodeException{}, core.ErrNotAuthorized},
	}
	for _, c := range cases {
		require.ErrorIs(t, mapErr("op", c.in), c.want)
	}

	var de *core.DirectoryError
	err := mapErr("sign_in", fmt.Errorf("socket closed"))
	require.True(t, errors.As(err, &de))
	require.Equal(t, "sign_in", de.Op)
}
