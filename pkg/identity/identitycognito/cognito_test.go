package identitycognito

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPool = identity.Pool{UserPoolID: "us-east-1_abc", ClientID: "client-xyz"}

type fakeAPI struct {
	getUser     func(*cip.AdminGetUserInput) (*cip.AdminGetUserOutput, error)
	createUser  func(*cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error)
	setPassword func(*cip.AdminSetUserPasswordInput) (*cip.AdminSetUserPasswordOutput, error)
	initAuth    func(*cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error)
}

func (f *fakeAPI) AdminGetUser(_ context.Context, in *cip.AdminGetUserInput, _ ...func(*cip.Options)) (*cip.AdminGetUserOutput, error) {
	return f.getUser(in)
}

func (f *fakeAPI) AdminCreateUser(_ context.Context, in *cip.AdminCreateUserInput, _ ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error) {
	return f.createUser(in)
}

func (f *fakeAPI) AdminSetUserPassword(_ context.Context, in *cip.AdminSetUserPasswordInput, _ ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error) {
	return f.setPassword(in)
}

func (f *fakeAPI) AdminInitiateAuth(_ context.Context, in *cip.AdminInitiateAuthInput, _ ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error) {
	return f.initAuth(in)
}

func TestGetUser(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{getUser: func(in *cip.AdminGetUserInput) (*cip.AdminGetUserOutput, error) {
		assert.Equal(t, "us-east-1_abc", aws.ToString(in.UserPoolId))
		assert.Equal(t, "12345678901", aws.ToString(in.Username))
		return &cip.AdminGetUserOutput{
			Username:       in.Username,
			UserStatus:     types.UserStatusTypeConfirmed,
			Enabled:        true,
			UserCreateDate: &created,
		}, nil
	}}

	user, err := NewProvider(api).GetUser(context.Background(), testPool, "12345678901")

	require.NoError(t, err)
	assert.Equal(t, "12345678901", user.Username)
	assert.Equal(t, identity.StatusConfirmed, user.Status)
	assert.True(t, user.Enabled)
	assert.Equal(t, created, user.CreatedAt)
}

func TestGetUser_NotFound(t *testing.T) {
	api := &fakeAPI{getUser: func(*cip.AdminGetUserInput) (*cip.AdminGetUserOutput, error) {
		return nil, &types.UserNotFoundException{Message: aws.String("User does not exist.")}
	}}

	_, err := NewProvider(api).GetUser(context.Background(), testPool, "12345678901")

	require.Error(t, err)
	assert.True(t, identity.IsNotFound(err))

	var pe *identity.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, identity.OpGetUser, pe.Op)
	assert.Equal(t, "UserNotFoundException", pe.Code)
	assert.Equal(t, "User does not exist.", pe.Message)
}

func TestCreateUser_SuppressesInvitation(t *testing.T) {
	api := &fakeAPI{createUser: func(in *cip.AdminCreateUserInput) (*cip.AdminCreateUserOutput, error) {
		assert.Equal(t, "12345678901", aws.ToString(in.Username))
		assert.Equal(t, "12345678901", aws.ToString(in.TemporaryPassword))
		assert.Equal(t, types.MessageActionTypeSuppress, in.MessageAction)
		return &cip.AdminCreateUserOutput{User: &types.UserType{
			Username:   in.Username,
			UserStatus: types.UserStatusTypeForceChangePassword,
			Enabled:    true,
		}}, nil
	}}

	user, err := NewProvider(api).CreateUser(context.Background(), testPool, identity.CreateUserInput{
		Username:             "12345678901",
		TemporaryPassword:    "12345678901",
		SuppressNotification: true,
	})

	require.NoError(t, err)
	assert.Equal(t, identity.StatusForceChangePassword, user.Status)
}

func TestSetPermanentPassword(t *testing.T) {
	var got *cip.AdminSetUserPasswordInput
	api := &fakeAPI{setPassword: func(in *cip.AdminSetUserPasswordInput) (*cip.AdminSetUserPasswordOutput, error) {
		got = in
		return &cip.AdminSetUserPasswordOutput{}, nil
	}}

	err := NewProvider(api).SetPermanentPassword(context.Background(), testPool, "12345678901", "12345678901")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Permanent)
	assert.Equal(t, "12345678901", aws.ToString(got.Password))
}

func TestSetPermanentPassword_PolicyRejection(t *testing.T) {
	api := &fakeAPI{setPassword: func(*cip.AdminSetUserPasswordInput) (*cip.AdminSetUserPasswordOutput, error) {
		return nil, &types.InvalidPasswordException{Message: aws.String("Password does not conform to policy")}
	}}

	err := NewProvider(api).SetPermanentPassword(context.Background(), testPool, "1", "1")

	assert.Equal(t, identity.KindInvalidPassword, identity.KindOf(err))
}

func TestAdminAuthenticate(t *testing.T) {
	api := &fakeAPI{initAuth: func(in *cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error) {
		assert.Equal(t, types.AuthFlowTypeAdminNoSrpAuth, in.AuthFlow)
		assert.Equal(t, "client-xyz", aws.ToString(in.ClientId))
		assert.Equal(t, map[string]string{"USERNAME": "12345678901", "PASSWORD": "12345678901"}, in.AuthParameters)
		return &cip.AdminInitiateAuthOutput{AuthenticationResult: &types.AuthenticationResultType{
			IdToken:      aws.String("id"),
			AccessToken:  aws.String("access"),
			RefreshToken: aws.String("refresh"),
			ExpiresIn:    3600,
			TokenType:    aws.String("Bearer"),
		}}, nil
	}}

	tokens, err := NewProvider(api).AdminAuthenticate(context.Background(), testPool, "12345678901", "12345678901")

	require.NoError(t, err)
	assert.Equal(t, identity.Tokens{
		IDToken:      "id",
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
		TokenType:    "Bearer",
	}, *tokens)
}

func TestAdminAuthenticate_Challenge(t *testing.T) {
	api := &fakeAPI{initAuth: func(*cip.AdminInitiateAuthInput) (*cip.AdminInitiateAuthOutput, error) {
		return &cip.AdminInitiateAuthOutput{ChallengeName: types.ChallengeNameTypeNewPasswordRequired}, nil
	}}

	_, err := NewProvider(api).AdminAuthenticate(context.Background(), testPool, "u", "p")

	var pe *identity.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, identity.KindChallengeRequired, pe.Kind)
	assert.Equal(t, "NEW_PASSWORD_REQUIRED", pe.Code)
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want identity.Kind
		code string
	}{
		{"not found", &types.UserNotFoundException{}, identity.KindUserNotFound, "UserNotFoundException"},
		{"not authorized", &types.NotAuthorizedException{}, identity.KindNotAuthorized, "NotAuthorizedException"},
		{"not confirmed", &types.UserNotConfirmedException{}, identity.KindUserNotConfirmed, "UserNotConfirmedException"},
		{"invalid password", &types.InvalidPasswordException{}, identity.KindInvalidPassword, "InvalidPasswordException"},
		{"username exists", &types.UsernameExistsException{}, identity.KindUsernameExists, "UsernameExistsException"},
		{"throttled", &types.TooManyRequestsException{}, identity.KindUnavailable, "TooManyRequestsException"},
		{"internal", &types.InternalErrorException{}, identity.KindUnavailable, "InternalErrorException"},
		{"wrapped", fmt.Errorf("operation error: %w", &types.NotAuthorizedException{}), identity.KindNotAuthorized, "NotAuthorizedException"},
		{"deadline", context.DeadlineExceeded, identity.KindUnavailable, ""},
		{"other sdk error", &types.ResourceNotFoundException{}, identity.KindOther, "ResourceNotFoundException"},
		{"plain", errors.New("boom"), identity.KindOther, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(identity.OpAdminAuthenticate, tt.err)

			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, identity.OpAdminAuthenticate, got.Op)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestTranslateError_PlainMessageFallsBackToCause(t *testing.T) {
	got := translateError(identity.OpGetUser, errors.New("boom"))

	assert.Equal(t, "boom", got.Message)
}

func TestUserStatus(t *testing.T) {
	assert.Equal(t, identity.StatusConfirmed, userStatus(types.UserStatusTypeConfirmed))
	assert.Equal(t, identity.StatusForceChangePassword, userStatus(types.UserStatusTypeForceChangePassword))
	assert.Equal(t, identity.StatusUnconfirmed, userStatus(types.UserStatusTypeUnconfirmed))
	assert.Equal(t, identity.StatusUnknown, userStatus(types.UserStatusTypeArchived))
}
