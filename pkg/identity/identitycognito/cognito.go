package identitycognito

import (
	"context"

	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// API is the subset of the Cognito user-pool client used by Provider.
// *cognitoidentityprovider.Client satisfies it.
type API interface {
	AdminGetUser(ctx context.Context, params *cip.AdminGetUserInput, optFns ...func(*cip.Options)) (*cip.AdminGetUserOutput, error)
	AdminCreateUser(ctx context.Context, params *cip.AdminCreateUserInput, optFns ...func(*cip.Options)) (*cip.AdminCreateUserOutput, error)
	AdminSetUserPassword(ctx context.Context, params *cip.AdminSetUserPasswordInput, optFns ...func(*cip.Options)) (*cip.AdminSetUserPasswordOutput, error)
	AdminInitiateAuth(ctx context.Context, params *cip.AdminInitiateAuthInput, optFns ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error)
}

// Provider implements identity.Provider on an AWS Cognito user pool.
type Provider struct {
	client API
}

var _ identity.Provider = (*Provider)(nil)

// NewProvider creates a Cognito provider around an existing client.
func NewProvider(client API) *Provider {
	return &Provider{client: client}
}

// NewProviderFromConfig creates a Cognito provider from an AWS SDK config.
func NewProviderFromConfig(cfg aws.Config) *Provider {
	return NewProvider(cip.NewFromConfig(cfg))
}

// GetUser looks the account up with AdminGetUser.
func (p *Provider) GetUser(ctx context.Context, pool identity.Pool, username string) (*identity.User, error) {
	out, err := p.client.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(pool.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, translateError(identity.OpGetUser, err)
	}

	user := &identity.User{
		Username: aws.ToString(out.Username),
		Status:   userStatus(out.UserStatus),
		Enabled:  out.Enabled,
	}
	if out.UserCreateDate != nil {
		user.CreatedAt = *out.UserCreateDate
	}
	return user, nil
}

// CreateUser creates the account with AdminCreateUser.
func (p *Provider) CreateUser(ctx context.Context, pool identity.Pool, input identity.CreateUserInput) (*identity.User, error) {
	req := &cip.AdminCreateUserInput{
		UserPoolId:        aws.String(pool.UserPoolID),
		Username:          aws.String(input.Username),
		TemporaryPassword: aws.String(input.TemporaryPassword),
	}
	if input.SuppressNotification {
		req.MessageAction = types.MessageActionTypeSuppress
	}

	out, err := p.client.AdminCreateUser(ctx, req)
	if err != nil {
		return nil, translateError(identity.OpCreateUser, err)
	}

	user := &identity.User{
		Username: input.Username,
		Status:   identity.StatusForceChangePassword,
		Enabled:  true,
	}
	if out.User != nil {
		user.Status = userStatus(out.User.UserStatus)
		user.Enabled = out.User.Enabled
		if out.User.UserCreateDate != nil {
			user.CreatedAt = *out.User.UserCreateDate
		}
	}
	return user, nil
}

// SetPermanentPassword calls AdminSetUserPassword with Permanent set.
func (p *Provider) SetPermanentPassword(ctx context.Context, pool identity.Pool, username, password string) error {
	_, err := p.client.AdminSetUserPassword(ctx, &cip.AdminSetUserPasswordInput{
		UserPoolId: aws.String(pool.UserPoolID),
		Username:   aws.String(username),
		Password:   aws.String(password),
		Permanent:  true,
	})
	if err != nil {
		return translateError(identity.OpSetPermanentPassword, err)
	}
	return nil
}

// AdminAuthenticate runs the ADMIN_NO_SRP_AUTH flow.
func (p *Provider) AdminAuthenticate(ctx context.Context, pool identity.Pool, username, password string) (*identity.Tokens, error) {
	out, err := p.client.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId: aws.String(pool.UserPoolID),
		ClientId:   aws.String(pool.ClientID),
		AuthFlow:   types.AuthFlowTypeAdminNoSrpAuth,
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, translateError(identity.OpAdminAuthenticate, err)
	}

	res := out.AuthenticationResult
	if res == nil {
		challenge := string(out.ChallengeName)
		if challenge == "" {
			challenge = "UNKNOWN"
		}
		return nil, identity.NewError(
			identity.KindChallengeRequired,
			identity.OpAdminAuthenticate,
			challenge,
			"provider returned challenge "+challenge+" instead of tokens",
			nil,
		)
	}

	return &identity.Tokens{
		IDToken:      aws.ToString(res.IdToken),
		AccessToken:  aws.ToString(res.AccessToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		ExpiresIn:    res.ExpiresIn,
		TokenType:    aws.ToString(res.TokenType),
	}, nil
}

func userStatus(s types.UserStatusType) identity.UserStatus {
	switch s {
	case types.UserStatusTypeConfirmed:
		return identity.StatusConfirmed
	case types.UserStatusTypeForceChangePassword:
		return identity.StatusForceChangePassword
	case types.UserStatusTypeUnconfirmed:
		return identity.StatusUnconfirmed
	default:
		return identity.StatusUnknown
	}
}
