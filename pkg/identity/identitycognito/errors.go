package identitycognito

import (
	"context"
	"errors"

	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// translateError maps a Cognito SDK error onto identity.Error.
func translateError(op identity.Op, err error) *identity.Error {
	if err == nil {
		return nil
	}

	var (
		notFound     *types.UserNotFoundException
		notAuth      *types.NotAuthorizedException
		notConfirmed *types.UserNotConfirmedException
		badPassword  *types.InvalidPasswordException
		exists       *types.UsernameExistsException
		throttled    *types.TooManyRequestsException
		internal     *types.InternalErrorException
	)

	kind := identity.KindOther
	switch {
	case errors.As(err, &notFound):
		kind = identity.KindUserNotFound
	case errors.As(err, &notAuth):
		kind = identity.KindNotAuthorized
	case errors.As(err, &notConfirmed):
		kind = identity.KindUserNotConfirmed
	case errors.As(err, &badPassword):
		kind = identity.KindInvalidPassword
	case errors.As(err, &exists):
		kind = identity.KindUsernameExists
	case errors.As(err, &throttled), errors.As(err, &internal):
		kind = identity.KindUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = identity.KindUnavailable
	}

	code, message := "", ""
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
		message = apiErr.ErrorMessage()
	}

	return identity.NewError(kind, op, code, message, err)
}
