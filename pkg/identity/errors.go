package identity

import (
	"errors"
	"fmt"
)

// Kind is the closed set of provider failure categories. Provider
// implementations translate every failure into exactly one Kind.
type Kind int

const (
	// KindOther is any failure not covered by a more specific kind.
	KindOther Kind = iota
	KindUserNotFound
	KindNotAuthorized
	KindUserNotConfirmed
	KindInvalidPassword
	KindUsernameExists
	// KindChallengeRequired means the provider answered with a challenge
	// instead of tokens.
	KindChallengeRequired
	// KindUnavailable covers throttling, timeouts and provider-side faults.
	KindUnavailable
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUserNotFound:
		return "user_not_found"
	case KindNotAuthorized:
		return "not_authorized"
	case KindUserNotConfirmed:
		return "user_not_confirmed"
	case KindInvalidPassword:
		return "invalid_password"
	case KindUsernameExists:
		return "username_exists"
	case KindChallengeRequired:
		return "challenge_required"
	case KindUnavailable:
		return "unavailable"
	default:
		return "other"
	}
}

// Op names a provider operation.
type Op string

const (
	OpGetUser              Op = "get_user"
	OpCreateUser           Op = "create_user"
	OpSetPermanentPassword Op = "set_permanent_password"
	OpAdminAuthenticate    Op = "admin_authenticate"
)

// Error is the failure type returned by every Provider method.
type Error struct {
	Kind Kind
	Op   Op

	// Code is the provider's raw error code, when it reported one.
	Code string

	// Message is the provider's raw error message.
	Message string

	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity %s: %s: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("identity %s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error. When message is empty the cause's text is used.
func NewError(kind Kind, op Op, code, message string, cause error) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Op: op, Code: code, Message: message, Err: cause}
}

// KindOf reports the Kind of err. Errors that are not *Error are KindOther.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// IsNotFound reports whether err means the account does not exist.
func IsNotFound(err error) bool {
	return KindOf(err) == KindUserNotFound
}
