// Package cpfauth authenticates end users by CPF, provisioning their account
// in the identity provider on first contact so that login and signup are a
// single operation.
//
// Each call runs the same linear state machine:
//
//	check_existence -> [absent: create_user -> set_permanent_password] -> authenticate
//
// The account created for a CPF uses the CPF itself as its permanent
// password. A provider-side password policy that rejects CPF-shaped strings
// surfaces as CodeInvalidPassword.
//
// Create and set-password are two provider calls with no transaction between
// them. When the second fails the account is left holding a temporary
// credential; the Authenticator reports that as a PartialFailure and does not
// roll back or retry.
package cpfauth

import (
	"github.com/Abraxas-365/cpfauth/pkg/identity"
)

// AuthRequest is a validated inbound request.
type AuthRequest struct {
	CPF string
}

// AuthResult is returned on successful authentication.
type AuthResult struct {
	// NewUser is true when this call created the account.
	NewUser bool
	Tokens  identity.Tokens
}

// Config is fixed for the lifetime of an Authenticator.
type Config struct {
	Pool identity.Pool

	// FingerprintKey keys Fingerprint. A random key is generated when empty.
	FingerprintKey []byte
}
