// Package identitymemory is an in-process identity.Provider for local
// development and tests. Accounts live in a map and tokens are random UUIDs.
package identitymemory

import (
	"context"
	"sync"
	"time"

	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/google/uuid"
)

type account struct {
	user      identity.User
	password  string
	temporary bool
}

// Provider is a thread-safe in-memory identity provider.
type Provider struct {
	mu        sync.Mutex
	pools     map[string]map[string]*account
	policy    func(password string) error
	faults    map[identity.Op]error
	calls     map[identity.Op]int
	expiresIn int32
	now       func() time.Time
}

var _ identity.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithPasswordPolicy rejects passwords for which policy returns an error,
// the way a provider-side password policy would.
func WithPasswordPolicy(policy func(password string) error) Option {
	return func(p *Provider) {
		p.policy = policy
	}
}

// WithTokenExpiry sets the ExpiresIn reported with issued tokens.
func WithTokenExpiry(seconds int32) Option {
	return func(p *Provider) {
		p.expiresIn = seconds
	}
}

// NewProvider creates an empty in-memory provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		pools:     make(map[string]map[string]*account),
		faults:    make(map[identity.Op]error),
		calls:     make(map[identity.Op]int),
		expiresIn: 3600,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FailNext makes the next call to op return err instead of running.
func (p *Provider) FailNext(op identity.Op, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults[op] = err
}

// Calls returns how many times op has been invoked.
func (p *Provider) Calls(op identity.Op) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// SetUserStatus overrides the status of an existing account.
func (p *Provider) SetUserStatus(pool identity.Pool, username string, status identity.UserStatus) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.pools[pool.UserPoolID][username]
	if !ok {
		return false
	}
	acc.user.Status = status
	return true
}

// GetUser implements identity.Provider.
func (p *Provider) GetUser(_ context.Context, pool identity.Pool, username string) (*identity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enter(identity.OpGetUser); err != nil {
		return nil, err
	}

	acc, ok := p.pools[pool.UserPoolID][username]
	if !ok {
		return nil, identity.NewError(identity.KindUserNotFound, identity.OpGetUser,
			"UserNotFoundException", "User does not exist.", nil)
	}
	user := acc.user
	return &user, nil
}

// CreateUser implements identity.Provider.
func (p *Provider) CreateUser(_ context.Context, pool identity.Pool, input identity.CreateUserInput) (*identity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enter(identity.OpCreateUser); err != nil {
		return nil, err
	}

	users := p.pools[pool.UserPoolID]
	if users == nil {
		users = make(map[string]*account)
		p.pools[pool.UserPoolID] = users
	}
	if _, ok := users[input.Username]; ok {
		return nil, identity.NewError(identity.KindUsernameExists, identity.OpCreateUser,
			"UsernameExistsException", "User account already exists", nil)
	}
	if err := p.checkPolicy(identity.OpCreateUser, input.TemporaryPassword); err != nil {
		return nil, err
	}

	acc := &account{
		user: identity.User{
			Username:  input.Username,
			Status:    identity.StatusForceChangePassword,
			Enabled:   true,
			CreatedAt: p.now(),
		},
		password:  input.TemporaryPassword,
		temporary: true,
	}
	users[input.Username] = acc

	user := acc.user
	return &user, nil
}

// SetPermanentPassword implements identity.Provider.
func (p *Provider) SetPermanentPassword(_ context.Context, pool identity.Pool, username, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enter(identity.OpSetPermanentPassword); err != nil {
		return err
	}

	acc, ok := p.pools[pool.UserPoolID][username]
	if !ok {
		return identity.NewError(identity.KindUserNotFound, identity.OpSetPermanentPassword,
			"UserNotFoundException", "User does not exist.", nil)
	}
	if err := p.checkPolicy(identity.OpSetPermanentPassword, password); err != nil {
		return err
	}

	acc.password = password
	acc.temporary = false
	if acc.user.Status == identity.StatusForceChangePassword {
		acc.user.Status = identity.StatusConfirmed
	}
	return nil
}

// AdminAuthenticate implements identity.Provider.
func (p *Provider) AdminAuthenticate(_ context.Context, pool identity.Pool, username, password string) (*identity.Tokens, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.enter(identity.OpAdminAuthenticate); err != nil {
		return nil, err
	}

	acc, ok := p.pools[pool.UserPoolID][username]
	if !ok {
		return nil, identity.NewError(identity.KindUserNotFound, identity.OpAdminAuthenticate,
			"UserNotFoundException", "User does not exist.", nil)
	}
	if acc.password != password {
		return nil, identity.NewError(identity.KindNotAuthorized, identity.OpAdminAuthenticate,
			"NotAuthorizedException", "Incorrect username or password.", nil)
	}
	if acc.user.Status == identity.StatusUnconfirmed {
		return nil, identity.NewError(identity.KindUserNotConfirmed, identity.OpAdminAuthenticate,
			"UserNotConfirmedException", "User is not confirmed.", nil)
	}
	if acc.temporary {
		return nil, identity.NewError(identity.KindChallengeRequired, identity.OpAdminAuthenticate,
			"NEW_PASSWORD_REQUIRED", "provider returned challenge NEW_PASSWORD_REQUIRED instead of tokens", nil)
	}

	return &identity.Tokens{
		IDToken:      uuid.NewString(),
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		ExpiresIn:    p.expiresIn,
		TokenType:    "Bearer",
	}, nil
}

// enter counts the call and pops an injected fault. Caller holds p.mu.
func (p *Provider) enter(op identity.Op) error {
	p.calls[op]++
	if err, ok := p.faults[op]; ok {
		delete(p.faults, op)
		return err
	}
	return nil
}

func (p *Provider) checkPolicy(op identity.Op, password string) error {
	if p.policy == nil {
		return nil
	}
	if err := p.policy(password); err != nil {
		return identity.NewError(identity.KindInvalidPassword, op, "InvalidPasswordException", err.Error(), err)
	}
	return nil
}
