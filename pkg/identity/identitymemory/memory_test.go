package identitymemory

import (
	"context"
	"errors"
	"testing"

	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pool = identity.Pool{UserPoolID: "local", ClientID: "local-client"}

func TestLifecycle(t *testing.T) {
	p := NewProvider(WithTokenExpiry(60))
	ctx := context.Background()

	_, err := p.GetUser(ctx, pool, "alice")
	assert.True(t, identity.IsNotFound(err))

	user, err := p.CreateUser(ctx, pool, identity.CreateUserInput{Username: "alice", TemporaryPassword: "temp"})
	require.NoError(t, err)
	assert.Equal(t, identity.StatusForceChangePassword, user.Status)

	_, err = p.AdminAuthenticate(ctx, pool, "alice", "temp")
	assert.Equal(t, identity.KindChallengeRequired, identity.KindOf(err))

	require.NoError(t, p.SetPermanentPassword(ctx, pool, "alice", "secret"))

	user, err = p.GetUser(ctx, pool, "alice")
	require.NoError(t, err)
	assert.Equal(t, identity.StatusConfirmed, user.Status)

	tokens, err := p.AdminAuthenticate(ctx, pool, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, int32(60), tokens.ExpiresIn)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.NotEqual(t, tokens.AccessToken, tokens.IDToken)

	_, err = p.AdminAuthenticate(ctx, pool, "alice", "wrong")
	assert.Equal(t, identity.KindNotAuthorized, identity.KindOf(err))
}

func TestCreateUser_Duplicate(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()

	_, err := p.CreateUser(ctx, pool, identity.CreateUserInput{Username: "bob", TemporaryPassword: "x"})
	require.NoError(t, err)

	_, err = p.CreateUser(ctx, pool, identity.CreateUserInput{Username: "bob", TemporaryPassword: "x"})
	assert.Equal(t, identity.KindUsernameExists, identity.KindOf(err))
}

func TestPoolsAreIsolated(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()

	_, err := p.CreateUser(ctx, pool, identity.CreateUserInput{Username: "bob", TemporaryPassword: "x"})
	require.NoError(t, err)

	_, err = p.GetUser(ctx, identity.Pool{UserPoolID: "other"}, "bob")
	assert.True(t, identity.IsNotFound(err))
}

func TestPasswordPolicy(t *testing.T) {
	p := NewProvider(WithPasswordPolicy(func(pw string) error {
		if len(pw) < 8 {
			return errors.New("Password not long enough")
		}
		return nil
	}))
	ctx := context.Background()

	_, err := p.CreateUser(ctx, pool, identity.CreateUserInput{Username: "carol", TemporaryPassword: "short"})
	var pe *identity.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, identity.KindInvalidPassword, pe.Kind)
	assert.Equal(t, "InvalidPasswordException", pe.Code)
	assert.Equal(t, "Password not long enough", pe.Message)

	_, err = p.CreateUser(ctx, pool, identity.CreateUserInput{Username: "carol", TemporaryPassword: "longenough"})
	require.NoError(t, err)

	err = p.SetPermanentPassword(ctx, pool, "carol", "short")
	assert.Equal(t, identity.KindInvalidPassword, identity.KindOf(err))
}

func TestUnconfirmed(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()

	_, err := p.CreateUser(ctx, pool, identity.CreateUserInput{Username: "dan", TemporaryPassword: "pw"})
	require.NoError(t, err)
	require.NoError(t, p.SetPermanentPassword(ctx, pool, "dan", "pw"))
	require.True(t, p.SetUserStatus(pool, "dan", identity.StatusUnconfirmed))
	assert.False(t, p.SetUserStatus(pool, "nobody", identity.StatusUnconfirmed))

	_, err = p.AdminAuthenticate(ctx, pool, "dan", "pw")
	assert.Equal(t, identity.KindUserNotConfirmed, identity.KindOf(err))
}

func TestFailNextIsConsumedOnce(t *testing.T) {
	p := NewProvider()
	ctx := context.Background()
	injected := errors.New("injected")

	p.FailNext(identity.OpGetUser, injected)

	_, err := p.GetUser(ctx, pool, "x")
	assert.ErrorIs(t, err, injected)

	_, err = p.GetUser(ctx, pool, "x")
	assert.True(t, identity.IsNotFound(err))
	assert.Equal(t, 2, p.Calls(identity.OpGetUser))
}

func TestSetPermanentPassword_MissingUser(t *testing.T) {
	err := NewProvider().SetPermanentPassword(context.Background(), pool, "ghost", "pw")

	assert.True(t, identity.IsNotFound(err))
}
