package cpfauthapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Abraxas-365/cpfauth/pkg/cpfauth"
	"github.com/Abraxas-365/cpfauth/pkg/cpfauth/cpfauthapi"
	"github.com/Abraxas-365/cpfauth/pkg/errx"
	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/Abraxas-365/cpfauth/pkg/identity/identitymemory"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPool = identity.Pool{UserPoolID: "us-east-1_pool", ClientID: "client-123"}

func newTestApp(t *testing.T) (*fiber.App, *identitymemory.Provider) {
	t.Helper()

	provider := identitymemory.NewProvider()
	auth := cpfauth.NewAuthenticator(provider, cpfauth.Config{Pool: testPool})

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cpfauthapi.CORS())
	cpfauthapi.NewHandlers(auth).RegisterRoutes(app)
	return app, provider
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func assertCORS(t *testing.T, resp *http.Response) {
	t.Helper()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type,Authorization", resp.Header.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "POST,OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestAuthenticate_NewThenExistingUser(t *testing.T) {
	app, provider := newTestApp(t)

	resp, raw := do(t, app, http.MethodPost, "/", `{"cpf":"12345678901"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertCORS(t, resp)

	var first cpfauthapi.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &first))
	assert.Equal(t, "Autenticação bem-sucedida", first.Message)
	assert.True(t, first.NewUser)
	assert.NotEmpty(t, first.IDToken)
	assert.NotEmpty(t, first.AccessToken)
	assert.NotEmpty(t, first.RefreshToken)
	assert.Equal(t, int32(3600), first.ExpiresIn)

	resp, raw = do(t, app, http.MethodPost, "/auth/cpf", `{"cpf":"12345678901"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var second cpfauthapi.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &second))
	assert.False(t, second.NewUser)

	assert.Equal(t, 1, provider.Calls(identity.OpCreateUser))
}

func TestAuthenticate_ResponseFieldNames(t *testing.T) {
	app, _ := newTestApp(t)

	_, raw := do(t, app, http.MethodPost, "/", `{"cpf":"12345678901"}`)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	for _, key := range []string{"message", "newUser", "idToken", "accessToken", "refreshToken", "expiresIn"} {
		assert.Contains(t, body, key)
	}
}

func TestPreflight(t *testing.T) {
	app, provider := newTestApp(t)

	for _, path := range []string{"/", "/auth/cpf", "/anything"} {
		resp, raw := do(t, app, http.MethodOptions, path, "")

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Empty(t, raw, path)
		assertCORS(t, resp)
	}

	assert.Zero(t, provider.Calls(identity.OpGetUser))
	assert.Zero(t, provider.Calls(identity.OpAdminAuthenticate))
}

func TestAuthenticate_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"empty object", `{}`},
		{"empty cpf", `{"cpf":""}`},
		{"malformed", `{"cpf":`},
		{"number", `{"cpf":123}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, provider := newTestApp(t)

			resp, raw := do(t, app, http.MethodPost, "/", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assertCORS(t, resp)
			assert.JSONEq(t, `{"message":"CPF é obrigatório"}`, string(raw))
			assert.Zero(t, provider.Calls(identity.OpGetUser))
		})
	}
}

func TestAuthenticate_ProviderErrorBody(t *testing.T) {
	app, provider := newTestApp(t)
	provider.FailNext(identity.OpAdminAuthenticate, identity.NewError(
		identity.KindNotAuthorized, identity.OpAdminAuthenticate, "NotAuthorizedException", "Incorrect username or password.", nil))

	resp, raw := do(t, app, http.MethodPost, "/", `{"cpf":"12345678901"}`)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assertCORS(t, resp)

	var body errx.HTTPErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, errx.HTTPErrorResponse{
		Message: "CPF inválido",
		Error:   "Incorrect username or password.",
		Code:    "NotAuthorizedException",
	}, body)
}

type stubAuthenticator struct {
	err error
}

func (s stubAuthenticator) Authenticate(context.Context, cpfauth.AuthRequest) (*cpfauth.AuthResult, error) {
	return nil, s.err
}

func TestAuthenticate_UnnormalizedErrorBecomesInternal(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(cpfauthapi.CORS())
	cpfauthapi.NewHandlers(stubAuthenticator{err: io.ErrUnexpectedEOF}).RegisterRoutes(app)

	resp, raw := do(t, app, http.MethodPost, "/", `{"cpf":"12345678901"}`)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Erro interno ao autenticar"}`, string(raw))
}
