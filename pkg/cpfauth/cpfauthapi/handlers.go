package cpfauthapi

import (
	"context"

	"github.com/Abraxas-365/cpfauth/pkg/cpfauth"
	"github.com/Abraxas-365/cpfauth/pkg/logx"
	"github.com/gofiber/fiber/v2"
)

// SuccessMessage is returned with every 200 response.
const SuccessMessage = "Autenticação bem-sucedida"

// Authenticator is the core operation served by these handlers.
type Authenticator interface {
	Authenticate(ctx context.Context, req cpfauth.AuthRequest) (*cpfauth.AuthResult, error)
}

// AuthResponse is the 200 body.
type AuthResponse struct {
	Message      string `json:"message"`
	NewUser      bool   `json:"newUser"`
	IDToken      string `json:"idToken"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int32  `json:"expiresIn"`
}

// Handlers serves CPF authentication over HTTP.
type Handlers struct {
	auth Authenticator
}

// NewHandlers creates the handlers.
func NewHandlers(auth Authenticator) *Handlers {
	return &Handlers{auth: auth}
}

// RegisterRoutes mounts the endpoint at / and /auth/cpf. CORS() must already
// be installed on the app so that preflights never reach these handlers.
func (h *Handlers) RegisterRoutes(router fiber.Router) {
	router.Post("/", h.Authenticate)
	router.Post("/auth/cpf", h.Authenticate)
}

// Authenticate handles POST {"cpf": "..."}.
func (h *Handlers) Authenticate(c *fiber.Ctx) error {
	req, err := cpfauth.ParseRequest(c.Body(), cpfauth.DecodeFunc(c.App().Config().JSONDecoder))
	if err != nil {
		logx.WithField("request_id", requestID(c)).Debugf("cpfauth: rejected request body: %v", err)
		return respondError(c, err)
	}

	ctx := logx.ContextWithFields(c.UserContext(), logx.Fields{"request_id": requestID(c)})
	res, err := h.auth.Authenticate(ctx, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(AuthResponse{
		Message:      SuccessMessage,
		NewUser:      res.NewUser,
		IDToken:      res.Tokens.IDToken,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		ExpiresIn:    res.Tokens.ExpiresIn,
	})
}

func respondError(c *fiber.Ctx, err error) error {
	e := cpfauth.Normalize(err)
	return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
}

func requestID(c *fiber.Ctx) string {
	return c.GetRespHeader(fiber.HeaderXRequestID, c.Get(fiber.HeaderXRequestID))
}
