package cpfauth

import (
	"errors"
	"net/http"

	"github.com/Abraxas-365/cpfauth/pkg/errx"
	"github.com/Abraxas-365/cpfauth/pkg/identity"
)

// DetailStep names the saga step that failed.
const DetailStep = "step"

var ErrRegistry = errx.NewRegistry("CPFAUTH")

var (
	CodeCPFRequired         = ErrRegistry.Register("CPF_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "CPF é obrigatório")
	CodeCPFNotFound         = ErrRegistry.Register("CPF_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "CPF não encontrado")
	CodeInvalidCPF          = ErrRegistry.Register("INVALID_CPF", errx.TypeAuthorization, http.StatusUnauthorized, "CPF inválido")
	CodeUserNotConfirmed    = ErrRegistry.Register("USER_NOT_CONFIRMED", errx.TypeForbidden, http.StatusForbidden, "Usuário não confirmado")
	CodeInvalidPassword     = ErrRegistry.Register("INVALID_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "Senha inválida: não atende à política de senhas")
	CodeInternal            = ErrRegistry.Register("INTERNAL", errx.TypeInternal, http.StatusInternalServerError, "Erro interno ao autenticar")
	CodePartialProvisioning = ErrRegistry.Register("PARTIAL_PROVISIONING", errx.TypeInternal, http.StatusInternalServerError, "Erro interno ao autenticar")
)

func ErrCPFRequired() *errx.Error { return ErrRegistry.New(CodeCPFRequired) }

// Normalize maps any failure from the authentication flow onto the external
// taxonomy. The message is always the registered one; the provider's own
// message and code travel as diagnostic details.
func Normalize(err error) *errx.Error {
	if err == nil {
		return nil
	}

	var partial *PartialFailure
	if errors.As(err, &partial) {
		e := ErrRegistry.NewWithCause(CodePartialProvisioning, err).
			WithDetail(DetailStep, string(partial.Step))
		withProviderCause(e, partial.Cause)
		return e
	}

	var ex *errx.Error
	if errors.As(err, &ex) {
		return ex
	}

	var pe *identity.Error
	if !errors.As(err, &pe) {
		return ErrRegistry.NewWithCause(CodeInternal, err)
	}

	var code *errx.ErrorCode
	switch pe.Kind {
	case identity.KindUserNotFound:
		code = CodeCPFNotFound
	case identity.KindNotAuthorized:
		code = CodeInvalidCPF
	case identity.KindUserNotConfirmed:
		code = CodeUserNotConfirmed
	case identity.KindInvalidPassword:
		code = CodeInvalidPassword
	case identity.KindUsernameExists,
		identity.KindChallengeRequired,
		identity.KindUnavailable,
		identity.KindOther:
		code = CodeInternal
	default:
		code = CodeInternal
	}

	e := ErrRegistry.NewWithCause(code, err)
	withProviderCause(e, pe)
	return e
}

func withProviderCause(e *errx.Error, cause error) {
	var pe *identity.Error
	if errors.As(cause, &pe) {
		e.WithCause(pe.Message, pe.Code)
	}
}
