package cpfauth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Abraxas-365/cpfauth/pkg/errx"
	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/Abraxas-365/cpfauth/pkg/logx"
)

var errNoTokens = errors.New("identity provider returned no tokens")

// Authenticator runs the check, provision and authenticate flow against an
// identity provider. It holds no per-request state and is safe for
// concurrent use.
type Authenticator struct {
	provider identity.Provider
	cfg      Config
	fpKey    []byte
	ledger   PartialFailureLedger
	audit    AuditService
	metrics  MetricsRecorder
	now      func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLedger sets where partially provisioned accounts are recorded.
func WithLedger(l PartialFailureLedger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.ledger = l
		}
	}
}

// WithAudit sets the audit sink.
func WithAudit(s AuditService) Option {
	return func(a *Authenticator) {
		if s != nil {
			a.audit = s
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(a *Authenticator) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAuthenticator creates an Authenticator bound to cfg.Pool.
func NewAuthenticator(provider identity.Provider, cfg Config, opts ...Option) *Authenticator {
	a := &Authenticator{
		provider: provider,
		cfg:      cfg,
		ledger:   noopLedger{},
		audit:    noopAudit{},
		metrics:  noopMetrics{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.fpKey = cfg.FingerprintKey
	if len(a.fpKey) == 0 {
		a.fpKey = NewFingerprintKey()
	}
	return a
}

// Fingerprint returns the identifier this Authenticator logs for cpf.
func (a *Authenticator) Fingerprint(cpf string) string {
	return Fingerprint(a.fpKey, cpf)
}

// Authenticate provisions the account for req.CPF when it does not exist yet
// and exchanges the CPF, as both username and password, for provider tokens.
// Every error returned is an *errx.Error produced by Normalize.
func (a *Authenticator) Authenticate(ctx context.Context, req AuthRequest) (*AuthResult, error) {
	if req.CPF == "" {
		return nil, ErrCPFRequired()
	}

	start := a.now()
	attempt := AuthAttempt{Fingerprint: a.Fingerprint(req.CPF)}

	prov, err := a.provision(ctx, req.CPF)
	attempt.NewUser = !prov.UserExisted && prov.FailedStep != StepCheckExistence
	if err != nil {
		return nil, a.fail(ctx, attempt, prov.FailedStep, start, err)
	}
	if attempt.NewUser {
		a.audit.LogAccountProvisioned(ctx, attempt.Fingerprint)
	}

	var tokens *identity.Tokens
	if err := a.runStep(prov, StepAuthenticate, func() error {
		var err error
		tokens, err = a.provider.AdminAuthenticate(ctx, a.cfg.Pool, req.CPF, req.CPF)
		return err
	}); err != nil {
		return nil, a.fail(ctx, attempt, StepAuthenticate, start, err)
	}
	if tokens == nil {
		return nil, a.fail(ctx, attempt, StepAuthenticate, start, errNoTokens)
	}

	attempt.Success = true
	attempt.Status = http.StatusOK
	attempt.Duration = a.now().Sub(start)
	a.audit.LogAuthAttempt(ctx, attempt)
	a.metrics.ObserveAttempt(http.StatusOK, attempt.NewUser)

	return &AuthResult{NewUser: attempt.NewUser, Tokens: *tokens}, nil
}

func (a *Authenticator) fail(ctx context.Context, attempt AuthAttempt, step Step, start time.Time, err error) *errx.Error {
	normalized := Normalize(err)
	if step != "" {
		normalized.WithDetail(DetailStep, string(step))
	}

	attempt.Status = normalized.HTTPStatus
	attempt.Code = normalized.Code
	attempt.FailedStep = step
	attempt.Duration = a.now().Sub(start)
	a.audit.LogAuthAttempt(ctx, attempt)
	a.metrics.ObserveAttempt(normalized.HTTPStatus, attempt.NewUser)

	entry := a.log(ctx).WithFields(logx.Fields{
		"cpf_fingerprint": attempt.Fingerprint,
		"step":            string(step),
		"status":          normalized.HTTPStatus,
		"code":            normalized.Code,
		"new_user":        attempt.NewUser,
	}).WithError(err)
	if normalized.HTTPStatus >= http.StatusInternalServerError {
		entry.Error("cpfauth: authentication failed")
	} else {
		entry.Warn("cpfauth: authentication rejected")
	}

	return normalized
}

func (a *Authenticator) log(ctx context.Context) *logx.Entry {
	return logx.WithContext(ctx)
}
