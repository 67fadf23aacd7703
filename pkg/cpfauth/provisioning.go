package cpfauth

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/cpfauth/pkg/identity"
)

// Step names one provider round trip of the authentication flow.
type Step string

const (
	StepCheckExistence       Step = "check_existence"
	StepCreateUser           Step = "create_user"
	StepSetPermanentPassword Step = "set_permanent_password"
	StepAuthenticate         Step = "authenticate"
)

// Provisioning is the outcome of the provisioning saga.
type Provisioning struct {
	// UserExisted is the result of the existence check.
	UserExisted bool

	// Completed lists the steps that succeeded, in order.
	Completed []Step

	// FailedStep is the step that stopped the saga, empty on success.
	FailedStep Step
}

// PartialFailure describes an account that was created but whose permanent
// credential could not be set. The account keeps the temporary credential
// until someone fixes it by hand; later logins for the same CPF find it,
// skip creation and usually fail as not authorized or with a challenge.
type PartialFailure struct {
	Step        Step
	Fingerprint string
	Cause       error
	OccurredAt  time.Time
}

// Error implements the error interface
func (p *PartialFailure) Error() string {
	return fmt.Sprintf("account %s created but %s failed: %v", p.Fingerprint, p.Step, p.Cause)
}

// Unwrap returns the provider error
func (p *PartialFailure) Unwrap() error {
	return p.Cause
}

// provision makes sure an account named cpf exists with cpf as its permanent
// password. The returned Provisioning is always non-nil.
func (a *Authenticator) provision(ctx context.Context, cpf string) (*Provisioning, error) {
	prov := &Provisioning{}

	err := a.runStep(prov, StepCheckExistence, func() error {
		_, err := a.provider.GetUser(ctx, a.cfg.Pool, cpf)
		return err
	})
	switch {
	case err == nil:
		prov.UserExisted = true
		return prov, nil
	case identity.IsNotFound(err):
		// Absent is an expected outcome of this step, not a failure.
		prov.FailedStep = ""
		prov.Completed = append(prov.Completed, StepCheckExistence)
	default:
		return prov, err
	}

	if err := a.runStep(prov, StepCreateUser, func() error {
		_, err := a.provider.CreateUser(ctx, a.cfg.Pool, identity.CreateUserInput{
			Username:             cpf,
			TemporaryPassword:    cpf,
			SuppressNotification: true,
		})
		return err
	}); err != nil {
		return prov, err
	}

	if err := a.runStep(prov, StepSetPermanentPassword, func() error {
		return a.provider.SetPermanentPassword(ctx, a.cfg.Pool, cpf, cpf)
	}); err != nil {
		failure := &PartialFailure{
			Step:        StepSetPermanentPassword,
			Fingerprint: a.Fingerprint(cpf),
			Cause:       err,
			OccurredAt:  a.now(),
		}
		a.metrics.IncPartialFailure(failure.Step)
		if lerr := a.ledger.Record(ctx, *failure); lerr != nil {
			a.log(ctx).WithError(lerr).Error("cpfauth: failed to record partial provisioning")
		}
		return prov, failure
	}

	return prov, nil
}

// runStep times fn, reports it to metrics and records it on prov.
func (a *Authenticator) runStep(prov *Provisioning, step Step, fn func() error) error {
	start := a.now()
	err := fn()
	a.metrics.ObserveStep(step, a.now().Sub(start), err)

	if err != nil {
		prov.FailedStep = step
		return err
	}
	prov.Completed = append(prov.Completed, step)
	return nil
}
