package cpfauth

import (
	"context"
	"time"
)

// PartialFailureLedger records accounts left half-provisioned.
type PartialFailureLedger interface {
	Record(ctx context.Context, failure PartialFailure) error
}

// AuditService receives one event per authentication attempt and one per
// account created.
type AuditService interface {
	LogAuthAttempt(ctx context.Context, attempt AuthAttempt)
	LogAccountProvisioned(ctx context.Context, fingerprint string)
}

// MetricsRecorder observes saga steps and request outcomes.
type MetricsRecorder interface {
	ObserveStep(step Step, duration time.Duration, err error)
	ObserveAttempt(status int, newUser bool)
	IncPartialFailure(step Step)
}

// AuthAttempt summarises one call to Authenticate.
type AuthAttempt struct {
	Fingerprint string
	NewUser     bool
	Success     bool
	Status      int
	Code        string
	FailedStep  Step
	Duration    time.Duration
}

type noopLedger struct{}

func (noopLedger) Record(context.Context, PartialFailure) error { return nil }

type noopAudit struct{}

func (noopAudit) LogAuthAttempt(context.Context, AuthAttempt)   {}
func (noopAudit) LogAccountProvisioned(context.Context, string) {}

type noopMetrics struct{}

func (noopMetrics) ObserveStep(Step, time.Duration, error) {}
func (noopMetrics) ObserveAttempt(int, bool)               {}
func (noopMetrics) IncPartialFailure(Step)                 {}
