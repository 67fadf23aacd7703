package cpfauthinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/cpfauth/pkg/cpfauth"
	"github.com/Abraxas-365/cpfauth/pkg/logx"
)

// LogxAuditService implements cpfauth.AuditService using structured logx logging.
type LogxAuditService struct{}

var _ cpfauth.AuditService = (*LogxAuditService)(nil)

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogAuthAttempt(_ context.Context, attempt cpfauth.AuthAttempt) {
	logx.WithFields(logx.Fields{
		"audit_event":     "auth_attempt",
		"cpf_fingerprint": attempt.Fingerprint,
		"new_user":        attempt.NewUser,
		"success":         attempt.Success,
		"status":          attempt.Status,
		"code":            attempt.Code,
		"failed_step":     string(attempt.FailedStep),
		"duration_ms":     attempt.Duration.Milliseconds(),
		"timestamp":       time.Now(),
	}).Info("Audit: auth attempt")
}

func (s *LogxAuditService) LogAccountProvisioned(_ context.Context, fingerprint string) {
	logx.WithFields(logx.Fields{
		"audit_event":     "account_provisioned",
		"cpf_fingerprint": fingerprint,
		"timestamp":       time.Now(),
	}).Info("Audit: account provisioned")
}

// LogxPartialFailureLedger writes partial failures to the log only. It is
// the ledger used when Redis is not configured.
type LogxPartialFailureLedger struct{}

var _ cpfauth.PartialFailureLedger = (*LogxPartialFailureLedger)(nil)

func NewLogxPartialFailureLedger() *LogxPartialFailureLedger {
	return &LogxPartialFailureLedger{}
}

func (l *LogxPartialFailureLedger) Record(_ context.Context, failure cpfauth.PartialFailure) error {
	logx.WithFields(logx.Fields{
		"audit_event":     "partial_provisioning",
		"cpf_fingerprint": failure.Fingerprint,
		"step":            string(failure.Step),
		"occurred_at":     failure.OccurredAt,
	}).WithError(failure.Cause).Error("Account left with temporary credential; manual repair required")
	return nil
}
