package cpfauthinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Abraxas-365/cpfauth/pkg/cpfauth"
	"github.com/Abraxas-365/cpfauth/pkg/errx"
	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/redis/go-redis/v9"
)

var ledgerErrors = errx.NewRegistry("CPFAUTH_LEDGER")

var (
	ErrLedgerWrite   = ledgerErrors.Register("WRITE_FAILED", errx.TypeExternal, 502, "Failed to record partial provisioning")
	ErrLedgerRead    = ledgerErrors.Register("READ_FAILED", errx.TypeExternal, 502, "Failed to read partial provisioning records")
	ErrLedgerMarshal = ledgerErrors.Register("MARSHAL", errx.TypeInternal, 500, "Failed to encode partial provisioning record")
)

// Key helpers
func partialKey(fingerprint string) string { return fmt.Sprintf("cpfauth:partial:%s", fingerprint) }
func partialIndexKey() string               { return "cpfauth:partial:index" }

// PartialRecord is the stored form of a cpfauth.PartialFailure.
type PartialRecord struct {
	Fingerprint     string    `json:"fingerprint"`
	Step            string    `json:"step"`
	ProviderCode    string    `json:"provider_code,omitempty"`
	ProviderMessage string    `json:"provider_message,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// RedisPartialFailureLedger keeps one record per half-provisioned account,
// indexed by time, so operators can find and repair them.
type RedisPartialFailureLedger struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ cpfauth.PartialFailureLedger = (*RedisPartialFailureLedger)(nil)

// NewRedisPartialFailureLedger creates a ledger. A zero ttl keeps records forever.
func NewRedisPartialFailureLedger(rdb *redis.Client, ttl time.Duration) *RedisPartialFailureLedger {
	return &RedisPartialFailureLedger{rdb: rdb, ttl: ttl}
}

// Record stores failure, replacing any earlier record for the same account.
// Index entries scored more than ttl before failure are pruned in the same
// transaction.
func (l *RedisPartialFailureLedger) Record(ctx context.Context, failure cpfauth.PartialFailure) error {
	rec := PartialRecord{
		Fingerprint: failure.Fingerprint,
		Step:        string(failure.Step),
		OccurredAt:  failure.OccurredAt.UTC(),
	}
	var pe *identity.Error
	if errors.As(failure.Cause, &pe) {
		rec.ProviderCode = pe.Code
		rec.ProviderMessage = pe.Message
	} else if failure.Cause != nil {
		rec.ProviderMessage = failure.Cause.Error()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return ledgerErrors.NewWithCause(ErrLedgerMarshal, err)
	}

	pipe := l.rdb.TxPipeline()
	pipe.Set(ctx, partialKey(rec.Fingerprint), data, l.ttl)
	pipe.ZAdd(ctx, partialIndexKey(), redis.Z{
		Score:  float64(rec.OccurredAt.Unix()),
		Member: rec.Fingerprint,
	})
	if l.ttl > 0 {
		// Records older than ttl have expired; keep the index from outgrowing them.
		cutoff := rec.OccurredAt.Add(-l.ttl).Unix()
		pipe.ZRemRangeByScore(ctx, partialIndexKey(), "-inf", "("+strconv.FormatInt(cutoff, 10))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return ledgerErrors.NewWithCause(ErrLedgerWrite, err).WithDetail("fingerprint", rec.Fingerprint)
	}
	return nil
}

// List returns up to limit records, newest first. Index entries whose record
// has expired are dropped from the index.
func (l *RedisPartialFailureLedger) List(ctx context.Context, limit int64) ([]PartialRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	ids, err := l.rdb.ZRevRange(ctx, partialIndexKey(), 0, limit-1).Result()
	if err != nil {
		return nil, ledgerErrors.NewWithCause(ErrLedgerRead, err)
	}

	records := make([]PartialRecord, 0, len(ids))
	for _, id := range ids {
		data, err := l.rdb.Get(ctx, partialKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			if err := l.rdb.ZRem(ctx, partialIndexKey(), id).Err(); err != nil {
				return nil, ledgerErrors.NewWithCause(ErrLedgerWrite, err).WithDetail("fingerprint", id)
			}
			continue
		}
		if err != nil {
			return nil, ledgerErrors.NewWithCause(ErrLedgerRead, err).WithDetail("fingerprint", id)
		}

		var rec PartialRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, ledgerErrors.NewWithCause(ErrLedgerMarshal, err).WithDetail("fingerprint", id)
		}
		records = append(records, rec)
	}
	return records, nil
}
