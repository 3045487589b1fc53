// Package quota meters per-user resource consumption against plan limits.
//
// Counters live in PostgreSQL keyed by (user_id, resource, period_start), so
// check-and-increment stays atomic across concurrent requests and across
// server instances. Periods are materialized lazily: the first charge in a
// new calendar month inserts that month's row, which makes the reset implicit.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"linguachat/internal/domain"
)

// PlanResolver supplies the plan limits in force for a user.
type PlanResolver interface {
	PlanByUserID(ctx context.Context, userID string) (domain.Plan, error)
}

// SQLExecutor is the slice of *pgxpool.Pool the ledger issues statements
// through.
type SQLExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Ledger is the single writer of usage counters.
type Ledger struct {
	pool   SQLExecutor
	plans  PlanResolver
	logger zerolog.Logger
	now    func() time.Time
}

func NewLedger(pool SQLExecutor, plans PlanResolver, logger zerolog.Logger) *Ledger {
	return &Ledger{pool: pool, plans: plans, logger: logger, now: time.Now}
}

// periodStart anchors a counter row. Most resources accumulate per calendar
// month (UTC); file storage is cumulative capacity and anchors at the epoch
// so it never resets.
func periodStart(r domain.Resource, now time.Time) time.Time {
	if r == domain.ResourceFileStorage {
		return time.Unix(0, 0).UTC()
	}
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

const qCheckAndIncrement = `
INSERT INTO usage_counters (user_id, resource, period_start, count)
VALUES ($1, $2, $3, 1)
ON CONFLICT (user_id, resource, period_start) DO UPDATE
SET count = usage_counters.count + 1, updated_at = now()
WHERE usage_counters.count < $4
RETURNING count;
`

// CheckAndIncrement charges one unit of the resource if the user's counter is
// below the plan limit for the current period. The read-compare-write happens
// in a single statement, so two concurrent calls racing for the last unit can
// never both pass.
func (l *Ledger) CheckAndIncrement(ctx context.Context, userID string, resource domain.Resource) (bool, error) {
	plan, err := l.plans.PlanByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("quota: resolve plan: %w", err)
	}
	limit := plan.Limit(resource)
	if limit <= 0 {
		l.recordEvent(ctx, userID, resource, false)
		return false, nil
	}

	var count int64
	err = l.pool.QueryRow(ctx, qCheckAndIncrement,
		userID, string(resource), periodStart(resource, l.now()), limit,
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		l.recordEvent(ctx, userID, resource, false)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("quota: check %s: %w", resource, err)
	}
	l.recordEvent(ctx, userID, resource, true)
	return true, nil
}

const qSelectCount = `
SELECT count FROM usage_counters
WHERE user_id = $1 AND resource = $2 AND period_start = $3;
`

// CheckFileStorageLimit reports whether adding proposedBytes would keep the
// user within the storage limit. Read-only; callers charge separately with
// IncrementFileStorage after the upload.
func (l *Ledger) CheckFileStorageLimit(ctx context.Context, userID string, proposedBytes int64) (bool, error) {
	plan, err := l.plans.PlanByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("quota: resolve plan: %w", err)
	}
	used, err := l.usedBytes(ctx, userID)
	if err != nil {
		return false, err
	}
	return used+proposedBytes <= plan.Limit(domain.ResourceFileStorage), nil
}

const qAddStorage = `
INSERT INTO usage_counters (user_id, resource, period_start, count)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, resource, period_start) DO UPDATE
SET count = usage_counters.count + $4, updated_at = now();
`

// IncrementFileStorage adds bytes to the user's storage counter
// unconditionally. Capacity is checked before the upload; the bytes of an
// upload that already happened are always counted.
func (l *Ledger) IncrementFileStorage(ctx context.Context, userID string, bytes int64) error {
	_, err := l.pool.Exec(ctx, qAddStorage,
		userID, string(domain.ResourceFileStorage), periodStart(domain.ResourceFileStorage, l.now()), bytes,
	)
	if err != nil {
		return fmt.Errorf("quota: add storage: %w", err)
	}
	return nil
}

func (l *Ledger) usedBytes(ctx context.Context, userID string) (int64, error) {
	var used int64
	err := l.pool.QueryRow(ctx, qSelectCount,
		userID, string(domain.ResourceFileStorage), periodStart(domain.ResourceFileStorage, l.now()),
	).Scan(&used)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("quota: read storage: %w", err)
	}
	return used, nil
}

const qSelectPeriodCounters = `
SELECT resource, count FROM usage_counters
WHERE user_id = $1 AND period_start IN ($2, $3);
`

// Usage returns the user's counters for the active period, zero-filled for
// resources not yet charged.
func (l *Ledger) Usage(ctx context.Context, userID string) (map[domain.Resource]int64, error) {
	now := l.now()
	rows, err := l.pool.Query(ctx, qSelectPeriodCounters,
		userID, periodStart(domain.ResourceMessages, now), periodStart(domain.ResourceFileStorage, now),
	)
	if err != nil {
		return nil, fmt.Errorf("quota: read usage: %w", err)
	}
	defer rows.Close()

	usage := map[domain.Resource]int64{
		domain.ResourceMessages:       0,
		domain.ResourceTranslations:   0,
		domain.ResourceAIInteractions: 0,
		domain.ResourceFileStorage:    0,
		domain.ResourceGroupChats:     0,
	}
	for rows.Next() {
		var resource string
		var count int64
		if err := rows.Scan(&resource, &count); err != nil {
			return nil, err
		}
		usage[domain.Resource(resource)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return usage, nil
}

const qInsertUsageEvent = `
INSERT INTO usage_events (id, user_id, resource, allowed, created_at)
VALUES (gen_random_uuid(), $1, $2, $3, now());
`

// recordEvent appends to the analytics trail. Best-effort: a failed insert
// must never fail the charge it describes.
func (l *Ledger) recordEvent(ctx context.Context, userID string, resource domain.Resource, allowed bool) {
	if _, err := l.pool.Exec(ctx, qInsertUsageEvent, userID, string(resource), allowed); err != nil {
		l.logger.Warn().Err(err).Str("resource", string(resource)).Msg("usage event not recorded")
	}
}
