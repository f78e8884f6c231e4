package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
)

// BudgetAction defines behavior when the token budget is exhausted.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but lets the call through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject refuses the call.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore persists budget counters. IncrBy may be retried.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetTracker counts oracle tokens per UTC day and month.
// Check reads memory only; Record updates memory first and then writes
// behind to the store when one is attached.
type BudgetTracker struct {
	mu             sync.Mutex
	dailyUsed      int64
	monthlyUsed    int64
	dailyLimit     int64
	monthlyLimit   int64
	action         BudgetAction
	provider       string
	lastDayReset   time.Time
	lastMonthReset time.Time
	store          BudgetStore
	logger         *zap.Logger
	now            func() time.Time
}

// NewBudgetTracker creates a tracker. A zero limit means unlimited.
func NewBudgetTracker(
	provider string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	b := &BudgetTracker{
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		action:       action,
		provider:     provider,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
	now := b.now()
	b.lastDayReset = startOfDay(now)
	b.lastMonthReset = startOfMonth(now)
	return b
}

// WithStore attaches persistence and loads the current counters from it.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now()
	if v, err := store.Get(ctx, b.dailyKey(now)); err == nil {
		b.dailyUsed = v
	} else {
		b.logger.Warn("Failed to load daily oracle budget", zap.Error(err))
	}
	if v, err := store.Get(ctx, b.monthlyKey(now)); err == nil {
		b.monthlyUsed = v
	} else {
		b.logger.Warn("Failed to load monthly oracle budget", zap.Error(err))
	}

	b.logger.Info("Oracle budget loaded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("monthly_used", b.monthlyUsed),
	)
	return b
}

func (b *BudgetTracker) dailyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", domain.KeyPrefix, b.provider, t.Format("2006-01-02"))
}

func (b *BudgetTracker) monthlyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s", domain.KeyPrefix, b.provider, t.Format("2006-01"))
}

// Check reports whether another oracle call is allowed.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollover()

	dailyOver := b.dailyLimit > 0 && b.dailyUsed >= b.dailyLimit
	monthlyOver := b.monthlyLimit > 0 && b.monthlyUsed >= b.monthlyLimit
	if !dailyOver && !monthlyOver {
		return nil
	}
	if b.action == BudgetActionReject {
		return domain.ErrOracleQuotaExceeded
	}

	b.logger.Warn("Oracle token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("daily_limit", b.dailyLimit),
		zap.Int64("monthly_used", b.monthlyUsed),
		zap.Int64("monthly_limit", b.monthlyLimit),
	)
	return nil
}

// Record adds consumed tokens.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.rollover()
	b.dailyUsed += tokens
	b.monthlyUsed += tokens
	store := b.store
	now := b.now()
	b.mu.Unlock()

	if store == nil {
		return
	}

	// detached from the request: a cancelled run still accounts its tokens
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, key := range []string{b.dailyKey(now), b.monthlyKey(now)} {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			b.logger.Warn("Failed to persist oracle budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// RemainingDaily returns tokens left today, -1 if unlimited.
func (b *BudgetTracker) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return remaining(b.dailyLimit, b.dailyUsed)
}

// RemainingMonthly returns tokens left this month, -1 if unlimited.
func (b *BudgetTracker) RemainingMonthly() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return remaining(b.monthlyLimit, b.monthlyUsed)
}

// DailyLimit returns the daily token cap.
func (b *BudgetTracker) DailyLimit() int64 { return b.dailyLimit }

// MonthlyLimit returns the monthly token cap.
func (b *BudgetTracker) MonthlyLimit() int64 { return b.monthlyLimit }

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return b.dailyUsed
}

// MonthlyUsed returns tokens consumed this month.
func (b *BudgetTracker) MonthlyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return b.monthlyUsed
}

// Provider returns the provider name the counters are kept for.
func (b *BudgetTracker) Provider() string { return b.provider }

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

// rollover zeroes counters when the UTC day or month changes. Caller holds mu.
func (b *BudgetTracker) rollover() {
	now := b.now()
	if day := startOfDay(now); day.After(b.lastDayReset) {
		b.dailyUsed = 0
		b.lastDayReset = day
	}
	if month := startOfMonth(now); month.After(b.lastMonthReset) {
		b.monthlyUsed = 0
		b.lastMonthReset = month
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
