package matchmaker

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/matchmaker/internal/domain/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
	PeriodTotal UsagePeriod = "total"
)

// UsageReport describes oracle token consumption for a period.
// The SDK does not enforce a budget, so limits are always zero.
type UsageReport struct {
	Period      UsagePeriod
	Provider    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Budget      BudgetStatus
}

// BudgetStatus tracks token quota state. TokensRemaining is -1 when unlimited.
type BudgetStatus struct {
	TokensLimit     int64
	TokensUsed      int64
	TokensRemaining int64
	IsExhausted     bool
}

// Usage returns an oracle usage report for the given period.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	report := c.usageSvc.GetReport(ctx, domusage.Period(period))
	b := report.Budget()

	out := UsageReport{
		Period:   UsagePeriod(report.Period()),
		Provider: report.Provider(),
		Budget: BudgetStatus{
			TokensLimit:     b.Limit,
			TokensUsed:      b.Used,
			TokensRemaining: b.Remaining,
			IsExhausted:     b.Exhausted,
		},
	}
	if report.PeriodStart() > 0 {
		out.PeriodStart = time.UnixMilli(report.PeriodStart()).UTC()
		out.PeriodEnd = time.UnixMilli(report.PeriodEnd()).UTC()
	}
	return out
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}
