// Package usage describes oracle token consumption reports.
package usage

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodTotal Period = "total"
)

// ParsePeriod maps a query value to a Period. Empty defaults to month.
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case "":
		return PeriodMonth, true
	case PeriodDay, PeriodMonth, PeriodTotal:
		return Period(s), true
	default:
		return "", false
	}
}

// Budget is a snapshot of the oracle token budget for one period.
// A zero limit means unlimited; Remaining is then -1.
type Budget struct {
	Limit     int64
	Used      int64
	Remaining int64
	Exhausted bool
	ResetsAt  int64 // unix millis, 0 when the period has no boundary
}

// Report is an oracle usage report for a time period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	provider    string
	budget      Budget
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, provider string, b Budget) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		provider:    provider,
		budget:      b,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Provider returns the oracle provider name.
func (r *Report) Provider() string { return r.provider }

// Budget returns the budget status.
func (r *Report) Budget() Budget { return r.budget }
