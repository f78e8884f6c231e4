package usage

// BudgetReader exposes the oracle token counters for the current day and month.
// Remaining values are -1 when the matching limit is zero (unlimited).
type BudgetReader interface {
	DailyLimit() int64
	MonthlyLimit() int64
	DailyUsed() int64
	MonthlyUsed() int64
	RemainingDaily() int64
	RemainingMonthly() int64
}
