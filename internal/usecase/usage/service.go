// Package usage reports oracle token consumption against the configured budget.
package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/matchmaker/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br       BudgetReader
	provider string
	now      func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader, provider string) *Service {
	return &Service{br: br, provider: provider, now: time.Now}
}

// GetReport builds a usage report for the given period.
// The total period reports the monthly counters without boundaries.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	var start, end int64
	var limit, used, remaining int64 = 0, 0, -1

	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		start, end = dayStart.UnixMilli(), dayStart.AddDate(0, 0, 1).UnixMilli()
		if s.br != nil {
			limit, used, remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
		}
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		start, end = monthStart.UnixMilli(), monthStart.AddDate(0, 1, 0).UnixMilli()
		if s.br != nil {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		}
	default:
		if s.br != nil {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		}
	}

	b := domusage.Budget{
		Limit:     limit,
		Used:      used,
		Remaining: remaining,
		Exhausted: limit > 0 && remaining <= 0,
		ResetsAt:  end,
	}
	return domusage.NewReport(period, start, end, s.provider, b)
}
