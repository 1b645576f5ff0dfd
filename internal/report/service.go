package report

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/core/money"
	"github.com/frahmantamala/petshop-commerce/internal/fee"
	"github.com/frahmantamala/petshop-commerce/internal/financials"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	OrdersBetween(ctx context.Context, statuses []string, start, end time.Time) ([]OrderRow, error)
}

// SummaryCache stores computed summaries by window key.
type SummaryCache interface {
	Get(ctx context.Context, key string) (*Summary, error)
	Set(ctx context.Context, key string, s *Summary) error
	Purge(ctx context.Context) error
}

type Service struct {
	repo         RepositoryAPI
	aggregator   *financials.Aggregator
	cache        SummaryCache
	location     *time.Location
	queryTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

type Option func(*Service)

func WithCache(c SummaryCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func WithQueryTimeout(d time.Duration) Option {
	return func(s *Service) { s.queryTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo RepositoryAPI, aggregator *financials.Aggregator, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		aggregator: aggregator,
		location:   time.UTC,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Window(p Period) (Window, error) {
	return p.Resolve(s.now(), s.location)
}

func (s *Service) lines(ctx context.Context, w Window) ([]OrderLine, error) {
	ctx, cancel := internal.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.repo.OrdersBetween(ctx, RevenueStatuses, w.Start, w.End)
	if err != nil {
		s.logger.Error("failed to load report orders", "error", err, "period", w.Period)
		return nil, err
	}

	lines := make([]OrderLine, 0, len(rows))
	for _, row := range rows {
		line := OrderLine{
			ID:             row.ID,
			OrderNumber:    row.OrderNumber,
			CustomerName:   row.CustomerName,
			CustomerEmail:  row.CustomerEmail,
			Status:         row.Status,
			DiscountAmount: money.Round2(row.DiscountAmount),
			CreatedAt:      row.CreatedAt.In(s.location),
			Financials:     s.aggregator.Calculate(row.financialInput()),
		}
		if row.PaymentMethod != nil {
			line.PaymentMethod = *row.PaymentMethod
		}
		if row.VoucherCode != nil {
			line.VoucherCode = *row.VoucherCode
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Summary totals every revenue-bearing order in the period. Results are cached
// per window until an order event purges them.
func (s *Service) Summary(ctx context.Context, p Period) (*Summary, error) {
	w, err := s.Window(p)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, w.Key())
		if err != nil {
			s.logger.Warn("summary cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	lines, err := s.lines(ctx, w)
	if err != nil {
		return nil, err
	}
	summary := summarize(w, lines)

	if s.cache != nil {
		if err := s.cache.Set(ctx, w.Key(), summary); err != nil {
			s.logger.Warn("summary cache write failed", "error", err)
		}
	}
	return summary, nil
}

func summarize(w Window, lines []OrderLine) *Summary {
	var (
		all       financials.Accumulator
		discounts decimal.Decimal
		byType    = map[fee.Code]*financials.Accumulator{}
		byDay     = map[string]*financials.Accumulator{}
	)
	for _, line := range lines {
		all.Add(line.Financials)
		discounts = discounts.Add(money.Decimal(line.DiscountAmount))

		code := line.Financials.SenangPayFeeType
		if byType[code] == nil {
			byType[code] = &financials.Accumulator{}
		}
		byType[code].Add(line.Financials)

		day := line.CreatedAt.In(w.Start.Location()).Format(dateLayout)
		if byDay[day] == nil {
			byDay[day] = &financials.Accumulator{}
		}
		byDay[day].Add(line.Financials)
	}

	summary := &Summary{
		Window:    w,
		Totals:    all.Totals(),
		Discounts: money.Float(discounts),
		ByFeeType: make([]FeeTypeTotals, 0, len(byType)),
	}
	for code, acc := range byType {
		summary.ByFeeType = append(summary.ByFeeType, FeeTypeTotals{FeeType: code, Totals: acc.Totals()})
	}
	sort.Slice(summary.ByFeeType, func(i, j int) bool {
		return summary.ByFeeType[i].FeeType < summary.ByFeeType[j].FeeType
	})

	for _, day := range w.Days() {
		totals := financials.Totals{}
		if acc := byDay[day]; acc != nil {
			totals = acc.Totals()
		}
		summary.Daily = append(summary.Daily, DailyTotals{Date: day, Totals: totals})
	}
	return summary
}

// Drilldown lists the orders behind a dashboard figure. Its Total equals the
// matching Summary figure for the same window.
func (s *Service) Drilldown(ctx context.Context, p Period, metric Metric) (*Drilldown, error) {
	w, err := s.Window(p)
	if err != nil {
		return nil, err
	}
	lines, err := s.lines(ctx, w)
	if err != nil {
		return nil, err
	}

	result := &Drilldown{Window: w, Metric: metric, Orders: []OrderLine{}}
	var total decimal.Decimal
	for _, line := range lines {
		value, include := metricValue(metric, line)
		if !include {
			continue
		}
		total = total.Add(value)
		result.Orders = append(result.Orders, line)
	}
	result.Total = money.Float(total)
	return result, nil
}

func metricValue(metric Metric, line OrderLine) (decimal.Decimal, bool) {
	b := line.Financials
	switch metric {
	case MetricNetEarnings:
		return money.Decimal(b.NetEarnings), true
	case MetricFees:
		return money.Decimal(b.TotalFees), b.TotalFees > 0
	case MetricDelivery:
		return money.Decimal(b.DeliveryFee), b.DeliveryFee > 0
	case MetricDiscounts:
		return money.Decimal(line.DiscountAmount), line.DiscountAmount > 0
	default:
		return decimal.NewFromInt(1), true
	}
}

// Invalidate drops every cached summary.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Purge(ctx)
}
