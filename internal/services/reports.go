package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

// TrendDays is the span of the balance trend chart.
const TrendDays = 30

const (
	chartCacheSize = 256
	chartCacheTTL  = 10 * time.Minute
)

// Reports aggregates stored expenses and hands them to the renderer.
type Reports struct {
	repo   *storage.SQLiteRepository
	logger *log.Logger
	now    func() time.Time
	charts *cache.LRUCache[report.Chart]
}

func NewReports(repo *storage.SQLiteRepository, logger *log.Logger) *Reports {
	return &Reports{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentReports),
		now:    systemNow,
		charts: cache.NewLRUCache[report.Chart](chartCacheSize, chartCacheTTL),
	}
}

// CategoryBreakdown sums expenses per category over [now - window, now].
func (s *Reports) CategoryBreakdown(ctx context.Context, p auth.Principal, w core.Window) (core.Breakdown, error) {
	id, err := accountID(p)
	if err != nil {
		return nil, err
	}
	now := s.now()
	b, err := s.repo.SumByCategory(ctx, id, w.Since(now), now)
	if err != nil {
		return nil, s.fail(ctx, log.OpRead, id, err)
	}
	return b, nil
}

// BalanceTrend rebuilds the balance over the last TrendDays days by
// walking expenses backwards from the cached balance. Each point holds the
// balance just before that expense; the last point is the current balance.
func (s *Reports) BalanceTrend(ctx context.Context, p auth.Principal) (core.BalanceTrend, error) {
	id, err := accountID(p)
	if err != nil {
		return core.BalanceTrend{}, err
	}

	now := s.now()
	from := now.AddDate(0, 0, -TrendDays)
	var (
		acc core.Account
		txs []core.Transaction
	)
	// One snapshot so the balance and the rows agree.
	err = s.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		var err error
		if acc, err = tx.GetAccount(ctx, id); err != nil {
			return err
		}
		txs, err = tx.ListTransactions(ctx, storage.TransactionQuery{AccountID: id, From: &from, To: &now})
		return err
	})
	if err != nil {
		return core.BalanceTrend{}, s.fail(ctx, log.OpRead, id, err)
	}

	return buildTrend(acc.Balance, txs, now), nil
}

// buildTrend expects txs newest first.
func buildTrend(current core.Money, txs []core.Transaction, now time.Time) core.BalanceTrend {
	trend := core.BalanceTrend{Current: current, Transactions: len(txs)}
	if len(txs) == 0 {
		return trend
	}

	points := make([]core.BalancePoint, len(txs)+1)
	running := current
	for i, t := range txs {
		running = running.Add(t.Amount)
		points[len(txs)-1-i] = core.BalancePoint{At: t.OccurredAt, Balance: running}
	}
	points[len(txs)] = core.BalancePoint{At: stamp(now), Balance: current}
	trend.Points = points
	return trend
}

// ExpenseChart renders the window's breakdown as a pie chart.
func (s *Reports) ExpenseChart(ctx context.Context, p auth.Principal, w core.Window, format report.Format) (report.Chart, error) {
	b, err := s.CategoryBreakdown(ctx, p, w)
	if err != nil {
		return report.Chart{}, err
	}
	return s.render(ctx, p, report.Data{
		Title:      fmt.Sprintf("Expenses by Category (%s)", w.Label()),
		Categories: b.Sorted(),
	}, report.Pie, format)
}

// HomeChart is the home page pie of the last month.
func (s *Reports) HomeChart(ctx context.Context, p auth.Principal) (report.Chart, error) {
	b, err := s.CategoryBreakdown(ctx, p, core.Monthly)
	if err != nil {
		return report.Chart{}, err
	}
	return s.render(ctx, p, report.Data{
		Title:      "Last Month Expenses",
		Categories: b.Sorted(),
	}, report.Pie, report.PNG)
}

func (s *Reports) BalanceChart(ctx context.Context, p auth.Principal) (report.Chart, error) {
	trend, err := s.BalanceTrend(ctx, p)
	if err != nil {
		return report.Chart{}, err
	}
	return s.render(ctx, p, report.Data{
		Title: fmt.Sprintf("Balance Trend (Last %d Days)", TrendDays),
		Trend: trend,
	}, report.Area, report.PNG)
}

// Export renders the window's breakdown as a bar chart document and
// returns it with its attachment filename. Only pdf and jpg are offered.
func (s *Reports) Export(ctx context.Context, p auth.Principal, w core.Window, format report.Format) (report.Chart, string, error) {
	if format != report.PDF && format != report.JPEG {
		return report.Chart{}, "", core.Invalid("export format must be pdf or jpg")
	}
	b, err := s.CategoryBreakdown(ctx, p, w)
	if err != nil {
		return report.Chart{}, "", err
	}
	chart, err := s.render(ctx, p, report.Data{
		Title:      w.Label() + " Expenses",
		Categories: b.Sorted(),
	}, report.Bar, format)
	if err != nil {
		return report.Chart{}, "", err
	}

	filename := report.Filename(w, format)
	s.logger.InfoContext(ctx, "Report exported",
		log.NewFields().
			WithAccount(p.AccountID).
			WithOperation(log.OpExport).
			ToSlice()...,
	)
	return chart, filename, nil
}

// render draws d, reusing an earlier rendering of identical input.
func (s *Reports) render(ctx context.Context, p auth.Principal, d report.Data, kind report.Kind, format report.Format) (report.Chart, error) {
	key, err := report.Key(d, kind, format)
	if err == nil {
		if chart, ok := s.charts.Get(key); ok {
			return chart, nil
		}
	}

	chart, err := report.RenderChart(d, kind, format)
	if err != nil {
		return report.Chart{}, s.fail(ctx, log.OpRender, p.AccountID, err)
	}
	if key != "" {
		s.charts.Set(key, chart)
	}
	s.logger.DebugContext(ctx, "Chart rendered",
		log.FieldAccountID, p.AccountID,
		log.FieldChartKind, string(kind),
		log.FieldFormat, string(format),
		log.FieldBytes, len(chart.Data),
	)
	return chart, nil
}

func (s *Reports) fail(ctx context.Context, op string, account int64, err error) error {
	err = translate(op, err, msgAccountNotFound)
	logFailure(ctx, s.logger, op, account, err)
	return err
}
