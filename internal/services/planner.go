package services

import (
	"context"
	"strings"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultUpcomingLimit is how many upcoming payments the home view shows.
const DefaultUpcomingLimit = 5

// PaymentInput describes a payment to schedule.
type PaymentInput struct {
	Title     string
	Amount    core.Money
	DueDate   core.Date
	Category  string
	Recurring bool
}

// Planner manages scheduled payments. They never touch the balance.
type Planner struct {
	repo   *storage.SQLiteRepository
	logger *log.Logger
	now    func() time.Time
}

func NewPlanner(repo *storage.SQLiteRepository, logger *log.Logger) *Planner {
	return &Planner{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentPlanner),
		now:    systemNow,
	}
}

func (s *Planner) Schedule(ctx context.Context, p auth.Principal, in PaymentInput) (core.ScheduledPayment, error) {
	id, err := accountID(p)
	if err != nil {
		return core.ScheduledPayment{}, err
	}
	sp := core.ScheduledPayment{
		AccountID: id,
		Title:     strings.TrimSpace(in.Title),
		Amount:    in.Amount,
		DueDate:   in.DueDate,
		Category:  strings.TrimSpace(in.Category),
		Recurring: in.Recurring,
	}
	if err := sp.Validate(); err != nil {
		return core.ScheduledPayment{}, core.Validation(err)
	}

	created, err := s.repo.InsertPayment(ctx, sp)
	if err != nil {
		err = translate(log.OpCreate, err, msgAccountNotFound)
		logFailure(ctx, s.logger, log.OpCreate, id, err)
		return core.ScheduledPayment{}, err
	}
	s.logger.InfoContext(ctx, "Payment scheduled",
		log.FieldAccountID, id,
		log.FieldPaymentID, created.ID,
		log.FieldAmountCents, created.Amount.Cents,
	)
	return created, nil
}

// List returns every scheduled payment by due date ascending.
func (s *Planner) List(ctx context.Context, p auth.Principal) ([]core.ScheduledPayment, error) {
	id, err := accountID(p)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, log.OpList, id, err)
	}
	return out, nil
}

// Upcoming returns at most limit payments due today or later. A
// non-positive limit means DefaultUpcomingLimit.
func (s *Planner) Upcoming(ctx context.Context, p auth.Principal, limit int) ([]core.ScheduledPayment, error) {
	id, err := accountID(p)
	if err != nil {
		return nil, err
	}
	return upcoming(ctx, s.repo, id, s.now(), limit)
}

func (s *Planner) Delete(ctx context.Context, p auth.Principal, paymentID int64) error {
	id, err := accountID(p)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePayment(ctx, id, paymentID); err != nil {
		return s.fail(ctx, log.OpDelete, id, err)
	}
	return nil
}

func (s *Planner) fail(ctx context.Context, op string, account int64, err error) error {
	err = translate(op, err, msgPaymentNotFound)
	logFailure(ctx, s.logger, op, account, err)
	return err
}

func upcoming(ctx context.Context, repo *storage.SQLiteRepository, id int64, now time.Time, limit int) ([]core.ScheduledPayment, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	now = now.UTC()
	today := core.NewDate(now.Year(), int(now.Month()), now.Day())
	out, err := repo.UpcomingPayments(ctx, id, today, limit)
	if err != nil {
		return nil, translate("list upcoming payments", err, msgAccountNotFound)
	}
	return out, nil
}
