package services

import (
	"context"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// RecentLimit is how many recent expenses the home view lists.
const RecentLimit = 3

// Dashboard assembles the home view.
type Dashboard struct {
	repo *storage.SQLiteRepository
	now  func() time.Time
}

func NewDashboard(repo *storage.SQLiteRepository) *Dashboard {
	return &Dashboard{repo: repo, now: systemNow}
}

// Home returns the account with its latest expenses and next payments.
func (s *Dashboard) Home(ctx context.Context, p auth.Principal) (core.Dashboard, error) {
	id, err := accountID(p)
	if err != nil {
		return core.Dashboard{}, err
	}

	now := s.now()
	var d core.Dashboard
	err = s.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		var err error
		if d.Account, err = tx.GetAccount(ctx, id); err != nil {
			return err
		}
		if d.Recent, err = recent(ctx, tx, id, now, RecentLimit); err != nil {
			return err
		}
		d.Upcoming, err = upcoming(ctx, tx, id, now, DefaultUpcomingLimit)
		return err
	})
	if err != nil {
		return core.Dashboard{}, translate("load dashboard", err, msgAccountNotFound)
	}
	return d, nil
}
