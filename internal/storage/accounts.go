package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// NewAccount is the data needed to register an account.
type NewAccount struct {
	Profile      core.Profile
	PasswordHash string
	Balance      core.Money
}

func toAccount(a AccountRow) core.Account {
	return core.Account{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Phone:     a.Phone,
		Currency:  a.Currency,
		Theme:     core.Theme(a.Theme),
		Balance:   core.Money{Cents: a.BalanceCents},
		CreatedAt: parseTime(a.CreatedAt),
	}
}

// CreateAccount inserts an account. Duplicate usernames or emails yield ErrConflict.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, n NewAccount) (core.Account, error) {
	row, err := r.queries.CreateAccount(ctx, CreateAccountParams{
		Username:     n.Profile.Username,
		Email:        n.Profile.Email,
		Phone:        n.Profile.Phone,
		PasswordHash: n.PasswordHash,
		Currency:     n.Profile.Currency,
		BalanceCents: n.Balance.Cents,
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", mapError(err))
	}
	return toAccount(row), nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	row, err := r.queries.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, mapError(err))
	}
	return toAccount(row), nil
}

// GetCredentials returns the account and its stored password hash.
func (r *SQLiteRepository) GetCredentials(ctx context.Context, username string) (core.Account, string, error) {
	row, err := r.queries.GetAccountByUsername(ctx, username)
	if err != nil {
		return core.Account{}, "", fmt.Errorf("get account by username: %w", mapError(err))
	}
	return toAccount(row), row.PasswordHash, nil
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, id int64, p core.Profile) error {
	err := requireRow(r.queries.UpdateAccountProfile(ctx, UpdateAccountProfileParams{
		ID:       id,
		Username: p.Username,
		Email:    p.Email,
		Phone:    p.Phone,
		Currency: p.Currency,
	}))
	if err != nil {
		return fmt.Errorf("update profile %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) SetTheme(ctx context.Context, id int64, theme core.Theme) error {
	if err := requireRow(r.queries.UpdateAccountTheme(ctx, id, string(theme))); err != nil {
		return fmt.Errorf("set theme %d: %w", id, err)
	}
	return nil
}

// AdjustBalance adds delta (which may be negative) to the cached balance.
func (r *SQLiteRepository) AdjustBalance(ctx context.Context, id int64, delta core.Money) error {
	if err := requireRow(r.queries.AdjustAccountBalance(ctx, id, delta.Cents)); err != nil {
		return fmt.Errorf("adjust balance %d: %w", id, err)
	}
	return nil
}

// SetBalance overwrites the cached balance.
func (r *SQLiteRepository) SetBalance(ctx context.Context, id int64, balance core.Money) error {
	if err := requireRow(r.queries.SetAccountBalance(ctx, id, balance.Cents)); err != nil {
		return fmt.Errorf("set balance %d: %w", id, err)
	}
	return nil
}

// DeleteAccount removes the account; owned rows go with it through ON DELETE CASCADE.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id int64) error {
	if err := requireRow(r.queries.DeleteAccount(ctx, id)); err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	return nil
}
