package services

import (
	"context"
	"errors"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	msgInvalidCredentials = "Invalid username or password"
	msgAccountExists      = "Username or email already exists"
)

// SignupInput is the registration form.
type SignupInput struct {
	Username       string
	Email          string
	Phone          string
	Password       string
	Currency       string
	InitialBalance core.Money
}

func (in SignupInput) profile() core.Profile {
	return normalizeProfile(core.Profile{
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
		Currency: in.Currency,
	})
}

func normalizeProfile(p core.Profile) core.Profile {
	return core.Profile{
		Username: strings.TrimSpace(p.Username),
		Email:    strings.ToLower(strings.TrimSpace(p.Email)),
		Phone:    strings.TrimSpace(p.Phone),
		Currency: strings.ToUpper(strings.TrimSpace(p.Currency)),
	}
}

// Accounts handles registration, credentials and per-account settings.
type Accounts struct {
	repo   *storage.SQLiteRepository
	hasher *auth.Hasher
	logger *log.Logger
}

func NewAccounts(repo *storage.SQLiteRepository, hasher *auth.Hasher, logger *log.Logger) *Accounts {
	return &Accounts{
		repo:   repo,
		hasher: hasher,
		logger: logger.WithComponent(log.ComponentAccounts),
	}
}

// Signup registers a new account with its opening balance.
func (s *Accounts) Signup(ctx context.Context, in SignupInput) (core.Account, error) {
	profile := in.profile()
	if err := profile.Validate(); err != nil {
		return core.Account{}, core.Validation(err)
	}
	if err := core.ValidatePassword(in.Password); err != nil {
		return core.Account{}, core.Validation(err)
	}
	if err := in.InitialBalance.Validate(); err != nil {
		return core.Account{}, core.Validation(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if auth.IsTooLong(err) {
		return core.Account{}, core.Invalid("password too long (max 72 bytes)")
	}
	if err != nil {
		return core.Account{}, s.fail(ctx, log.OpSignup, 0, err)
	}

	acc, err := s.repo.CreateAccount(ctx, storage.NewAccount{
		Profile:      profile,
		PasswordHash: hash,
		Balance:      in.InitialBalance,
	})
	if errors.Is(err, storage.ErrConflict) {
		return core.Account{}, core.Conflict(msgAccountExists)
	}
	if err != nil {
		return core.Account{}, s.fail(ctx, log.OpSignup, 0, err)
	}

	s.logger.InfoContext(ctx, "Account created",
		log.FieldAccountID, acc.ID,
		log.FieldOperation, log.OpSignup,
	)
	return acc, nil
}

// Login checks credentials. Unknown users and wrong passwords fail alike.
func (s *Accounts) Login(ctx context.Context, username, password string) (core.Account, error) {
	acc, hash, err := s.repo.GetCredentials(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		s.hasher.Reject(password)
		return core.Account{}, core.AuthFailure(msgInvalidCredentials)
	}
	if err != nil {
		return core.Account{}, s.fail(ctx, log.OpLogin, 0, err)
	}
	if !s.hasher.Verify(hash, password) {
		s.logger.WarnContext(ctx, "Login rejected",
			log.FieldAccountID, acc.ID,
			log.FieldOperation, log.OpLogin,
		)
		return core.Account{}, core.AuthFailure(msgInvalidCredentials)
	}
	return acc, nil
}

// Profile returns the principal's account.
func (s *Accounts) Profile(ctx context.Context, p auth.Principal) (core.Account, error) {
	id, err := accountID(p)
	if err != nil {
		return core.Account{}, err
	}
	acc, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, s.fail(ctx, log.OpRead, id, err)
	}
	return acc, nil
}

// UpdateProfile replaces the editable profile fields and returns the result.
func (s *Accounts) UpdateProfile(ctx context.Context, p auth.Principal, in core.Profile) (core.Account, error) {
	id, err := accountID(p)
	if err != nil {
		return core.Account{}, err
	}
	profile := normalizeProfile(in)
	if err := profile.Validate(); err != nil {
		return core.Account{}, core.Validation(err)
	}

	var acc core.Account
	err = s.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		if err := tx.UpdateProfile(ctx, id, profile); err != nil {
			return err
		}
		var err error
		acc, err = tx.GetAccount(ctx, id)
		return err
	})
	if errors.Is(err, storage.ErrConflict) {
		return core.Account{}, core.Conflict(msgAccountExists)
	}
	if err != nil {
		return core.Account{}, s.fail(ctx, log.OpUpdate, id, err)
	}
	return acc, nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Accounts) ToggleTheme(ctx context.Context, p auth.Principal) (core.Theme, error) {
	id, err := accountID(p)
	if err != nil {
		return "", err
	}

	var theme core.Theme
	err = s.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		acc, err := tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		theme = acc.Theme.Toggle()
		return tx.SetTheme(ctx, id, theme)
	})
	if err != nil {
		return "", s.fail(ctx, log.OpUpdate, id, err)
	}
	return theme, nil
}

// DeleteAccount removes the account with its transactions, payments and budgets.
func (s *Accounts) DeleteAccount(ctx context.Context, p auth.Principal) error {
	id, err := accountID(p)
	if err != nil {
		return err
	}

	err = s.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		if _, err := tx.DeleteAllTransactions(ctx, id); err != nil {
			return err
		}
		return tx.DeleteAccount(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, log.OpDelete, id, err)
	}

	s.logger.InfoContext(ctx, "Account deleted",
		log.FieldAccountID, id,
		log.FieldOperation, log.OpDelete,
	)
	return nil
}

func (s *Accounts) fail(ctx context.Context, op string, account int64, err error) error {
	err = translate(op, err, msgAccountNotFound)
	logFailure(ctx, s.logger, op, account, err)
	return err
}
