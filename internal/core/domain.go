package core

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Categories offered by the expense form. Transactions may also carry a
// free-form category.
var Categories = []string{
	"Foods & Drink",
	"Shopping",
	"Transportation",
	"Housing",
	"Vehicle",
	"Entertainment",
	"Investments",
	"Other",
}

const (
	MaxDescriptionLength = 200
	MaxCategoryLength    = 64
	MaxTitleLength       = 120
	MinPasswordLength    = 8
)

type (
	Theme string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Account is the view of a registered user. The password credential never
	// leaves the storage and auth layers.
	Account struct {
		ID        int64
		Username  string
		Email     string
		Phone     string
		Currency  string
		Theme     Theme
		Balance   Money
		CreatedAt time.Time
	}

	// Transaction is an expense record. Every row debited its owner's balance
	// by Amount when it was recorded.
	Transaction struct {
		ID          int64
		AccountID   int64
		Amount      Money
		Category    string
		Description string
		OccurredAt  time.Time
	}

	ScheduledPayment struct {
		ID        int64
		AccountID int64
		Title     string
		Amount    Money
		DueDate   Date
		Category  string // optional
		Recurring bool
	}

	Budget struct {
		ID        int64
		AccountID int64
		Month     int
		Year      int
		Amount    Money
	}
)

var (
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountTooLarge     = errors.New("amount too large")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = errors.New("category too long (max 64 characters)")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrEmptyTitle         = errors.New("empty title")
	ErrTitleTooLong       = errors.New("title too long (max 120 characters)")
	ErrEmptyUsername      = errors.New("empty username")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmptyPhone         = errors.New("empty phone")
	ErrEmptyCurrency      = errors.New("empty currency")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidTheme       = errors.New("invalid theme")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// EndOfDay returns the last second of the date, 23:59:59.
func (d Date) EndOfDay() time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, time.UTC)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t Theme) Validate() error {
	switch t {
	case ThemeLight, ThemeDark:
		return nil
	}
	return ErrInvalidTheme
}

// Toggle flips between light and dark. Anything unexpected becomes dark,
// matching a light default.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// IsKnownCategory reports whether c is one of the predefined categories.
func IsKnownCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

func validateCategory(c string) error {
	if strings.TrimSpace(c) == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(c) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	if m.Cents > maxAmountCents {
		return ErrAmountTooLarge
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := validateCategory(t.Category); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func (p ScheduledPayment) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.DueDate.Validate(); err != nil {
		return err
	}
	if p.Category != "" {
		if err := validateCategory(p.Category); err != nil {
			return err
		}
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year < 1970 || b.Year > 9999 {
		return ErrInvalidYear
	}
	return b.Amount.Validate()
}

// Profile holds the user-editable account fields.
type Profile struct {
	Username string
	Email    string
	Phone    string
	Currency string
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return ErrEmptyUsername
	}
	if _, err := mail.ParseAddress(p.Email); err != nil || strings.ContainsAny(p.Email, " <>") {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(p.Phone) == "" {
		return ErrEmptyPhone
	}
	if strings.TrimSpace(p.Currency) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

// ValidatePassword checks the minimum password policy.
func ValidatePassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
