package core

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PaymentCash          PaymentMethod = "Cash"
	PaymentCreditCard    PaymentMethod = "Credit Card"
	PaymentDebitCard     PaymentMethod = "Debit Card"
	PaymentBankTransfer  PaymentMethod = "Bank Transfer"
	PaymentDigitalWallet PaymentMethod = "Digital Wallet"
	PaymentOther         PaymentMethod = "Other"
)

const (
	Daily   RecurringType = "Daily"
	Weekly  RecurringType = "Weekly"
	Monthly RecurringType = "Monthly"
	Yearly  RecurringType = "Yearly"
)

type (
	PaymentMethod string

	RecurringType string

	Money struct {
		Cents int64
	}

	User struct {
		ID            uuid.UUID
		Name          string
		Email         string
		PasswordHash  string
		Currency      string
		MonthlyBudget Money
		CreatedAt     time.Time
	}

	// Category groups expenses. OwnerID is unset for shared default
	// categories visible to every user.
	Category struct {
		ID          uuid.UUID
		OwnerID     uuid.NullUUID
		Name        string
		Icon        string
		Color       string
		Description string
		Budget      Money
		IsDefault   bool
		IsActive    bool
		CreatedAt   time.Time
	}

	// CategoryRef is the category subset joined onto expense reads.
	CategoryRef struct {
		Name  string
		Icon  string
		Color string
	}

	Expense struct {
		ID            uuid.UUID
		OwnerID       uuid.UUID
		Title         string
		Amount        Money
		CategoryID    uuid.UUID
		Category      CategoryRef
		Date          time.Time
		PaymentMethod PaymentMethod
		Tags          []string
		Location      string
		Notes         string
		IsRecurring   bool
		RecurringType RecurringType
		CreatedAt     time.Time
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrEmptyTitle     = errors.New("empty title")
	ErrTitleTooLong   = errors.New("title too long (max 100 characters)")
	ErrEmptyName      = errors.New("empty category name")
	ErrNameTooLong    = errors.New("category name too long (max 50 characters)")
	ErrInvalidColor   = errors.New("invalid hex color")
	ErrInvalidPayment = errors.New("invalid payment method")
	ErrInvalidRecurs  = errors.New("invalid recurring type")
	ErrZeroDate       = errors.New("date cannot be zero")
)

var hexColorRe = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard,
		PaymentBankTransfer, PaymentDigitalWallet, PaymentOther:
		return true
	}
	return false
}

func (r RecurringType) Valid() bool {
	switch r {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (e Expense) Validate() error {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > 100 {
		return ErrTitleTooLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if e.CategoryID == uuid.Nil {
		return errors.New("category is required")
	}
	if !e.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	if e.IsRecurring && !e.RecurringType.Valid() {
		return ErrInvalidRecurs
	}
	if len(e.Notes) > 500 {
		return errors.New("notes too long (max 500 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 50 {
		return ErrNameTooLong
	}
	if c.Color != "" && !hexColorRe.MatchString(c.Color) {
		return ErrInvalidColor
	}
	if c.Budget.Cents < 0 {
		return ErrInvalidAmount
	}
	if len(c.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("empty user name")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if len(u.Currency) != 3 {
		return errors.New("invalid currency code")
	}
	if u.MonthlyBudget.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
