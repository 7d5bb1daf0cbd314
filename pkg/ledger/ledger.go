package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kopilka/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/vmkteam/embedlog"
)

var (
	// ErrLoginTaken is returned when the requested login already belongs
	// to another user.
	ErrLoginTaken = errors.New("login is already taken")
)

// Repo is the storage surface the ledger needs. Satisfied by
// db.LedgerRepo; tests supply fakes.
type Repo interface {
	UserByChatID(ctx context.Context, chatID int64) (*db.User, error)
	AddUser(ctx context.Context, user *db.User) (*db.User, error)
	AddOperation(ctx context.Context, op *db.Operation) (*db.Operation, error)
	UpsertBudget(ctx context.Context, b *db.Budget) error
	OperationsByMonth(ctx context.Context, chatID int64, month time.Time) ([]db.Operation, error)
	ExpensesTotalByMonth(ctx context.Context, chatID int64, month time.Time) (decimal.Decimal, error)
	BudgetByMonth(ctx context.Context, chatID int64, month time.Time) (*db.Budget, error)
}

// Manager implements registration, ledger writes and the monthly summary.
type Manager struct {
	repo Repo
	log  embedlog.Logger
}

func NewManager(repo Repo, log embedlog.Logger) *Manager {
	return &Manager{
		repo: repo,
		log:  log,
	}
}

// UserByChat returns the registered user for a chat or nil.
func (m *Manager) UserByChat(ctx context.Context, chatID int64) (*db.User, error) {
	user, err := m.repo.UserByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Register creates a user with the given login. The login must already be
// validated by the caller.
func (m *Manager) Register(ctx context.Context, chatID int64, login string) (*db.User, error) {
	user, err := m.repo.AddUser(ctx, &db.User{
		ChatID: chatID,
		Name:   login,
	})
	if errors.Is(err, db.ErrUniqueViolation) {
		return nil, ErrLoginTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	m.log.Print(ctx, "user registered", "chat_id", chatID, "login", login)

	return user, nil
}

// AddOperation records a dated income or expense entry.
func (m *Manager) AddOperation(ctx context.Context, chatID int64, date time.Time, sum decimal.Decimal, typeOperation string) error {
	_, err := m.repo.AddOperation(ctx, &db.Operation{
		ChatID:        chatID,
		Date:          date,
		Sum:           sum,
		TypeOperation: typeOperation,
	})
	if err != nil {
		return fmt.Errorf("failed to add operation: %w", err)
	}

	m.log.Print(ctx, "operation added", "chat_id", chatID, "type", typeOperation, "sum", sum.String(), "date", date.Format("2006-01-02"))

	return nil
}

// SetBudget creates or replaces the budget for the given month.
func (m *Manager) SetBudget(ctx context.Context, chatID int64, month time.Time, amount decimal.Decimal) error {
	err := m.repo.UpsertBudget(ctx, &db.Budget{
		ChatID: chatID,
		Month:  MonthStart(month),
		Amount: amount,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}

	m.log.Print(ctx, "budget set", "chat_id", chatID, "month", MonthStart(month).Format("2006-01"), "amount", amount.String())

	return nil
}

// BudgetForMonth returns the month's budget amount or nil when not set.
func (m *Manager) BudgetForMonth(ctx context.Context, chatID int64, month time.Time) (*decimal.Decimal, error) {
	b, err := m.repo.BudgetByMonth(ctx, chatID, MonthStart(month))
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	if b == nil {
		return nil, nil
	}

	amount := b.Amount
	return &amount, nil
}

// MonthSummary fetches the month's operations, expense total and budget.
func (m *Manager) MonthSummary(ctx context.Context, chatID int64, month time.Time) (*Summary, error) {
	month = MonthStart(month)

	ops, err := m.repo.OperationsByMonth(ctx, chatID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get operations: %w", err)
	}

	total, err := m.repo.ExpensesTotalByMonth(ctx, chatID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses total: %w", err)
	}

	budget, err := m.BudgetForMonth(ctx, chatID, month)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Month:         month,
		Operations:    ops,
		TotalExpenses: total,
		Budget:        budget,
	}, nil
}

// MonthStart returns the first day of t's calendar month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
