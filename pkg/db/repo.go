package db

import (
	"context"
	"errors"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	"github.com/shopspring/decimal"
)

// ErrUniqueViolation is returned when an insert hits a unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

// LedgerRepo provides access to users, operations and budget tables.
type LedgerRepo struct {
	db orm.DB
}

// NewLedgerRepo returns new repository.
func NewLedgerRepo(db orm.DB) LedgerRepo {
	return LedgerRepo{db: db}
}

// WithTransaction is a function that wraps LedgerRepo with pg.Tx transaction.
func (lr LedgerRepo) WithTransaction(tx *pg.Tx) LedgerRepo {
	lr.db = tx
	return lr
}

// UserByChatID returns a user by chat ID or nil.
func (lr LedgerRepo) UserByChatID(ctx context.Context, chatID int64) (*User, error) {
	user := &User{}
	err := lr.db.ModelContext(ctx, user).Where("chat_id = ?", chatID).Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}

	return user, err
}

// AddUser adds User to DB. Returns ErrUniqueViolation when the login
// or chat ID is already taken.
func (lr LedgerRepo) AddUser(ctx context.Context, user *User) (*User, error) {
	_, err := lr.db.ModelContext(ctx, user).ExcludeColumn("created_at").Insert()
	if err != nil {
		var pgErr pg.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return nil, ErrUniqueViolation
		}
		return nil, err
	}

	return user, nil
}

// AddOperation adds Operation to DB.
func (lr LedgerRepo) AddOperation(ctx context.Context, op *Operation) (*Operation, error) {
	_, err := lr.db.ModelContext(ctx, op).Insert()
	return op, err
}

// UpsertBudget inserts a budget row or replaces the amount of an
// existing (chat_id, month) row.
func (lr LedgerRepo) UpsertBudget(ctx context.Context, b *Budget) error {
	_, err := lr.db.ModelContext(ctx, b).
		OnConflict("(chat_id, month) DO UPDATE").
		Set("amount = EXCLUDED.amount, created_at = now()").
		Insert()

	return err
}

// OperationsByMonth returns the month's operations, newest first.
func (lr LedgerRepo) OperationsByMonth(ctx context.Context, chatID int64, month time.Time) ([]Operation, error) {
	start, end := monthRange(month)

	var ops []Operation
	err := lr.db.ModelContext(ctx, &ops).
		Where("chat_id = ?", chatID).
		Where("date >= ?", start).
		Where("date < ?", end).
		Order("date DESC").
		Select()

	return ops, err
}

// ExpensesTotalByMonth returns the month's total of expense operations.
func (lr LedgerRepo) ExpensesTotalByMonth(ctx context.Context, chatID int64, month time.Time) (decimal.Decimal, error) {
	start, end := monthRange(month)

	var total decimal.Decimal
	err := lr.db.ModelContext(ctx, (*Operation)(nil)).
		ColumnExpr("COALESCE(SUM(sum), 0)").
		Where("chat_id = ?", chatID).
		Where("type_operation = ?", OperationExpense).
		Where("date >= ?", start).
		Where("date < ?", end).
		Select(pg.Scan(&total))

	return total, err
}

// BudgetByMonth returns the month's budget row or nil.
func (lr LedgerRepo) BudgetByMonth(ctx context.Context, chatID int64, month time.Time) (*Budget, error) {
	b := &Budget{}
	err := lr.db.ModelContext(ctx, b).
		Where("chat_id = ?", chatID).
		Where("month = ?", month).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}

	return b, err
}

// monthRange returns [first day of month, first day of next month).
func monthRange(month time.Time) (time.Time, time.Time) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	return start, start.AddDate(0, 1, 0)
}
