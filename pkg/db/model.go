package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation types stored in operations.type_operation.
const (
	OperationExpense = "РАСХОД"
	OperationIncome  = "ДОХОД"
)

// User is a registered bot user. Created once, immutable afterwards.
type User struct {
	tableName struct{} `pg:"users"`

	ID        int       `pg:"id,pk"`
	ChatID    int64     `pg:"chat_id,use_zero"`
	Name      string    `pg:"name,use_zero"`
	CreatedAt time.Time `pg:"created_at"`
}

// Operation is a single dated income or expense entry.
type Operation struct {
	tableName struct{} `pg:"operations"`

	ID            int             `pg:"id,pk"`
	ChatID        int64           `pg:"chat_id,use_zero"`
	Date          time.Time       `pg:"date"`
	Sum           decimal.Decimal `pg:"sum,use_zero"`
	TypeOperation string          `pg:"type_operation,use_zero"`
}

// Budget is a monthly spending limit, unique per (chat_id, month).
type Budget struct {
	tableName struct{} `pg:"budget"`

	ID        int             `pg:"id,pk"`
	ChatID    int64           `pg:"chat_id,use_zero"`
	Month     time.Time       `pg:"month"`
	Amount    decimal.Decimal `pg:"amount,use_zero"`
	CreatedAt time.Time       `pg:"created_at"`
}
