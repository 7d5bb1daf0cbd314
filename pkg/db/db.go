package db

import (
	"context"

	"github.com/go-pg/pg/v10"
)

// DB wraps a go-pg connection pool.
type DB struct {
	*pg.DB
}

// New connects to PostgreSQL with the given options.
func New(options *pg.Options) DB {
	return DB{DB: pg.Connect(options)}
}

// Ping verifies the database connection.
func (d DB) Ping(ctx context.Context) error {
	return d.DB.Ping(ctx)
}
