// Package dbtx carries a gorm transaction through context.Context so that
// repositories owned by different packages can join the same unit of work.
package dbtx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type txKey struct{}

// Manager runs functions inside a database transaction.
type Manager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormManager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) Manager {
	return &gormManager{db: db}
}

// WithinTx runs fn in a transaction. A transaction already present in ctx is
// reused, so nested calls commit once with the outermost.
func (m *gormManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if FromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// FromContext returns the transaction carried by ctx, if any.
func FromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// Conn returns the transaction in ctx or db, bound to ctx.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsCheckViolation reports whether err is a Postgres check_violation.
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// NopManager runs fn directly. Used with in-memory repositories.
type NopManager struct{}

func (NopManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
