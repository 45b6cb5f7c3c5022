package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/ledger"
)

// Registration is one recorded resource with its creator.
type Registration struct {
	Resource     identity.Address
	Creator      identity.Address
	RegisteredAt time.Time
}

// LedgerRepository is the durable market ledger: the system of record for
// created credit lines and liquidity pools. Registration is not
// idempotent; re-registering a resource fails.
type LedgerRepository struct {
	db     *sql.DB
	market identity.Address
}

// NewLedgerRepository creates a ledger for market on db.
func NewLedgerRepository(db *DB, market identity.Address) (*LedgerRepository, error) {
	if market.IsZero() {
		return nil, &identity.ZeroAddressError{Field: "market"}
	}
	return &LedgerRepository{db: db.conn, market: market}, nil
}

var _ ledger.Ledger = (*LedgerRepository)(nil)

// Address returns the market identity.
func (r *LedgerRepository) Address() identity.Address {
	return r.market
}

// RegisterCreditLine records a credit line for its creator.
func (r *LedgerRepository) RegisterCreditLine(ctx context.Context, creator, creditLine identity.Address) error {
	return r.register(ctx, "credit_lines", creator, creditLine)
}

// RegisterLiquidityPool records a liquidity pool for its creator.
func (r *LedgerRepository) RegisterLiquidityPool(ctx context.Context, creator, pool identity.Address) error {
	return r.register(ctx, "liquidity_pools", creator, pool)
}

func (r *LedgerRepository) register(ctx context.Context, table string, creator, resource identity.Address) error {
	if creator.IsZero() {
		return &identity.ZeroAddressError{Field: "creator"}
	}
	if resource.IsZero() {
		return &identity.ZeroAddressError{Field: "resource"}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM `+table+` WHERE resource = ?`, resource,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check registration: %w", err)
	}
	if exists > 0 {
		return &ledger.AlreadyRegisteredError{Resource: resource}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+table+` (resource, creator, registered_at) VALUES (?, ?, ?)`,
		resource, creator, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to register resource %s: %w", resource, err)
	}
	return tx.Commit()
}

// CreditLines returns the credit lines recorded for creator, oldest first.
func (r *LedgerRepository) CreditLines(ctx context.Context, creator identity.Address) ([]Registration, error) {
	return r.list(ctx, "credit_lines", creator)
}

// LiquidityPools returns the pools recorded for creator, oldest first.
func (r *LedgerRepository) LiquidityPools(ctx context.Context, creator identity.Address) ([]Registration, error) {
	return r.list(ctx, "liquidity_pools", creator)
}

func (r *LedgerRepository) list(ctx context.Context, table string, creator identity.Address) ([]Registration, error) {
	query := `SELECT resource, creator, registered_at FROM ` + table
	var args []any
	if !creator.IsZero() {
		query += ` WHERE creator = ?`
		args = append(args, creator)
	}
	query += ` ORDER BY registered_at, resource`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		var reg Registration
		if err := rows.Scan(&reg.Resource, &reg.Creator, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registrations: %w", err)
	}
	return regs, nil
}
