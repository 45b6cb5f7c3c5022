package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/registry"
)

// stateRepository persists the registry snapshot as a single row plus the
// role holder set.
type stateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a snapshot store on db.
func NewStateRepository(db *DB) registry.StateStore {
	return &stateRepository{db: db.conn}
}

var _ registry.StateStore = (*stateRepository)(nil)

func (r *stateRepository) Load() (registry.Snapshot, bool, error) {
	var snap registry.Snapshot
	var initialized, paused int
	err := r.db.QueryRow(
		`SELECT initialized, ledger, credit_line_factory, liquidity_pool_factory,
			paused, module_family, module_version, policy
		FROM registry_state WHERE id = 1`,
	).Scan(
		&initialized, &snap.Ledger, &snap.CreditLineFactory, &snap.LiquidityPoolFactory,
		&paused, &snap.ModuleFamily, &snap.ModuleVersion, &snap.Policy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.Snapshot{}, false, nil
	}
	if err != nil {
		return registry.Snapshot{}, false, fmt.Errorf("failed to load registry state: %w", err)
	}
	snap.Initialized = initialized != 0
	snap.Paused = paused != 0

	rows, err := r.db.Query(`SELECT holder FROM role_holders WHERE policy = ? ORDER BY holder`, snap.Policy)
	if err != nil {
		return registry.Snapshot{}, false, fmt.Errorf("failed to load role holders: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var holder identity.Address
		if err := rows.Scan(&holder); err != nil {
			return registry.Snapshot{}, false, fmt.Errorf("failed to scan role holder: %w", err)
		}
		snap.Holders = append(snap.Holders, holder)
	}
	if err := rows.Err(); err != nil {
		return registry.Snapshot{}, false, fmt.Errorf("failed to iterate role holders: %w", err)
	}

	return snap, true, nil
}

func (r *stateRepository) Save(snap registry.Snapshot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO registry_state (
			id, initialized, ledger, credit_line_factory, liquidity_pool_factory,
			paused, module_family, module_version, policy, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			initialized = excluded.initialized,
			ledger = excluded.ledger,
			credit_line_factory = excluded.credit_line_factory,
			liquidity_pool_factory = excluded.liquidity_pool_factory,
			paused = excluded.paused,
			module_family = excluded.module_family,
			module_version = excluded.module_version,
			policy = excluded.policy,
			updated_at = excluded.updated_at`,
		boolInt(snap.Initialized), snap.Ledger, snap.CreditLineFactory, snap.LiquidityPoolFactory,
		boolInt(snap.Paused), snap.ModuleFamily, snap.ModuleVersion, snap.Policy,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save registry state: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM role_holders WHERE policy = ?`, snap.Policy); err != nil {
		return fmt.Errorf("failed to clear role holders: %w", err)
	}
	for _, holder := range snap.Holders {
		if _, err := tx.Exec(
			`INSERT INTO role_holders (policy, holder) VALUES (?, ?)`,
			snap.Policy, holder,
		); err != nil {
			return fmt.Errorf("failed to save role holder %s: %w", holder, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registry state: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
