package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/registry"
)

// Record is one journaled event as stored, with its assigned sequence
// number and the payload kept raw for display or re-decoding.
type Record struct {
	Seq        int64           `json:"seq"`
	OccurredAt time.Time       `json:"occurred_at"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
}

// ListFilter narrows a journal query. Zero values mean "no constraint".
type ListFilter struct {
	AfterSeq int64
	Types    []registry.EventType
	Creator  identity.Address
	Limit    int
}

// JournalRepository is the durable append-only audit trail. It implements
// registry.Journal and adds query support for the CLI.
type JournalRepository struct {
	db *sql.DB
}

// NewJournalRepository creates the event journal on db.
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db.conn}
}

var _ registry.Journal = (*JournalRepository)(nil)

// Append stores one event. Sequence numbers are assigned by the database
// and strictly increase in append order.
func (r *JournalRepository) Append(ev registry.Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", ev.Type, err)
	}
	_, err = r.db.Exec(
		`INSERT INTO events (occurred_at, type, payload) VALUES (?, ?, ?)`,
		ev.OccurredAt.UTC(), string(ev.Type), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to append %s event: %w", ev.Type, err)
	}
	return nil
}

// List returns journaled events in sequence order, narrowed by filter.
// Creator filtering matches the creator field inside the JSON payload.
func (r *JournalRepository) List(filter ListFilter) ([]Record, error) {
	query := `SELECT seq, occurred_at, type, payload FROM events`
	var conds []string
	var args []any

	if filter.AfterSeq > 0 {
		conds = append(conds, "seq > ?")
		args = append(args, filter.AfterSeq)
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conds = append(conds, "type IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !filter.Creator.IsZero() {
		conds = append(conds, "json_extract(payload, '$.creator') = ?")
		args = append(args, string(filter.Creator))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var payload string
		if err := rows.Scan(&rec.Seq, &rec.OccurredAt, &rec.Type, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		rec.Payload = json.RawMessage(payload)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return records, nil
}

// LastSeq returns the highest assigned sequence number, or 0 when the
// journal is empty.
func (r *JournalRepository) LastSeq() (int64, error) {
	var seq sql.NullInt64
	if err := r.db.QueryRow(`SELECT MAX(seq) FROM events`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to read last sequence: %w", err)
	}
	return seq.Int64, nil
}
