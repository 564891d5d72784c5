package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/wasender/wablast-backend/internal/model"
)

// SQLiteDuplicateStore is the single-binary variant of the duplicate store.
// Same table shape as the Postgres store, SQLite placeholder syntax.
type SQLiteDuplicateStore struct {
	DB *sql.DB
}

// EnsureSchema creates the duplicate_records table if it does not exist.
// SQLite deployments self-migrate; Postgres uses cmd/seeder.
func (r *SQLiteDuplicateStore) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS duplicate_records (
            owner_id      TEXT NOT NULL,
            phone         TEXT NOT NULL,
            first_sent_at TIMESTAMP NOT NULL,
            last_sent_at  TIMESTAMP NOT NULL,
            send_count    INTEGER NOT NULL DEFAULT 0,
            last_status   TEXT NOT NULL DEFAULT '',
            PRIMARY KEY (owner_id, phone)
        )
    `)
	return err
}

func (r *SQLiteDuplicateStore) Admit(ctx context.Context, ownerID, phone string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        INSERT INTO duplicate_records (owner_id, phone, first_sent_at, last_sent_at, send_count, last_status)
        VALUES (?, ?, ?, ?, 0, 'admitted')
        ON CONFLICT (owner_id, phone) DO NOTHING
    `, ownerID, phone, at, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteDuplicateStore) RecordSend(ctx context.Context, ownerID, phone, status string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO duplicate_records (owner_id, phone, first_sent_at, last_sent_at, send_count, last_status)
        VALUES (?, ?, ?, ?, 1, ?)
        ON CONFLICT (owner_id, phone) DO UPDATE
        SET last_sent_at = excluded.last_sent_at,
            send_count   = send_count + 1,
            last_status  = excluded.last_status
    `, ownerID, phone, at, at, status)
	return err
}

func (r *SQLiteDuplicateStore) Get(ctx context.Context, ownerID, phone string) (*model.DuplicateRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT owner_id, phone, first_sent_at, last_sent_at, send_count, last_status
        FROM duplicate_records
        WHERE owner_id = ? AND phone = ?
    `, ownerID, phone)

	var rec model.DuplicateRecord
	err := row.Scan(&rec.OwnerID, &rec.Phone, &rec.FirstSentAt, &rec.LastSentAt, &rec.SendCount, &rec.LastStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, err
	}
	return &rec, nil
}

func (r *SQLiteDuplicateStore) ListByOwner(ctx context.Context, ownerID string) ([]model.DuplicateRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT owner_id, phone, first_sent_at, last_sent_at, send_count, last_status
        FROM duplicate_records
        WHERE owner_id = ?
        ORDER BY last_sent_at DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.DuplicateRecord{}
	for rows.Next() {
		var rec model.DuplicateRecord
		if err := rows.Scan(&rec.OwnerID, &rec.Phone, &rec.FirstSentAt, &rec.LastSentAt, &rec.SendCount, &rec.LastStatus); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteDuplicateStore) Delete(ctx context.Context, ownerID, phone string) error {
	_, err := r.DB.ExecContext(ctx, `
        DELETE FROM duplicate_records WHERE owner_id = ? AND phone = ?
    `, ownerID, phone)
	return err
}
