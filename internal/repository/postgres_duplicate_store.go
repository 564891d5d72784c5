package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/wasender/wablast-backend/internal/model"
)

// PostgresDuplicateStore keeps duplicate records in a Postgres table with a
// (owner_id, phone) primary key. Admission relies on ON CONFLICT DO NOTHING,
// so concurrent admits for the same pair are linearized by the database.
type PostgresDuplicateStore struct {
	DB *sql.DB
}

func (r *PostgresDuplicateStore) Admit(ctx context.Context, ownerID, phone string, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
        INSERT INTO duplicate_records (owner_id, phone, first_sent_at, last_sent_at, send_count, last_status)
        VALUES ($1, $2, $3, $3, 0, 'admitted')
        ON CONFLICT (owner_id, phone) DO NOTHING
    `, ownerID, phone, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresDuplicateStore) RecordSend(ctx context.Context, ownerID, phone, status string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO duplicate_records (owner_id, phone, first_sent_at, last_sent_at, send_count, last_status)
        VALUES ($1, $2, $3, $3, 1, $4)
        ON CONFLICT (owner_id, phone) DO UPDATE
        SET last_sent_at = EXCLUDED.last_sent_at,
            send_count   = duplicate_records.send_count + 1,
            last_status  = EXCLUDED.last_status
    `, ownerID, phone, at, status)
	return err
}

func (r *PostgresDuplicateStore) Get(ctx context.Context, ownerID, phone string) (*model.DuplicateRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT owner_id, phone, first_sent_at, last_sent_at, send_count, last_status
        FROM duplicate_records
        WHERE owner_id = $1 AND phone = $2
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

func (r *PostgresDuplicateStore) ListByOwner(ctx context.Context, ownerID string) ([]model.DuplicateRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT owner_id, phone, first_sent_at, last_sent_at, send_count, last_status
        FROM duplicate_records
        WHERE owner_id = $1
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

func (r *PostgresDuplicateStore) Delete(ctx context.Context, ownerID, phone string) error {
	_, err := r.DB.ExecContext(ctx, `
        DELETE FROM duplicate_records WHERE owner_id = $1 AND phone = $2
    `, ownerID, phone)
	return err
}
