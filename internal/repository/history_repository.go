package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/wasender/wablast-backend/internal/model"
)

// HistoryRepository persists delivery reports consumed by cmd/worker.
// Rows are append-only; the engine itself never reads them.
type HistoryRepository struct {
	DB *sql.DB
}

// Append inserts a history row and fills in the generated ID.
func (r *HistoryRepository) Append(ctx context.Context, h *model.HistoryEntry) error {
	h.CreatedAt = time.Now()
	return r.DB.QueryRowContext(ctx, `
        INSERT INTO blast_history
        (operation_id, owner_id, phone, success, attachments_sent, delay_applied, last_error, sent_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `,
		h.OperationID,
		h.OwnerID,
		h.Phone,
		h.Success,
		h.AttachmentsSent,
		h.DelaySeconds,
		h.LastError,
		h.SentAt,
		h.CreatedAt,
	).Scan(&h.ID)
}

// ListByOperation fetches the persisted results of one operation in send order.
func (r *HistoryRepository) ListByOperation(ctx context.Context, operationID string) ([]model.HistoryEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, operation_id, owner_id, phone, success, attachments_sent, delay_applied, last_error, sent_at, created_at
        FROM blast_history
        WHERE operation_id = $1
        ORDER BY id
    `, operationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		var h model.HistoryEntry
		if err := rows.Scan(&h.ID, &h.OperationID, &h.OwnerID, &h.Phone, &h.Success, &h.AttachmentsSent, &h.DelaySeconds, &h.LastError, &h.SentAt, &h.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
