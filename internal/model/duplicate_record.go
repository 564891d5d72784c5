// internal/model/duplicate_record.go
package model

import "time"

// DuplicateRecord marks that a (owner, phone) pair has already been messaged.
// One record per pair; subsequent sends to the same pair update the record
// instead of creating a new one. Records outlive any single operation.
type DuplicateRecord struct {
	OwnerID     string    `json:"owner_id"`
	Phone       string    `json:"phone"`
	FirstSentAt time.Time `json:"first_sent_at"`
	LastSentAt  time.Time `json:"last_sent_at"`
	SendCount   int       `json:"send_count"`
	LastStatus  string    `json:"last_status"`
}
