// internal/model/operation.go
package model

import "time"

// Status of the blast operation state machine.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusStopped   Status = "stopped"
	StatusCompleted Status = "completed"
)

// OperationState is the live state of the single active blast operation.
// It is mutated only by the BlastService (control calls and the run loop)
// under one mutex; callers always receive a value copy.
type OperationState struct {
	OperationID        string     `json:"operation_id"`
	Status             Status     `json:"status"`
	Total              int        `json:"total"`
	Processed          int        `json:"processed"`
	Sent               int        `json:"sent"`
	Failed             int        `json:"failed"`
	ProgressPercent    float64    `json:"progress_percent"`
	BreaksTaken        int        `json:"breaks_taken"`
	IsOnBreak          bool       `json:"is_on_break"`
	BreakEndsAt        *time.Time `json:"break_ends_at,omitempty"`
	MessagesSinceBreak int        `json:"messages_since_break"`
	NextBreakAfter     int        `json:"next_break_after"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	PausedAt           *time.Time `json:"paused_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// TimingConfig bounds the randomized per-message delay, in seconds.
// Both bounds are inclusive and min must not exceed max.
type TimingConfig struct {
	MinDelaySeconds   int  `json:"min"`
	MaxDelaySeconds   int  `json:"max"`
	RandomizeDecimals bool `json:"randomize_decimals,omitempty"`
}

// BreakConfig controls the periodic long pauses taken to mimic human pacing.
// A break is due after a randomized number of messages in
// [MinAfterMessages, MaxAfterMessages] and lasts a randomized duration in
// [MinMinutes, MaxMinutes].
type BreakConfig struct {
	Enabled          bool `json:"enabled"`
	MinAfterMessages int  `json:"min_after"`
	MaxAfterMessages int  `json:"max_after"`
	MinMinutes       int  `json:"min_minutes"`
	MaxMinutes       int  `json:"max_minutes"`
}

// BlastRequest is the full payload submitted to start a blast.
type BlastRequest struct {
	Contacts      []BlastContact `json:"contacts"`
	MaleMessage   string         `json:"male_message,omitempty"`
	FemaleMessage string         `json:"female_message,omitempty"`
	Attachments   []Attachment   `json:"attachments,omitempty"`
	Delay         TimingConfig   `json:"delay_settings"`
	Breaks        BreakConfig    `json:"break_settings"`
}
