// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// Control-surface sentinel errors. These are surfaced synchronously to the
// caller and are never fatal to the process.
var (
	ErrAlreadyRunning    = errors.New("a blast operation is already running")
	ErrNotRunning        = errors.New("no running operation to pause")
	ErrNotPaused         = errors.New("operation is not paused")
	ErrNoActiveOperation = errors.New("no active operation")
)

// ErrInvalidConfig reports a rejected start request (bad delay/break bounds,
// empty contact list, nothing to send).
type ErrInvalidConfig struct {
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid config: %s", e.Reason)
}

// Helper constructor
func NewInvalidConfig(format string, args ...any) error {
	return &ErrInvalidConfig{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidConfig reports whether err is an ErrInvalidConfig.
func IsInvalidConfig(err error) bool {
	var target *ErrInvalidConfig
	return errors.As(err, &target)
}
