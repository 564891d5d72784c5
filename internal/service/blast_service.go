package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appErrors "github.com/wasender/wablast-backend/internal/errors"
	"github.com/wasender/wablast-backend/internal/model"
	"github.com/wasender/wablast-backend/internal/queue"
)

// BlastService owns the single active blast operation: the state machine
// (idle/running/paused/stopped/completed), the background run loop, and the
// control calls the HTTP layer forwards to it.
//
// One WhatsApp Web session cannot serve two campaigns at once, so at most one
// operation is active process-wide. All OperationState mutation happens under
// mu; Status returns a value copy and never blocks on the loop.
type BlastService struct {
	mu   sync.Mutex
	cond *sync.Cond

	OwnerID string
	Planner *TimingPlanner
	Guard   *DuplicateGuard
	Channel MessageChannel
	Reports queue.Queue // optional; nil disables report events
	Log     zerolog.Logger

	state    model.OperationState
	queue    *ContactQueue
	tracker  *DeliveryTracker
	timing   model.TimingConfig
	breaks   model.BreakConfig
	override bool

	stopCh chan struct{}
	done   chan struct{}

	// retained after the run ends so resend-failed can rebuild a batch
	lastEntries []*model.ContactEntry
}

func NewBlastService(ownerID string, planner *TimingPlanner, guard *DuplicateGuard, channel MessageChannel, reports queue.Queue, log zerolog.Logger) *BlastService {
	s := &BlastService{
		OwnerID: ownerID,
		Planner: planner,
		Guard:   guard,
		Channel: channel,
		Reports: reports,
		Log:     log,
		state:   model.OperationState{Status: model.StatusIdle},
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// ====================== Control surface ======================

// Start validates the request and launches the run loop for a fresh
// operation. Fails with ErrAlreadyRunning while an operation is running or
// paused; a stopped or completed operation never blocks a new start.
func (s *BlastService) Start(req model.BlastRequest) (model.OperationState, error) {
	if err := validateRequest(&req); err != nil {
		return s.Status(), err
	}
	entries := buildEntries(req)
	return s.start(entries, req.Delay, req.Breaks, false)
}

// ResendFailed starts a fresh operation over the failed recipients of the
// previous run, bypassing the duplicate guard so their records are updated
// instead of blocking the resend.
func (s *BlastService) ResendFailed() (model.OperationState, error) {
	s.mu.Lock()
	var failed []*model.ContactEntry
	if s.tracker != nil {
		snap := s.tracker.Snapshot()
		byPhone := make(map[string]*model.ContactEntry, len(s.lastEntries))
		for _, e := range s.lastEntries {
			byPhone[e.Phone] = e
		}
		for _, res := range snap.Results {
			if res.Success {
				continue
			}
			src, ok := byPhone[res.Phone]
			if !ok {
				continue
			}
			failed = append(failed, &model.ContactEntry{
				ID:          len(failed) + 1,
				Phone:       src.Phone,
				Name:        src.Name,
				Gender:      src.Gender,
				Message:     src.Message,
				Attachments: src.Attachments,
			})
		}
	}
	timing, breaks := s.timing, s.breaks
	s.mu.Unlock()

	if len(failed) == 0 {
		return s.Status(), appErrors.NewInvalidConfig("no failed sends to resend")
	}
	return s.start(failed, timing, breaks, true)
}

func (s *BlastService) start(entries []*model.ContactEntry, timing model.TimingConfig, breaks model.BreakConfig, override bool) (model.OperationState, error) {
	s.mu.Lock()
	if s.state.Status == model.StatusRunning || s.state.Status == model.StatusPaused {
		s.mu.Unlock()
		return s.Status(), appErrors.ErrAlreadyRunning
	}
	prev := s.done
	s.mu.Unlock()

	// A stopped loop may still be finishing its in-flight send; wait it out
	// so the old goroutine cannot record into the new operation.
	if prev != nil {
		<-prev
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status == model.StatusRunning || s.state.Status == model.StatusPaused {
		return s.snapshotLocked(), appErrors.ErrAlreadyRunning
	}

	now := time.Now()
	s.state = model.OperationState{
		OperationID: uuid.NewString(),
		Status:      model.StatusRunning,
		Total:       len(entries),
		StartedAt:   &now,
	}
	if breaks.Enabled {
		s.state.NextBreakAfter = s.Planner.NextBreakThreshold(breaks)
	}
	s.queue = NewContactQueue(entries)
	s.tracker = NewDeliveryTracker(len(entries))
	s.timing = timing
	s.breaks = breaks
	s.override = override
	s.lastEntries = entries
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.state.OperationID, s.queue, s.tracker, s.stopCh, s.done)

	s.Log.Info().
		Str("operation", s.state.OperationID).
		Int("total", len(entries)).
		Bool("override", override).
		Int("min_delay", timing.MinDelaySeconds).
		Int("max_delay", timing.MaxDelaySeconds).
		Bool("breaks", breaks.Enabled).
		Msg("blast started")

	return s.snapshotLocked(), nil
}

// Status returns a value copy of the operation state. Always succeeds.
func (s *BlastService) Status() model.OperationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Results returns the ordered result log of the current or last operation.
func (s *BlastService) Results() TrackerSnapshot {
	s.mu.Lock()
	tr := s.tracker
	s.mu.Unlock()
	if tr == nil {
		return TrackerSnapshot{Results: []model.SendResult{}}
	}
	return tr.Snapshot()
}

// Pause suspends the loop at its next checkpoint. The in-flight send, if
// any, completes first.
func (s *BlastService) Pause() (model.OperationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != model.StatusRunning {
		return s.snapshotLocked(), appErrors.ErrNotRunning
	}
	now := time.Now()
	s.state.Status = model.StatusPaused
	s.state.PausedAt = &now
	s.Log.Info().Str("operation", s.state.OperationID).Int("processed", s.state.Processed).Msg("blast paused")
	return s.snapshotLocked(), nil
}

// Resume continues a paused operation from the next unprocessed contact.
func (s *BlastService) Resume() (model.OperationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != model.StatusPaused {
		return s.snapshotLocked(), appErrors.ErrNotPaused
	}
	s.state.Status = model.StatusRunning
	s.state.PausedAt = nil
	s.cond.Broadcast()
	s.Log.Info().Str("operation", s.state.OperationID).Msg("blast resumed")
	return s.snapshotLocked(), nil
}

// Stop cancels the operation. Cooperative: a send already dispatched
// completes and is recorded; any delay or break sleep is cut short.
// Remaining contacts are abandoned.
func (s *BlastService) Stop() (model.OperationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != model.StatusRunning && s.state.Status != model.StatusPaused {
		return s.snapshotLocked(), appErrors.ErrNoActiveOperation
	}
	s.state.Status = model.StatusStopped
	close(s.stopCh)
	s.cond.Broadcast()
	s.Log.Info().Str("operation", s.state.OperationID).Int("processed", s.state.Processed).Msg("blast stop requested")
	return s.snapshotLocked(), nil
}

func (s *BlastService) snapshotLocked() model.OperationState {
	st := s.state
	st.ProgressPercent = progressPercent(st.Processed, st.Total)
	return st
}

// ====================== Execution loop ======================

func (s *BlastService) run(operationID string, q *ContactQueue, tr *DeliveryTracker, stopCh chan struct{}, done chan struct{}) {
	defer close(done)
	for {
		if !s.pauseGate(stopCh) {
			s.finish(operationID, model.StatusStopped)
			return
		}
		entry, ok := q.Next()
		if !ok {
			s.finish(operationID, model.StatusCompleted)
			return
		}
		if !s.process(tr, entry, stopCh) {
			s.finish(operationID, model.StatusStopped)
			return
		}
		q.MarkProcessed(entry.ID)
	}
}

// pauseGate blocks while the operation is paused and reports false when stop
// was requested before or while parked.
func (s *BlastService) pauseGate(stopCh <-chan struct{}) bool {
	select {
	case <-stopCh:
		return false
	default:
	}
	s.mu.Lock()
	for s.state.Status == model.StatusPaused {
		s.cond.Wait()
	}
	running := s.state.Status == model.StatusRunning
	s.mu.Unlock()
	return running
}

// process handles one contact end to end. Returns false when stop
// interrupted a sleep and the loop should exit.
func (s *BlastService) process(tr *DeliveryTracker, entry *model.ContactEntry, stopCh <-chan struct{}) bool {
	ctx := context.Background()

	admitted, err := s.Guard.Admit(ctx, s.OwnerID, entry.Phone, s.override)
	if err != nil {
		s.record(tr, model.SendResult{
			Phone:  entry.Phone,
			Error:  "duplicate check failed: " + err.Error(),
			SentAt: time.Now(),
		})
		return true
	}
	if !admitted {
		// No delay and no break credit for a recipient we never contact.
		s.record(tr, model.SendResult{
			Phone:  entry.Phone,
			Error:  "duplicate",
			SentAt: time.Now(),
		})
		return true
	}
	entry.Admitted = true

	delay := s.Planner.NextDelay(s.timing)
	if !sleepInterruptible(delay, stopCh) {
		return false
	}
	// A pause requested mid-delay takes effect here, before the send.
	if !s.pauseGate(stopCh) {
		return false
	}

	res := s.dispatch(ctx, entry)
	res.DelaySeconds = delay.Seconds()
	s.record(tr, res)
	if res.Success {
		if err := s.Guard.MarkSent(ctx, s.OwnerID, entry.Phone, "sent"); err != nil {
			s.Log.Warn().Str("phone", entry.Phone).Err(err).Msg("failed to update duplicate record")
		}
	}

	return s.takeBreak(stopCh)
}

// dispatch invokes the channel with a panic fence so one bad contact cannot
// kill the run.
func (s *BlastService) dispatch(ctx context.Context, entry *model.ContactEntry) (res model.SendResult) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.Error().Str("phone", entry.Phone).Interface("panic", r).Msg("channel panicked during send")
			res = model.SendResult{
				Phone:  entry.Phone,
				Error:  fmt.Sprintf("send panicked: %v", r),
				SentAt: time.Now(),
			}
		}
	}()
	out := s.Channel.Send(ctx, entry.Phone, entry.Message, entry.Attachments)
	return model.SendResult{
		Phone:           entry.Phone,
		Success:         out.Success,
		AttachmentsSent: out.AttachmentsSent,
		Error:           out.Error,
		SentAt:          time.Now(),
	}
}

func (s *BlastService) record(tr *DeliveryTracker, res model.SendResult) {
	tr.Record(res)

	s.mu.Lock()
	s.state.Processed++
	if res.Success {
		s.state.Sent++
	} else {
		s.state.Failed++
	}
	operationID := s.state.OperationID
	s.mu.Unlock()

	if res.Success {
		s.Log.Debug().Str("phone", res.Phone).Float64("delay", res.DelaySeconds).Msg("message sent")
	} else {
		s.Log.Warn().Str("phone", res.Phone).Str("reason", res.Error).Msg("message failed")
	}
	s.publishReport(operationID, res)
}

func (s *BlastService) publishReport(operationID string, res model.SendResult) {
	if s.Reports == nil {
		return
	}
	body, err := json.Marshal(queue.ReportEvent{
		OperationID: operationID,
		OwnerID:     s.OwnerID,
		Result:      res,
	})
	if err != nil {
		return
	}
	if err := s.Reports.Publish(queue.TopicBlastReports, body); err != nil {
		s.Log.Debug().Err(err).Msg("report publish failed")
	}
}

// takeBreak counts the send toward the break threshold and, when due, sleeps
// out a randomized break. Returns false when stop cut the break short.
func (s *BlastService) takeBreak(stopCh <-chan struct{}) bool {
	s.mu.Lock()
	s.state.MessagesSinceBreak++
	if !s.breaks.Enabled || !s.Planner.ShouldBreak(s.state.MessagesSinceBreak, s.state.NextBreakAfter) {
		s.mu.Unlock()
		return true
	}
	dur := s.Planner.NextBreakDuration(s.breaks)
	ends := time.Now().Add(dur)
	s.state.IsOnBreak = true
	s.state.BreakEndsAt = &ends
	operationID := s.state.OperationID
	s.mu.Unlock()

	s.Log.Info().Str("operation", operationID).Dur("duration", dur).Msg("taking a break")
	ok := sleepInterruptible(dur, stopCh)

	s.mu.Lock()
	s.state.IsOnBreak = false
	s.state.BreakEndsAt = nil
	if ok {
		s.state.BreaksTaken++
		s.state.MessagesSinceBreak = 0
		s.state.NextBreakAfter = s.Planner.NextBreakThreshold(s.breaks)
	}
	s.mu.Unlock()
	return ok
}

func (s *BlastService) finish(operationID string, status model.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Stop() already moved the state machine; only a natural drain flips it.
	if status == model.StatusCompleted && s.state.Status == model.StatusRunning {
		s.state.Status = model.StatusCompleted
	}
	now := time.Now()
	s.state.CompletedAt = &now
	s.state.IsOnBreak = false
	s.state.BreakEndsAt = nil
	s.Log.Info().
		Str("operation", operationID).
		Str("status", string(s.state.Status)).
		Int("processed", s.state.Processed).
		Int("sent", s.state.Sent).
		Int("failed", s.state.Failed).
		Int("breaks", s.state.BreaksTaken).
		Msg("blast finished")
}

// sleepInterruptible waits out d unless stop is requested first.
func sleepInterruptible(d time.Duration, stopCh <-chan struct{}) bool {
	if d <= 0 {
		return true
	}
	tmr := time.NewTimer(d)
	select {
	case <-stopCh:
		if !tmr.Stop() {
			<-tmr.C
		}
		return false
	case <-tmr.C:
		return true
	}
}

// ====================== Request validation ======================

func validateRequest(req *model.BlastRequest) error {
	if len(req.Contacts) == 0 {
		return appErrors.NewInvalidConfig("contact list is empty")
	}
	if strings.TrimSpace(req.MaleMessage) == "" &&
		strings.TrimSpace(req.FemaleMessage) == "" &&
		len(req.Attachments) == 0 {
		return appErrors.NewInvalidConfig("nothing to send: no message text and no attachments")
	}
	for i, c := range req.Contacts {
		if strings.TrimSpace(c.Phone) == "" {
			return appErrors.NewInvalidConfig("contact %d has no phone number", i+1)
		}
	}

	d := req.Delay
	if d.MinDelaySeconds < 0 || d.MaxDelaySeconds < 0 {
		return appErrors.NewInvalidConfig("delay bounds must be non-negative")
	}
	if d.MaxDelaySeconds < d.MinDelaySeconds {
		return appErrors.NewInvalidConfig("min delay %d exceeds max delay %d", d.MinDelaySeconds, d.MaxDelaySeconds)
	}

	b := req.Breaks
	if b.Enabled {
		if b.MinAfterMessages < 1 {
			return appErrors.NewInvalidConfig("break threshold must be at least 1 message")
		}
		if b.MaxAfterMessages < b.MinAfterMessages {
			return appErrors.NewInvalidConfig("min break threshold %d exceeds max %d", b.MinAfterMessages, b.MaxAfterMessages)
		}
		if b.MinMinutes < 0 {
			return appErrors.NewInvalidConfig("break duration must be non-negative")
		}
		if b.MaxMinutes < b.MinMinutes {
			return appErrors.NewInvalidConfig("min break duration %d exceeds max %d", b.MinMinutes, b.MaxMinutes)
		}
	}
	return nil
}

func buildEntries(req model.BlastRequest) []*model.ContactEntry {
	entries := make([]*model.ContactEntry, 0, len(req.Contacts))
	for i, c := range req.Contacts {
		entries = append(entries, &model.ContactEntry{
			ID:          i + 1,
			Phone:       strings.TrimSpace(c.Phone),
			Name:        c.Name,
			Gender:      c.Gender,
			Message:     RenderMessage(req, c),
			Attachments: req.Attachments,
		})
	}
	return entries
}
