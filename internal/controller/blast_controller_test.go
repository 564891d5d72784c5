package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wasender/wablast-backend/internal/controller"
	"github.com/wasender/wablast-backend/internal/model"
	"github.com/wasender/wablast-backend/internal/repository"
	"github.com/wasender/wablast-backend/internal/service"
)

// okChannel delivers everything instantly.
type okChannel struct{}

func (okChannel) Send(ctx context.Context, phone, text string, attachments []model.Attachment) service.ChannelResult {
	return service.ChannelResult{Success: true, AttachmentsSent: len(attachments)}
}

func newRouter() (*chi.Mux, *service.BlastService) {
	store := repository.NewMemoryDuplicateStore()
	planner := service.NewTimingPlanner(rand.New(rand.NewSource(1)))
	guard := service.NewDuplicateGuard(store, zerolog.Nop())
	svc := service.NewBlastService("owner", planner, guard, okChannel{}, nil, zerolog.Nop())

	ctrl := &controller.BlastController{Service: svc, Log: zerolog.Nop()}
	r := chi.NewRouter()
	r.Post("/blast/start", ctrl.Start)
	r.Get("/blast/status", ctrl.Status)
	r.Post("/blast/pause", ctrl.Pause)
	r.Post("/blast/resume", ctrl.Resume)
	r.Post("/blast/stop", ctrl.Stop)
	r.Get("/blast/results", ctrl.Results)
	return r, svc
}

func startBody() []byte {
	b, _ := json.Marshal(map[string]any{
		"contacts":       []map[string]string{{"phone": "+254700000001", "name": "Alice"}},
		"male_message":   "Hi {name}",
		"delay_settings": map[string]int{"min": 0, "max": 0},
		"break_settings": map[string]any{"enabled": false},
	})
	return b
}

func TestStartEndpoint(t *testing.T) {
	r, svc := newRouter()

	req := httptest.NewRequest("POST", "/blast/start", bytes.NewReader(startBody()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res struct {
		Success bool                 `json:"success"`
		State   model.OperationState `json:"state"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success {
		t.Fatal("expected success")
	}
	if res.State.OperationID == "" || res.State.Total != 1 {
		t.Fatalf("unexpected state: %+v", res.State)
	}

	waitUntilDone(t, svc)
}

func TestStartEndpointValidation(t *testing.T) {
	r, _ := newRouter()

	// Empty contact list is a 400, not a 500.
	body, _ := json.Marshal(map[string]any{"male_message": "hi"})
	req := httptest.NewRequest("POST", "/blast/start", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	// Malformed JSON as well.
	req = httptest.NewRequest("POST", "/blast/start", bytes.NewReader([]byte("{")))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPauseWithoutRunConflicts(t *testing.T) {
	r, _ := newRouter()

	req := httptest.NewRequest("POST", "/blast/pause", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Success || res.Message == "" {
		t.Fatalf("unexpected body: %+v", res)
	}
}

func TestStatusEndpoint(t *testing.T) {
	r, _ := newRouter()

	req := httptest.NewRequest("GET", "/blast/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res struct {
		State model.OperationState `json:"state"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.State.Status != model.StatusIdle {
		t.Fatalf("fresh service status = %q, want idle", res.State.Status)
	}
}

func TestResultsEndpoint(t *testing.T) {
	r, svc := newRouter()

	req := httptest.NewRequest("POST", "/blast/start", bytes.NewReader(startBody()))
	r.ServeHTTP(httptest.NewRecorder(), req)
	waitUntilDone(t, svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/blast/results", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var res service.TrackerSnapshot
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Processed != 1 || len(res.Results) != 1 {
		t.Fatalf("unexpected snapshot: %+v", res)
	}
}

func waitUntilDone(t *testing.T, svc *service.BlastService) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		st := svc.Status()
		if st.Status == model.StatusCompleted || st.Status == model.StatusStopped {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("operation never finished, status %q", st.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
