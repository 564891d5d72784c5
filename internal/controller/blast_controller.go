// internal/controller/blast_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	appErrors "github.com/wasender/wablast-backend/internal/errors"
	"github.com/wasender/wablast-backend/internal/model"
	"github.com/wasender/wablast-backend/internal/service"
)

// BlastController exposes the blast control surface over HTTP. All control
// responses share the {success, message, state} shape so the polling client
// always gets the latest state back.
type BlastController struct {
	Service *service.BlastService
	Log     zerolog.Logger
}

type controlResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	State   model.OperationState `json:"state"`
}

func (c *BlastController) Start(w http.ResponseWriter, r *http.Request) {
	var req model.BlastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, controlResponse{
			Message: "invalid request body: " + err.Error(),
			State:   c.Service.Status(),
		})
		return
	}

	state, err := c.Service.Start(req)
	if err != nil {
		c.writeError(w, err, state)
		return
	}
	writeJSON(w, http.StatusOK, controlResponse{Success: true, Message: "blast started", State: state})
}

func (c *BlastController) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"state": c.Service.Status()})
}

func (c *BlastController) Pause(w http.ResponseWriter, r *http.Request) {
	state, err := c.Service.Pause()
	if err != nil {
		c.writeError(w, err, state)
		return
	}
	writeJSON(w, http.StatusOK, controlResponse{Success: true, Message: "blast paused", State: state})
}

func (c *BlastController) Resume(w http.ResponseWriter, r *http.Request) {
	state, err := c.Service.Resume()
	if err != nil {
		c.writeError(w, err, state)
		return
	}
	writeJSON(w, http.StatusOK, controlResponse{Success: true, Message: "blast resumed", State: state})
}

func (c *BlastController) Stop(w http.ResponseWriter, r *http.Request) {
	state, err := c.Service.Stop()
	if err != nil {
		c.writeError(w, err, state)
		return
	}
	writeJSON(w, http.StatusOK, controlResponse{Success: true, Message: "blast stopping", State: state})
}

func (c *BlastController) ResendFailed(w http.ResponseWriter, r *http.Request) {
	state, err := c.Service.ResendFailed()
	if err != nil {
		c.writeError(w, err, state)
		return
	}
	writeJSON(w, http.StatusOK, controlResponse{Success: true, Message: "resending failed messages", State: state})
}

func (c *BlastController) Results(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.Service.Results())
}

// writeError maps the control error taxonomy onto HTTP statuses: invalid
// input is 400, state-machine conflicts are 409.
func (c *BlastController) writeError(w http.ResponseWriter, err error, state model.OperationState) {
	status := http.StatusInternalServerError
	switch {
	case appErrors.IsInvalidConfig(err):
		status = http.StatusBadRequest
	case errors.Is(err, appErrors.ErrAlreadyRunning),
		errors.Is(err, appErrors.ErrNotRunning),
		errors.Is(err, appErrors.ErrNotPaused),
		errors.Is(err, appErrors.ErrNoActiveOperation):
		status = http.StatusConflict
	}
	c.Log.Debug().Int("status", status).Err(err).Msg("control request rejected")
	writeJSON(w, status, controlResponse{Message: err.Error(), State: state})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
