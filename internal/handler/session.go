package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getpassword/getpassword-go/internal/middleware"
	"github.com/getpassword/getpassword-go/internal/model"
	"github.com/getpassword/getpassword-go/internal/service"
	"github.com/getpassword/getpassword-go/internal/session"
)

// SessionHandler handles HTTP requests against a client's generator session.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// HandleCreate handles POST /api/v1/sessions requests.
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Create()
	if err != nil {
		slog.Error("create session", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleState handles GET /api/v1/session requests.
func (h *SessionHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	st, err := h.service.State(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// HandleUpdateOptions handles PATCH /api/v1/session/options requests.
func (h *SessionHandler) HandleUpdateOptions(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.OptionsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := h.service.UpdateOptions(id, req)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// HandleRegenerate handles POST /api/v1/session/regenerate requests.
func (h *SessionHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	st, err := h.service.Regenerate(id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// HandleCopy handles POST /api/v1/session/copy requests. A refused clipboard
// still answers 200 with copied=false.
func (h *SessionHandler) HandleCopy(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.Copy(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		return
	}
	slog.Error("session request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
}

// latest keeps only the newest state in a one-slot channel.
func latest(ch chan session.State) func(session.State) {
	return func(st session.State) {
		for {
			select {
			case ch <- st:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}
