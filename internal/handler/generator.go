package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/getpassword/getpassword-go/internal/model"
	"github.com/getpassword/getpassword-go/internal/service"
)

const maxBodyBytes = 1 << 20 // 1MB

var errBodyTooLarge = errors.New("request body too large")

// GeneratorHandler handles HTTP requests for one-shot password generation.
type GeneratorHandler struct {
	service *service.GeneratorService
}

// NewGeneratorHandler creates a new GeneratorHandler.
func NewGeneratorHandler(svc *service.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{service: svc}
}

// HandleGenerate handles POST /api/v1/generate requests. An empty body uses the defaults.
func (h *GeneratorHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.Generate(req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeBody reads an optional JSON body into v, writing the error response
// itself when it returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse(errBodyTooLarge.Error()))
		return false
	}
	writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}
