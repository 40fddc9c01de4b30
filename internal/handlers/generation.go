package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cardlab-backend/internal/middleware"
	"cardlab-backend/internal/models"
	"cardlab-backend/internal/services"
)

const (
	generateMinChars = 1000
	generateMaxChars = 10000

	frontMinChars = 10
	frontMaxChars = 500
	backMinChars  = 10
	backMaxChars  = 1000
)

type GenerationHandler struct {
	generationService *services.GenerationService
}

func NewGenerationHandler(generationService *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Authentication required", r))
		return
	}

	var req models.GenerateFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	length := utf8.RuneCountInString(strings.TrimSpace(req.InputText))
	if length < generateMinChars || length > generateMaxChars {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", map[string]string{
			"input_text": fmt.Sprintf("Input text must be between %d and %d characters, got %d", generateMinChars, generateMaxChars, length),
		}, r))
		return
	}

	resp, err := h.generationService.Generate(r.Context(), userID, req.InputText, "")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *GenerationHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Authentication required", r))
		return
	}

	batchID, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid batch ID", r))
		return
	}

	var req models.ReviewFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if fields := validateReviewRequest(req); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	resp, err := h.generationService.Review(r.Context(), batchID, userID, req.Decisions)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *GenerationHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Authentication required", r))
		return
	}

	resp, err := h.generationService.ListBatches(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *GenerationHandler) GetBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Authentication required", r))
		return
	}

	batchID, err := uuid.Parse(chi.URLParam(r, "batchID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid batch ID", r))
		return
	}

	batch, err := h.generationService.GetBatch(r.Context(), userID, batchID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, batch)
}

func validateReviewRequest(req models.ReviewFlashcardsRequest) map[string]string {
	fields := map[string]string{}

	if len(req.Decisions) == 0 {
		fields["decisions"] = "At least one decision is required"
		return fields
	}

	seen := map[int]bool{}
	for i, d := range req.Decisions {
		key := fmt.Sprintf("decisions[%d]", i)

		if d.Index < 0 {
			fields[key+".index"] = "Index must be non-negative"
		} else if seen[d.Index] {
			fields[key+".index"] = fmt.Sprintf("Duplicate index %d", d.Index)
		}
		seen[d.Index] = true

		switch d.Action {
		case models.ActionAccept, models.ActionReject, models.ActionEdit:
			// Accepted text is persisted as-is, so every decision carries the
			// card text and must satisfy the same bounds.
			frontLen := utf8.RuneCountInString(d.FrontText)
			if frontLen < frontMinChars || frontLen > frontMaxChars {
				fields[key+".front_text"] = fmt.Sprintf("Front text must be between %d and %d characters", frontMinChars, frontMaxChars)
			}
			backLen := utf8.RuneCountInString(d.BackText)
			if backLen < backMinChars || backLen > backMaxChars {
				fields[key+".back_text"] = fmt.Sprintf("Back text must be between %d and %d characters", backMinChars, backMaxChars)
			}
		default:
			fields[key+".action"] = "Action must be one of: accept, reject, edit"
		}
	}

	return fields
}
