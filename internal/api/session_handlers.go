package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

type scopeRequest struct {
	DifficultyTier *int    `json:"difficulty_tier"`
	WordIDs        []int64 `json:"word_ids"`
}

type createSessionRequest struct {
	UserID       int64        `json:"user_id"`
	Scope        scopeRequest `json:"scope"`
	MaxBatchSize *int         `json:"max_batch_size"`
}

type createSessionResponse struct {
	SessionID string  `json:"session_id"`
	Items     []int64 `json:"items"`
}

type recordAnswerRequest struct {
	WordID         int64 `json:"word_id"`
	IsCorrect      *bool `json:"is_correct"`
	ResponseTimeMs int64 `json:"response_time_ms"`
}

type finalizeRequest struct {
	CorrectAnswers  int `json:"correct_answers"`
	TotalAnswers    int `json:"total_answers"`
	DurationSeconds int `json:"duration_seconds"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	maxBatch := s.DefaultBatchSize
	if req.MaxBatchSize != nil {
		maxBatch = *req.MaxBatchSize
	}

	scope := models.Scope{DifficultyTier: req.Scope.DifficultyTier, WordIDs: req.Scope.WordIDs}
	session, err := s.SessionService.CreateSession(r.Context(), req.UserID, scope, maxBatch)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, createSessionResponse{SessionID: session.ID, Items: session.Items})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.SessionService.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	var req recordAnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.IsCorrect == nil {
		handleError(w, r, errors.NewValidationError("is_correct", "is required"))
		return
	}

	if err := s.SessionService.RecordAnswer(r.Context(), sessionID, req.WordID, *req.IsCorrect, req.ResponseTimeMs); err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("answer accepted: session_id=%s, word_id=%d", sessionID, req.WordID)
	writeJSON(w, r, http.StatusOK, map[string]bool{"accepted": true})
}

func (s *Server) handleFinalizeSession(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.SessionService.Finalize(r.Context(), chi.URLParam(r, "id"), req.CorrectAnswers, req.TotalAnswers, req.DurationSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
