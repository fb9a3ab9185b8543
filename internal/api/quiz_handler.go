package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/api/shared"
	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/platform/logger"
	"github.com/lexidrill/lexidrill-api/internal/service/quiz"
)

// StartSessionRequest is the request body for starting a quiz session.
type StartSessionRequest struct {
	DomainID string `json:"domain_id" validate:"required,uuid"`
}

// SubmitAnswerRequest is the request body for answering the current question.
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

// SessionResponse is the client view of a quiz session.
type SessionResponse struct {
	ID           string     `json:"id"`
	DomainID     string     `json:"domain_id"`
	Status       string     `json:"status"`
	CurrentIndex int        `json:"current_index"`
	TotalTerms   int        `json:"total_terms"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	PausedAt     *time.Time `json:"paused_at,omitempty"`
}

// QuizHandler handles quiz session HTTP requests.
type QuizHandler struct {
	sessions quiz.SessionService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(sessions quiz.SessionService, log *slog.Logger) *QuizHandler {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &QuizHandler{
		sessions: sessions,
		validate: validator.New(),
		logger:   log.With(slog.String("component", "quiz_handler")),
	}
}

// StartSession handles POST /quiz/sessions requests.
func (h *QuizHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "domain_id must be a valid UUID")
		return
	}
	domainID, err := uuid.Parse(req.DomainID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "domain_id must be a valid UUID")
		return
	}

	session, err := h.sessions.Start(r.Context(), userID, domainID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("session started via API",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// SubmitAnswer handles POST /quiz/sessions/{id}/answers requests.
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}
	_ = userID // identity is checked; session ownership is enforced by the service layer

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.sessions.SubmitAnswer(r.Context(), sessionID, req.Answer)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// PauseSession handles POST /quiz/sessions/{id}/pause requests.
func (h *QuizHandler) PauseSession(w http.ResponseWriter, r *http.Request) {
	_, sessionID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	session, err := h.sessions.Pause(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// ResumeSession handles POST /quiz/sessions/{id}/resume requests.
func (h *QuizHandler) ResumeSession(w http.ResponseWriter, r *http.Request) {
	_, sessionID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	session, err := h.sessions.Resume(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// GetSummary handles GET /quiz/sessions/{id}/summary requests.
func (h *QuizHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	_, sessionID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	summary, err := h.sessions.Summarize(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}

func sessionToResponse(session *domain.QuizSession) SessionResponse {
	return SessionResponse{
		ID:           session.ID.String(),
		DomainID:     session.DomainID.String(),
		Status:       string(session.Status),
		CurrentIndex: session.CurrentIndex,
		TotalTerms:   len(session.TermSequence),
		StartedAt:    session.StartedAt,
		CompletedAt:  session.CompletedAt,
		PausedAt:     session.PausedAt,
	}
}
