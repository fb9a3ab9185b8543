package api

import (
	"log/slog"
	"net/http"

	"github.com/lexidrill/lexidrill-api/internal/api/shared"
	"github.com/lexidrill/lexidrill-api/internal/service/progress"
)

// ProgressHandler handles mastery and domain progress HTTP requests.
type ProgressHandler struct {
	progress progress.ProgressService
	logger   *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService progress.ProgressService, log *slog.Logger) *ProgressHandler {
	if progressService == nil {
		panic("progressService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ProgressHandler{
		progress: progressService,
		logger:   log.With(slog.String("component", "progress_handler")),
	}
}

// GetTermMastery handles GET /progress/terms/{id} requests.
func (h *ProgressHandler) GetTermMastery(w http.ResponseWriter, r *http.Request) {
	userID, termID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	snapshot, err := h.progress.MasteryFor(r.Context(), userID, termID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

// GetDomainProgress handles GET /progress/domains/{id} requests.
func (h *ProgressHandler) GetDomainProgress(w http.ResponseWriter, r *http.Request) {
	userID, domainID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.progress.DomainProgress(r.Context(), userID, domainID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
