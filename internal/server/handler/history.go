package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// HistoryService defines the methods the history handler requires from the
// service layer.
type HistoryService interface {
	ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.CycleRecord, error)
}

// HistoryHandler serves the poll-cycle history endpoint.
type HistoryHandler struct {
	history HistoryService
	logger  *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler with the given service and
// logger.
func NewHistoryHandler(history HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		logger:  logger,
	}
}

// listCyclesResponse wraps the cycle list with pagination metadata.
type listCyclesResponse struct {
	Cycles []domain.CycleRecord `json:"cycles"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// ListCycles returns recorded poll cycles, newest first.
// GET /api/history/cycles?limit=50&offset=0
func (h *HistoryHandler) ListCycles(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	cycles, err := h.history.ListRecent(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list cycles failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list cycles")
		return
	}

	if cycles == nil {
		cycles = []domain.CycleRecord{}
	}
	writeJSON(w, http.StatusOK, listCyclesResponse{
		Cycles: cycles,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}
