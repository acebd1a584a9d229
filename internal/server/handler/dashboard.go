package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// DashboardService defines the methods the dashboard handler requires from
// the service layer. It is declared locally so the handler package does not
// depend on the concrete service implementation.
type DashboardService interface {
	Latest(ctx context.Context) (domain.Snapshot, error)
	Bucket(ctx context.Context, name string) ([]domain.Market, error)
	EarningsBucket(ctx context.Context, name string) ([]domain.Market, error)
	AlignedSeries(ctx context.Context, marketID, symbol string, windowSeconds int64) (domain.AlignedSeries, error)
}

// DashboardHandler serves the snapshot and aligned-series endpoints.
type DashboardHandler struct {
	dashboard DashboardService
	logger    *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler with the given service and
// logger.
func NewDashboardHandler(dashboard DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// bucketResponse wraps a single retailer bucket with metadata.
type bucketResponse struct {
	Retailer string          `json:"retailer"`
	Markets  []domain.Market `json:"markets"`
	Count    int             `json:"count"`
}

// Buckets returns the latest snapshot with every retailer bucket.
// GET /api/buckets
func (h *DashboardHandler) Buckets(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboard.Latest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoSnapshot) {
			writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: latest snapshot failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// Bucket returns the latest markets for one retailer.
// GET /api/buckets/{retailer}
func (h *DashboardHandler) Bucket(w http.ResponseWriter, r *http.Request) {
	h.writeBucket(w, r, h.dashboard.Bucket)
}

// EarningsBucket returns the earnings-related subset of a retailer's bucket.
// GET /api/buckets/{retailer}/earnings
func (h *DashboardHandler) EarningsBucket(w http.ResponseWriter, r *http.Request) {
	h.writeBucket(w, r, h.dashboard.EarningsBucket)
}

func (h *DashboardHandler) writeBucket(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) ([]domain.Market, error)) {
	retailer := pathParam(r, "retailer")
	if retailer == "" {
		writeError(w, http.StatusBadRequest, "missing retailer")
		return
	}

	markets, err := fetch(r.Context(), retailer)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "unknown retailer")
		case errors.Is(err, domain.ErrNoSnapshot):
			writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
		default:
			h.logger.ErrorContext(r.Context(), "handler: bucket failed",
				slog.String("retailer", retailer),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to load bucket")
		}
		return
	}

	if markets == nil {
		markets = []domain.Market{}
	}
	writeJSON(w, http.StatusOK, bucketResponse{
		Retailer: retailer,
		Markets:  markets,
		Count:    len(markets),
	})
}

// AlignedSeries returns the market's probability history aligned with a
// stock's closing prices.
// GET /api/markets/{id}/aligned?symbol=WMT&window=259200
func (h *DashboardHandler) AlignedSeries(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol query parameter")
		return
	}

	var window int64
	if v := r.URL.Query().Get("window"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "window must be a non-negative integer")
			return
		}
		window = n
	}

	aligned, err := h.dashboard.AlignedSeries(r.Context(), id, symbol, window)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "market not found")
		case errors.Is(err, domain.ErrNoSnapshot):
			writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
		case errors.Is(err, domain.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "upstream rate limit hit, retry later")
		default:
			h.logger.ErrorContext(r.Context(), "handler: aligned series failed",
				slog.String("market_id", id),
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, "failed to build aligned series")
		}
		return
	}

	if aligned == nil {
		aligned = domain.AlignedSeries{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"marketId": id,
		"symbol":   symbol,
		"points":   aligned,
	})
}
