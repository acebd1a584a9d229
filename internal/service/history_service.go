package service

import (
	"context"
	"fmt"

	"github.com/alanyoungcy/retailboard/internal/domain"
)

// HistoryService exposes the recorded poll-cycle history.
type HistoryService struct {
	cycles domain.CycleStore
}

// NewHistoryService creates a HistoryService backed by the given store.
func NewHistoryService(cycles domain.CycleStore) *HistoryService {
	return &HistoryService{cycles: cycles}
}

// ListRecent returns cycle records, newest first.
func (s *HistoryService) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.CycleRecord, error) {
	records, err := s.cycles.ListRecent(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("history_service: list recent: %w", err)
	}
	return records, nil
}
