package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gewog/AccessGuard/internal/authz"
)

// Service coordinates decision recording and timeline reads.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// RecordDecision persists the decision outcome. Best effort: a failed write
// is logged, never surfaced, so auditing cannot block authorization.
func (s *Service) RecordDecision(ctx context.Context, principalID, resourceID int64, action authz.Action, decision authz.Decision) {
	err := s.repo.Insert(ctx, Entry{
		PrincipalID: principalID,
		ResourceID:  resourceID,
		Action:      string(action),
		Allowed:     decision.Allowed,
		Reason:      string(decision.Reason),
	})
	if err != nil {
		s.logger.Warn("record decision audit entry",
			slog.Int64("principal_id", principalID),
			slog.Int64("resource_id", resourceID),
			slog.Any("error", err))
	}
}

// Timeline returns a page of decisions, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.Window(ctx, filters, offset, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}
	return Result{
		Rows:   rows,
		Paging: PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext},
	}, nil
}

// Purge removes entries older than the retention window and reports how many
// rows were deleted.
func (s *Service) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.PurgeOlderThan(ctx, time.Now().Add(-retention))
}

var _ authz.Recorder = (*Service)(nil)
