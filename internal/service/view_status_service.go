package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
	"github.com/spec-kit/warehouse-ticketing/internal/repository"
	"github.com/spec-kit/warehouse-ticketing/internal/scope"
)

// ViewStatusService tracks per-user last-viewed watermarks and derives
// unread state. The signal is advisory: every storage failure here
// degrades to "nothing is unread" instead of propagating, so a missing or
// mid-migration table can never break a listing or a mutation.
type ViewStatusService struct {
	viewStatuses repository.ViewStatusRepository
	comments     repository.CommentRepository
	logger       *zap.Logger
}

// NewViewStatusService constructs the tracker.
func NewViewStatusService(viewStatuses repository.ViewStatusRepository, comments repository.CommentRepository, logger *zap.Logger) *ViewStatusService {
	return &ViewStatusService{
		viewStatuses: viewStatuses,
		comments:     comments,
		logger:       logger,
	}
}

// MarkViewed upserts the watermark for the viewing principal. Idempotent:
// concurrent duplicate views collapse to one row carrying the latest
// timestamp (single-key last-write-wins at the storage layer). Only ever
// called for the principal's own row, as a read-side action.
func (s *ViewStatusService) MarkViewed(ctx context.Context, principal scope.Principal, ticketID int64, now time.Time) {
	if err := s.viewStatuses.Upsert(ctx, domain.ViewStatus{
		UserID:       principal.UserID,
		TicketID:     ticketID,
		LastViewedAt: now,
	}); err != nil {
		s.logger.Warn("view status upsert failed; unread state will lag",
			zap.String("user_id", principal.UserID),
			zap.Int64("ticket_id", ticketID),
			zap.Error(err))
	}
}

// UnreadSet returns the subset of tickets considered unread for the
// principal: no watermark row, or a comment from another author newer
// than the watermark. Two batched queries for the whole list, predicate
// applied in one pass.
func (s *ViewStatusService) UnreadSet(ctx context.Context, principal scope.Principal, tickets []domain.Ticket) map[int64]struct{} {
	unread := make(map[int64]struct{})
	if len(tickets) == 0 {
		return unread
	}

	ids := make([]int64, 0, len(tickets))
	for i := range tickets {
		ids = append(ids, tickets[i].ID)
	}

	watermarks, err := s.viewStatuses.Watermarks(ctx, principal.UserID, ids)
	if err != nil {
		s.logger.Warn("watermark lookup failed; treating nothing as unread", zap.Error(err))
		return unread
	}
	latestForeign, err := s.comments.LatestForeignTimes(ctx, ids, principal.UserID)
	if err != nil {
		s.logger.Warn("foreign comment lookup failed; treating nothing as unread", zap.Error(err))
		return unread
	}

	for _, id := range ids {
		viewedAt, viewed := watermarks[id]
		if !viewed {
			unread[id] = struct{}{}
			continue
		}
		if latest, ok := latestForeign[id]; ok && latest.After(viewedAt) {
			unread[id] = struct{}{}
		}
	}
	return unread
}

// IsUnread answers the unread predicate for a single ticket.
func (s *ViewStatusService) IsUnread(ctx context.Context, principal scope.Principal, ticket *domain.Ticket) bool {
	set := s.UnreadSet(ctx, principal, []domain.Ticket{*ticket})
	_, ok := set[ticket.ID]
	return ok
}
