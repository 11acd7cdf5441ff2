package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/warehouse-ticketing/internal/repository"
	"github.com/spec-kit/warehouse-ticketing/internal/scope"
)

// PollResult is the pull-based answer to "what changed since the cursor".
// NextCursor is the server's time at computation, not the max event
// timestamp, so events created between computation and the client's clock
// are reported again rather than missed.
type PollResult struct {
	NewTicketIDs           []int64
	TicketsWithNewComments []int64
	NextCursor             time.Time
}

// ReconciliationService answers the same "what changed" question the
// broadcaster pushes, for clients that poll instead of holding a socket.
// Stateless: a pure read plus a cursor echoed back, safe under concurrent
// polls by the same principal.
type ReconciliationService struct {
	tickets  repository.TicketRepository
	comments repository.CommentRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconciliationService constructs the poller.
func NewReconciliationService(tickets repository.TicketRepository, comments repository.CommentRepository, logger *zap.Logger) *ReconciliationService {
	return &ReconciliationService{
		tickets:  tickets,
		comments: comments,
		logger:   logger,
		now:      time.Now,
	}
}

// Poll computes tickets created after the cursor and tickets with foreign
// comments after the cursor, restricted to the principal's scope. Empty
// results are a valid answer; calling again with the same cursor and no
// new data returns the same answer.
func (s *ReconciliationService) Poll(ctx context.Context, principal scope.Principal, since time.Time) (*PollResult, error) {
	// Cursor taken before the reads: anything committed mid-computation
	// lands after it and shows up on the next poll.
	cursor := s.now()
	warehouseIDs := scope.For(principal).Filter()

	newTickets, err := s.tickets.ListCreatedSince(ctx, warehouseIDs, since)
	if err != nil {
		return nil, err
	}
	commented, err := s.comments.TicketsWithForeignCommentsSince(ctx, warehouseIDs, since, principal.UserID)
	if err != nil {
		return nil, err
	}

	if newTickets == nil {
		newTickets = []int64{}
	}
	if commented == nil {
		commented = []int64{}
	}
	return &PollResult{
		NewTicketIDs:           newTickets,
		TicketsWithNewComments: commented,
		NextCursor:             cursor,
	}, nil
}
