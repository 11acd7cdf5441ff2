package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
	"github.com/spec-kit/warehouse-ticketing/internal/events"
	"github.com/spec-kit/warehouse-ticketing/internal/repository"
	"github.com/spec-kit/warehouse-ticketing/internal/scope"
	apperrors "github.com/spec-kit/warehouse-ticketing/pkg/util"
)

// TicketService coordinates ticket workflows. Every mutation commits its
// record first and only then publishes the matching event; the dispatcher
// path is best-effort and can never undo the commit.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	warehouses  repository.WarehouseRepository
	viewStatus  *ViewStatusService
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	WarehouseRepo  repository.WarehouseRepository
	ViewStatus     *ViewStatusService
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ProblemType  string
	Description  string
	CustomerName string
	BillNumber   string
	BillDate     time.Time
	WarehouseID  int64
	Attachments  []AttachmentInput
}

// AttachmentInput defines attachment metadata registered with a mutation.
type AttachmentInput struct {
	FileName string
	FilePath string
}

// TicketListInput describes listing filters.
type TicketListInput struct {
	Statuses    []domain.TicketStatus
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		warehouses:  deps.WarehouseRepo,
		viewStatus:  deps.ViewStatus,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// CreateTicket creates a ticket after validating warehouse access.
func (s *TicketService) CreateTicket(ctx context.Context, principal scope.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if !scope.For(principal).Contains(input.WarehouseID) {
		return nil, apperrors.NewAccessDenied("no access to this warehouse")
	}
	if _, err := s.warehouses.GetByID(ctx, input.WarehouseID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("warehouse", nil)
		}
		return nil, err
	}

	billDate := input.BillDate
	if billDate.IsZero() {
		billDate = time.Now()
	}
	ticket := &domain.Ticket{
		ProblemType:  strings.TrimSpace(input.ProblemType),
		Description:  strings.TrimSpace(input.Description),
		CustomerName: strings.TrimSpace(input.CustomerName),
		BillNumber:   strings.TrimSpace(input.BillNumber),
		BillDate:     billDate,
		WarehouseID:  input.WarehouseID,
		Status:       domain.TicketStatusOpen,
		CreatorID:    principal.UserID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	for _, att := range input.Attachments {
		ticketID := ticket.ID
		if err := s.attachments.Create(ctx, &domain.Attachment{
			TicketID: &ticketID,
			FileName: att.FileName,
			FilePath: att.FilePath,
		}); err != nil {
			s.logger.Warn("attachment metadata insert failed", zap.Error(err))
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketCreated,
		TicketID:    ticket.ID,
		WarehouseID: ticket.WarehouseID,
		ActorID:     principal.UserID,
		Timestamp:   ticket.CreatedAt,
		Payload: events.TicketCreatedPayload{
			ProblemType: ticket.ProblemType,
			CreatedAt:   ticket.CreatedAt,
		},
	})
	return ticket, nil
}

// ListTickets returns scope-filtered tickets plus the subset unread for
// the principal. Out-of-scope rows are silently omitted, never an error.
func (s *TicketService) ListTickets(ctx context.Context, principal scope.Principal, input TicketListInput) ([]domain.Ticket, map[int64]struct{}, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		WarehouseIDs: scope.For(principal).Filter(),
		Statuses:     input.Statuses,
		SearchTerm:   input.SearchTerm,
		CreatedFrom:  input.CreatedFrom,
		CreatedTo:    input.CreatedTo,
		Limit:        input.Limit,
		Offset:       input.Offset,
	})
	if err != nil {
		return nil, nil, err
	}
	unread := s.viewStatus.UnreadSet(ctx, principal, tickets)
	return tickets, unread, nil
}

// GetTicket fetches a single ticket with its thread. A direct fetch out of
// scope is an explicit rejection, so "no access" is never confused with
// "doesn't exist". Viewing marks the ticket read for this principal.
func (s *TicketService) GetTicket(ctx context.Context, principal scope.Principal, ticketID int64) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.fetchVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, nil, err
	}

	s.viewStatus.MarkViewed(ctx, principal, ticket.ID, time.Now())

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

// AddComment appends to the thread and fans the event out. The author's
// own watermark is intentionally left untouched here: watermark updates
// are read-side actions, and a write-side update would corrupt the
// unread-to-others signal.
func (s *TicketService) AddComment(ctx context.Context, principal scope.Principal, ticketID int64, content string, attachments []AttachmentInput) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	ticket, err := s.fetchVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: principal.UserID,
		Content:  strings.TrimSpace(content),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	for _, att := range attachments {
		commentID := comment.ID
		if err := s.attachments.Create(ctx, &domain.Attachment{
			CommentID: &commentID,
			FileName:  att.FileName,
			FilePath:  att.FilePath,
		}); err != nil {
			s.logger.Warn("attachment metadata insert failed", zap.Error(err))
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventCommentAdded,
		TicketID:    ticket.ID,
		WarehouseID: ticket.WarehouseID,
		ActorID:     principal.UserID,
		Timestamp:   comment.CreatedAt,
		Payload: events.CommentAddedPayload{
			CommentID: comment.ID,
			Content:   comment.Content,
		},
	})
	return comment, nil
}

// ChangeStatus updates the lifecycle state. Statuses are not constrained
// to a monotonic order.
func (s *TicketService) ChangeStatus(ctx context.Context, principal scope.Principal, ticketID int64, status domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	ticket, err := s.fetchVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	ticket.Status = status

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketStatusChanged,
		TicketID:    ticket.ID,
		WarehouseID: ticket.WarehouseID,
		ActorID:     principal.UserID,
		Timestamp:   time.Now(),
		Payload: events.StatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// CloseTicket is the end-ticket shortcut.
func (s *TicketService) CloseTicket(ctx context.Context, principal scope.Principal, ticketID int64) (*domain.Ticket, error) {
	return s.ChangeStatus(ctx, principal, ticketID, domain.TicketStatusClosed)
}

// ListComments returns the thread for a visible ticket.
func (s *TicketService) ListComments(ctx context.Context, principal scope.Principal, ticketID int64) ([]domain.Comment, error) {
	ticket, err := s.fetchVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	return s.comments.ListByTicket(ctx, ticket.ID)
}

// ListAttachments returns attachment metadata for a visible ticket.
func (s *TicketService) ListAttachments(ctx context.Context, principal scope.Principal, ticketID int64) ([]domain.Attachment, error) {
	ticket, err := s.fetchVisible(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	return s.attachments.ListByTicket(ctx, ticket.ID)
}

// ListVisibleByIDs loads the subset of the requested tickets visible to
// the principal. Unknown and out-of-scope ids are dropped silently.
func (s *TicketService) ListVisibleByIDs(ctx context.Context, principal scope.Principal, ids []int64) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		WarehouseIDs: scope.For(principal).Filter(),
		IDs:          ids,
		Limit:        len(ids),
	})
}

// ListWarehouses returns the warehouses within the principal's scope, for
// pickers.
func (s *TicketService) ListWarehouses(ctx context.Context, principal scope.Principal) ([]domain.Warehouse, error) {
	return s.warehouses.List(ctx, scope.For(principal).Filter())
}

// fetchVisible loads a ticket and enforces scope. Deleted tickets surface
// as not-found; out-of-scope tickets as an access rejection.
func (s *TicketService) fetchVisible(ctx context.Context, principal scope.Principal, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if !scope.TicketVisible(principal, ticket) {
		return nil, apperrors.NewAccessDenied("no access to this ticket")
	}
	return ticket, nil
}

// publishEvent dispatches after the commit. Failures are contained: the
// mutation has already succeeded and must never be blocked by fan-out.
func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
