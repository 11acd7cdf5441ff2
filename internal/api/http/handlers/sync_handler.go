package handlers

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warehouse-ticketing/internal/api/dto"
	"github.com/spec-kit/warehouse-ticketing/internal/service"
	apperrors "github.com/spec-kit/warehouse-ticketing/pkg/util"
)

// SyncHandler exposes the pull-based reconciliation endpoints for clients
// that poll instead of holding a socket.
type SyncHandler struct {
	reconciliation *service.ReconciliationService
	viewStatus     *service.ViewStatusService
	tickets        *service.TicketService
}

// NewSyncHandler constructs the handler.
func NewSyncHandler(reconciliation *service.ReconciliationService, viewStatus *service.ViewStatusService, tickets *service.TicketService) *SyncHandler {
	return &SyncHandler{
		reconciliation: reconciliation,
		viewStatus:     viewStatus,
		tickets:        tickets,
	}
}

// Updates handles GET /api/sync/updates?since=RFC3339. A missing cursor
// polls from the epoch, which reports everything in scope.
func (h *SyncHandler) Updates(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}

	since := time.Time{}
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return apperrors.NewValidationError("invalid since timestamp", nil)
		}
		since = parsed
	}

	result, err := h.reconciliation.Poll(c.Context(), principal, since)
	if err != nil {
		return err
	}

	return c.JSON(dto.PollResponse{
		NewTicketIDs:           result.NewTicketIDs,
		TicketsWithNewComments: result.TicketsWithNewComments,
		NextCursor:             result.NextCursor,
	})
}

// Unread handles POST /api/sync/unread: given the ticket ids a client has
// rendered, return the subset unread for the caller. Ids outside the
// caller's scope are dropped, not errored.
func (h *SyncHandler) Unread(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.UnreadQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if len(req.TicketIDs) == 0 {
		return c.JSON(dto.UnreadQueryResponse{UnreadTicketIDs: []int64{}})
	}

	visible, err := h.tickets.ListVisibleByIDs(c.Context(), principal, req.TicketIDs)
	if err != nil {
		return err
	}

	unread := h.viewStatus.UnreadSet(c.Context(), principal, visible)
	ids := make([]int64, 0, len(unread))
	for id := range unread {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return c.JSON(dto.UnreadQueryResponse{UnreadTicketIDs: ids})
}
