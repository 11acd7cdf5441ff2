package handlers

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/warehouse-ticketing/internal/api/dto"
	"github.com/spec-kit/warehouse-ticketing/internal/auth"
	"github.com/spec-kit/warehouse-ticketing/internal/domain"
	"github.com/spec-kit/warehouse-ticketing/internal/scope"
	"github.com/spec-kit/warehouse-ticketing/internal/service"
	apperrors "github.com/spec-kit/warehouse-ticketing/pkg/util"
)

// TicketHandler exposes the ticket workflow endpoints.
type TicketHandler struct {
	tickets *service.TicketService
}

// NewTicketHandler constructs the handler.
func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Create handles POST /api/tickets.
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if strings.TrimSpace(req.ProblemType) == "" {
		return apperrors.NewValidationError("problemType required", nil)
	}
	if req.WarehouseID <= 0 {
		return apperrors.NewValidationError("warehouseId required", nil)
	}

	input := service.TicketCreateInput{
		ProblemType:  req.ProblemType,
		Description:  req.Description,
		CustomerName: req.CustomerName,
		BillNumber:   req.BillNumber,
		WarehouseID:  req.WarehouseID,
		Attachments:  toAttachmentInputs(req.Attachments),
	}
	if req.BillDate != nil {
		input.BillDate = *req.BillDate
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toTicketSummary(ticket, false))
}

// List handles GET /api/tickets. Out-of-scope tickets are omitted, and
// the unread subset rides along so clients can badge rows in one call.
func (h *TicketHandler) List(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}

	input, err := parseListInput(c)
	if err != nil {
		return err
	}

	tickets, unread, err := h.tickets.ListTickets(c.Context(), principal, input)
	if err != nil {
		return err
	}

	rows := make([]dto.TicketSummary, 0, len(tickets))
	unreadIDs := make([]int64, 0, len(unread))
	for i := range tickets {
		_, isUnread := unread[tickets[i].ID]
		rows = append(rows, toTicketSummary(&tickets[i], isUnread))
		if isUnread {
			unreadIDs = append(unreadIDs, tickets[i].ID)
		}
	}
	sort.Slice(unreadIDs, func(i, j int) bool { return unreadIDs[i] < unreadIDs[j] })

	return c.JSON(fiber.Map{
		"tickets":         rows,
		"unreadTicketIds": unreadIDs,
	})
}

// Get handles GET /api/tickets/:id. Viewing marks the ticket read for
// the caller.
func (h *TicketHandler) Get(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ticket, comments, err := h.tickets.GetTicket(c.Context(), principal, ticketID)
	if err != nil {
		return err
	}

	detail := dto.TicketDetailResponse{
		TicketSummary: toTicketSummary(ticket, false),
		Comments:      toCommentResponses(comments),
	}
	return c.JSON(detail)
}

// UpdateStatus handles PUT /api/tickets/:id/status.
func (h *TicketHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	ticket, err := h.tickets.ChangeStatus(c.Context(), principal, ticketID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(toTicketSummary(ticket, false))
}

// Close handles POST /api/tickets/:id/close.
func (h *TicketHandler) Close(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ticket, err := h.tickets.CloseTicket(c.Context(), principal, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(toTicketSummary(ticket, false))
}

// ListComments handles GET /api/tickets/:id/comments.
func (h *TicketHandler) ListComments(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	comments, err := h.tickets.ListComments(c.Context(), principal, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comments": toCommentResponses(comments)})
}

// AddComment handles POST /api/tickets/:id/comments.
func (h *TicketHandler) AddComment(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}

	comment, err := h.tickets.AddComment(c.Context(), principal, ticketID, req.Content, toAttachmentInputs(req.Attachments))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toCommentResponse(comment))
}

// ListAttachments handles GET /api/tickets/:id/attachments.
func (h *TicketHandler) ListAttachments(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	attachments, err := h.tickets.ListAttachments(c.Context(), principal, ticketID)
	if err != nil {
		return err
	}

	rows := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		rows = append(rows, dto.AttachmentResponse{
			ID:         attachments[i].ID,
			FileName:   attachments[i].FileName,
			FilePath:   attachments[i].FilePath,
			UploadedAt: attachments[i].UploadedAt,
		})
	}
	return c.JSON(fiber.Map{"attachments": rows})
}

// ListWarehouses handles GET /api/warehouses, scoped to the caller.
func (h *TicketHandler) ListWarehouses(c *fiber.Ctx) error {
	principal, err := requestPrincipal(c)
	if err != nil {
		return err
	}

	warehouses, err := h.tickets.ListWarehouses(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"warehouses": toWarehouseResponses(warehouses)})
}

func parseListInput(c *fiber.Ctx) (service.TicketListInput, error) {
	input := service.TicketListInput{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}

	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.TicketStatus(strings.TrimSpace(part))
			if !domain.ValidStatus(status) {
				return input, apperrors.NewValidationError("unknown status", map[string]any{"status": part})
			}
			input.Statuses = append(input.Statuses, status)
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		input.SearchTerm = &search
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return input, apperrors.NewValidationError("invalid from timestamp", nil)
		}
		input.CreatedFrom = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return input, apperrors.NewValidationError("invalid to timestamp", nil)
		}
		input.CreatedTo = &to
	}
	return input, nil
}

func requestPrincipal(c *fiber.Ctx) (scope.Principal, error) {
	session, ok := auth.PrincipalFromContext(c)
	if !ok {
		return scope.Principal{}, apperrors.NewUnauthorized("authentication required")
	}
	return session.Principal, nil
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

func toAttachmentInputs(in []dto.AttachmentRequest) []service.AttachmentInput {
	out := make([]service.AttachmentInput, 0, len(in))
	for _, att := range in {
		out = append(out, service.AttachmentInput{FileName: att.FileName, FilePath: att.FilePath})
	}
	return out
}

func toTicketSummary(t *domain.Ticket, unread bool) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            t.ID,
		ProblemType:   t.ProblemType,
		Description:   t.Description,
		CustomerName:  t.CustomerName,
		BillNumber:    t.BillNumber,
		BillDate:      t.BillDate,
		WarehouseID:   t.WarehouseID,
		WarehouseName: t.WarehouseName,
		Status:        t.Status,
		CreatorID:     t.CreatorID,
		CreatedAt:     t.CreatedAt,
		Unread:        unread,
	}
}

func toCommentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		Content:    comment.Content,
		CreatedAt:  comment.CreatedAt,
	}
}

func toCommentResponses(comments []domain.Comment) []dto.CommentResponse {
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return out
}

func toWarehouseResponses(warehouses []domain.Warehouse) []dto.WarehouseResponse {
	out := make([]dto.WarehouseResponse, 0, len(warehouses))
	for i := range warehouses {
		out = append(out, dto.WarehouseResponse{ID: warehouses[i].ID, Name: warehouses[i].Name})
	}
	return out
}
