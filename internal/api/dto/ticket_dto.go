package dto

import (
	"time"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ProblemType  string              `json:"problemType"`
	Description  string              `json:"description"`
	CustomerName string              `json:"customerName"`
	BillNumber   string              `json:"billNumber"`
	BillDate     *time.Time          `json:"billDate"`
	WarehouseID  int64               `json:"warehouseId"`
	Attachments  []AttachmentRequest `json:"attachments"`
}

// AttachmentRequest describes attachment metadata input.
type AttachmentRequest struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
}

// TicketSummary response row.
type TicketSummary struct {
	ID            int64               `json:"id"`
	ProblemType   string              `json:"problemType"`
	Description   string              `json:"description"`
	CustomerName  string              `json:"customerName"`
	BillNumber    string              `json:"billNumber"`
	BillDate      time.Time           `json:"billDate"`
	WarehouseID   int64               `json:"warehouseId"`
	WarehouseName string              `json:"warehouseName"`
	Status        domain.TicketStatus `json:"status"`
	CreatorID     string              `json:"creatorId"`
	CreatedAt     time.Time           `json:"createdDate"`
	Unread        bool                `json:"unread"`
}

// TicketDetailResponse provides full ticket info with its thread.
type TicketDetailResponse struct {
	TicketSummary
	Comments []CommentResponse `json:"comments"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticketId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdDate"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Content     string              `json:"content"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"fileName"`
	FilePath   string    `json:"filePath"`
	UploadedAt time.Time `json:"uploadedDate"`
}

// WarehouseResponse reference row.
type WarehouseResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
