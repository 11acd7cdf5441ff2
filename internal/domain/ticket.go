package domain

import "time"

// TicketStatus enumerates lifecycle states for warehouse issue tickets.
// The progression Open -> InProgress -> Resolved -> Closed is the intended
// use, but no ordering constraint is enforced.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ValidStatus reports whether s is a known ticket status.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for a warehouse issue report.
type Ticket struct {
	ID            int64
	ProblemType   string
	Description   string
	CustomerName  string
	BillNumber    string
	BillDate      time.Time
	WarehouseID   int64
	WarehouseName string
	Status        TicketStatus
	CreatorID     string
	AssignedToID  *string
	CreatedAt     time.Time
}
