package dto

import "time"

// PollResponse answers "what changed since the cursor" for polling
// clients. Field names are wire-stable across client types.
type PollResponse struct {
	NewTicketIDs           []int64   `json:"newTicketIds"`
	TicketsWithNewComments []int64   `json:"ticketsWithNewComments"`
	NextCursor             time.Time `json:"nextCursor"`
}

// UnreadQueryRequest carries the ticket ids currently rendered by the
// client.
type UnreadQueryRequest struct {
	TicketIDs []int64 `json:"ticketIds"`
}

// UnreadQueryResponse is the unread subset.
type UnreadQueryResponse struct {
	UnreadTicketIDs []int64 `json:"unreadTicketIds"`
}
