package domain

import "time"

// Comment is a message appended to a ticket thread.
type Comment struct {
	ID         int64
	TicketID   int64
	AuthorID   string
	AuthorName string
	Content    string
	CreatedAt  time.Time
}
