package domain

import "time"

// Attachment stores file metadata attached to a ticket or to a comment.
// Exactly one of TicketID/CommentID is set. File bytes live in external
// storage; this core only tracks the reference.
type Attachment struct {
	ID         int64
	TicketID   *int64
	CommentID  *int64
	FileName   string
	FilePath   string
	UploadedAt time.Time
}
