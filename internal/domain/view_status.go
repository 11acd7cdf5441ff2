package domain

import "time"

// ViewStatus is the per (user, ticket) high-water mark of the last time the
// user opened the ticket. At most one row exists per key; it is only ever
// written by the viewing user for themself.
type ViewStatus struct {
	UserID       string
	TicketID     int64
	LastViewedAt time.Time
}
