package broadcast

import (
	"encoding/json"
	"fmt"
	"time"
)

// TopicAll is the implicit topic every connection belongs to from the
// moment it connects. Legacy clients listen only here.
const TopicAll = "all"

// warehouseTopicPrefix is fixed wire vocabulary shared by every client
// type; changing it breaks mobile and web subscribers alike.
const warehouseTopicPrefix = "Warehouse_"

// WarehouseTopic returns the topic name for a warehouse.
func WarehouseTopic(warehouseID int64) string {
	return fmt.Sprintf("%s%d", warehouseTopicPrefix, warehouseID)
}

// Kind tags the broadcast event variants.
type Kind string

const (
	KindTicketCreated Kind = "ticket_created"
	KindCommentAdded  Kind = "comment_added"
	KindStatusChanged Kind = "status_changed"
)

// Event is an ephemeral broadcast payload. It carries enough data for a
// receiver to decide relevance without a follow-up query. Never persisted.
type Event struct {
	Kind        Kind      `json:"kind"`
	TicketID    int64     `json:"ticketId"`
	WarehouseID int64     `json:"warehouseId"`
	AuthorID    string    `json:"authorId,omitempty"`
	ProblemType string    `json:"problemType,omitempty"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// frame is one serialized wire message plus the topics whose subscribers
// should receive it. A connection matching several topics of one frame
// receives the frame once.
type frame struct {
	eventType string
	topics    []string
	payload   []byte
}

type ticketCreatedWire struct {
	Type        string    `json:"type"`
	ID          int64     `json:"id"`
	ProblemType string    `json:"problemType"`
	WarehouseID int64     `json:"warehouseId"`
	CreatedDate time.Time `json:"createdDate"`
}

type newTicketWire struct {
	Type        string `json:"type"`
	ID          int64  `json:"id"`
	ProblemType string `json:"problemType"`
}

type commentAddedWire struct {
	Type        string `json:"type"`
	ID          int64  `json:"id"`
	TicketID    int64  `json:"ticketId"`
	AuthorID    string `json:"authorId"`
	WarehouseID int64  `json:"warehouseId"`
}

type statusChangedWire struct {
	Type   string `json:"type"`
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// frames expands an event into its wire messages. A creation intentionally
// produces two distinct messages: "ticket_created" for the implicit all
// topic (legacy clients) and a lighter "new_ticket" for the warehouse
// topic. Both are emitted for every creation.
func (e Event) frames() []frame {
	switch e.Kind {
	case KindTicketCreated:
		created, _ := json.Marshal(ticketCreatedWire{
			Type:        "ticket_created",
			ID:          e.TicketID,
			ProblemType: e.ProblemType,
			WarehouseID: e.WarehouseID,
			CreatedDate: e.CreatedAt,
		})
		scoped, _ := json.Marshal(newTicketWire{
			Type:        "new_ticket",
			ID:          e.TicketID,
			ProblemType: e.ProblemType,
		})
		return []frame{
			{eventType: "ticket_created", topics: []string{TopicAll}, payload: created},
			{eventType: "new_ticket", topics: []string{WarehouseTopic(e.WarehouseID)}, payload: scoped},
		}
	case KindCommentAdded:
		payload, _ := json.Marshal(commentAddedWire{
			Type:        "comment_added",
			ID:          e.TicketID,
			TicketID:    e.TicketID,
			AuthorID:    e.AuthorID,
			WarehouseID: e.WarehouseID,
		})
		return []frame{{
			eventType: "comment_added",
			topics:    []string{TopicAll, WarehouseTopic(e.WarehouseID)},
			payload:   payload,
		}}
	case KindStatusChanged:
		payload, _ := json.Marshal(statusChangedWire{
			Type:   "status_changed",
			ID:     e.TicketID,
			Status: e.Status,
		})
		return []frame{{
			eventType: "status_changed",
			topics:    []string{TopicAll, WarehouseTopic(e.WarehouseID)},
			payload:   payload,
		}}
	}
	return nil
}
