// Package scope resolves which warehouses a principal may observe.
package scope

import (
	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

// Principal is the authenticated actor a request runs as. Built once at
// authentication time and immutable for the request's duration.
type Principal struct {
	UserID       string
	WarehouseIDs []int64
	IsAdmin      bool
}

// Scope is the set of warehouse identifiers a principal may act on. Admins
// carry All instead of a materialized id list.
type Scope struct {
	All          bool
	WarehouseIDs []int64
}

// Contains reports whether the scope covers the given warehouse.
func (s Scope) Contains(warehouseID int64) bool {
	if s.All {
		return true
	}
	for _, id := range s.WarehouseIDs {
		if id == warehouseID {
			return true
		}
	}
	return false
}

// Filter returns the warehouse id list to constrain queries with: nil means
// unrestricted; an empty non-nil slice must yield zero rows downstream.
func (s Scope) Filter() []int64 {
	if s.All {
		return nil
	}
	if s.WarehouseIDs == nil {
		return []int64{}
	}
	return s.WarehouseIDs
}

// For computes the principal's scope. Pure function of the principal's
// grants; an empty grant set yields an empty scope, which is valid (the
// user sees nothing), not an error.
func For(p Principal) Scope {
	if p.IsAdmin {
		return Scope{All: true}
	}
	return Scope{WarehouseIDs: p.WarehouseIDs}
}

// TicketVisible reports whether the principal may see the ticket.
func TicketVisible(p Principal, ticket *domain.Ticket) bool {
	return For(p).Contains(ticket.WarehouseID)
}
