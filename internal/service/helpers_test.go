package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
	"github.com/spec-kit/warehouse-ticketing/internal/repository"
)

var errNotStubbed = errors.New("not stubbed")

// CommentRepositoryStub satisfies repository.CommentRepository so fakes
// only override the methods a test exercises.
type CommentRepositoryStub struct{}

var _ repository.CommentRepository = (*CommentRepositoryStub)(nil)

func (CommentRepositoryStub) Create(context.Context, *domain.Comment) error {
	return errNotStubbed
}

func (CommentRepositoryStub) GetByID(context.Context, int64) (*domain.Comment, error) {
	return nil, errNotStubbed
}

func (CommentRepositoryStub) ListByTicket(context.Context, int64) ([]domain.Comment, error) {
	return nil, errNotStubbed
}

func (CommentRepositoryStub) UpdateContent(context.Context, int64, string, time.Time) error {
	return errNotStubbed
}

func (CommentRepositoryStub) Delete(context.Context, int64) error {
	return errNotStubbed
}

func (CommentRepositoryStub) LatestForeignTimes(context.Context, []int64, string) (map[int64]time.Time, error) {
	return nil, errNotStubbed
}

func (CommentRepositoryStub) TicketsWithForeignCommentsSince(context.Context, []int64, time.Time, string) ([]int64, error) {
	return nil, errNotStubbed
}

// TicketRepositoryStub satisfies repository.TicketRepository.
type TicketRepositoryStub struct{}

var _ repository.TicketRepository = (*TicketRepositoryStub)(nil)

func (TicketRepositoryStub) Create(context.Context, *domain.Ticket) error {
	return errNotStubbed
}

func (TicketRepositoryStub) GetByID(context.Context, int64) (*domain.Ticket, error) {
	return nil, errNotStubbed
}

func (TicketRepositoryStub) ListWithFilter(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, errNotStubbed
}

func (TicketRepositoryStub) UpdateStatus(context.Context, int64, domain.TicketStatus) error {
	return errNotStubbed
}

func (TicketRepositoryStub) ListCreatedSince(context.Context, []int64, time.Time) ([]int64, error) {
	return nil, errNotStubbed
}

func (TicketRepositoryStub) DeleteCascade(context.Context, int64) error {
	return errNotStubbed
}
