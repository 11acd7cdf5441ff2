package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/warehouse-ticketing/internal/scope"
)

type fakePollTicketRepo struct {
	TicketRepositoryStub
	created      map[int64]time.Time
	warehouseOf  map[int64]int64
	lastWHFilter []int64
	calledWithWH bool
}

func (f *fakePollTicketRepo) ListCreatedSince(_ context.Context, warehouseIDs []int64, since time.Time) ([]int64, error) {
	f.lastWHFilter = warehouseIDs
	f.calledWithWH = true
	ids := []int64{}
	for id, createdAt := range f.created {
		if !createdAt.After(since) {
			continue
		}
		if warehouseIDs != nil && !containsID(warehouseIDs, f.warehouseOf[id]) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type fakePollCommentRepo struct {
	CommentRepositoryStub
	foreignCommented map[int64]time.Time
	warehouseOf      map[int64]int64
}

func (f *fakePollCommentRepo) TicketsWithForeignCommentsSince(_ context.Context, warehouseIDs []int64, since time.Time, _ string) ([]int64, error) {
	ids := []int64{}
	for id, commentedAt := range f.foreignCommented {
		if !commentedAt.After(since) {
			continue
		}
		if warehouseIDs != nil && !containsID(warehouseIDs, f.warehouseOf[id]) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func TestPoll(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	serverNow := base.Add(time.Hour)

	newService := func(tickets *fakePollTicketRepo, comments *fakePollCommentRepo) *ReconciliationService {
		svc := NewReconciliationService(tickets, comments, zap.NewNop())
		svc.now = func() time.Time { return serverNow }
		return svc
	}

	t.Run("reports new tickets and commented tickets in scope", func(t *testing.T) {
		tickets := &fakePollTicketRepo{
			created:     map[int64]time.Time{1: base.Add(time.Minute), 2: base.Add(time.Minute)},
			warehouseOf: map[int64]int64{1: 10, 2: 20},
		}
		comments := &fakePollCommentRepo{
			foreignCommented: map[int64]time.Time{3: base.Add(time.Minute)},
			warehouseOf:      map[int64]int64{3: 10},
		}
		svc := newService(tickets, comments)

		principal := scope.Principal{UserID: "u1", WarehouseIDs: []int64{10}}
		result, err := svc.Poll(context.Background(), principal, base)
		require.NoError(t, err)
		require.Equal(t, []int64{1}, result.NewTicketIDs)
		require.Equal(t, []int64{3}, result.TicketsWithNewComments)
		require.Equal(t, serverNow, result.NextCursor)
	})

	t.Run("admin polls without a warehouse filter", func(t *testing.T) {
		tickets := &fakePollTicketRepo{
			created:     map[int64]time.Time{1: base.Add(time.Minute)},
			warehouseOf: map[int64]int64{1: 10},
		}
		svc := newService(tickets, &fakePollCommentRepo{})

		principal := scope.Principal{UserID: "admin", IsAdmin: true}
		_, err := svc.Poll(context.Background(), principal, base)
		require.NoError(t, err)
		require.True(t, tickets.calledWithWH)
		require.Nil(t, tickets.lastWHFilter)
	})

	t.Run("no grants matches nothing", func(t *testing.T) {
		tickets := &fakePollTicketRepo{
			created:     map[int64]time.Time{1: base.Add(time.Minute)},
			warehouseOf: map[int64]int64{1: 10},
		}
		svc := newService(tickets, &fakePollCommentRepo{})

		principal := scope.Principal{UserID: "u1"}
		result, err := svc.Poll(context.Background(), principal, base)
		require.NoError(t, err)
		require.NotNil(t, tickets.lastWHFilter)
		require.Empty(t, tickets.lastWHFilter)
		require.Empty(t, result.NewTicketIDs)
	})

	t.Run("repeat poll with same cursor returns same answer", func(t *testing.T) {
		tickets := &fakePollTicketRepo{
			created:     map[int64]time.Time{1: base.Add(time.Minute)},
			warehouseOf: map[int64]int64{1: 10},
		}
		svc := newService(tickets, &fakePollCommentRepo{})
		principal := scope.Principal{UserID: "u1", WarehouseIDs: []int64{10}}

		first, err := svc.Poll(context.Background(), principal, base)
		require.NoError(t, err)
		second, err := svc.Poll(context.Background(), principal, base)
		require.NoError(t, err)
		require.Equal(t, first.NewTicketIDs, second.NewTicketIDs)
	})

	t.Run("epoch cursor reports everything in scope", func(t *testing.T) {
		tickets := &fakePollTicketRepo{
			created:     map[int64]time.Time{1: base, 2: base.Add(-time.Hour)},
			warehouseOf: map[int64]int64{1: 10, 2: 10},
		}
		svc := newService(tickets, &fakePollCommentRepo{})
		principal := scope.Principal{UserID: "u1", WarehouseIDs: []int64{10}}

		result, err := svc.Poll(context.Background(), principal, time.Time{})
		require.NoError(t, err)
		require.Len(t, result.NewTicketIDs, 2)
	})

	t.Run("empty results stay non-nil", func(t *testing.T) {
		svc := newService(&fakePollTicketRepo{}, &fakePollCommentRepo{})
		principal := scope.Principal{UserID: "u1", WarehouseIDs: []int64{10}}

		result, err := svc.Poll(context.Background(), principal, base)
		require.NoError(t, err)
		require.NotNil(t, result.NewTicketIDs)
		require.NotNil(t, result.TicketsWithNewComments)
	})
}
