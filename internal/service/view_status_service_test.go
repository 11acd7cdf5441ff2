package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
	"github.com/spec-kit/warehouse-ticketing/internal/scope"
)

type fakeViewStatusRepo struct {
	watermarks map[string]map[int64]time.Time
	failAll    bool
	upserts    int
}

func newFakeViewStatusRepo() *fakeViewStatusRepo {
	return &fakeViewStatusRepo{watermarks: make(map[string]map[int64]time.Time)}
}

func (f *fakeViewStatusRepo) Upsert(_ context.Context, status domain.ViewStatus) error {
	if f.failAll {
		return errors.New("relation does not exist")
	}
	f.upserts++
	rows, ok := f.watermarks[status.UserID]
	if !ok {
		rows = make(map[int64]time.Time)
		f.watermarks[status.UserID] = rows
	}
	if existing, ok := rows[status.TicketID]; !ok || status.LastViewedAt.After(existing) {
		rows[status.TicketID] = status.LastViewedAt
	}
	return nil
}

func (f *fakeViewStatusRepo) Watermarks(_ context.Context, userID string, ticketIDs []int64) (map[int64]time.Time, error) {
	if f.failAll {
		return nil, errors.New("relation does not exist")
	}
	out := make(map[int64]time.Time)
	for _, id := range ticketIDs {
		if viewedAt, ok := f.watermarks[userID][id]; ok {
			out[id] = viewedAt
		}
	}
	return out, nil
}

type fakeCommentTimesRepo struct {
	CommentRepositoryStub
	latestForeign map[int64]time.Time
	failAll       bool
}

func (f *fakeCommentTimesRepo) LatestForeignTimes(_ context.Context, ticketIDs []int64, _ string) (map[int64]time.Time, error) {
	if f.failAll {
		return nil, errors.New("query failed")
	}
	out := make(map[int64]time.Time)
	for _, id := range ticketIDs {
		if latest, ok := f.latestForeign[id]; ok {
			out[id] = latest
		}
	}
	return out, nil
}

func ticketsWithIDs(ids ...int64) []domain.Ticket {
	tickets := make([]domain.Ticket, 0, len(ids))
	for _, id := range ids {
		tickets = append(tickets, domain.Ticket{ID: id})
	}
	return tickets
}

func TestUnreadSet(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	principal := scope.Principal{UserID: "u1"}

	t.Run("never viewed is unread", func(t *testing.T) {
		views := newFakeViewStatusRepo()
		comments := &fakeCommentTimesRepo{latestForeign: map[int64]time.Time{}}
		svc := NewViewStatusService(views, comments, zap.NewNop())

		unread := svc.UnreadSet(context.Background(), principal, ticketsWithIDs(1, 2))
		require.Len(t, unread, 2)
	})

	t.Run("viewed with no newer foreign comment is read", func(t *testing.T) {
		views := newFakeViewStatusRepo()
		require.NoError(t, views.Upsert(context.Background(), domain.ViewStatus{UserID: "u1", TicketID: 1, LastViewedAt: base}))
		comments := &fakeCommentTimesRepo{latestForeign: map[int64]time.Time{1: base.Add(-time.Hour)}}
		svc := NewViewStatusService(views, comments, zap.NewNop())

		unread := svc.UnreadSet(context.Background(), principal, ticketsWithIDs(1))
		require.Empty(t, unread)
	})

	t.Run("newer foreign comment flips back to unread", func(t *testing.T) {
		views := newFakeViewStatusRepo()
		require.NoError(t, views.Upsert(context.Background(), domain.ViewStatus{UserID: "u1", TicketID: 1, LastViewedAt: base}))
		comments := &fakeCommentTimesRepo{latestForeign: map[int64]time.Time{1: base.Add(time.Minute)}}
		svc := NewViewStatusService(views, comments, zap.NewNop())

		unread := svc.UnreadSet(context.Background(), principal, ticketsWithIDs(1))
		require.Contains(t, unread, int64(1))
	})

	t.Run("storage failure degrades to nothing unread", func(t *testing.T) {
		views := newFakeViewStatusRepo()
		views.failAll = true
		comments := &fakeCommentTimesRepo{latestForeign: map[int64]time.Time{1: base}}
		svc := NewViewStatusService(views, comments, zap.NewNop())

		unread := svc.UnreadSet(context.Background(), principal, ticketsWithIDs(1))
		require.Empty(t, unread)
	})

	t.Run("comment lookup failure degrades to nothing unread", func(t *testing.T) {
		views := newFakeViewStatusRepo()
		comments := &fakeCommentTimesRepo{failAll: true}
		svc := NewViewStatusService(views, comments, zap.NewNop())

		unread := svc.UnreadSet(context.Background(), principal, ticketsWithIDs(1))
		require.Empty(t, unread)
	})

	t.Run("empty ticket list yields empty set", func(t *testing.T) {
		svc := NewViewStatusService(newFakeViewStatusRepo(), &fakeCommentTimesRepo{}, zap.NewNop())
		unread := svc.UnreadSet(context.Background(), principal, nil)
		require.Empty(t, unread)
	})
}

func TestMarkViewed(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	principal := scope.Principal{UserID: "u1"}

	t.Run("marking viewed clears unread", func(t *testing.T) {
		views := newFakeViewStatusRepo()
		comments := &fakeCommentTimesRepo{latestForeign: map[int64]time.Time{7: base.Add(-time.Minute)}}
		svc := NewViewStatusService(views, comments, zap.NewNop())

		require.Contains(t, svc.UnreadSet(context.Background(), principal, ticketsWithIDs(7)), int64(7))
		svc.MarkViewed(context.Background(), principal, 7, base)
		require.Empty(t, svc.UnreadSet(context.Background(), principal, ticketsWithIDs(7)))
	})

	t.Run("repeat views keep the newest watermark", func(t *testing.T) {
		views := newFakeViewStatusRepo()
		svc := NewViewStatusService(views, &fakeCommentTimesRepo{}, zap.NewNop())

		svc.MarkViewed(context.Background(), principal, 7, base.Add(time.Minute))
		svc.MarkViewed(context.Background(), principal, 7, base)

		marks, err := views.Watermarks(context.Background(), "u1", []int64{7})
		require.NoError(t, err)
		require.Equal(t, base.Add(time.Minute), marks[7])
	})

	t.Run("upsert failure is swallowed", func(t *testing.T) {
		views := newFakeViewStatusRepo()
		views.failAll = true
		svc := NewViewStatusService(views, &fakeCommentTimesRepo{}, zap.NewNop())

		svc.MarkViewed(context.Background(), principal, 7, base)
	})

	t.Run("watermarks are per user", func(t *testing.T) {
		views := newFakeViewStatusRepo()
		comments := &fakeCommentTimesRepo{latestForeign: map[int64]time.Time{7: base.Add(-time.Minute)}}
		svc := NewViewStatusService(views, comments, zap.NewNop())

		svc.MarkViewed(context.Background(), principal, 7, base)

		other := scope.Principal{UserID: "u2"}
		require.Contains(t, svc.UnreadSet(context.Background(), other, ticketsWithIDs(7)), int64(7))
	})
}
