package scope

import (
	"testing"

	"github.com/spec-kit/warehouse-ticketing/internal/domain"
)

func TestTicketVisible(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		warehouse int64
		want      bool
	}{
		{
			name:      "granted warehouse",
			principal: Principal{UserID: "u1", WarehouseIDs: []int64{3, 5}},
			warehouse: 5,
			want:      true,
		},
		{
			name:      "ungranted warehouse",
			principal: Principal{UserID: "u1", WarehouseIDs: []int64{3, 5}},
			warehouse: 7,
			want:      false,
		},
		{
			name:      "empty grants see nothing",
			principal: Principal{UserID: "u2"},
			warehouse: 1,
			want:      false,
		},
		{
			name:      "admin sees everything regardless of grants",
			principal: Principal{UserID: "admin", IsAdmin: true},
			warehouse: 99,
			want:      true,
		},
		{
			name:      "admin with stale grants still sees everything",
			principal: Principal{UserID: "admin", IsAdmin: true, WarehouseIDs: []int64{1}},
			warehouse: 42,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &domain.Ticket{ID: 1, WarehouseID: tt.warehouse}
			if got := TicketVisible(tt.principal, ticket); got != tt.want {
				t.Errorf("TicketVisible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScopeFilter(t *testing.T) {
	t.Run("admin filter is unrestricted", func(t *testing.T) {
		if got := For(Principal{IsAdmin: true}).Filter(); got != nil {
			t.Errorf("admin Filter() = %v, want nil", got)
		}
	})

	t.Run("empty grants yield empty non-nil filter", func(t *testing.T) {
		got := For(Principal{UserID: "u"}).Filter()
		if got == nil || len(got) != 0 {
			t.Errorf("empty-grant Filter() = %v, want empty non-nil slice", got)
		}
	})

	t.Run("grants pass through", func(t *testing.T) {
		got := For(Principal{UserID: "u", WarehouseIDs: []int64{2, 4}}).Filter()
		if len(got) != 2 || got[0] != 2 || got[1] != 4 {
			t.Errorf("Filter() = %v, want [2 4]", got)
		}
	})
}
