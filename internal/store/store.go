package store

import (
	"context"

	"github.com/swiftlogistics/swifttrack/internal/model"
)

// OrderFilter controls filtering and sorting for cached order queries.
type OrderFilter struct {
	Status   *string // aggregate status, or nil (all)
	Query    *string // search client name + package details + address
	SortBy   string  // "created_at", "updated_at", "client_name", "status"
	SortDesc bool
	Limit    int
	Offset   int
}

// Store is the local order cache. The gateway stays authoritative; the
// cache exists so the order list renders instantly on launch and stays
// usable when the gateway is unreachable.
type Store interface {
	UpsertOrders(ctx context.Context, orders []model.Order) error
	GetOrders(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*model.Order, error)
	DeleteOrdersNotIn(ctx context.Context, ids []int64) error
	Close() error
}
