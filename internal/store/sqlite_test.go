package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/swiftlogistics/swifttrack/internal/model"
	"github.com/swiftlogistics/swifttrack/internal/store"
	"github.com/swiftlogistics/swifttrack/tests/testutil"
)

func sampleOrders(fetchedAt time.Time) []model.Order {
	return []model.Order{
		{
			ID: 1, ClientName: "Acme Retail",
			PackageDetails: "Spare parts", DeliveryAddress: "12 Galle Rd",
			Status: model.OrderStatusSubmitted,
			CmsStatus: "CONFIRMED", WmsStatus: "PENDING", RosStatus: "PENDING",
			UserID: "u-1", CreatedAt: fetchedAt.Add(-time.Hour), FetchedAt: fetchedAt,
		},
		{
			ID: 2, ClientName: "Beta Traders",
			PackageDetails: "Documents", DeliveryAddress: "7 Kandy Rd",
			Status: model.OrderStatusCompleted,
			CmsStatus: "CONFIRMED", WmsStatus: "CONFIRMED", RosStatus: "CONFIRMED",
			UserID: "u-1", CreatedAt: fetchedAt.Add(-2 * time.Hour), FetchedAt: fetchedAt,
		},
	}
}

func TestUpsertAndGetOrders(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.UpsertOrders(ctx, sampleOrders(now)); err != nil {
		t.Fatalf("UpsertOrders: %v", err)
	}

	orders, err := s.GetOrders(ctx, store.OrderFilter{SortBy: "created_at", SortDesc: true})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].ID != 1 {
		t.Errorf("newest-first sort returned order %d first, want 1", orders[0].ID)
	}
	if orders[0].WmsStatus != "PENDING" {
		t.Errorf("wms_status = %q", orders[0].WmsStatus)
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	orders := sampleOrders(now)
	if err := s.UpsertOrders(ctx, orders); err != nil {
		t.Fatalf("UpsertOrders: %v", err)
	}

	orders[0].Status = model.OrderStatusCompleted
	orders[0].WmsStatus = "CONFIRMED"
	orders[0].RosStatus = "CONFIRMED"
	if err := s.UpsertOrders(ctx, orders[:1]); err != nil {
		t.Fatalf("UpsertOrders (update): %v", err)
	}

	got, err := s.GetOrderByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetOrderByID: %v", err)
	}
	if got == nil {
		t.Fatal("order 1 missing after upsert")
	}
	if got.Status != model.OrderStatusCompleted || got.RosStatus != "CONFIRMED" {
		t.Fatalf("order not updated: %+v", got)
	}
}

func TestGetOrderByIDMissing(t *testing.T) {
	s := testutil.NewTestStore(t)

	got, err := s.GetOrderByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetOrderByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for uncached order, got %+v", got)
	}
}

func TestFilterByStatusAndQuery(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.UpsertOrders(ctx, sampleOrders(now)); err != nil {
		t.Fatalf("UpsertOrders: %v", err)
	}

	completed := model.OrderStatusCompleted
	orders, err := s.GetOrders(ctx, store.OrderFilter{Status: &completed})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 2 {
		t.Fatalf("status filter returned %+v", orders)
	}

	q := "Galle"
	orders, err = s.GetOrders(ctx, store.OrderFilter{Query: &q})
	if err != nil {
		t.Fatalf("GetOrders (query): %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 1 {
		t.Fatalf("query filter returned %+v", orders)
	}
}

func TestDeleteOrdersNotIn(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.UpsertOrders(ctx, sampleOrders(now)); err != nil {
		t.Fatalf("UpsertOrders: %v", err)
	}

	if err := s.DeleteOrdersNotIn(ctx, []int64{2}); err != nil {
		t.Fatalf("DeleteOrdersNotIn: %v", err)
	}

	orders, err := s.GetOrders(ctx, store.OrderFilter{})
	if err != nil {
		t.Fatalf("GetOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 2 {
		t.Fatalf("expected only order 2 to survive, got %+v", orders)
	}

	if err := s.DeleteOrdersNotIn(ctx, nil); err != nil {
		t.Fatalf("DeleteOrdersNotIn (clear): %v", err)
	}
	orders, _ = s.GetOrders(ctx, store.OrderFilter{})
	if len(orders) != 0 {
		t.Fatalf("expected empty cache, got %+v", orders)
	}
}
