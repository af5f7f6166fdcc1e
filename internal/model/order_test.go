package model

import "testing"

func TestStatsFromOrders(t *testing.T) {
	orders := []Order{
		{ID: 1, Status: OrderStatusSubmitted},
		{ID: 2, Status: OrderStatusSubmitted},
		{ID: 3, Status: OrderStatusCompleted},
		{ID: 4, Status: OrderStatusFailed},
		{ID: 5, Status: "UNKNOWN"},
	}

	stats := StatsFromOrders(orders)

	if stats.TotalOrders != 5 {
		t.Errorf("TotalOrders = %d, want 5", stats.TotalOrders)
	}
	if stats.SubmittedOrders != 2 {
		t.Errorf("SubmittedOrders = %d, want 2", stats.SubmittedOrders)
	}
	if stats.CompletedOrders != 1 {
		t.Errorf("CompletedOrders = %d, want 1", stats.CompletedOrders)
	}
	if stats.FailedOrders != 1 {
		t.Errorf("FailedOrders = %d, want 1", stats.FailedOrders)
	}
}

func TestStatsFromOrdersEmpty(t *testing.T) {
	stats := StatsFromOrders(nil)
	if stats != (DashboardStats{}) {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
