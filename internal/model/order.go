package model

import "time"

// Order is a shipment order as returned by the order gateway. Orders are
// created through the gateway and progress through the middleware
// (CMS/WMS/ROS); the per-system statuses are reported alongside the
// aggregate status.
type Order struct {
	// ID is the order's unique identifier assigned by the gateway.
	ID int64 `json:"id"`

	// ClientName is the customer the shipment is for.
	ClientName string `json:"clientName"`

	// PackageDetails is the free-text description of the package contents.
	PackageDetails string `json:"packageDetails"`

	// DeliveryAddress is the shipment destination.
	DeliveryAddress string `json:"deliveryAddress"`

	// Status is the aggregate processing status: SUBMITTED, COMPLETED,
	// or FAILED.
	Status string `json:"status"`

	// CmsStatus is the contract-management system's processing status.
	CmsStatus string `json:"cmsStatus,omitempty"`

	// WmsStatus is the warehouse system's processing status.
	WmsStatus string `json:"wmsStatus,omitempty"`

	// RosStatus is the route-optimization system's processing status.
	RosStatus string `json:"rosStatus,omitempty"`

	// UserID identifies the account that created the order.
	UserID string `json:"userId"`

	// CreatedAt and UpdatedAt are gateway-side timestamps, when present.
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`

	// FetchedAt is when this client last fetched the record. It is set
	// locally and never sent to the gateway.
	FetchedAt time.Time `json:"-"`
}

// Aggregate order statuses reported by the gateway.
const (
	OrderStatusSubmitted = "SUBMITTED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusFailed    = "FAILED"
)

// OrderForm holds the user input for creating a new shipment order.
type OrderForm struct {
	ClientName      string `json:"clientName"`
	DeliveryAddress string `json:"deliveryAddress"`
	PackageDetails  string `json:"packageDetails"`
}

// DashboardStats summarizes the locally known orders for the dashboard
// view. It is derived client-side from the fetched order list.
type DashboardStats struct {
	TotalOrders     int
	SubmittedOrders int
	CompletedOrders int
	FailedOrders    int
}

// StatsFromOrders computes dashboard statistics from an order list.
func StatsFromOrders(orders []Order) DashboardStats {
	stats := DashboardStats{TotalOrders: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case OrderStatusSubmitted:
			stats.SubmittedOrders++
		case OrderStatusCompleted:
			stats.CompletedOrders++
		case OrderStatusFailed:
			stats.FailedOrders++
		}
	}
	return stats
}
