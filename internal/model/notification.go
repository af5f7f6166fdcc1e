package model

import "time"

// NotificationType classifies the order-status transition a notification
// reports. The set is closed and matches the backend notification service.
type NotificationType string

const (
	NotificationOrderCreated          NotificationType = "ORDER_CREATED"
	NotificationOrderConfirmed        NotificationType = "ORDER_CONFIRMED"
	NotificationOrderPickedUp         NotificationType = "ORDER_PICKED_UP"
	NotificationOrderInTransit        NotificationType = "ORDER_IN_TRANSIT"
	NotificationOrderDelivered        NotificationType = "ORDER_DELIVERED"
	NotificationOrderCancelled        NotificationType = "ORDER_CANCELLED"
	NotificationOrderDelayed          NotificationType = "ORDER_DELAYED"
	NotificationDeliveryAttemptFailed NotificationType = "DELIVERY_ATTEMPT_FAILED"
)

// OrderStatus is the shipment state an order has entered according to
// the notification reporting it.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPickedUp  OrderStatus = "PICKED_UP"
	OrderInTransit OrderStatus = "IN_TRANSIT"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Notification mirrors a single notification record owned by the backend
// notification store. The client never creates one; it only flips IsRead,
// and only from false to true.
type Notification struct {
	// ID is the unique identifier assigned by the store.
	ID int64 `json:"id"`

	// OrderID links the notification to the shipment order it reports on.
	OrderID string `json:"orderId"`

	// TrackingNumber is the shipment's public tracking reference.
	TrackingNumber string `json:"trackingNumber"`

	// CustomerName is the recipient the shipment is addressed to.
	CustomerName string `json:"customerName"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Type identifies which status transition produced this notification.
	Type NotificationType `json:"type"`

	// OrderStatus is the order's status after the transition.
	OrderStatus OrderStatus `json:"orderStatus"`

	// Timestamp is when the backend generated the notification.
	Timestamp time.Time `json:"timestamp"`

	// IsRead indicates whether the user has seen this notification.
	IsRead bool `json:"isRead"`

	// DeliveryAddress is the shipment destination, when the backend
	// includes it.
	DeliveryAddress string `json:"deliveryAddress,omitempty"`

	// ServiceType is the shipping service level, when the backend
	// includes it.
	ServiceType string `json:"serviceType,omitempty"`
}
