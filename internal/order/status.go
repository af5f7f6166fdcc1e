package order

import "github.com/swiftlogistics/swifttrack/internal/model"

// Per-system statuses reported by the middleware adapters. Each order
// fans out to the contract (CMS), warehouse (WMS), and routing (ROS)
// systems; the aggregate status flips to COMPLETED only once all three
// have confirmed.
const (
	StepPending   = "PENDING"
	StepConfirmed = "CONFIRMED"
	StepFailed    = "FAILED"
)

// StatusLabel returns a human-readable label for an aggregate order
// status.
func StatusLabel(status string) string {
	switch status {
	case model.OrderStatusSubmitted:
		return "Processing"
	case model.OrderStatusCompleted:
		return "Completed"
	case model.OrderStatusFailed:
		return "Failed"
	default:
		return status
	}
}

// StepSymbol returns a single-character progress marker for a
// per-system status, used in the order list's CMS/WMS/ROS columns.
func StepSymbol(step string) string {
	switch step {
	case StepConfirmed:
		return "✓"
	case StepFailed:
		return "✗"
	case StepPending:
		return "·"
	default:
		return "?"
	}
}

// Progress counts how many of the three middleware systems have
// confirmed the order.
func Progress(o model.Order) (confirmed, total int) {
	total = 3
	for _, step := range []string{o.CmsStatus, o.WmsStatus, o.RosStatus} {
		if step == StepConfirmed {
			confirmed++
		}
	}
	return confirmed, total
}
