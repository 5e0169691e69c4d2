package checkout

import (
	"github.com/campuswear/uniform-orderflow/internal/cart"
	"github.com/campuswear/uniform-orderflow/internal/orders"
)

// Intent is the student-chosen fulfillment preference on a single-line
// "buy now" checkout. Empty means "route by stock".
type Intent string

const (
	IntentNone     Intent = ""
	IntentRegular  Intent = "regular"
	IntentPreOrder Intent = "pre-order"
)

// OrderDraft is one order to be persisted, produced by the builder and
// consumed exactly once by the sequencer. Immutable after creation.
type OrderDraft struct {
	OrderNumber string      `json:"order_number"`
	OrderID     string      `json:"order_id"`
	Type        string      `json:"type"` // orders.TypeRegular | orders.TypePreOrder
	Lines       []cart.Line `json:"lines"`
	Receipt     string      `json:"receipt"`
}

// FailedDraft pairs a draft with the error that kept it from persisting.
type FailedDraft struct {
	Draft OrderDraft
	Err   error
}

// SubmissionOutcome is the terminal artifact of a checkout attempt.
type SubmissionOutcome struct {
	Created []OrderDraft
	Failed  []FailedDraft
}

// Blocking states surfaced by the pipeline before any validation runs.
const (
	BlockedVoidLockout        = "void-lockout"
	BlockedLimitNotConfigured = "limit-not-configured"
)

// toLineItems converts cart lines into the persisted order line shape.
func toLineItems(lines []cart.Line) []orders.LineItem {
	out := make([]orders.LineItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, orders.LineItem{
			ProductName:    l.ProductName,
			Size:           l.Size,
			EducationLevel: l.EducationLevel,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
		})
	}
	return out
}
