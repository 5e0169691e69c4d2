package checkout

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/campuswear/uniform-orderflow/internal/cart"
	"github.com/campuswear/uniform-orderflow/internal/orders"
	"github.com/campuswear/uniform-orderflow/internal/receipt"
	"github.com/campuswear/uniform-orderflow/internal/stock"
)

// Builder partitions classified cart lines into at most one regular and
// one pre-order draft. Generation hooks are swappable for tests.
type Builder struct {
	numberFunc  func() string
	idFunc      func() string
	receiptFunc func([]orders.LineItem) string
}

func NewBuilder() *Builder {
	return &Builder{
		numberFunc:  newOrderNumber,
		idFunc:      uuid.NewString,
		receiptFunc: receipt.Generate,
	}
}

// newOrderNumber returns a fresh user-facing order number. ULIDs are
// collision-resistant and sort by creation time, which keeps the claim
// desk queue readable.
func newOrderNumber() string {
	return "UNI-" + ulid.Make().String()
}

// BuildDrafts splits lines by their stock classification and materializes
// one draft per non-empty group: zero, one, or two drafts per checkout.
// classifications must be index-aligned with lines.
//
// intent applies only when exactly one line is present (the "buy now"
// path); it replaces the computed classification for that line.
func (b *Builder) BuildDrafts(lines []cart.Line, classifications []stock.Classification, intent Intent) []OrderDraft {
	var fulfillable, backorder []cart.Line
	for i, l := range lines {
		routed := classifications[i].Fulfillable
		if len(lines) == 1 && intent != IntentNone {
			routed = intent == IntentRegular
		}
		if routed {
			fulfillable = append(fulfillable, l)
		} else {
			backorder = append(backorder, l)
		}
	}

	var drafts []OrderDraft
	if len(fulfillable) > 0 {
		drafts = append(drafts, b.draft(orders.TypeRegular, fulfillable))
	}
	if len(backorder) > 0 {
		drafts = append(drafts, b.draft(orders.TypePreOrder, backorder))
	}
	return drafts
}

func (b *Builder) draft(orderType string, lines []cart.Line) OrderDraft {
	// Receipt content derives from the draft's own line list, not the
	// original cart, so split siblings never share identical payloads.
	return OrderDraft{
		OrderNumber: b.numberFunc(),
		OrderID:     b.idFunc(),
		Type:        orderType,
		Lines:       lines,
		Receipt:     b.receiptFunc(toLineItems(lines)),
	}
}
