package validation

// CartLine is one requested line in a checkout or cart-validate payload.
type CartLine struct {
	ProductName    string  `json:"product_name" validate:"required"`
	Size           string  `json:"size,omitempty"` // empty for sizeless items
	EducationLevel string  `json:"education_level,omitempty"`
	Quantity       int     `json:"quantity" validate:"required,min=1"` // must be >= 1
	UnitPrice      float64 `json:"unit_price" validate:"gte=0"`        // display only
}

// CheckoutRequest is the payload for POST /checkout and POST /cart/validate.
type CheckoutRequest struct {
	StudentID string     `json:"student_id" validate:"required"`
	Lines     []CartLine `json:"lines" validate:"required,min=1,dive"` // at least one line
	// Intent forces the fulfillment route on a single-line "buy now"
	// checkout; empty means route by stock.
	Intent string `json:"intent,omitempty" validate:"omitempty,oneof=regular pre-order"`
}
