package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for CheckoutRequest: a forced
	// intent is only meaningful on the single-line "buy now" path.
	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})

	return v
}

func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)

	if req.Intent != "" && len(req.Lines) != 1 {
		sl.ReportError(req.Intent, "intent", "Intent", "intent_single_line", "intent override requires exactly one line")
	}
}
