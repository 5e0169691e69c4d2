package entitlement

import (
	"errors"
	"fmt"

	"github.com/campuswear/uniform-orderflow/internal/cart"
)

// Blocking states that are not ordinary violations: a voided unclaimed
// order locks the student out entirely, and a missing slot limit is an
// administrator configuration problem, not something the student can fix.
var (
	ErrVoidLockout        = errors.New("ordering blocked: a previous order was voided unclaimed")
	ErrLimitNotConfigured = errors.New("item-type limit is not configured for this student")
)

// Violation reason codes.
const (
	ReasonClaimedMax        = "already-claimed-max"
	ReasonExceedsMax        = "exceeds-max"
	ReasonPendingUnclaimed  = "pending-unclaimed"
	ReasonSlotLimitReached  = "slot-limit-reached"
	ReasonSlotLimitExceeded = "slot-limit-exceeded"
)

// SlotLimitKey marks violations of the aggregate distinct-item-types
// quota rather than any one item's quota.
const SlotLimitKey Key = "slot-limit"

// Violation is a user-displayable explanation of one quota breach.
// Violations are computed values, never panics or errors.
type Violation struct {
	Key      Key    `json:"key"`
	ItemName string `json:"item_name,omitempty"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
}

// Gate checks the blocking states that must hold before any cart
// evaluation is meaningful. Returns ErrVoidLockout or
// ErrLimitNotConfigured, or nil when checkout may proceed to validation.
func Gate(e Eligibility, u UsageSnapshot) error {
	if u.BlockedDueToVoid {
		return ErrVoidLockout
	}
	if e.TotalItemTypeLimit == nil || *e.TotalItemTypeLimit <= 0 {
		return ErrLimitNotConfigured
	}
	return nil
}

// ValidateCart evaluates the cart against the student's entitlements and
// returns every violation found. An empty result means the cart passes;
// callers still need Gate to clear the blocking states.
//
// Per-key checks run in cart-line order; the aggregate slot-limit checks
// are appended last so violation order is deterministic.
func ValidateCart(lines []cart.Line, e Eligibility, u UsageSnapshot) []Violation {
	type keyAgg struct {
		name string // first display name seen for the key
		qty  int
	}
	var order []Key
	agg := map[Key]*keyAgg{}
	for _, l := range lines {
		k := Resolve(l.ProductName)
		if a, ok := agg[k]; ok {
			a.qty += l.Quantity
			continue
		}
		agg[k] = &keyAgg{name: l.ProductName, qty: l.Quantity}
		order = append(order, k)
	}

	var out []Violation
	for _, k := range order {
		a := agg[k]
		max := EffectiveMax(k, e)
		claimed := u.Claimed[k]

		// Hard stop: the student already holds the maximum. Takes
		// precedence over everything else for this key.
		if claimed >= max && max > 0 {
			out = append(out, Violation{
				Key:      k,
				ItemName: a.name,
				Reason:   ReasonClaimedMax,
				Message:  fmt.Sprintf("you have already claimed the maximum of %d for %s", max, a.name),
			})
			continue
		}
		if claimed+a.qty > max {
			out = append(out, Violation{
				Key:      k,
				ItemName: a.name,
				Reason:   ReasonExceedsMax,
				Message:  fmt.Sprintf("%s: %d claimed plus %d in cart exceeds the allowed %d", a.name, claimed, a.qty, max),
			})
			continue
		}
		// Single-use items may not be re-ordered while a placed order is
		// still waiting to be claimed. Multi-unit items (max > 1) are
		// deliberately exempt and may be reordered up to the max.
		if max == 1 && u.PlacedUnclaimed[k]+a.qty > max {
			out = append(out, Violation{
				Key:      k,
				ItemName: a.name,
				Reason:   ReasonPendingUnclaimed,
				Message:  fmt.Sprintf("%s is already in a placed order awaiting claim", a.name),
			})
		}
	}

	if e.TotalItemTypeLimit != nil && *e.TotalItemTypeLimit > 0 {
		limit := *e.TotalItemTypeLimit
		switch {
		case u.DistinctTypesInPlacedOrders >= limit:
			out = append(out, Violation{
				Key:     SlotLimitKey,
				Reason:  ReasonSlotLimitReached,
				Message: fmt.Sprintf("you have already reached the limit of %d item types across placed orders", limit),
			})
		default:
			slotsLeft := limit - u.DistinctTypesInPlacedOrders
			if len(order) > slotsLeft {
				out = append(out, Violation{
					Key:     SlotLimitKey,
					Reason:  ReasonSlotLimitExceeded,
					Message: fmt.Sprintf("this order has %d item types but only %d slot(s) remain", len(order), slotsLeft),
				})
			}
		}
	}

	return out
}
