package entitlement

// StudentType distinguishes first-enrollment students from returning ones.
type StudentType string

const (
	StudentNew StudentType = "new"
	StudentOld StudentType = "old"
)

// Per-key defaults. Logo patches are issued in threes; everything else is
// single-issue unless an administrator overrides it.
const (
	defaultMax          = 1
	defaultLogoPatchMax = 3
)

// Eligibility is the administrator-configured entitlement surface for one
// student, fetched fresh per checkout attempt and never mutated here.
type Eligibility struct {
	StudentType        StudentType
	PerKeyOverride     map[Key]int // explicit 0 means "not allowed"
	TotalItemTypeLimit *int        // nil means not configured; blocks checkout
}

// UsageSnapshot is the student's order history summarized per key.
// Read-only input sourced from order records at evaluation time.
type UsageSnapshot struct {
	Claimed                     map[Key]int
	PlacedUnclaimed             map[Key]int
	DistinctTypesInPlacedOrders int
	BlockedDueToVoid            bool
}

// EffectiveMax computes how many units of key the student may hold in
// total. An explicit override wins outright, including an explicit 0.
// Without an override, returning students are blocked on every key except
// logo-patch; new students get the per-key default.
func EffectiveMax(key Key, e Eligibility) int {
	if v, ok := e.PerKeyOverride[key]; ok {
		if v < 0 {
			return 0
		}
		return v
	}
	if key == KeyLogoPatch {
		return defaultLogoPatchMax
	}
	if e.StudentType == StudentOld {
		return 0
	}
	return defaultMax
}

// Remaining is the displayable allowance left for key: effective max less
// units already claimed, clamped at zero.
func Remaining(key Key, e Eligibility, u UsageSnapshot) int {
	left := EffectiveMax(key, e) - u.Claimed[key]
	if left < 0 {
		return 0
	}
	return left
}
