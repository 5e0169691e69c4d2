package stock

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/campuswear/uniform-orderflow/internal/cart"
)

// SizeStock is one per-size inventory entry reported by the stock source.
type SizeStock struct {
	Size   string `json:"size" dynamodbav:"size"`
	Stock  int    `json:"stock" dynamodbav:"stock"`
	Status string `json:"status,omitempty" dynamodbav:"status,omitempty"`
}

// StatusOutOfStock is the explicit out-of-stock marker a source may set on
// an entry. Only this, combined with zero total stock, backorders a
// sizeless line.
const StatusOutOfStock = "out-of-stock"

// Source supplies per-size stock for a product at an education level.
type Source interface {
	AvailableSizes(ctx context.Context, productName, educationLevel string) ([]SizeStock, error)
}

// Classification reasons.
const (
	ReasonFoundInStock    = "found-in-stock"
	ReasonSizeNotFound    = "size-not-found"
	ReasonZeroStock       = "zero-stock"
	ReasonLookupFailed    = "lookup-failed"
	ReasonLookupAmbiguous = "lookup-ambiguous"
)

// Classification is the fulfillment routing decision for one cart line.
// Computed once per checkout attempt and never cached across attempts.
type Classification struct {
	Line        cart.Line
	Fulfillable bool
	Reason      string
}

// Resolver classifies cart lines against a stock source. Anything the
// source cannot confirm routes to backorder; the optimistic branch is
// never taken under uncertainty for sized garments.
type Resolver struct {
	source Source
	log    zerolog.Logger
}

func NewResolver(source Source, log zerolog.Logger) *Resolver {
	return &Resolver{source: source, log: log}
}

// ClassifyAll classifies every line concurrently and waits for all of
// them; results are index-aligned with lines. Individual lookups never
// fail the batch, they classify conservatively instead.
func (r *Resolver) ClassifyAll(ctx context.Context, lines []cart.Line) []Classification {
	out := make([]Classification, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lines {
		g.Go(func() error {
			out[i] = r.Classify(gctx, l)
			return nil
		})
	}
	_ = g.Wait() // goroutines only report via out
	return out
}

// Classify decides whether one line is immediately fulfillable or must
// become a backorder.
func (r *Resolver) Classify(ctx context.Context, line cart.Line) Classification {
	sizes, err := r.source.AvailableSizes(ctx, line.ProductName, line.EducationLevel)
	if err != nil {
		r.log.Warn().Err(err).
			Str("product", line.ProductName).
			Str("education_level", line.EducationLevel).
			Msg("stock lookup failed, routing line to backorder")
		return Classification{Line: line, Fulfillable: false, Reason: ReasonLookupFailed}
	}

	if !line.Sized() {
		// Sizeless items ship from pooled stock; only an explicit
		// out-of-stock report with zero total stock holds them back.
		total := 0
		explicitOut := false
		for _, s := range sizes {
			total += s.Stock
			if s.Status == StatusOutOfStock {
				explicitOut = true
			}
		}
		if explicitOut && total <= 0 {
			return Classification{Line: line, Fulfillable: false, Reason: ReasonZeroStock}
		}
		return Classification{Line: line, Fulfillable: true, Reason: ReasonFoundInStock}
	}

	want := NormalizeSize(line.Size)
	if want == "" {
		return Classification{Line: line, Fulfillable: false, Reason: ReasonLookupFailed}
	}

	var matches []SizeStock
	for _, s := range sizes {
		// Exact match on the normalized size. Substring matching is
		// disallowed: "Small" must not match "XSmall".
		if NormalizeSize(s.Size) == want {
			matches = append(matches, s)
		}
	}
	switch {
	case len(matches) == 0:
		return Classification{Line: line, Fulfillable: false, Reason: ReasonSizeNotFound}
	case len(matches) > 1:
		r.log.Warn().
			Str("product", line.ProductName).
			Str("size", line.Size).
			Int("matches", len(matches)).
			Msg("ambiguous stock entries for size, routing line to backorder")
		return Classification{Line: line, Fulfillable: false, Reason: ReasonLookupAmbiguous}
	case matches[0].Stock <= 0:
		return Classification{Line: line, Fulfillable: false, Reason: ReasonZeroStock}
	}
	return Classification{Line: line, Fulfillable: true, Reason: ReasonFoundInStock}
}

// NormalizeSize strips parenthetical qualifiers and case so that
// "Small (College)" and "small" compare equal.
func NormalizeSize(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return strings.Join(strings.Fields(strings.ToLower(b.String())), " ")
}
