package checkout

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campuswear/uniform-orderflow/internal/aws"
	"github.com/campuswear/uniform-orderflow/internal/cart"
	"github.com/campuswear/uniform-orderflow/internal/entitlement"
	"github.com/campuswear/uniform-orderflow/internal/stock"
)

// SnapshotSource supplies the student's eligibility and usage, fetched
// fresh per attempt.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, studentID string) (entitlement.Eligibility, entitlement.UsageSnapshot, error)
}

// Classifier routes cart lines between immediate fulfillment and
// backorder.
type Classifier interface {
	ClassifyAll(ctx context.Context, lines []cart.Line) []stock.Classification
}

// Counter is the metrics sink; emission is best-effort.
type Counter interface {
	Count(ctx context.Context, name, reason string, value float64) error
}

// Result is what the caller renders. Exactly one of Blocked, Violations,
// or Outcome is meaningful: a blocked attempt never reaches validation, a
// cart with violations never reaches stock lookups or submission.
type Result struct {
	Blocked    string                  `json:"blocked,omitempty"` // BlockedVoidLockout | BlockedLimitNotConfigured
	Violations []entitlement.Violation `json:"violations,omitempty"`
	Outcome    *SubmissionOutcome      `json:"-"`
	ClearCart  bool                    `json:"clear_cart"`
	Message    string                  `json:"message"`
}

// Engine runs the checkout pipeline:
// guard -> gate -> validate -> classify -> build -> submit.
// Not reentrant-safe across overlapping invocations for one student; the
// handler's idempotency records keep attempts from racing.
type Engine struct {
	snapshots  SnapshotSource
	classifier Classifier
	builder    *Builder
	sequencer  *Sequencer
	metrics    Counter
	log        zerolog.Logger
}

func NewEngine(snapshots SnapshotSource, classifier Classifier, builder *Builder, sequencer *Sequencer, metrics Counter, log zerolog.Logger) *Engine {
	return &Engine{
		snapshots:  snapshots,
		classifier: classifier,
		builder:    builder,
		sequencer:  sequencer,
		metrics:    metrics,
		log:        log,
	}
}

// Validate runs the guard, gate, and cart validation without touching
// stock or persisting anything. Backs the cart screen's checkout gate.
func (e *Engine) Validate(ctx context.Context, studentID string, lines []cart.Line) (*Result, error) {
	elig, usage := e.snapshot(ctx, studentID)

	if r := e.gate(elig, usage); r != nil {
		return r, nil
	}
	if v := entitlement.ValidateCart(lines, elig, usage); len(v) > 0 {
		return &Result{Violations: v, Message: "cart has entitlement violations"}, nil
	}
	return &Result{Message: "cart is valid"}, nil
}

// Checkout runs the full pipeline for one attempt. Entitlement violations
// and blocking states come back as computed values, never as errors.
func (e *Engine) Checkout(ctx context.Context, studentID string, lines []cart.Line, intent Intent) (*Result, error) {
	elig, usage := e.snapshot(ctx, studentID)

	// Void lockout short-circuits everything: no validation, no stock
	// lookups are issued.
	if r := e.gate(elig, usage); r != nil {
		return r, nil
	}

	if v := entitlement.ValidateCart(lines, elig, usage); len(v) > 0 {
		return &Result{Violations: v, Message: "checkout blocked by entitlement violations"}, nil
	}

	classifications := e.classifier.ClassifyAll(ctx, lines)
	e.countFallbacks(ctx, classifications)

	drafts := e.builder.BuildDrafts(lines, classifications, intent)
	if len(drafts) == 0 {
		return &Result{Message: "nothing to order"}, nil
	}

	outcome := e.sequencer.Submit(ctx, studentID, drafts)
	for range outcome.Failed {
		if e.metrics != nil {
			_ = e.metrics.Count(ctx, aws.MetricSubmissionFailure, "create-order", 1)
		}
	}

	r := &Result{
		Outcome: &outcome,
		// The caller clears the checkout staging only when something
		// actually persisted.
		ClearCart: len(outcome.Created) > 0,
	}
	switch {
	case len(outcome.Failed) == 0:
		r.Message = fmt.Sprintf("%d order(s) placed", len(outcome.Created))
	case len(outcome.Created) > 0:
		r.Message = fmt.Sprintf("%d order(s) placed, %d failed; please check your orders page", len(outcome.Created), len(outcome.Failed))
	default:
		r.Message = "no orders could be placed, please try again"
	}
	return r, nil
}

// snapshot fetches eligibility and usage, failing closed: on error the
// student gets an empty entitlement surface (no overrides, no limit),
// which the gate then rejects, rather than unlimited allowance.
func (e *Engine) snapshot(ctx context.Context, studentID string) (entitlement.Eligibility, entitlement.UsageSnapshot) {
	elig, usage, err := e.snapshots.GetSnapshot(ctx, studentID)
	if err != nil {
		e.log.Error().Err(err).Str("student_id", studentID).Msg("eligibility fetch failed, failing closed")
		return entitlement.Eligibility{}, entitlement.UsageSnapshot{}
	}
	return elig, usage
}

func (e *Engine) gate(elig entitlement.Eligibility, usage entitlement.UsageSnapshot) *Result {
	switch entitlement.Gate(elig, usage) {
	case entitlement.ErrVoidLockout:
		return &Result{
			Blocked: BlockedVoidLockout,
			Message: "ordering is blocked because a previous order was voided unclaimed; please see the administrator",
		}
	case entitlement.ErrLimitNotConfigured:
		return &Result{
			Blocked: BlockedLimitNotConfigured,
			Message: "your item-type limit has not been configured yet; please ask the administrator to set it",
		}
	}
	return nil
}

func (e *Engine) countFallbacks(ctx context.Context, classifications []stock.Classification) {
	if e.metrics == nil {
		return
	}
	for _, c := range classifications {
		switch c.Reason {
		case stock.ReasonLookupFailed, stock.ReasonLookupAmbiguous:
			_ = e.metrics.Count(ctx, aws.MetricStockLookupFallback, c.Reason, 1)
		}
	}
}
