package checkout

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campuswear/uniform-orderflow/internal/orders"
)

// Creator persists a single draft. Implementations must be idempotent on
// the draft's order number.
type Creator interface {
	CreateOrder(ctx context.Context, studentID string, draft OrderDraft) error
}

// Sequencer submits drafts strictly one at a time, regular before
// pre-order. Submissions are never concurrent: sequencing keeps order
// numbering and partial-failure bookkeeping simple and avoids two
// near-simultaneous writes racing on one student's quota counters.
type Sequencer struct {
	creator Creator
	log     zerolog.Logger
}

func NewSequencer(creator Creator, log zerolog.Logger) *Sequencer {
	return &Sequencer{creator: creator, log: log}
}

// Submit persists each draft and records per-draft success or failure.
// A failed draft never blocks or rolls back a sibling that succeeded.
func (s *Sequencer) Submit(ctx context.Context, studentID string, drafts []OrderDraft) SubmissionOutcome {
	ordered := make([]OrderDraft, 0, len(drafts))
	for _, d := range drafts {
		if d.Type == orders.TypeRegular {
			ordered = append(ordered, d)
		}
	}
	for _, d := range drafts {
		if d.Type != orders.TypeRegular {
			ordered = append(ordered, d)
		}
	}

	var out SubmissionOutcome
	for _, d := range ordered {
		if err := s.creator.CreateOrder(ctx, studentID, d); err != nil {
			s.log.Error().Err(err).
				Str("order_number", d.OrderNumber).
				Str("order_type", d.Type).
				Str("student_id", studentID).
				Msg("order submission failed")
			out.Failed = append(out.Failed, FailedDraft{Draft: d, Err: err})
			continue
		}
		out.Created = append(out.Created, d)
	}
	return out
}
