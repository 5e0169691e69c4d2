package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campuswear/uniform-orderflow/internal/aws"
	"github.com/campuswear/uniform-orderflow/internal/orders"
)

// StoreCreator persists drafts to the orders table and hands each placed
// order to the claim-deadline queue.
type StoreCreator struct {
	store       *orders.Store
	publisher   *aws.Publisher
	claimWindow time.Duration
	nowFunc     func() time.Time
	log         zerolog.Logger
}

func NewStoreCreator(store *orders.Store, publisher *aws.Publisher, claimWindow time.Duration, log zerolog.Logger) *StoreCreator {
	return &StoreCreator{
		store:       store,
		publisher:   publisher,
		claimWindow: claimWindow,
		nowFunc:     time.Now,
		log:         log,
	}
}

// DeadlineMessage is the payload sent to the claim-deadline worker.
type DeadlineMessage struct {
	OrderNumber   string    `json:"order_number"`
	StudentID     string    `json:"student_id"`
	ClaimDeadline time.Time `json:"claim_deadline"`
}

// CreateOrder persists the draft. Creation is idempotent on the order
// number: a replayed draft neither double-creates nor errors. The queue
// send is best-effort; a placed order with a missed deadline message is
// caught by the nightly sweep, so its failure must not fail the order.
func (c *StoreCreator) CreateOrder(ctx context.Context, studentID string, draft OrderDraft) error {
	now := c.nowFunc()
	order := orders.Order{
		OrderNumber:   draft.OrderNumber,
		OrderID:       draft.OrderID,
		StudentID:     studentID,
		Type:          draft.Type,
		Status:        orders.StatusPlaced,
		Lines:         toLineItems(draft.Lines),
		Receipt:       draft.Receipt,
		ClaimDeadline: now.Add(c.claimWindow),
		CreatedAt:     now,
	}

	created, err := c.store.Create(ctx, order)
	if err != nil {
		return fmt.Errorf("create order %s: %w", draft.OrderNumber, err)
	}
	if !created {
		c.log.Info().Str("order_number", draft.OrderNumber).Msg("order already exists, treating as created")
		return nil
	}

	if c.publisher != nil {
		msg := DeadlineMessage{
			OrderNumber:   order.OrderNumber,
			StudentID:     studentID,
			ClaimDeadline: order.ClaimDeadline,
		}
		body, _ := json.Marshal(msg)
		attrs := map[string]string{
			"order_number": order.OrderNumber,
			"student_id":   studentID,
		}
		if err := c.publisher.SendMessage(ctx, string(body), attrs); err != nil {
			c.log.Warn().Err(err).
				Str("order_number", order.OrderNumber).
				Msg("failed to enqueue claim-deadline message")
		}
	}
	return nil
}
