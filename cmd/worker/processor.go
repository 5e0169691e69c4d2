package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"github.com/campuswear/uniform-orderflow/internal/aws"
	"github.com/campuswear/uniform-orderflow/internal/orders"
	"github.com/campuswear/uniform-orderflow/internal/students"
)

// Processor voids orders whose claim deadline passed unclaimed and flags
// the student so further ordering is blocked until administrator action.
type Processor struct {
	orderStore   *orders.Store
	studentStore *students.Store
	nowFunc      func() time.Time
	log          zerolog.Logger
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, studentsTable, ordersTable string, log zerolog.Logger) *Processor {
	return &Processor{
		orderStore:   orders.NewStore(clients.DynamoDB, ordersTable),
		studentStore: students.NewStore(clients.DynamoDB, studentsTable),
		nowFunc:      time.Now,
		log:          log,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			p.log.Error().Err(err).Msg("worker error")
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg DeadlineMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	p.log.Info().
		Str("order_number", msg.OrderNumber).
		Str("student_id", msg.StudentID).
		Time("claim_deadline", msg.ClaimDeadline).
		Msg("checking claim deadline")

	order, err := p.orderStore.Get(ctx, msg.OrderNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	if order == nil {
		// Should never happen; DLQ if it does
		return fmt.Errorf("order not found: %s", msg.OrderNumber)
	}

	switch order.Status {
	case orders.StatusClaimed:
		p.log.Info().Str("order_number", msg.OrderNumber).Msg("order already claimed, nothing to do")
		return nil
	case orders.StatusVoided:
		// duplicate delivery; lockout was already set
		p.log.Info().Str("order_number", msg.OrderNumber).Msg("order already voided, swallowing duplicate")
		return nil
	}

	if p.nowFunc().Before(order.ClaimDeadline) {
		// Delivered early (redrive, manual replay). Retrying later is
		// cheaper than tracking a timer here.
		return fmt.Errorf("order %s deadline not reached yet", msg.OrderNumber)
	}

	// PLACED -> VOIDED, conditional so a concurrent claim wins.
	err = p.orderStore.UpdateStatus(ctx, msg.OrderNumber, orders.StatusPlaced, orders.StatusVoided)
	if err == orders.ErrStatusMismatch {
		o2, gerr := p.orderStore.Get(ctx, msg.OrderNumber)
		if gerr != nil || o2 == nil {
			return fmt.Errorf("order %s changed status and re-read failed: %v", msg.OrderNumber, gerr)
		}
		if o2.Status == orders.StatusClaimed {
			p.log.Info().Str("order_number", msg.OrderNumber).Msg("order claimed while voiding, leaving it")
			return nil
		}
		p.log.Info().Str("order_number", msg.OrderNumber).Str("status", o2.Status).Msg("duplicate void event")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to void order: %w", err)
	}

	if err := p.studentStore.SetVoidLockout(ctx, order.StudentID); err != nil {
		return fmt.Errorf("failed to set void lockout for student %s: %w", order.StudentID, err)
	}

	p.log.Info().
		Str("order_number", msg.OrderNumber).
		Str("student_id", order.StudentID).
		Msg("order voided and student locked out")
	return nil
}
