package main

import "time"

// DeadlineMessage is the payload sent from API -> SQS -> Worker for each
// placed order. Mirrors checkout.DeadlineMessage.
type DeadlineMessage struct {
	OrderNumber   string    `json:"order_number"`
	StudentID     string    `json:"student_id"`
	ClaimDeadline time.Time `json:"claim_deadline"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}
