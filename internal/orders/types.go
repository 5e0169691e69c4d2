package orders

import "time"

// Order statuses
const (
	StatusPlaced  = "PLACED"
	StatusClaimed = "CLAIMED"
	StatusVoided  = "VOIDED"
)

// Order types
const (
	TypeRegular  = "REGULAR"
	TypePreOrder = "PRE-ORDER"
)

// LineItem is one persisted order line.
type LineItem struct {
	ProductName    string  `dynamodbav:"product_name" json:"product_name"`
	Size           string  `dynamodbav:"size,omitempty" json:"size,omitempty"`
	EducationLevel string  `dynamodbav:"education_level,omitempty" json:"education_level,omitempty"`
	Quantity       int     `dynamodbav:"quantity" json:"quantity"`
	UnitPrice      float64 `dynamodbav:"unit_price" json:"unit_price"`
}

// Order represents the item stored in the orders DynamoDB table.
type Order struct {
	OrderNumber   string     `dynamodbav:"order_number"` // PK; user-facing, idempotency key for creation
	OrderID       string     `dynamodbav:"order_id"`     // internal uuid
	StudentID     string     `dynamodbav:"student_id"`
	Type          string     `dynamodbav:"order_type"` // REGULAR | PRE-ORDER
	Status        string     `dynamodbav:"status"`     // PLACED | CLAIMED | VOIDED
	Lines         []LineItem `dynamodbav:"lines"`
	Receipt       string     `dynamodbav:"receipt,omitempty"` // scannable confirmation payload
	ClaimDeadline time.Time  `dynamodbav:"claim_deadline"`
	CreatedAt     time.Time  `dynamodbav:"created_at"`
	UpdatedAt     time.Time  `dynamodbav:"updated_at"`
}
