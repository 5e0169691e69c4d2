package students

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/campuswear/uniform-orderflow/internal/aws"
	"github.com/campuswear/uniform-orderflow/internal/entitlement"
)

// ErrNotFound is returned when no snapshot exists for the student.
var ErrNotFound = errors.New("student not found")

// record is the item shape in the students table. Claimed/placed counters
// and the distinct-types count are maintained by the admin flows when
// orders are claimed or voided; this service only reads them, except for
// the void-lockout flag the worker sets.
type record struct {
	StudentID                   string         `dynamodbav:"student_id"` // PK
	StudentType                 string         `dynamodbav:"student_type"`
	PerKeyOverride              map[string]int `dynamodbav:"per_key_override,omitempty"`
	TotalItemTypeLimit          *int           `dynamodbav:"total_item_type_limit,omitempty"`
	Claimed                     map[string]int `dynamodbav:"claimed,omitempty"`
	PlacedUnclaimed             map[string]int `dynamodbav:"placed_unclaimed,omitempty"`
	DistinctTypesInPlacedOrders int            `dynamodbav:"distinct_types_in_placed_orders"`
	BlockedDueToVoid            bool           `dynamodbav:"blocked_due_to_void"`
	UpdatedAt                   time.Time      `dynamodbav:"updated_at"`
}

// Store reads eligibility/usage snapshots and writes the void-lockout flag.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// GetSnapshot fetches the student's eligibility and usage in one read.
// Fetched fresh per checkout attempt; callers must not cache it.
func (s *Store) GetSnapshot(ctx context.Context, studentID string) (entitlement.Eligibility, entitlement.UsageSnapshot, error) {
	var e entitlement.Eligibility
	var u entitlement.UsageSnapshot

	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"student_id": &types.AttributeValueMemberS{Value: studentID},
		},
	})
	if err != nil {
		return e, u, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return e, u, ErrNotFound
	}

	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return e, u, fmt.Errorf("unmarshal student: %w", err)
	}

	e = entitlement.Eligibility{
		StudentType:        entitlement.StudentType(rec.StudentType),
		PerKeyOverride:     toKeyMap(rec.PerKeyOverride),
		TotalItemTypeLimit: rec.TotalItemTypeLimit,
	}
	u = entitlement.UsageSnapshot{
		Claimed:                     toKeyMap(rec.Claimed),
		PlacedUnclaimed:             toKeyMap(rec.PlacedUnclaimed),
		DistinctTypesInPlacedOrders: rec.DistinctTypesInPlacedOrders,
		BlockedDueToVoid:            rec.BlockedDueToVoid,
	}
	return e, u, nil
}

// SetVoidLockout flags the student as blocked after an order expired
// unclaimed. Only administrator action clears it, so there is no unset
// counterpart here.
func (s *Store) SetVoidLockout(ctx context.Context, studentID string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"student_id": &types.AttributeValueMemberS{Value: studentID},
		},
		UpdateExpression: awsString("SET blocked_due_to_void = :b, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":b":  &types.AttributeValueMemberBOOL{Value: true},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update item (void lockout): %w", err)
	}
	return nil
}

func toKeyMap(m map[string]int) map[entitlement.Key]int {
	if m == nil {
		return nil
	}
	out := make(map[entitlement.Key]int, len(m))
	for k, v := range m {
		out[entitlement.Key(k)] = v
	}
	return out
}

func awsString(s string) *string { return &s }
