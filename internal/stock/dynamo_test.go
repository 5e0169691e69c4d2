package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type mockInventory struct {
	table map[string]map[string]types.AttributeValue
	err   error
}

func (m *mockInventory) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	return &dyn.PutItemOutput{}, nil
}

func (m *mockInventory) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	pk := params.Key["product_key"].(*types.AttributeValueMemberS).Value
	item, ok := m.table[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockInventory) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return &dyn.UpdateItemOutput{}, nil
}

func TestDynamoSource_AvailableSizes(t *testing.T) {
	item, err := attributevalue.MarshalMap(inventoryItem{
		ProductKey: ProductKey("Jogging Pants", "College"),
		Sizes: []SizeStock{
			{Size: "Small", Stock: 4},
			{Size: "Medium", Stock: 0, Status: StatusOutOfStock},
		},
	})
	if err != nil {
		t.Fatalf("marshal inventory: %v", err)
	}
	mock := &mockInventory{table: map[string]map[string]types.AttributeValue{
		ProductKey("Jogging Pants", "College"): item,
	}}

	src := NewDynamoSource(mock, "inventory")
	sizes, err := src.AvailableSizes(context.Background(), "Jogging Pants", "College")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sizes) != 2 {
		t.Fatalf("expected 2 size entries, got %d", len(sizes))
	}
	if sizes[0].Size != "Small" || sizes[0].Stock != 4 {
		t.Fatalf("first entry mismatch: %+v", sizes[0])
	}
	if sizes[1].Status != StatusOutOfStock {
		t.Fatalf("status not preserved: %+v", sizes[1])
	}
}

func TestDynamoSource_MissingItemIsEmptyNotError(t *testing.T) {
	src := NewDynamoSource(&mockInventory{table: map[string]map[string]types.AttributeValue{}}, "inventory")
	sizes, err := src.AvailableSizes(context.Background(), "Unknown Thing", "College")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sizes) != 0 {
		t.Fatalf("expected no sizes, got %d", len(sizes))
	}
}

func TestDynamoSource_ErrorPropagates(t *testing.T) {
	src := NewDynamoSource(&mockInventory{err: errors.New("throttled")}, "inventory")
	if _, err := src.AvailableSizes(context.Background(), "Jogging Pants", "College"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestProductKey_Normalizes(t *testing.T) {
	if ProductKey("  Jogging   Pants ", "COLLEGE") != "jogging pants|college" {
		t.Fatalf("product key not normalized: %q", ProductKey("  Jogging   Pants ", "COLLEGE"))
	}
}
