package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/campuswear/uniform-orderflow/internal/aws"
)

// inventoryItem is the item shape in the inventory table. The admin
// inventory screens maintain it; this service only reads.
type inventoryItem struct {
	ProductKey string      `dynamodbav:"product_key"` // PK: "<product>|<education level>", lowercased
	Sizes      []SizeStock `dynamodbav:"sizes,omitempty"`
}

// DynamoSource implements Source against the inventory table.
type DynamoSource struct {
	client    aws.DynamoDBAPI
	tableName string
}

func NewDynamoSource(client aws.DynamoDBAPI, tableName string) *DynamoSource {
	return &DynamoSource{client: client, tableName: tableName}
}

// AvailableSizes fetches per-size stock for a product at an education
// level. A missing item returns an empty list and no error: the resolver
// decides what absence means per line.
func (d *DynamoSource) AvailableSizes(ctx context.Context, productName, educationLevel string) ([]SizeStock, error) {
	out, err := d.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &d.tableName,
		Key: map[string]types.AttributeValue{
			"product_key": &types.AttributeValueMemberS{Value: ProductKey(productName, educationLevel)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var item inventoryItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal inventory: %w", err)
	}
	return item.Sizes, nil
}

// ProductKey builds the inventory partition key for a product at an
// education level.
func ProductKey(productName, educationLevel string) string {
	p := strings.Join(strings.Fields(strings.ToLower(productName)), " ")
	l := strings.Join(strings.Fields(strings.ToLower(educationLevel)), " ")
	return p + "|" + l
}
