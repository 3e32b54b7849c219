package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	DefaultTable = "visitor_count"

	dynamoKeyAttr   = "counterid"
	dynamoCountAttr = "visitorCount"
)

// DynamoAPI is the part of *dynamodb.Client the store talks to.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

var _ Store = (*DynamoStore)(nil)

type DynamoStore struct {
	table  string
	client DynamoAPI
}

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	if table == "" {
		table = DefaultTable
	}
	return &DynamoStore{table: table, client: client}
}

func dynamoKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		dynamoKeyAttr: &types.AttributeValueMemberS{Value: id},
	}
}

func countOf(item map[string]types.AttributeValue) (Decimal, error) {
	av, ok := item[dynamoCountAttr]
	if !ok {
		return "", fmt.Errorf("attribute %s missing", dynamoCountAttr)
	}
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return "", fmt.Errorf("attribute %s: unexpected type %T", dynamoCountAttr, av)
	}
	return Decimal(n.Value), nil
}

func (s *DynamoStore) Get(ctx context.Context, id string) (Decimal, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            dynamoKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("dynamodb.GetItem: %w", err)
	}
	if len(out.Item) == 0 {
		return "", ErrNotFound
	}
	return countOf(out.Item)
}

func (s *DynamoStore) PutIfAbsent(ctx context.Context, id string, initial int64) error {
	item := dynamoKey(id)
	item[dynamoCountAttr] = &types.AttributeValueMemberN{Value: strconv.FormatInt(initial, 10)}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#k)"),
		ExpressionAttributeNames: map[string]string{
			"#k": dynamoKeyAttr,
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("dynamodb.PutItem: %w", err)
	}
	return nil
}

// Add relies on ADD creating the attribute (and the item) from zero.
func (s *DynamoStore) Add(ctx context.Context, id string, delta int64) (Decimal, error) {
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              dynamoKey(id),
		UpdateExpression: aws.String("ADD #c :inc"),
		ExpressionAttributeNames: map[string]string{
			"#c": dynamoCountAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: strconv.FormatInt(delta, 10)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return "", fmt.Errorf("dynamodb.UpdateItem: %w", err)
	}
	return countOf(out.Attributes)
}

func (s *DynamoStore) Close() error {
	return nil
}
