package db

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const DEFAULT_SENTIMENT_TABLE_NAME = "SentimentCache"

// DynamoDBAPI is the subset of *dynamodb.Client the store needs.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type cacheItem struct {
	Sentence string `dynamodbav:"sentence"`
	Value    []byte `dynamodbav:"value"`
}

// DynamoDBStore keeps one item per sentence, keyed by the "sentence" attribute.
type DynamoDBStore struct {
	client DynamoDBAPI
	table  string
}

func NewDynamoDBStore(client DynamoDBAPI, table string) *DynamoDBStore {
	if table == "" {
		table = DEFAULT_SENTIMENT_TABLE_NAME
	}
	return &DynamoDBStore{client: client, table: table}
}

func (s *DynamoDBStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"sentence": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var item cacheItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to unmarshal item: %w", err)
	}
	return item.Value, nil
}

func (s *DynamoDBStore) Set(ctx context.Context, key string, value []byte) error {
	av, err := attributevalue.MarshalMap(cacheItem{Sentence: key, Value: value})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to put item: %w", err)
	}
	return nil
}
