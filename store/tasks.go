package store

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/vidmerge/vidmerge-bot/health"
	"github.com/vidmerge/vidmerge-bot/models"
	"github.com/vidmerge/vidmerge-bot/retries"
)

type TaskStore interface {
	Save(ctx context.Context, task models.MergeTask) error
	ListByUser(ctx context.Context, userID int64) ([]models.MergeTask, error)

	health.ReadinessCheck
}

type DynamoDbTaskStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoDbTaskStore(client *dynamodb.Client, tableName string) *DynamoDbTaskStore {
	return &DynamoDbTaskStore{
		client:    client,
		tableName: tableName,
	}
}

func (s *DynamoDbTaskStore) IsReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	return retries.Retry(
		ctx,
		retries.HealthAttempts,
		retries.HealthBaseDelay,
		func() error {
			_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
				TableName: aws.String(s.tableName),
			})

			return err
		},
		retries.IsRetriableDbError,
	)
}

func (s *DynamoDbTaskStore) Name() string {
	return "TaskStore[merges]"
}

func (s *DynamoDbTaskStore) Save(ctx context.Context, task models.MergeTask) error {
	item, err := attributevalue.MarshalMap(task)
	if err != nil {
		return err
	}

	return retries.Retry(
		ctx,
		retries.DefaultAttempts,
		retries.DefaultBaseDelay,
		func() error {
			_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
				TableName: aws.String(s.tableName),
				Item:      item,
			})
			return err
		},
		retries.IsRetriableDbError,
	)
}

func (s *DynamoDbTaskStore) ListByUser(ctx context.Context, userID int64) ([]models.MergeTask, error) {
	var tasks []models.MergeTask

	err := retries.Retry(
		ctx,
		retries.DefaultAttempts,
		retries.DefaultBaseDelay,
		func() error {
			out, err := s.client.Query(ctx, &dynamodb.QueryInput{
				TableName:              aws.String(s.tableName),
				KeyConditionExpression: aws.String("user_id = :uid"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":uid": &types.AttributeValueMemberN{Value: strconv.FormatInt(userID, 10)},
				},
				ScanIndexForward: aws.Bool(false), // newest first
			})
			if err != nil {
				return err
			}

			tasks = tasks[:0]
			return attributevalue.UnmarshalListOfMaps(out.Items, &tasks)
		},
		retries.IsRetriableDbError,
	)

	if err != nil {
		return nil, err
	}

	return tasks, nil
}
