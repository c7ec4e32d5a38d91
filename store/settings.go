package store

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	apperror "github.com/vidmerge/vidmerge-bot/errors"
	"github.com/vidmerge/vidmerge-bot/health"
	"github.com/vidmerge/vidmerge-bot/models"
	"github.com/vidmerge/vidmerge-bot/retries"
)

type SettingsStore interface {
	Get(ctx context.Context, userID int64) (*models.UserSettings, error)
	Set(ctx context.Context, settings models.UserSettings) error

	health.ReadinessCheck
}

type DynamoDbSettingsStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoDbSettingsStore(client *dynamodb.Client, tableName string) *DynamoDbSettingsStore {
	return &DynamoDbSettingsStore{
		client:    client,
		tableName: tableName,
	}
}

func (s *DynamoDbSettingsStore) IsReady(ctx context.Context) error {
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

func (s *DynamoDbSettingsStore) Name() string {
	return "SettingsStore[users]"
}

func (s *DynamoDbSettingsStore) Get(ctx context.Context, userID int64) (*models.UserSettings, error) {
	var settings models.UserSettings

	err := retries.Retry(
		ctx,
		retries.DefaultAttempts,
		retries.DefaultBaseDelay,
		func() error {
			out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
				TableName: aws.String(s.tableName),
				Key: map[string]types.AttributeValue{
					"user_id": &types.AttributeValueMemberN{Value: strconv.FormatInt(userID, 10)},
				},
			})
			if err != nil {
				return err
			}

			if out.Item == nil {
				return apperror.ErrSettingsNotFound
			}

			return attributevalue.UnmarshalMap(out.Item, &settings)
		},
		retries.IsRetriableDbError,
	)

	if err != nil {
		return nil, err
	}

	return &settings, nil
}

func (s *DynamoDbSettingsStore) Set(ctx context.Context, settings models.UserSettings) error {
	settings.UpdatedAt = time.Now().UTC()

	item, err := attributevalue.MarshalMap(settings)
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
