package queues

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/vidmerge/vidmerge-bot/logging"
)

type MergeCompleteMessage struct {
	TaskID     string `json:"task_id"`
	UserID     int64  `json:"user_id"`
	RemoteID   string `json:"remote_id"`
	OutputName string `json:"output_name"`
}

type MergeNotify interface {
	NotifyMergeComplete(ctx context.Context, msg MergeCompleteMessage) error
}

type SQSMergeNotify struct {
	client    *sqs.Client
	queueName string
	accountID string
	region    string

	logger logging.Logger
}

func NewSQSMergeNotify(client *sqs.Client, queueName, accountID, region string, l logging.Logger) *SQSMergeNotify {
	return &SQSMergeNotify{
		client:    client,
		queueName: queueName,
		accountID: accountID,
		region:    region,
		logger:    l,
	}
}

func (q *SQSMergeNotify) NotifyMergeComplete(ctx context.Context, msg MergeCompleteMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	res, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(fmt.Sprintf("https://sqs.%s.amazonaws.com/%s/%s.fifo", q.region, q.accountID, q.queueName)),
		MessageBody: aws.String(string(body)),

		MessageGroupId:         aws.String(msg.TaskID),
		MessageDeduplicationId: aws.String(fmt.Sprintf("dedup-%s", msg.TaskID)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	q.logger.Info("merge notification sent",
		"task_id", msg.TaskID,
		"message_id", aws.ToString(res.MessageId),
	)
	return nil
}
