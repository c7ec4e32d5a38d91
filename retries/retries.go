package retries

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	DefaultAttempts  = 3
	DefaultBaseDelay = 100 * time.Millisecond

	HealthAttempts  = 2
	HealthBaseDelay = 50 * time.Millisecond
)

// Retry runs fn up to attempts times with doubling delay between tries.
// It gives up early when fn returns a non-retriable error or ctx is done.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error, retriable func(error) bool) error {
	var lastErr error
	delay := baseDelay

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if retriable != nil && !retriable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// IsRetriableDbError reports whether a DynamoDB error is worth another attempt.
func IsRetriableDbError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	if errors.As(err, &throughput) {
		return true
	}
	var internal *types.InternalServerError
	if errors.As(err, &internal) {
		return true
	}
	var limit *types.LimitExceededException
	if errors.As(err, &limit) {
		return true
	}
	var unavailable *types.RequestLimitExceeded
	return errors.As(err, &unavailable)
}
