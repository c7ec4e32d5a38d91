package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "DEV", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10, cfg.Merge.MaxFiles)
	assert.Equal(t, uint64(2_000_000_000), cfg.Merge.MaxMergeSize)
	assert.Equal(t, 3, cfg.Merge.MaxConcurrentDownloads)
	assert.Equal(t, 30*time.Minute, cfg.Merge.StageTimeout)
	assert.Equal(t, 30*time.Second, cfg.Telegram.PollTimeout)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MAX_FILES", "5")
	t.Setenv("MAX_MERGE_SIZE", "1000000")
	t.Setenv("TELEGRAM_POLL_TIMEOUT", "10s")
	t.Setenv("AUTHORIZED_CHATS", "100 200")

	cfg := LoadConfig()

	assert.Equal(t, 5, cfg.Merge.MaxFiles)
	assert.Equal(t, uint64(1_000_000), cfg.Merge.MaxMergeSize)
	assert.Equal(t, 10*time.Second, cfg.Telegram.PollTimeout)
	assert.Equal(t, []int64{100, 200}, cfg.Telegram.AuthorizedChats)
}

func TestLoadConfigIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("MAX_FILES", "many")
	t.Setenv("AUTHORIZED_CHATS", "100 nope 200")

	cfg := LoadConfig()

	assert.Equal(t, 10, cfg.Merge.MaxFiles)
	assert.Equal(t, []int64{100, 200}, cfg.Telegram.AuthorizedChats)
}

func validConfig() Config {
	return Config{
		AWSConfig: &AWSConfig{BucketName: "my-videos"},
		Telegram:  &TelegramConfig{BotToken: "token", OwnerID: 1},
		Merge:     &MergeConfig{MaxFiles: 10, MaxConcurrentDownloads: 3},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	missingToken := validConfig()
	missingToken.Telegram.BotToken = ""
	assert.ErrorContains(t, missingToken.Validate(), "BOT_TOKEN")

	missingOwner := validConfig()
	missingOwner.Telegram.OwnerID = 0
	assert.ErrorContains(t, missingOwner.Validate(), "OWNER_ID")

	missingBucket := validConfig()
	missingBucket.AWSConfig.BucketName = ""
	assert.ErrorContains(t, missingBucket.Validate(), "AWS_BUCKET_NAME")

	badConcurrency := validConfig()
	badConcurrency.Merge.MaxConcurrentDownloads = 0
	assert.ErrorContains(t, badConcurrency.Validate(), "MAX_CONCURRENT_DOWNLOADS")
}

func TestIsAuthorized(t *testing.T) {
	cfg := Config{
		Telegram: &TelegramConfig{
			OwnerID:         1,
			AuthorizedChats: []int64{100, 200},
		},
	}

	assert.True(t, cfg.IsAuthorized(1))
	assert.True(t, cfg.IsAuthorized(100))
	assert.True(t, cfg.IsAuthorized(200))
	assert.False(t, cfg.IsAuthorized(999))
	assert.False(t, cfg.IsAuthorized(0))
}
