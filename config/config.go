package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AWSConfig struct {
	Region          string
	AccountID       string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
}

type DynamoDBConfig struct {
	SettingsTableName string
	TasksTableName    string
}

type ServiceConfig struct {
	MergeNotificationsQueueName string
}

type CorsConfig struct {
	Origins string
}

type TelegramConfig struct {
	BotToken        string
	OwnerID         int64
	AuthorizedChats []int64
	PollTimeout     time.Duration
}

type MergeConfig struct {
	DownloadDir            string
	MaxFiles               int
	MaxMergeSize           uint64
	MaxConcurrentDownloads int
	DefaultDestPrefix      string
	StageTimeout           time.Duration
}

type Config struct {
	Env         string
	HTTPAddr    string
	Tracing     bool
	TracingAddr string
	RedisAddr   string

	AWSConfig      *AWSConfig
	DynamoDBConfig *DynamoDBConfig
	ServiceConfig  *ServiceConfig
	CorsConfig     *CorsConfig
	Telegram       *TelegramConfig
	Merge          *MergeConfig
}

func LoadConfig() Config {
	return Config{
		Env:         getEnv("ENV", "DEV"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		Tracing:     getEnvBool("TRACING", false),
		TracingAddr: getEnv("TRACING_ADDR", "localhost:4317"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),

		AWSConfig: &AWSConfig{
			Region:          getEnv("AWS_REGION", "eu-north-1"),
			AccountID:       getEnv("AWS_ACCOUNT_ID", ""),
			BucketName:      getEnv("AWS_BUCKET_NAME", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		DynamoDBConfig: &DynamoDBConfig{
			SettingsTableName: getEnv("DYNAMODB_SETTINGS_TABLE", "merge_settings"),
			TasksTableName:    getEnv("DYNAMODB_TASKS_TABLE", "merge_tasks"),
		},
		ServiceConfig: &ServiceConfig{
			MergeNotificationsQueueName: getEnv("MERGE_NOTIFICATIONS_QUEUE", ""),
		},
		CorsConfig: &CorsConfig{
			Origins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Telegram: &TelegramConfig{
			BotToken:        getEnv("BOT_TOKEN", ""),
			OwnerID:         getEnvInt64("OWNER_ID", 0),
			AuthorizedChats: getEnvInt64List("AUTHORIZED_CHATS"),
			PollTimeout:     getEnvDuration("TELEGRAM_POLL_TIMEOUT", 30*time.Second),
		},
		Merge: &MergeConfig{
			DownloadDir:            getEnv("DOWNLOAD_DIR", "downloads"),
			MaxFiles:               getEnvInt("MAX_FILES", 10),
			MaxMergeSize:           getEnvUint64("MAX_MERGE_SIZE", 2_000_000_000),
			MaxConcurrentDownloads: getEnvInt("MAX_CONCURRENT_DOWNLOADS", 3),
			DefaultDestPrefix:      getEnv("DEST_PREFIX", "merged/"),
			StageTimeout:           getEnvDuration("MERGE_STAGE_TIMEOUT", 30*time.Minute),
		},
	}
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if c.Telegram.OwnerID == 0 {
		return errors.New("OWNER_ID is required")
	}
	if c.AWSConfig.BucketName == "" {
		return errors.New("AWS_BUCKET_NAME is required")
	}
	if c.Merge.MaxFiles <= 0 {
		return fmt.Errorf("MAX_FILES must be positive, got %d", c.Merge.MaxFiles)
	}
	if c.Merge.MaxConcurrentDownloads <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_DOWNLOADS must be positive, got %d", c.Merge.MaxConcurrentDownloads)
	}
	return nil
}

// IsAuthorized reports whether the given user may operate the bot.
func (c *Config) IsAuthorized(userID int64) bool {
	if userID == c.Telegram.OwnerID {
		return true
	}
	for _, id := range c.Telegram.AuthorizedChats {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvUint64(key string, fallback uint64) uint64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvInt64List(key string) []int64 {
	var out []int64
	for _, part := range strings.Fields(os.Getenv(key)) {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
