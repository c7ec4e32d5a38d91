package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
	"github.com/vidmerge/vidmerge-bot/config"
	"github.com/vidmerge/vidmerge-bot/logging"
	"github.com/vidmerge/vidmerge-bot/telegram"
	"github.com/vidmerge/vidmerge-bot/tracing"
	"go.opentelemetry.io/otel/sdk/trace"
)

const telegramAPIBaseURL = "https://api.telegram.org"

type App struct {
	Server *http.Server

	DynamoDB *dynamodb.Client
	S3       *s3.Client
	Sqs      *sqs.Client

	Config    config.Config
	AwsConfig aws.Config

	Services       *Services
	Bot            *telegram.Bot
	TracerProvider *trace.TracerProvider
	Logger         logging.Logger
}

func SetupApp() (*App, error) {
	cfg := config.LoadConfig()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if strings.EqualFold(cfg.Env, "PROD") {
		gin.SetMode(gin.ReleaseMode)
	}

	awsCfg, err := initAWS(*cfg.AWSConfig)
	if err != nil {
		return nil, err
	}

	db := initDynamo(awsCfg)
	if db == nil {
		return nil, errors.New("could not init dynamodb")
	}

	s3 := initS3(awsCfg)
	if s3 == nil {
		return nil, errors.New("could not init s3")
	}

	sqs := initSqs(awsCfg)
	if sqs == nil {
		return nil, errors.New("could not init sqs")
	}

	appLogger := logging.NewSlogLogger(logging.CreateAppLogger(cfg.Env))

	app := &App{
		DynamoDB: db,
		S3:       s3,
		Sqs:      sqs,

		Config:    cfg,
		AwsConfig: awsCfg,
		Logger:    appLogger,
	}

	if cfg.Tracing {
		tp, err := tracing.InitTracer(context.Background(), "vidmerge-bot", cfg.TracingAddr)
		if err != nil {
			app.Logger.Error("tracing start failed", "err", err.Error())
			os.Exit(1)
		}
		app.Logger.Info("tracing in progress...")

		app.TracerProvider = tp
	}

	app.Services = BuildServices(app)

	botAPI := telegram.NewAPI(
		&http.Client{Timeout: cfg.Telegram.PollTimeout + 10*time.Second},
		telegramAPIBaseURL,
		cfg.Telegram.BotToken,
	)
	app.Bot = telegram.NewBot(
		botAPI,
		&app.Config,
		app.Services.Sessions,
		app.Services.Merge,
		app.Services.Stores.objects,
		app.Services.Stores.settings,
		app.Services.Stores.tasks,
		app.Services.Cache,
		app.Logger,
	)

	return app, nil
}

func (a *App) Run(r *gin.Engine) error {
	a.Server = &http.Server{
		Addr:    a.Config.HTTPAddr,
		Handler: r,
	}

	return a.Server.ListenAndServe()
}

func initAWS(cfg config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

func initDynamo(cfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}

func initS3(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg)
}

func initSqs(cfg aws.Config) *sqs.Client {
	return sqs.NewFromConfig(cfg)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("starting graceful shutdown")

	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Logger.Error("http server shutdown failed", "err", err.Error())
		}
	}

	if a.Services != nil {
		if err := a.Services.Shutdown(ctx); err != nil {
			a.Logger.Error("services shutdown failed", "err", err.Error())
		}
	}

	if a.TracerProvider != nil {
		if err := a.TracerProvider.Shutdown(ctx); err != nil {
			a.Logger.Error("tracer shutdown failed", "err", err.Error())
		}
	}

	a.Logger.Info("graceful shutdown complete")
	return nil
}
