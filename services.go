package main

import (
	"context"
	"fmt"

	"github.com/vidmerge/vidmerge-bot/caching"
	"github.com/vidmerge/vidmerge-bot/logging"
	"github.com/vidmerge/vidmerge-bot/media"
	"github.com/vidmerge/vidmerge-bot/queues"
	"github.com/vidmerge/vidmerge-bot/services"
	"github.com/vidmerge/vidmerge-bot/sessions"
	"github.com/vidmerge/vidmerge-bot/store"
)

type Stores struct {
	objects  store.ObjectStore
	settings store.SettingsStore
	tasks    store.TaskStore

	logger logging.Logger
}

type Services struct {
	Merge       services.MergeService
	Sessions    *sessions.Store
	MergeNotify queues.MergeNotify
	Cache       *caching.MetadataCache

	Stores *Stores
	logger logging.Logger
}

type Shutdowner interface {
	Shutdown(context.Context) error
}

func BuildServices(app *App) *Services {
	objectStore := store.NewS3ObjectStore(app.S3, app.Config.AWSConfig.BucketName, app.Config.AWSConfig.Region)
	settingsStore := store.NewDynamoDbSettingsStore(app.DynamoDB, app.Config.DynamoDBConfig.SettingsTableName)
	taskStore := store.NewDynamoDbTaskStore(app.DynamoDB, app.Config.DynamoDBConfig.TasksTableName)

	var mergeNotify queues.MergeNotify
	if app.Config.ServiceConfig.MergeNotificationsQueueName != "" {
		mergeNotify = queues.NewSQSMergeNotify(
			app.Sqs,
			app.Config.ServiceConfig.MergeNotificationsQueueName,
			app.Config.AWSConfig.AccountID,
			app.Config.AWSConfig.Region,
			app.Logger,
		)
	}

	sessionStore := sessions.NewStore(sessions.Limits{
		MaxFiles:     app.Config.Merge.MaxFiles,
		MaxMergeSize: app.Config.Merge.MaxMergeSize,
	})

	mergeService := services.NewMergeServiceImpl(
		objectStore,
		media.NewFFmpeg(),
		settingsStore,
		taskStore,
		mergeNotify,
		app.Config.Merge,
		app.Logger,
	)

	cache := caching.NewMetadataCache(app.Config.RedisAddr)

	app.Logger.Info("merge services initialized successfully")

	return &Services{
		Merge:       mergeService,
		Sessions:    sessionStore,
		MergeNotify: mergeNotify,
		Cache:       cache,

		Stores: &Stores{
			objects:  objectStore,
			settings: settingsStore,
			tasks:    taskStore,
			logger:   app.Logger,
		},
		logger: app.Logger,
	}
}

func (s *Services) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down services")

	if err := s.Cache.Close(); err != nil {
		s.logger.Error("cache shutdown failed", "err", err.Error())
	}

	if s.Stores != nil {
		if err := s.Stores.Shutdown(ctx); err != nil {
			s.logger.Error("stores shutdown failed", "err", err.Error())
		}
	}

	s.logger.Info("services shutdown complete")
	return nil
}

func (s *Stores) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down stores")

	shutdownIfPossible := func(name string, v any) {
		if sh, ok := v.(Shutdowner); ok {
			if err := sh.Shutdown(ctx); err != nil {
				s.logger.Error(fmt.Sprintf("%s store shutdown failed", name), "err", err.Error())
			}
		}
	}

	shutdownIfPossible("objects", s.objects)
	shutdownIfPossible("settings", s.settings)
	shutdownIfPossible("tasks", s.tasks)

	s.logger.Info("stores shutdown complete")
	return nil
}
