package services

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidmerge/vidmerge-bot/config"
	apperror "github.com/vidmerge/vidmerge-bot/errors"
	"github.com/vidmerge/vidmerge-bot/logging"
	"github.com/vidmerge/vidmerge-bot/media"
	"github.com/vidmerge/vidmerge-bot/models"
	"github.com/vidmerge/vidmerge-bot/progress"
	"github.com/vidmerge/vidmerge-bot/queues"
	"github.com/vidmerge/vidmerge-bot/sessions"
	"github.com/vidmerge/vidmerge-bot/store"
)

type Stage string

const (
	StageDownloading Stage = "downloading"
	StageMerging     Stage = "merging"
	StageUploading   Stage = "uploading"
)

// StageError tags a collaborator failure with the pipeline stage it
// terminated. Stages are never retried.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result reports a completed pipeline run.
type Result struct {
	RemoteID string
	ShareURL string
}

// StatusFunc receives user-visible status text (progress bars, stage
// banners) for display by the transport.
type StatusFunc func(text string)

// MergeService runs the download -> concatenate -> upload pipeline for one
// session's full selection. The caller retires the session afterwards
// regardless of outcome.
type MergeService interface {
	Run(ctx context.Context, sess *sessions.Session, status StatusFunc) (*Result, error)
}

type MergeServiceImpl struct {
	objects  store.ObjectStore
	concat   media.Concatenator
	settings store.SettingsStore
	tasks    store.TaskStore
	notify   queues.MergeNotify // nil when no queue is configured

	cfg    *config.MergeConfig
	logger logging.Logger

	// Bounds concurrently active downloads across all users' pipelines.
	downloadSem chan struct{}
}

func NewMergeServiceImpl(
	objects store.ObjectStore,
	concat media.Concatenator,
	settings store.SettingsStore,
	tasks store.TaskStore,
	notify queues.MergeNotify,
	cfg *config.MergeConfig,
	l logging.Logger,
) *MergeServiceImpl {
	return &MergeServiceImpl{
		objects:     objects,
		concat:      concat,
		settings:    settings,
		tasks:       tasks,
		notify:      notify,
		cfg:         cfg,
		logger:      l,
		downloadSem: make(chan struct{}, cfg.MaxConcurrentDownloads),
	}
}

func (s *MergeServiceImpl) Run(ctx context.Context, sess *sessions.Session, status StatusFunc) (*Result, error) {
	if status == nil {
		status = func(string) {}
	}

	userID := sess.UserID()
	items := sess.Items()
	outputName := sess.OutputName()

	if len(items) == 0 {
		return nil, apperror.ErrEmptySelection
	}

	// Every local artifact created by this run. The sweep removes all of
	// them on every exit path; removal errors never mask the run's outcome.
	var localPaths []string
	defer func() {
		for _, p := range localPaths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				s.logger.Warn("cleanup failed",
					"user_id", userID,
					"path", p,
					"error", err.Error(),
				)
			}
		}
	}()

	inputs, err := s.downloadAll(ctx, userID, items, &localPaths, status)
	if err != nil {
		s.finishFailed(sess, StageDownloading, err, items, outputName)
		return nil, &StageError{Stage: StageDownloading, Err: err}
	}

	// User-scoped like the downloaded inputs, so concurrent runs choosing
	// the same output name never collide on disk.
	outputPath := filepath.Join(s.cfg.DownloadDir, fmt.Sprintf("%d_%s.mp4", userID, outputName))
	localPaths = append(localPaths, outputPath)

	if err := s.concatenate(ctx, inputs, outputPath, outputName, status); err != nil {
		s.finishFailed(sess, StageMerging, err, items, outputName)
		return nil, &StageError{Stage: StageMerging, Err: err}
	}

	if err := sess.StartUploading(); err != nil {
		s.finishFailed(sess, StageMerging, err, items, outputName)
		return nil, &StageError{Stage: StageMerging, Err: err}
	}

	// The inputs served their purpose; only the merged output remains.
	for _, p := range inputs {
		if err := os.Remove(p); err != nil {
			s.logger.Warn("input cleanup failed", "path", p, "error", err.Error())
		}
	}

	remoteID, err := s.upload(ctx, userID, outputPath, outputName, status)
	if err != nil {
		s.finishFailed(sess, StageUploading, err, items, outputName)
		return nil, &StageError{Stage: StageUploading, Err: err}
	}

	sess.Complete()

	task := s.recordTask(userID, items, outputName, remoteID, nil)
	if s.notify != nil {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.notify.NotifyMergeComplete(notifyCtx, queues.MergeCompleteMessage{
			TaskID:     task.TaskID,
			UserID:     userID,
			RemoteID:   remoteID,
			OutputName: outputName,
		}); err != nil {
			s.logger.Warn("merge notification failed", "task_id", task.TaskID, "error", err.Error())
		}
		cancel()
	}

	s.logger.Info("merge completed",
		"user_id", userID,
		"task_id", task.TaskID,
		"remote_id", remoteID,
		"file_count", len(items),
	)

	return &Result{
		RemoteID: remoteID,
		ShareURL: s.objects.ObjectURL(remoteID),
	}, nil
}

// downloadAll fetches the selection in order, strictly sequentially within
// this run. The first failure aborts the whole run: the user's intent was
// the full set, so no partial merge is attempted.
func (s *MergeServiceImpl) downloadAll(ctx context.Context, userID int64, items []models.FileRef, localPaths *[]string, status StatusFunc) ([]string, error) {
	inputs := make([]string, 0, len(items))

	for i, ref := range items {
		dest := filepath.Join(s.cfg.DownloadDir, fmt.Sprintf("%d_%02d_%s", userID, i, ref.DisplayName))
		*localPaths = append(*localPaths, dest)

		if err := s.downloadOne(ctx, ref, dest, status); err != nil {
			return nil, fmt.Errorf("download %s: %w", ref.DisplayName, err)
		}
		inputs = append(inputs, dest)
	}

	return inputs, nil
}

func (s *MergeServiceImpl) downloadOne(ctx context.Context, ref models.FileRef, dest string, status StatusFunc) error {
	select {
	case s.downloadSem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.downloadSem }()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
	defer cancel()

	tracker := progress.NewTracker()
	label := "Downloading: " + ref.DisplayName

	return s.objects.Download(ctx, ref.RemoteID, dest, func(transferred, total int64) {
		if text, ok := tracker.Sample(transferred, total, label); ok {
			status(text)
		}
	})
}

func (s *MergeServiceImpl) concatenate(ctx context.Context, inputs []string, outputPath, outputName string, status StatusFunc) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
	defer cancel()

	status("Merging: " + outputName + ".mp4")

	var lastEdit time.Time
	return s.concat.Concat(ctx, inputs, outputPath, func(outSeconds, totalSeconds float64) {
		if time.Since(lastEdit) < time.Second {
			return
		}
		lastEdit = time.Now()

		pct := outSeconds * 100 / totalSeconds
		status(fmt.Sprintf("Merging: %s.mp4\n%s %.1f%%", outputName, progress.Bar(pct), pct))
	})
}

func (s *MergeServiceImpl) upload(ctx context.Context, userID int64, outputPath, outputName string, status StatusFunc) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StageTimeout)
	defer cancel()

	key := path.Join(strings.TrimSuffix(s.destPrefix(ctx, userID), "/"), outputName+".mp4")

	tracker := progress.NewTracker()
	label := "Uploading: " + outputName + ".mp4"

	return s.objects.Upload(ctx, outputPath, key, func(transferred, total int64) {
		if text, ok := tracker.Sample(transferred, total, label); ok {
			status(text)
		}
	})
}

// destPrefix resolves the user's destination, falling back to the
// configured default when none is stored.
func (s *MergeServiceImpl) destPrefix(ctx context.Context, userID int64) string {
	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		if err != apperror.ErrSettingsNotFound {
			s.logger.Warn("settings lookup failed", "user_id", userID, "error", err.Error())
		}
		return s.cfg.DefaultDestPrefix
	}
	if settings.DestPrefix == "" {
		return s.cfg.DefaultDestPrefix
	}
	return settings.DestPrefix
}

func (s *MergeServiceImpl) finishFailed(sess *sessions.Session, stage Stage, cause error, items []models.FileRef, outputName string) {
	sess.Fail()
	s.recordTask(sess.UserID(), items, outputName, "", &StageError{Stage: stage, Err: cause})
	s.logger.Error("merge failed",
		"user_id", sess.UserID(),
		"stage", string(stage),
		"error", cause.Error(),
	)
}

func (s *MergeServiceImpl) recordTask(userID int64, items []models.FileRef, outputName, remoteID string, runErr error) models.MergeTask {
	var totalBytes uint64
	for _, ref := range items {
		totalBytes += ref.SizeBytes
	}

	task := models.MergeTask{
		UserID:     userID,
		TaskID:     newTaskID(),
		OutputName: outputName,
		RemoteID:   remoteID,
		Status:     models.TaskStatusCompleted,
		FileCount:  len(items),
		TotalBytes: totalBytes,
		CreatedAt:  time.Now().UTC(),
	}
	if runErr != nil {
		task.Status = models.TaskStatusFailed
		task.Error = runErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.tasks.Save(ctx, task); err != nil {
		s.logger.Warn("task record failed", "task_id", task.TaskID, "error", err.Error())
	}

	return task
}

// newTaskID returns a time-ordered UUID so task history sorts naturally.
func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
