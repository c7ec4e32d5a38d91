// Package telegram adapts transport intents (commands, buttons, plain
// text) onto the session state machine and the merge pipeline, and renders
// pipeline status back as message edits.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vidmerge/vidmerge-bot/caching"
	"github.com/vidmerge/vidmerge-bot/config"
	apperror "github.com/vidmerge/vidmerge-bot/errors"
	"github.com/vidmerge/vidmerge-bot/logging"
	"github.com/vidmerge/vidmerge-bot/models"
	"github.com/vidmerge/vidmerge-bot/progress"
	"github.com/vidmerge/vidmerge-bot/services"
	"github.com/vidmerge/vidmerge-bot/sessions"
	"github.com/vidmerge/vidmerge-bot/store"
)

const (
	callbackMergeDone    = "merge_done"
	callbackMergeCancel  = "merge_cancel"
	callbackUpdateFolder = "update_folder"

	helpText = `Available Commands:
/start - Start the bot
/help - Show this help message
/us - Update settings (upload destination)
/merge [name] - Start merging selected videos
/tasks - Show recent merge history
/cancel - Cancel current operation`
)

type Bot struct {
	api      *API
	cfg      *config.Config
	sessions *sessions.Store
	merge    services.MergeService
	objects  store.ObjectStore
	settings store.SettingsStore
	tasks    store.TaskStore
	cache    *caching.MetadataCache
	logger   logging.Logger

	mu             sync.Mutex
	awaitingFolder map[int64]bool
}

func NewBot(
	api *API,
	cfg *config.Config,
	sessionStore *sessions.Store,
	merge services.MergeService,
	objects store.ObjectStore,
	settings store.SettingsStore,
	tasks store.TaskStore,
	cache *caching.MetadataCache,
	l logging.Logger,
) *Bot {
	return &Bot{
		api:            api,
		cfg:            cfg,
		sessions:       sessionStore,
		merge:          merge,
		objects:        objects,
		settings:       settings,
		tasks:          tasks,
		cache:          cache,
		logger:         l,
		awaitingFolder: make(map[int64]bool),
	}
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	b.logger.Info("telegram bot started", "bot_username", me.Username, "bot_id", me.ID)

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, nextOffset, err := b.api.GetUpdates(ctx, offset, b.cfg.Telegram.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Warn("telegram getUpdates failed", "error", err.Error())
			time.Sleep(1 * time.Second)
			continue
		}
		offset = nextOffset

		for _, u := range updates {
			switch {
			case u.Message != nil:
				b.handleMessage(ctx, u.Message)
			case u.CallbackQuery != nil:
				b.handleCallback(ctx, u.CallbackQuery)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	if msg.Chat == nil || msg.From == nil || msg.From.IsBot {
		return
	}
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if !b.cfg.IsAuthorized(userID) {
		b.reply(ctx, chatID, "Sorry, you're not authorized to use this bot.")
		return
	}

	text := strings.TrimSpace(msg.Text)
	cmd, args := splitCommand(text)

	switch cmd {
	case "/start":
		b.reply(ctx, chatID,
			"Hi! I'm a Video Merger Bot.\n"+
				"Send me video links from the bucket and I'll merge them for you.\n"+
				"Use /help to see available commands.")
	case "/help":
		b.reply(ctx, chatID, helpText)
	case "/us":
		b.handleSettings(ctx, chatID)
	case "/merge":
		b.handleMergeCommand(ctx, chatID, userID, args)
	case "/cancel":
		b.handleCancel(ctx, chatID, userID)
	case "/tasks":
		b.handleTasks(ctx, chatID, userID)
	default:
		if text == "" {
			return
		}
		b.handleText(ctx, chatID, userID, text)
	}
}

// handleText routes non-command text by conversation state: a pending
// destination prompt, a pending filename prompt, or a new link.
func (b *Bot) handleText(ctx context.Context, chatID, userID int64, text string) {
	b.mu.Lock()
	awaiting := b.awaitingFolder[userID]
	delete(b.awaitingFolder, userID)
	b.mu.Unlock()

	if awaiting {
		b.handleDestPrefix(ctx, chatID, userID, text)
		return
	}

	if sess, ok := b.sessions.Get(userID); ok && sess.State() == sessions.StateAwaitingFilename {
		if err := sess.SetOutputName(sanitizeFilename(text)); err != nil {
			b.reply(ctx, chatID, "Could not start the merge, please try again.")
			return
		}
		b.startMerge(ctx, chatID, userID, sess)
		return
	}

	b.handleLink(ctx, chatID, userID, text)
}

func (b *Bot) handleLink(ctx context.Context, chatID, userID int64, link string) {
	key, ok := b.objects.ValidateLink(link)
	if !ok {
		b.reply(ctx, chatID, "Please send a valid video link.")
		return
	}

	ref := b.fetchMetadata(ctx, key)
	if ref == nil {
		b.reply(ctx, chatID, "Unable to fetch file information.")
		return
	}
	if !ref.IsVideo {
		b.reply(ctx, chatID, "Please send only video file links.")
		return
	}

	sess := b.sessions.GetOrCreate(userID)
	if err := sess.AddFile(*ref); err != nil {
		switch {
		case errors.Is(err, apperror.ErrLimitExceeded):
			b.reply(ctx, chatID, fmt.Sprintf(
				"Selection limit reached: at most %d files and %s total.",
				b.cfg.Merge.MaxFiles, progress.FormatSize(b.cfg.Merge.MaxMergeSize)))
		case errors.Is(err, apperror.ErrInvalidState):
			b.reply(ctx, chatID, "A merge is already in progress. Wait for it to finish.")
		default:
			b.reply(ctx, chatID, "Could not add the file, please try again.")
		}
		return
	}

	keyboard := &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "Done", CallbackData: callbackMergeDone},
			{Text: "Cancel", CallbackData: callbackMergeCancel},
		}},
	}

	summary := fmt.Sprintf(
		"File: %s\nSize: %s\nTotal files: %d\nTotal size: %s",
		ref.DisplayName,
		progress.FormatSize(ref.SizeBytes),
		len(sess.Items()),
		progress.FormatSize(sess.TotalSize()),
	)
	if _, err := b.api.SendMessage(ctx, chatID, summary, keyboard); err != nil {
		b.logger.Warn("telegram send failed", "chat_id", chatID, "error", err.Error())
	}
}

func (b *Bot) fetchMetadata(ctx context.Context, key string) *models.FileRef {
	if ref, ok := b.cache.GetFileRef(ctx, key); ok {
		return ref
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ref, err := b.objects.FetchMetadata(ctx, key)
	if err != nil {
		b.logger.Warn("metadata lookup failed", "key", key, "error", err.Error())
		return nil
	}

	if err := b.cache.SetFileRef(ctx, key, ref); err != nil {
		b.logger.Debug("metadata cache write failed", "key", key, "error", err.Error())
	}
	return ref
}

func (b *Bot) handleSettings(ctx context.Context, chatID int64) {
	keyboard := &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "Upload Destination", CallbackData: callbackUpdateFolder},
		}},
	}
	if _, err := b.api.SendMessage(ctx, chatID, "Choose what to update:", keyboard); err != nil {
		b.logger.Warn("telegram send failed", "chat_id", chatID, "error", err.Error())
	}
}

func (b *Bot) handleDestPrefix(ctx context.Context, chatID, userID int64, prefix string) {
	err := b.settings.Set(ctx, models.UserSettings{
		UserID:     userID,
		DestPrefix: strings.TrimSpace(prefix),
	})
	if err != nil {
		b.logger.Error("settings update failed", "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, "Could not save the destination, please try again.")
		return
	}
	b.reply(ctx, chatID, "Upload destination updated.")
}

func (b *Bot) handleMergeCommand(ctx context.Context, chatID, userID int64, args string) {
	sess, ok := b.sessions.Get(userID)
	if !ok {
		b.reply(ctx, chatID, "No files selected for merging!")
		return
	}

	name := sanitizeFilename(strings.TrimSpace(args))

	var err error
	switch sess.State() {
	case sessions.StateCollecting:
		err = sess.BeginMerge(name)
	case sessions.StateAwaitingFilename:
		err = sess.SetOutputName(name)
	default:
		err = apperror.ErrInvalidState
	}

	switch {
	case err == nil:
		b.startMerge(ctx, chatID, userID, sess)
	case errors.Is(err, apperror.ErrEmptySelection):
		b.reply(ctx, chatID, "No files selected for merging!")
	case errors.Is(err, apperror.ErrInvalidState):
		b.reply(ctx, chatID, "A merge is already in progress.")
	default:
		b.reply(ctx, chatID, "Could not start the merge, please try again.")
	}
}

func (b *Bot) handleCancel(ctx context.Context, chatID, userID int64) {
	sess, ok := b.sessions.Get(userID)
	if !ok {
		b.reply(ctx, chatID, "Nothing to cancel.")
		return
	}

	if err := sess.Cancel(); err != nil {
		// No cancellation point once the run owns the session.
		b.reply(ctx, chatID, "A merge is in progress and cannot be cancelled.")
		return
	}

	b.sessions.Retire(userID)
	b.reply(ctx, chatID, "Operation cancelled!")
}

func (b *Bot) handleTasks(ctx context.Context, chatID, userID int64) {
	tasks, err := b.tasks.ListByUser(ctx, userID)
	if err != nil {
		b.logger.Warn("task history lookup failed", "user_id", userID, "error", err.Error())
		b.reply(ctx, chatID, "Could not load merge history.")
		return
	}
	if len(tasks) == 0 {
		b.reply(ctx, chatID, "No merges yet.")
		return
	}

	if len(tasks) > 5 {
		tasks = tasks[:5]
	}

	var sb strings.Builder
	sb.WriteString("Recent merges:\n")
	for _, t := range tasks {
		fmt.Fprintf(&sb, "%s - %s (%d files, %s)\n",
			t.OutputName, t.Status, t.FileCount, progress.FormatSize(t.TotalBytes))
	}
	b.reply(ctx, chatID, sb.String())
}

func (b *Bot) handleCallback(ctx context.Context, q *CallbackQuery) {
	if q.From == nil || q.Message == nil || q.Message.Chat == nil {
		return
	}
	chatID := q.Message.Chat.ID
	userID := q.From.ID

	if !b.cfg.IsAuthorized(userID) {
		_ = b.api.AnswerCallbackQuery(ctx, q.ID, "Not authorized!")
		return
	}
	_ = b.api.AnswerCallbackQuery(ctx, q.ID, "")

	switch q.Data {
	case callbackMergeDone:
		sess, ok := b.sessions.Get(userID)
		if !ok {
			b.edit(ctx, chatID, q.Message.MessageID, "No files selected!")
			return
		}
		if err := sess.MarkDone(); err != nil {
			if errors.Is(err, apperror.ErrEmptySelection) {
				b.edit(ctx, chatID, q.Message.MessageID, "No files selected!")
			} else {
				b.edit(ctx, chatID, q.Message.MessageID, "A merge is already in progress.")
			}
			return
		}
		b.edit(ctx, chatID, q.Message.MessageID, "Please send the output filename (without extension)")

	case callbackMergeCancel:
		sess, ok := b.sessions.Get(userID)
		if !ok {
			b.edit(ctx, chatID, q.Message.MessageID, "Nothing to cancel.")
			return
		}
		if err := sess.Cancel(); err != nil {
			b.edit(ctx, chatID, q.Message.MessageID, "A merge is in progress and cannot be cancelled.")
			return
		}
		b.sessions.Retire(userID)
		b.edit(ctx, chatID, q.Message.MessageID, "Operation cancelled!")

	case callbackUpdateFolder:
		b.mu.Lock()
		b.awaitingFolder[userID] = true
		b.mu.Unlock()
		b.edit(ctx, chatID, q.Message.MessageID, "Please send the destination prefix for merged uploads")
	}
}

// startMerge drives one pipeline run in the background, streaming status
// into a single edited message, and retires the session when it ends.
func (b *Bot) startMerge(ctx context.Context, chatID, userID int64, sess *sessions.Session) {
	statusID, err := b.api.SendMessage(ctx, chatID, "Starting merge process...", nil)
	if err != nil {
		b.logger.Warn("telegram send failed", "chat_id", chatID, "error", err.Error())
	}

	statusFn := func(text string) {
		if statusID == 0 {
			return
		}
		editCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.api.EditMessageText(editCtx, chatID, statusID, text); err != nil {
			b.logger.Debug("status edit failed", "chat_id", chatID, "error", err.Error())
		}
	}

	go func() {
		defer b.sessions.Retire(userID)

		result, err := b.merge.Run(context.Background(), sess, statusFn)
		if err != nil {
			statusFn("Merge failed: " + err.Error())
			return
		}

		statusFn(fmt.Sprintf(
			"Merge complete!\nFile: %s.mp4\nLink: %s",
			sess.OutputName(), result.ShareURL,
		))
	}()
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.SendMessage(ctx, chatID, text, nil); err != nil {
		b.logger.Warn("telegram send failed", "chat_id", chatID, "error", err.Error())
	}
}

func (b *Bot) edit(ctx context.Context, chatID, messageID int64, text string) {
	if err := b.api.EditMessageText(ctx, chatID, messageID, text); err != nil {
		b.logger.Warn("telegram edit failed", "chat_id", chatID, "error", err.Error())
	}
}

// splitCommand splits "/merge@bot name" into "/merge" and "name".
func splitCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, rest, _ := strings.Cut(text, " ")
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

// sanitizeFilename strips characters that would escape the working
// directory or break the concat list.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", "'", "_")
	return replacer.Replace(name)
}
