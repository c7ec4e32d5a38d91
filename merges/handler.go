package merges

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperror "github.com/vidmerge/vidmerge-bot/errors"
	"github.com/vidmerge/vidmerge-bot/progress"
	"github.com/vidmerge/vidmerge-bot/sessions"
	"github.com/vidmerge/vidmerge-bot/store"
)

type MergesHandler struct {
	sessions *sessions.Store
	tasks    store.TaskStore
}

func NewMergesHandler(sessionStore *sessions.Store, tasks store.TaskStore) *MergesHandler {
	return &MergesHandler{
		sessions: sessionStore,
		tasks:    tasks,
	}
}

type HTTPError struct {
	Error string `json:"error" example:"error message"`
}

// GetSession godoc
//
//	@Summary		Get active merge session
//	@Description	Snapshot of a user's current merge session: state, selected files and totals
//	@Tags			merges
//	@Produce		json
//	@Param			userId	path		int				true	"Telegram user ID"
//	@Success		200		{object}	SessionResponse	"Active session snapshot"
//	@Failure		400		{object}	HTTPError		"Invalid user ID"
//	@Failure		404		{object}	HTTPError		"No active session"
//	@Router			/merges/{userId}/session [get]
func (h *MergesHandler) GetSession(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		apperror.BadRequestResponse(c, "invalid user ID")
		return
	}

	sess, ok := h.sessions.Get(userID)
	if !ok {
		apperror.NotFoundResponse(c, "no active session")
		return
	}

	items := sess.Items()
	files := make([]SessionFile, 0, len(items))
	for _, it := range items {
		files = append(files, SessionFile{
			Name: it.DisplayName,
			Size: progress.FormatSize(it.SizeBytes),
		})
	}

	c.JSON(http.StatusOK, SessionResponse{
		UserId:    userID,
		State:     string(sess.State()),
		Files:     files,
		TotalSize: progress.FormatSize(sess.TotalSize()),
	})
}

// ListTasks godoc
//
//	@Summary		List merge history
//	@Description	Recent merge tasks for a user, newest first
//	@Tags			merges
//	@Produce		json
//	@Param			userId	path		int				true	"Telegram user ID"
//	@Success		200		{object}	TasksResponse	"Merge history"
//	@Failure		400		{object}	HTTPError		"Invalid user ID"
//	@Failure		500		{object}	HTTPError		"History lookup failed"
//	@Router			/merges/{userId}/tasks [get]
func (h *MergesHandler) ListTasks(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		apperror.BadRequestResponse(c, "invalid user ID")
		return
	}

	tasks, err := h.tasks.ListByUser(c.Request.Context(), userID)
	if err != nil {
		apperror.InternalServerErrorResponse(c, "could not load merge history")
		return
	}

	c.JSON(http.StatusOK, TasksResponse{
		UserId: userID,
		Tasks:  tasks,
	})
}
