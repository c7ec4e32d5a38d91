package merges

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidmerge/vidmerge-bot/models"
	"github.com/vidmerge/vidmerge-bot/sessions"
)

type stubTaskStore struct {
	tasks []models.MergeTask
	err   error
}

func (s *stubTaskStore) Save(ctx context.Context, task models.MergeTask) error { return nil }

func (s *stubTaskStore) ListByUser(ctx context.Context, userID int64) ([]models.MergeTask, error) {
	return s.tasks, s.err
}

func (s *stubTaskStore) IsReady(ctx context.Context) error { return nil }
func (s *stubTaskStore) Name() string                      { return "TaskStore[stub]" }

func newTestRouter(sessionStore *sessions.Store, tasks *stubTaskStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMergesHandler(sessionStore, tasks)
	r.GET("/merges/:userId/session", h.GetSession)
	r.GET("/merges/:userId/tasks", h.ListTasks)
	return r
}

func TestGetSession(t *testing.T) {
	store := sessions.NewStore(sessions.Limits{MaxFiles: 10, MaxMergeSize: 1 << 30})
	sess := store.GetOrCreate(42)
	require.NoError(t, sess.AddFile(models.FileRef{
		RemoteID:    "videos/a.mp4",
		DisplayName: "a.mp4",
		SizeBytes:   1024,
		IsVideo:     true,
	}))

	r := newTestRouter(store, &stubTaskStore{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/merges/42/session", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.UserId)
	assert.Equal(t, "collecting", resp.State)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "a.mp4", resp.Files[0].Name)
	assert.Equal(t, "1.00 KB", resp.TotalSize)
}

func TestGetSessionNotFound(t *testing.T) {
	store := sessions.NewStore(sessions.Limits{MaxFiles: 10, MaxMergeSize: 1 << 30})

	r := newTestRouter(store, &stubTaskStore{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/merges/42/session", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSessionBadUserID(t *testing.T) {
	store := sessions.NewStore(sessions.Limits{MaxFiles: 10, MaxMergeSize: 1 << 30})

	r := newTestRouter(store, &stubTaskStore{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/merges/abc/session", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTasks(t *testing.T) {
	store := sessions.NewStore(sessions.Limits{MaxFiles: 10, MaxMergeSize: 1 << 30})
	tasks := &stubTaskStore{tasks: []models.MergeTask{
		{UserID: 42, TaskID: "t1", OutputName: "trip", Status: models.TaskStatusCompleted},
	}}

	r := newTestRouter(store, tasks)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/merges/42/tasks", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp TasksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.UserId)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "trip", resp.Tasks[0].OutputName)
}

func TestListTasksFailure(t *testing.T) {
	store := sessions.NewStore(sessions.Limits{MaxFiles: 10, MaxMergeSize: 1 << 30})
	tasks := &stubTaskStore{err: errors.New("throttled")}

	r := newTestRouter(store, tasks)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/merges/42/tasks", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
