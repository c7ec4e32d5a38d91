package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPI(srv.Client(), srv.URL, "test-token")
}

func TestGetMe(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getMe", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"id": 99, "is_bot": true, "username": "vidmerge_bot"},
		})
	})

	me, err := api.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(99), me.ID)
	assert.Equal(t, "vidmerge_bot", me.Username)
}

func TestGetUpdatesAdvancesOffset(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getUpdates", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{"update_id": 10, "message": map[string]any{"message_id": 1, "text": "hi"}},
				{"update_id": 11, "message": map[string]any{"message_id": 2, "text": "there"}},
			},
		})
	})

	updates, next, err := api.GetUpdates(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(12), next)
	assert.Equal(t, "hi", updates[0].Message.Text)
}

func TestGetUpdatesEmptyKeepsOffset(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": []any{}})
	})

	updates, next, err := api.GetUpdates(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.Empty(t, updates)
	assert.Equal(t, int64(7), next)
}

func TestSendMessageReturnsID(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)

		var req sendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(123), req.ChatID)
		assert.Equal(t, "hello", req.Text)
		require.NotNil(t, req.ReplyMarkup)
		assert.Equal(t, "Done", req.ReplyMarkup.InlineKeyboard[0][0].Text)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 555},
		})
	})

	markup := &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "Done", CallbackData: "merge_done"},
		}},
	}
	id, err := api.SendMessage(context.Background(), 123, "hello", markup)
	require.NoError(t, err)
	assert.Equal(t, int64(555), id)
}

func TestSendMessageAPIFailure(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "chat not found"})
	})

	_, err := api.SendMessage(context.Background(), 123, "hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestEditMessageText(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/editMessageText", r.URL.Path)

		var req editMessageTextRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(555), req.MessageID)
		assert.Equal(t, "updated", req.Text)

		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	err := api.EditMessageText(context.Background(), 123, 555, "updated")
	require.NoError(t, err)
}
