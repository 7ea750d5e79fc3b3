package archiver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tootarchive/pkg/logger"
	"tootarchive/pkg/store"
)

func newTestArchiver(t *testing.T) (*Archiver, *store.Store, *logger.TestLogger) {
	t.Helper()
	log := logger.NewTestLogger()
	st, err := store.Open(t.TempDir(), "example.social", log)
	require.NoError(t, err)
	return New(st, log), st, log
}

func TestArchiveStatus(t *testing.T) {
	status := json.RawMessage(`{
		"id": "111",
		"created_at": "2024-01-15T08:30:00.000Z",
		"content": "hello fediverse",
		"account": {"id": "7", "acct": "alice@example.social"}
	}`)

	t.Run("PersistsUnderDateAndID", func(t *testing.T) {
		a, st, _ := newTestArchiver(t)
		require.NoError(t, a.Status(status))

		var got map[string]interface{}
		found, err := st.Get("status/2024-01-15/111", &got)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "hello fediverse", got["content"])
	})

	t.Run("ForwardsEmbeddedAccount", func(t *testing.T) {
		a, st, _ := newTestArchiver(t)
		require.NoError(t, a.Status(status))

		var got map[string]interface{}
		found, err := st.Get("account/7", &got)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "alice@example.social", got["acct"])
	})

	t.Run("Idempotent", func(t *testing.T) {
		a, st, _ := newTestArchiver(t)
		require.NoError(t, a.Status(status))
		require.NoError(t, a.Status(status))

		var got map[string]interface{}
		found, err := st.Get("status/2024-01-15/111", &got)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "111", got["id"])
	})

	t.Run("NumericID", func(t *testing.T) {
		a, st, _ := newTestArchiver(t)
		err := a.Status(json.RawMessage(`{"id": 222, "created_at": "2023-06-01T00:00:00Z"}`))
		require.NoError(t, err)

		found, err := st.Get("status/2023-06-01/222", nil)
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("MissingIDWarnsOnce", func(t *testing.T) {
		a, st, log := newTestArchiver(t)
		err := a.Status(json.RawMessage(`{"created_at": "2024-01-15T08:30:00Z", "content": "orphan"}`))
		require.NoError(t, err)

		assert.Len(t, log.MessagesAtLevel("WARN"), 1)
		found, err := st.Get("status/2024-01-15/", nil)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("MissingCreatedAtWarns", func(t *testing.T) {
		a, _, log := newTestArchiver(t)
		require.NoError(t, a.Status(json.RawMessage(`{"id": "333"}`)))
		assert.Len(t, log.MessagesAtLevel("WARN"), 1)
	})

	t.Run("AbsentIsNoOp", func(t *testing.T) {
		a, _, log := newTestArchiver(t)
		require.NoError(t, a.Status(nil))
		require.NoError(t, a.Status(json.RawMessage(`null`)))
		assert.Empty(t, log.MessagesAtLevel("WARN"))
	})
}

func TestArchiveAccount(t *testing.T) {
	t.Run("LastWriteWins", func(t *testing.T) {
		a, st, _ := newTestArchiver(t)
		require.NoError(t, a.Account(json.RawMessage(`{"id": "7", "display_name": "Alice"}`)))
		require.NoError(t, a.Account(json.RawMessage(`{"id": "7", "display_name": "Alice B."}`)))

		var got map[string]interface{}
		found, err := st.Get("account/7", &got)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Alice B.", got["display_name"])
	})

	t.Run("MissingIDWarns", func(t *testing.T) {
		a, _, log := newTestArchiver(t)
		require.NoError(t, a.Account(json.RawMessage(`{"display_name": "nobody"}`)))
		assert.Len(t, log.MessagesAtLevel("WARN"), 1)
	})

	t.Run("AbsentIsNoOp", func(t *testing.T) {
		a, _, log := newTestArchiver(t)
		require.NoError(t, a.Account(nil))
		assert.Empty(t, log.MessagesAtLevel("WARN"))
	})
}
