package session

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokermesh/assistant/core"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "assistant.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_UpsertAndFind(t *testing.T) {
	store := newTestSQLiteStore(t)

	sess, err := store.Upsert("org-1", "user-1", "DEAL:deal-42", core.SessionFields{
		Variant:  core.VariantDeal,
		AnchorID: "deal-42",
		Title:    "Harbor St deal",
	})
	require.NoError(t, err)
	assert.Equal(t, core.VariantDeal, sess.Variant)

	again, err := store.Upsert("org-1", "user-1", "DEAL:deal-42", core.SessionFields{})
	require.NoError(t, err)
	assert.Equal(t, sess.ID, again.ID)
	assert.Equal(t, "Harbor St deal", again.Title)

	found, err := store.Find(sess.ID, "org-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "deal-42", found.AnchorID)

	_, err = store.Find(sess.ID, "org-1", "someone-else")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestSQLiteStore_ConcurrentUpsertsConvergeOnOneSession(t *testing.T) {
	store := newTestSQLiteStore(t)

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := store.Upsert("org-1", "user-1", "DEAL:deal-42", core.SessionFields{
				Variant:  core.VariantDeal,
				AnchorID: "deal-42",
			})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = sess.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i], "worker %d", i)
		assert.Equal(t, ids[0], ids[i], "worker %d", i)
	}

	sessions, err := store.List("org-1", "user-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestSQLiteStore_MessageRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	sess, err := store.Upsert("org-1", "user-1", "NONE", core.SessionFields{})
	require.NoError(t, err)

	_, err = store.AppendMessage(sess.ID, core.RoleUser, "hello", nil)
	require.NoError(t, err)

	meta := &core.MessageMetadata{
		Actions: []core.ActionSummary{{Type: "ADD_NOTE", Status: core.StatusExecuted}},
		Payload: map[string]any{"prompt": "hello"},
	}
	_, err = store.AppendMessage(sess.ID, core.RoleAssistant, "hi there", meta)
	require.NoError(t, err)

	msgs, err := store.ListMessages(sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleUser, msgs[0].Role)
	assert.Equal(t, core.RoleAssistant, msgs[1].Role)
	require.NotNil(t, msgs[1].Metadata)
	require.Len(t, msgs[1].Metadata.Actions, 1)
	assert.Equal(t, "ADD_NOTE", msgs[1].Metadata.Actions[0].Type)

	_, err = store.AppendMessage("missing", core.RoleUser, "x", nil)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestSQLiteStore_SnapshotPersists(t *testing.T) {
	store := newTestSQLiteStore(t)
	sess, err := store.Upsert("org-1", "user-1", "LISTING:l-1", core.SessionFields{
		Variant:  core.VariantListing,
		AnchorID: "l-1",
	})
	require.NoError(t, err)

	panel := &core.ContextPanel{
		Title:  "Listing: 9 Pine Ave",
		Fields: []core.PanelField{{Label: "Status", Value: "ACTIVE"}},
	}
	require.NoError(t, store.SaveSnapshot(sess.ID, panel))

	found, err := store.Find(sess.ID, "org-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, found.Snapshot)
	status, ok := found.Snapshot.Field("Status")
	require.True(t, ok)
	assert.Equal(t, "ACTIVE", status)
}

func TestSQLiteStore_TouchAndList(t *testing.T) {
	store := newTestSQLiteStore(t)
	a, err := store.Upsert("org-1", "user-1", "NONE", core.SessionFields{})
	require.NoError(t, err)
	b, err := store.Upsert("org-1", "user-1", "DEAL:d-1", core.SessionFields{Variant: core.VariantDeal, AnchorID: "d-1"})
	require.NoError(t, err)

	require.NoError(t, store.Touch(a.ID))

	sessions, err := store.List("org-1", "user-1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, a.ID, sessions[0].ID)
	assert.Equal(t, b.ID, sessions[1].ID)

	assert.ErrorIs(t, store.Touch("missing"), core.ErrSessionNotFound)
}
