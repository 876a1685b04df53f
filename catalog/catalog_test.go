package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_CaseAndSeparatorInsensitive(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"CREATE_TASK", ActionCreateTask},
		{"create_task", ActionCreateTask},
		{"create task", ActionCreateTask},
		{"Create Task", ActionCreateTask},
		{"createtask", ActionCreateTask},
		{"create-task", ActionCreateTask},
		{"SEND_EMAIL", ActionSendEmail},
		{"send email", ActionSendEmail},
		{"  flag_for_review  ", ActionFlagForReview},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.raw)
		require.True(t, ok, "expected %q to resolve", tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalize_UnrecognizedNeverMatches(t *testing.T) {
	for _, raw := range []string{"not_a_real_action", "create", "task", "", "   "} {
		_, ok := Normalize(raw)
		assert.False(t, ok, "expected %q to miss", raw)
	}
}

func TestEntries_CopyIsImmutable(t *testing.T) {
	first := Entries()
	first[0].ID = "mutated"
	first[0].Required = nil

	again := Entries()
	assert.Equal(t, ActionCreateTask, again[0].ID)
	assert.Equal(t, []string{"assignee", "title"}, again[0].Required)
}

func TestDescribe_ListsEveryAction(t *testing.T) {
	described := Describe()
	for _, e := range Entries() {
		assert.Contains(t, described, e.ID)
		assert.Contains(t, described, e.Description)
	}
	assert.Contains(t, described, "Required: deal_id, stage.")
}

func TestLookup(t *testing.T) {
	entry, ok := Lookup(ActionCreateTask)
	require.True(t, ok)
	assert.Equal(t, []string{"assignee", "title"}, entry.Required)

	_, ok = Lookup("NOPE")
	assert.False(t, ok)

	// FLAG_FOR_REVIEW requires nothing but accepts entity references.
	entry, ok = Lookup(ActionFlagForReview)
	require.True(t, ok)
	assert.Empty(t, entry.Required)
	assert.Contains(t, entry.Optional, "deal_id")
}
