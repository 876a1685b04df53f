package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokermesh/assistant/catalog"
	"github.com/brokermesh/assistant/core"
)

func TestPlan_DropsUnrecognizedCandidates(t *testing.T) {
	out := &core.PersonaOutput{
		Actions: []map[string]any{
			{"type": "SEND_EMAIL", "params": map[string]any{"to": "lead@example.com"}},
			{"type": "not_a_real_action"},
		},
	}

	plan := Plan(out)

	require.Len(t, plan, 1)
	assert.Equal(t, catalog.ActionSendEmail, plan[0].Type)
	assert.Equal(t, "lead@example.com", plan[0].Params["to"])
}

func TestPlan_TypeKeyPrecedence(t *testing.T) {
	// "tool" wins over "type" when both are present.
	out := &core.PersonaOutput{
		Actions: []map[string]any{
			{"tool": "create task", "type": "SEND_EMAIL"},
		},
	}

	plan := Plan(out)

	require.Len(t, plan, 1)
	assert.Equal(t, catalog.ActionCreateTask, plan[0].Type)
}

func TestPlan_SeparatorInsensitiveTypes(t *testing.T) {
	out := &core.PersonaOutput{
		Actions: []map[string]any{
			{"action_type": "create task", "summary": "follow up with buyer"},
		},
	}

	plan := Plan(out)

	require.Len(t, plan, 1)
	assert.Equal(t, catalog.ActionCreateTask, plan[0].Type)
	assert.Equal(t, "follow up with buyer", plan[0].Summary)
	assert.NotNil(t, plan[0].Params)
	assert.Empty(t, plan[0].Params)
}

func TestPlan_NestedFallbackField(t *testing.T) {
	out := &core.PersonaOutput{
		Structured: map[string]any{
			"actions": []any{
				map[string]any{"type": "FLAG_FOR_REVIEW", "parameters": map[string]any{"reason": "stale"}},
				"not an object",
			},
		},
	}

	plan := Plan(out)

	require.Len(t, plan, 1)
	assert.Equal(t, catalog.ActionFlagForReview, plan[0].Type)
	assert.Equal(t, "stale", plan[0].Params["reason"])
}

func TestPlan_PrimaryFieldPreferredOverNested(t *testing.T) {
	out := &core.PersonaOutput{
		Actions: []map[string]any{
			{"type": "ADD_NOTE", "params": map[string]any{"body": "primary"}},
		},
		Structured: map[string]any{
			"actions": []any{
				map[string]any{"type": "SEND_EMAIL"},
			},
		},
	}

	plan := Plan(out)

	require.Len(t, plan, 1)
	assert.Equal(t, catalog.ActionAddNote, plan[0].Type)
}

func TestPlan_OrderPreserved(t *testing.T) {
	out := &core.PersonaOutput{
		Actions: []map[string]any{
			{"type": "ADD_NOTE", "params": map[string]any{"body": "a"}},
			{"type": "bogus"},
			{"type": "SEND_EMAIL", "params": map[string]any{"to": "x"}},
			{"type": "CREATE_TASK", "params": map[string]any{"assignee": "kim", "title": "call"}},
		},
	}

	plan := Plan(out)

	require.Len(t, plan, 3)
	assert.Equal(t, catalog.ActionAddNote, plan[0].Type)
	assert.Equal(t, catalog.ActionSendEmail, plan[1].Type)
	assert.Equal(t, catalog.ActionCreateTask, plan[2].Type)
}

func TestPlan_NilAndEmpty(t *testing.T) {
	assert.Empty(t, Plan(nil))
	assert.Empty(t, Plan(&core.PersonaOutput{}))
}

func TestReplyText(t *testing.T) {
	text, ok := ReplyText(&core.PersonaOutput{RawText: "hello"})
	require.True(t, ok)
	assert.Equal(t, "hello", text)

	// RawText wins over structured fields.
	text, ok = ReplyText(&core.PersonaOutput{RawText: "raw", Structured: map[string]any{"reply": "structured"}})
	require.True(t, ok)
	assert.Equal(t, "raw", text)

	text, ok = ReplyText(&core.PersonaOutput{Structured: map[string]any{"response": "from response"}})
	require.True(t, ok)
	assert.Equal(t, "from response", text)

	_, ok = ReplyText(&core.PersonaOutput{Structured: map[string]any{"reply": ""}})
	assert.False(t, ok)

	_, ok = ReplyText(nil)
	assert.False(t, ok)
}
