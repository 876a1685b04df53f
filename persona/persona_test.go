package persona

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokermesh/assistant/core"
	"github.com/brokermesh/assistant/planner"
)

func TestDecodeOutput_PlainText(t *testing.T) {
	out := DecodeOutput("The buyer signed yesterday.")

	assert.Equal(t, "The buyer signed yesterday.", out.RawText)
	assert.Nil(t, out.Structured)
	assert.Empty(t, out.Actions)
}

func TestDecodeOutput_MalformedJSONKeptVerbatim(t *testing.T) {
	out := DecodeOutput(`{"reply": "truncated`)

	assert.Equal(t, `{"reply": "truncated`, out.RawText)
	assert.Nil(t, out.Structured)
}

func TestDecodeOutput_JSONEnvelope(t *testing.T) {
	out := DecodeOutput(`{
		"reply": "The buyer signed yesterday.",
		"actions": [{"type": "ADD_NOTE", "params": {"body": "signed"}}]
	}`)

	assert.Empty(t, out.RawText)
	require.NotNil(t, out.Structured)
	assert.Equal(t, "The buyer signed yesterday.", out.Structured["reply"])
	require.Len(t, out.Actions, 1)
	assert.Equal(t, "ADD_NOTE", out.Actions[0]["type"])
}

func TestDecodeOutput_JSONEnvelopeReplyReachesTranscript(t *testing.T) {
	out := DecodeOutput(`{"reply": "The buyer signed yesterday.", "actions": []}`)

	reply, ok := planner.ReplyText(out)
	require.True(t, ok)
	assert.Equal(t, "The buyer signed yesterday.", reply)
}

func TestDecodeOutput_LiftsOnlyObjectActions(t *testing.T) {
	out := DecodeOutput(`{"reply": "ok", "actions": [{"type": "ADD_NOTE"}, "junk", 7]}`)

	require.Len(t, out.Actions, 1)
	assert.Equal(t, "ADD_NOTE", out.Actions[0]["type"])
}

func TestMock_RecordsCallsAndCannedOutputs(t *testing.T) {
	m := NewMock()
	m.SetOutput(core.PersonaDealCoordinator, &core.PersonaOutput{RawText: "risk: appraisal pending"})

	out, err := m.Run(context.Background(), core.PersonaDealCoordinator, core.PersonaInput{AnchorID: "deal-1"})
	require.NoError(t, err)
	assert.Equal(t, "risk: appraisal pending", out.RawText)

	out, err = m.Run(context.Background(), core.PersonaNurtureDraft, core.PersonaInput{})
	require.NoError(t, err)
	assert.Contains(t, out.RawText, string(core.PersonaNurtureDraft))

	assert.Len(t, m.Calls(), 2)
	require.Len(t, m.CallsFor(core.PersonaDealCoordinator), 1)
	assert.Equal(t, "deal-1", m.CallsFor(core.PersonaDealCoordinator)[0].Input.AnchorID)
}
