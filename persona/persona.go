// Package persona implements the language-generation boundary. The
// orchestration layer talks to personas only through core.PersonaRunner;
// this package provides a deterministic Mock for tests plus shared helpers
// for provider adapters (persona/openai, persona/anthropic) that turn raw
// completion text into the loosely-typed output envelope.
package persona

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/brokermesh/assistant/catalog"
	"github.com/brokermesh/assistant/core"
)

// DefaultPrompts maps each persona key to its system instruction. Provider
// adapters use these unless overridden via their Options. The assistant
// prompt advertises the action catalog so the model plans against the real
// capability list.
var DefaultPrompts = map[core.PersonaKey]string{
	core.PersonaAssistant: "You are a real-estate brokerage assistant. Answer using the " +
		"grounding provided. When an action from the catalog below would help, " +
		"include it in a JSON \"actions\" list with its type and params.\n\n" +
		"Available actions:\n" + catalog.Describe(),
	core.PersonaDealCoordinator: "You are a deal coordinator. Given a deal and the user's " +
		"message, summarize coordination risks and next steps for that deal.",
	core.PersonaNurtureDraft: "You draft follow-up touches for prospects. Given a prospect " +
		"and the user's message, draft a short, personal follow-up.",
}

// DecodeOutput turns raw completion text into an output envelope. Text that
// parses as a JSON object is exposed as Structured, with a top-level
// "actions" array of objects lifted into Actions and RawText left empty so
// reply extraction reads the structured reply field instead of the encoded
// blob; anything else is carried verbatim in RawText.
func DecodeOutput(raw string) *core.PersonaOutput {
	out := &core.PersonaOutput{RawText: raw}
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return out
	}
	var structured map[string]any
	if err := json.Unmarshal([]byte(trimmed), &structured); err != nil {
		return out
	}
	out.RawText = ""
	out.Structured = structured
	if nested, ok := structured["actions"].([]any); ok {
		for _, item := range nested {
			if m, ok := item.(map[string]any); ok {
				out.Actions = append(out.Actions, m)
			}
		}
	}
	return out
}

// Call records one Mock invocation.
type Call struct {
	Key   core.PersonaKey
	Input core.PersonaInput
}

// Mock is a deterministic in-memory core.PersonaRunner for tests and
// examples. Canned outputs and errors are registered per persona key; every
// invocation is recorded for assertion.
type Mock struct {
	mu      sync.Mutex
	outputs map[core.PersonaKey]*core.PersonaOutput
	errs    map[core.PersonaKey]error
	calls   []Call
}

// NewMock constructs an empty Mock.
func NewMock() *Mock {
	return &Mock{
		outputs: make(map[core.PersonaKey]*core.PersonaOutput),
		errs:    make(map[core.PersonaKey]error),
	}
}

// SetOutput registers a canned output for a persona key.
func (m *Mock) SetOutput(key core.PersonaKey, out *core.PersonaOutput) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs[key] = out
}

// SetError makes runs of the given persona key fail.
func (m *Mock) SetError(key core.PersonaKey, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[key] = err
}

// Run implements core.PersonaRunner.
func (m *Mock) Run(_ context.Context, key core.PersonaKey, in core.PersonaInput) (*core.PersonaOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Key: key, Input: in})
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	if out, ok := m.outputs[key]; ok {
		return out, nil
	}
	return &core.PersonaOutput{RawText: "Mock reply from " + string(key)}, nil
}

// Calls returns a copy of the recorded invocations.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns recorded invocations of one persona key.
func (m *Mock) CallsFor(key core.PersonaKey) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Key == key {
			out = append(out, c)
		}
	}
	return out
}
