package core

import "context"

// Action execution statuses. Engines may report additional statuses of their
// own; the merge step only supplies StatusExecuted when the engine is silent.
const (
	StatusExecuted = "executed"
	StatusFailed   = "failed"
)

// ActionCatalogEntry describes one supported action type: its canonical id,
// a human description surfaced to personas, and its required/optional
// parameter names. Entries are immutable and loaded once per process.
type ActionCatalogEntry struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Required    []string `json:"required,omitempty"`
	Optional    []string `json:"optional,omitempty"`
}

// MissingParams returns the required parameter names absent from params, in
// declaration order. Presence with a nil value still counts as missing.
func (e ActionCatalogEntry) MissingParams(params map[string]any) []string {
	var missing []string
	for _, name := range e.Required {
		if v, ok := params[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// PlannedAction is a normalized, catalog-validated instruction extracted from
// a generated reply, not yet executed. It lives only for the duration of one
// turn and is recorded solely inside the assistant message's metadata.
type PlannedAction struct {
	Type    string         `json:"type"`
	Params  map[string]any `json:"params"`
	Summary string         `json:"summary,omitempty"`
}

// ActionExecutionResult reports the outcome of one planned action. Results
// correspond position-wise to the planned actions they were submitted with.
type ActionExecutionResult struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// ActionSummary is the caller-facing merge of a planned action with its
// execution result, folded into the assistant message's metadata.
type ActionSummary struct {
	Type    string         `json:"type"`
	Params  map[string]any `json:"params"`
	Summary string         `json:"summary,omitempty"`
	Status  string         `json:"status"`
	Error   string         `json:"error,omitempty"`
}

// ActionEngine is the boundary to the external execution engine that carries
// out planned actions' side effects. The returned slice has the same length
// and order as the submitted actions.
type ActionEngine interface {
	ExecuteActions(ctx context.Context, orgID string, actions []PlannedAction, payload map[string]any) ([]ActionExecutionResult, error)
}
