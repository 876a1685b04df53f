package core

import "context"

// PersonaKey names a configuration of the language-generation capability
// used for a specific purpose.
type PersonaKey string

const (
	// PersonaAssistant is the general conversational assistant persona.
	PersonaAssistant PersonaKey = "assistant"
	// PersonaDealCoordinator produces a deal-coordination opinion for a
	// specific deal surfaced by grounding.
	PersonaDealCoordinator PersonaKey = "deal-coordinator"
	// PersonaNurtureDraft drafts a follow-up touch for a prospect when the
	// user's message carries follow-up intent.
	PersonaNurtureDraft PersonaKey = "nurture-draft"
)

// PersonaInput is the normalized request envelope handed to a persona run.
// Input is intentionally loose: each persona decides what it reads from it.
type PersonaInput struct {
	OrganizationID string         `json:"organization_id"`
	UserID         string         `json:"user_id"`
	AnchorID       string         `json:"anchor_id,omitempty"`
	Input          map[string]any `json:"input,omitempty"`
}

// PersonaOutput is the loosely-typed response envelope a persona run yields.
// The capability is opaque; the orchestration layer only inspects a small
// fixed set of field names (see planner.ReplyText and planner.Plan) and
// otherwise passes the envelope through untouched.
type PersonaOutput struct {
	RawText    string           `json:"raw_text,omitempty"`
	Structured map[string]any   `json:"structured,omitempty"`
	Actions    []map[string]any `json:"actions,omitempty"`
}

// PersonaRunner is the boundary to the external language-generation
// capability. A single blocking call per invocation, no internal retry.
type PersonaRunner interface {
	Run(ctx context.Context, key PersonaKey, in PersonaInput) (*PersonaOutput, error)
}
