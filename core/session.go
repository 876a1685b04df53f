package core

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned by SessionStore.Find when no session matches
// the (id, organization, user) triple. The coordinator treats it as fatal to
// the turn: nothing is written before the session is verified.
var ErrSessionNotFound = errors.New("session not found")

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks an inbound end-user message.
	RoleUser Role = "user"
	// RoleAssistant marks an outbound generated message.
	RoleAssistant Role = "assistant"
)

// Session is a conversational container tied to an organization and user,
// optionally anchored to a business entity via its ContextVariant/AnchorID
// pair. ContextKey is the deterministic upsert key derived by ContextKeyFor.
//
// Contract:
//   - An anchored variant always carries a non-empty AnchorID
//   - Snapshot holds the last successfully resolved context panel and is
//     served when the owning entity can no longer be found
//   - Updated is bumped on every completed turn.
type Session struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	UserID         string         `json:"user_id"`
	ContextKey     string         `json:"context_key"`
	Title          string         `json:"title,omitempty"`
	Variant        ContextVariant `json:"variant"`
	AnchorID       string         `json:"anchor_id,omitempty"`
	Snapshot       *ContextPanel  `json:"snapshot,omitempty"`
	Created        time.Time      `json:"created"`
	Updated        time.Time      `json:"updated"`
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Snapshot = s.Snapshot.Clone()
	return &clone
}

// Message is one entry in a session's append-only transcript. Messages are
// ordered by creation time and never mutated or deleted after the append.
type Message struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
	Created   time.Time        `json:"created"`
}

// MessageMetadata carries the structured byproducts of a turn folded into the
// assistant message: the grounding bundle that informed the reply, the merged
// action summaries, and the payload the execution engine ran with.
type MessageMetadata struct {
	Grounding *GroundingResult `json:"grounding,omitempty"`
	Actions   []ActionSummary  `json:"actions,omitempty"`
	Payload   map[string]any   `json:"payload,omitempty"`
}

// SessionFields are the mutable attributes applied on session upsert.
type SessionFields struct {
	Title    string
	Variant  ContextVariant
	AnchorID string
}

// SessionStore persists sessions and their message history. Implementations
// must preserve per-caller append order of messages and return defensive
// copies so callers cannot mutate stored state.
type SessionStore interface {
	// Find returns the session only when it belongs to the given
	// organization and user; ErrSessionNotFound otherwise.
	Find(sessionID, orgID, userID string) (*Session, error)

	// Upsert fetches or creates the session identified by
	// (orgID, userID, contextKey), applying fields on create and refreshing
	// the title on fetch when a non-empty title is supplied.
	Upsert(orgID, userID, contextKey string, fields SessionFields) (*Session, error)

	// List returns the organization/user's sessions ordered by Updated
	// descending (most recently active first).
	List(orgID, userID string) ([]*Session, error)

	// AppendMessage appends one message to the session transcript.
	AppendMessage(sessionID string, role Role, content string, meta *MessageMetadata) (*Message, error)

	// ListMessages returns the transcript ordered ascending by creation.
	ListMessages(sessionID string) ([]*Message, error)

	// Touch bumps the session's Updated timestamp.
	Touch(sessionID string) error

	// SaveSnapshot caches the last successfully resolved context panel on
	// the session for fallback rendering.
	SaveSnapshot(sessionID string, panel *ContextPanel) error
}
