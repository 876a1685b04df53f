// Package assistant provides a high-level façade over the conversation
// coordinator and its collaborator abstractions (session storage, domain
// lookups, search, timelines, personas, action execution) enabling rapid
// embedding of the conversational assistant in a host system. Most
// applications interact with this package by:
//  1. Creating an Assistant via New() with their persona runner and action
//     engine (optionally overriding the default in-memory session store)
//  2. Ensuring a session for the caller's anchored context
//  3. Sending messages and rendering the returned transcript
//
// The façade delegates orchestration to coordinator.Coordinator while
// keeping setup concise. All defaults are safe for local development and
// testing; production deployments typically supply a durable session store
// and a structured logger.
package assistant

import (
	"context"

	"github.com/brokermesh/assistant/catalog"
	"github.com/brokermesh/assistant/coordinator"
	"github.com/brokermesh/assistant/core"
	"github.com/brokermesh/assistant/logging"
	"github.com/brokermesh/assistant/session"
)

// Options configures the Assistant instance.
type Options struct {
	// SessionStore persists sessions and transcripts (defaults to an
	// in-memory store if not provided).
	SessionStore core.SessionStore

	// Directory resolves anchored business entities for context panels.
	Directory core.DomainDirectory

	// Search is the grounding search collaborator.
	Search core.SearchClient

	// Timelines is the per-entity activity-timeline collaborator.
	Timelines core.TimelineClient

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// SerializeTurns guards each session with a single-flight mutex so
	// concurrent turns cannot interleave their message appends.
	SerializeTurns bool
}

// Assistant is the high-level façade aggregating the coordinator and its
// collaborators.
type Assistant struct {
	opts  Options
	coord *coordinator.Coordinator
}

// New creates a new Assistant instance with optional overrides. Any unset
// service is initialized with a safe default.
func New(personas core.PersonaRunner, engine core.ActionEngine, optFns ...func(o *Options)) *Assistant {
	opts := Options{
		SessionStore:   session.NewInMemoryStore(),
		Logger:         logging.NoOpLogger{},
		SerializeTurns: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	coord := coordinator.New(personas, engine, func(o *coordinator.Options) {
		o.SessionStore = opts.SessionStore
		o.Directory = opts.Directory
		o.Search = opts.Search
		o.Timelines = opts.Timelines
		o.Logger = opts.Logger
		o.SerializeTurns = opts.SerializeTurns
	})

	return &Assistant{opts: opts, coord: coord}
}

// EnsureSession fetches or creates the session for an anchored context.
func (a *Assistant) EnsureSession(orgID, userID string, variant core.ContextVariant, anchorID, title string) (*core.Session, error) {
	return a.coord.EnsureSession(orgID, userID, variant, anchorID, title)
}

// ListSessions returns the caller's sessions, most recently active first.
func (a *Assistant) ListSessions(orgID, userID string) ([]*core.Session, error) {
	return a.coord.ListSessions(orgID, userID)
}

// GetSessionContext resolves the current context panel for a session.
func (a *Assistant) GetSessionContext(ctx context.Context, orgID, userID, sessionID string) (*core.ContextPanel, error) {
	return a.coord.GetSessionContext(ctx, orgID, userID, sessionID)
}

// SendMessage runs one conversation turn and returns the full ordered
// transcript.
func (a *Assistant) SendMessage(ctx context.Context, orgID, userID, sessionID, text string) ([]*core.Message, error) {
	return a.coord.SendMessage(ctx, orgID, userID, sessionID, text)
}

// Catalog returns the fixed registry of supported action types.
func (a *Assistant) Catalog() []core.ActionCatalogEntry {
	return catalog.Entries()
}
