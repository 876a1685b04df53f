// Package coordinator implements the top-level conversation orchestration:
// one strictly sequential state machine per inbound message, no retries and
// no partial commit. A turn verifies the session, records the user message,
// resolves the anchored context, gathers grounding, generates a reply, plans
// and executes actions, then records the assistant message with the merged
// outcome. Collaborator failures degrade the turn (generic reply, empty
// grounding, failed action results) instead of aborting it; only an invalid
// session fails fast, before any side effect.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brokermesh/assistant/contextpanel"
	"github.com/brokermesh/assistant/core"
	"github.com/brokermesh/assistant/executor"
	"github.com/brokermesh/assistant/grounding"
	"github.com/brokermesh/assistant/logging"
	"github.com/brokermesh/assistant/planner"
	"github.com/brokermesh/assistant/session"
)

// FallbackReply is recorded when the generation capability fails or yields
// nothing usable. The turn still completes and is still persisted.
const FallbackReply = "I do not have enough context to answer that yet. " +
	"Try anchoring this conversation to a deal, listing, or prospect."

// maxDefaultTitle bounds the session title derived from the first message.
const maxDefaultTitle = 60

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// SessionStore persists sessions and transcripts.
	SessionStore core.SessionStore
	// Directory resolves anchored entities for context panels. Nil degrades
	// every anchored resolution to its snapshot/stub fallback.
	Directory core.DomainDirectory
	// Search is the grounding search collaborator. Nil degrades grounding
	// to panel + catalog only.
	Search core.SearchClient
	// Timelines is the per-entity activity collaborator.
	Timelines core.TimelineClient
	// Logger receives structured orchestration logs.
	Logger logging.Logger
	// SerializeTurns guards SendMessage with a per-session mutex so
	// concurrent turns on one session cannot interleave their appends.
	// The underlying store contract does not require this; it is an
	// explicit single-flight choice, enabled by default.
	SerializeTurns bool
}

// Coordinator orchestrates conversation turns. Public methods are safe for
// concurrent use.
type Coordinator struct {
	store     core.SessionStore
	resolver  *contextpanel.Resolver
	gatherer  *grounding.Gatherer
	executor  *executor.Executor
	personas  core.PersonaRunner
	logger    logging.Logger
	serialize bool
	locks     sessionLocks
}

// New constructs a Coordinator around the generation and execution
// collaborators, with optional overrides for storage, domain lookups and
// grounding collaborators.
func New(personas core.PersonaRunner, engine core.ActionEngine, optFns ...func(o *Options)) *Coordinator {
	opts := Options{
		SessionStore:   session.NewInMemoryStore(),
		Logger:         logging.NoOpLogger{},
		SerializeTurns: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Coordinator{
		store:     opts.SessionStore,
		resolver:  contextpanel.New(opts.Directory, func(o *contextpanel.Options) { o.Logger = opts.Logger }),
		gatherer:  grounding.New(opts.Search, opts.Timelines, personas, func(o *grounding.Options) { o.Logger = opts.Logger }),
		executor:  executor.New(engine, func(o *executor.Options) { o.Logger = opts.Logger }),
		personas:  personas,
		logger:    opts.Logger,
		serialize: opts.SerializeTurns,
	}
}

// EnsureSession fetches or creates the session for a (variant, anchor) pair,
// keyed by the deterministic context key. An anchored variant without an
// anchor id is rejected before any store access.
func (c *Coordinator) EnsureSession(orgID, userID string, variant core.ContextVariant, anchorID, title string) (*core.Session, error) {
	key, err := core.ContextKeyFor(variant, anchorID)
	if err != nil {
		return nil, err
	}
	return c.store.Upsert(orgID, userID, key, core.SessionFields{
		Title:    title,
		Variant:  variant,
		AnchorID: anchorID,
	})
}

// ListSessions returns the caller's sessions, most recently active first.
func (c *Coordinator) ListSessions(orgID, userID string) ([]*core.Session, error) {
	return c.store.List(orgID, userID)
}

// GetSessionContext resolves the current context panel for a session.
func (c *Coordinator) GetSessionContext(ctx context.Context, orgID, userID, sessionID string) (*core.ContextPanel, error) {
	sess, err := c.store.Find(sessionID, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	panel, _ := c.resolver.Resolve(ctx, orgID, sess)
	return panel, nil
}

// SendMessage runs one full conversation turn and returns the session's
// complete ordered transcript. If the session does not belong to the caller
// the turn aborts before any message is written.
func (c *Coordinator) SendMessage(ctx context.Context, orgID, userID, sessionID, text string) ([]*core.Message, error) {
	if c.serialize {
		unlock := c.locks.lock(sessionID)
		defer unlock()
	}

	// Authorize and load; fatal before any side effect.
	sess, err := c.store.Find(sessionID, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	turnID := core.NewID()
	c.logger.Debug("turn started turn_id=%s session_id=%s", turnID, sessionID)

	if _, err := c.store.AppendMessage(sessionID, core.RoleUser, text, nil); err != nil {
		return nil, fmt.Errorf("record user message: %w", err)
	}
	if sess.Title == "" {
		if _, err := c.store.Upsert(orgID, userID, sess.ContextKey, core.SessionFields{Title: defaultTitle(text)}); err != nil {
			c.logger.Warn("session title update failed: %v", err)
		}
	}

	panel, source := c.resolver.Resolve(ctx, orgID, sess)
	if source == contextpanel.SourceLive {
		if err := c.store.SaveSnapshot(sessionID, panel); err != nil {
			c.logger.Warn("snapshot save failed: %v", err)
		}
	}

	bundle := c.gatherer.Gather(ctx, orgID, userID, text, panel)

	reply, out := c.generateReply(ctx, orgID, userID, sess, text, bundle)

	plan := planner.Plan(out)
	payload := executor.BuildPayload(text, bundle.SearchResults)
	results := c.executor.Execute(ctx, orgID, plan, payload)
	merged := mergeActions(plan, results)

	meta := &core.MessageMetadata{
		Grounding: bundle,
		Actions:   merged,
		Payload:   payload,
	}
	if _, err := c.store.AppendMessage(sessionID, core.RoleAssistant, reply, meta); err != nil {
		return nil, fmt.Errorf("record assistant message: %w", err)
	}
	if err := c.store.Touch(sessionID); err != nil {
		c.logger.Warn("session touch failed: %v", err)
	}

	c.logger.Debug("turn completed turn_id=%s actions=%d", turnID, len(merged))

	return c.store.ListMessages(sessionID)
}

// generateReply invokes the assistant persona with the message and grounding
// bundle, extracting the reply text from the output envelope. A failed call
// or an envelope without usable text degrades to the fixed fallback reply.
func (c *Coordinator) generateReply(ctx context.Context, orgID, userID string, sess *core.Session, text string, bundle *core.GroundingResult) (string, *core.PersonaOutput) {
	if c.personas == nil {
		return FallbackReply, nil
	}
	started := time.Now()
	out, err := c.personas.Run(ctx, core.PersonaAssistant, core.PersonaInput{
		OrganizationID: orgID,
		UserID:         userID,
		AnchorID:       sess.AnchorID,
		Input: map[string]any{
			"message":        text,
			"grounding":      bundle,
			"action_catalog": bundle.ActionCatalog,
		},
	})
	if err != nil {
		c.logger.Warn("assistant persona failed after %s: %v", time.Since(started), err)
		return FallbackReply, nil
	}
	reply, ok := planner.ReplyText(out)
	if !ok {
		return FallbackReply, out
	}
	return reply, out
}

// mergeActions zips planned actions with their execution results into the
// caller-facing summaries. Status defaults to executed when the engine is
// silent about a slot.
func mergeActions(plan []core.PlannedAction, results []core.ActionExecutionResult) []core.ActionSummary {
	merged := make([]core.ActionSummary, len(plan))
	for i, action := range plan {
		summary := core.ActionSummary{
			Type:    action.Type,
			Params:  action.Params,
			Summary: action.Summary,
			Status:  core.StatusExecuted,
		}
		if i < len(results) {
			if results[i].Status != "" {
				summary.Status = results[i].Status
			}
			summary.Error = results[i].Error
		}
		merged[i] = summary
	}
	return merged
}

func defaultTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= maxDefaultTitle {
		return text
	}
	return string(runes[:maxDefaultTitle])
}

// sessionLocks is a keyed mutex set guarding per-session turn serialization.
// Entries are never removed; session cardinality per process is expected to
// stay small relative to turn volume.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
