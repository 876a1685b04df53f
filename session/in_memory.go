package session

import (
	"sort"
	"sync"
	"time"

	"github.com/brokermesh/assistant/core"
)

// InMemoryStore is a volatile core.SessionStore implementation keeping
// sessions and transcripts in process-local maps. It is safe for concurrent
// access and best suited for tests or ephemeral demo setups. Every returned
// session and message is cloned to prevent external mutation of internal
// state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session   // by session id
	byKey    map[string]string          // owner-scoped context key -> session id
	messages map[string][]*core.Message // by session id, append order
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*core.Session),
		byKey:    make(map[string]string),
		messages: make(map[string][]*core.Message),
	}
}

func ownerKey(orgID, userID, contextKey string) string {
	return orgID + "\x00" + userID + "\x00" + contextKey
}

// Find returns the session only when it belongs to the given organization and
// user.
func (s *InMemoryStore) Find(sessionID, orgID, userID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok || sess.OrganizationID != orgID || sess.UserID != userID {
		return nil, core.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Upsert fetches or creates the session keyed by (orgID, userID, contextKey).
func (s *InMemoryStore) Upsert(orgID, userID, contextKey string, fields core.SessionFields) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey[ownerKey(orgID, userID, contextKey)]; ok {
		sess := s.sessions[id]
		if fields.Title != "" {
			sess.Title = fields.Title
			sess.Updated = time.Now()
		}
		return sess.Clone(), nil
	}

	now := time.Now()
	sess := &core.Session{
		ID:             core.NewID(),
		OrganizationID: orgID,
		UserID:         userID,
		ContextKey:     contextKey,
		Title:          fields.Title,
		Variant:        fields.Variant,
		AnchorID:       fields.AnchorID,
		Created:        now,
		Updated:        now,
	}
	if sess.Variant == "" {
		sess.Variant = core.VariantNone
	}
	s.sessions[sess.ID] = sess
	s.byKey[ownerKey(orgID, userID, contextKey)] = sess.ID
	return sess.Clone(), nil
}

// List returns the owner's sessions ordered by Updated descending.
func (s *InMemoryStore) List(orgID, userID string) ([]*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*core.Session
	for _, sess := range s.sessions {
		if sess.OrganizationID == orgID && sess.UserID == userID {
			out = append(out, sess.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Updated.After(out[j].Updated) })
	return out, nil
}

// AppendMessage appends one message to the session transcript.
func (s *InMemoryStore) AppendMessage(sessionID string, role core.Role, content string, meta *core.MessageMetadata) (*core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, core.ErrSessionNotFound
	}
	msg := &core.Message{
		ID:        core.NewID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Metadata:  meta,
		Created:   time.Now(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	clone := *msg
	return &clone, nil
}

// ListMessages returns the transcript in append order.
func (s *InMemoryStore) ListMessages(sessionID string) ([]*core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.messages[sessionID]
	out := make([]*core.Message, len(stored))
	for i, msg := range stored {
		clone := *msg
		out[i] = &clone
	}
	return out, nil
}

// Touch bumps the session's Updated timestamp.
func (s *InMemoryStore) Touch(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return core.ErrSessionNotFound
	}
	sess.Updated = time.Now()
	return nil
}

// SaveSnapshot caches the resolved context panel on the session.
func (s *InMemoryStore) SaveSnapshot(sessionID string, panel *core.ContextPanel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return core.ErrSessionNotFound
	}
	sess.Snapshot = panel.Clone()
	return nil
}
