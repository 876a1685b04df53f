package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brokermesh/assistant/core"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements core.SessionStore on a local SQLite database. It is
// intended for single-node deployments that need sessions to survive process
// restarts. WAL mode plus a busy timeout keeps concurrent turn handling from
// tripping over SQLITE_BUSY.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the database at dbPath and
// initializes the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// The modernc driver takes pragmas as _pragma=name(value) pairs, applied
	// to every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		context_key TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		variant TEXT NOT NULL DEFAULT 'NONE',
		anchor_id TEXT NOT NULL DEFAULT '',
		snapshot_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(organization_id, user_id, context_key)
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_owner_updated ON sessions(organization_id, user_id, updated_at);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		metadata_json TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

const sessionColumns = `id, organization_id, user_id, context_key, title, variant, anchor_id, snapshot_json, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*core.Session, error) {
	var (
		sess     core.Session
		variant  string
		snapshot sql.NullString
		created  int64
		updated  int64
	)
	err := row.Scan(&sess.ID, &sess.OrganizationID, &sess.UserID, &sess.ContextKey, &sess.Title, &variant, &sess.AnchorID, &snapshot, &created, &updated)
	if err != nil {
		return nil, err
	}
	sess.Variant = core.ContextVariant(variant)
	sess.Created = time.Unix(0, created)
	sess.Updated = time.Unix(0, updated)
	if snapshot.Valid && snapshot.String != "" {
		var panel core.ContextPanel
		if err := json.Unmarshal([]byte(snapshot.String), &panel); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		sess.Snapshot = &panel
	}
	return &sess, nil
}

// Find returns the session only when it belongs to the given organization and
// user.
func (s *SQLiteStore) Find(sessionID, orgID, userID string) (*core.Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ? AND organization_id = ? AND user_id = ?`,
		sessionID, orgID, userID,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return sess, nil
}

// Upsert fetches or creates the session keyed by (orgID, userID, contextKey).
// The insert-or-ignore plus re-select makes concurrent upserts on one key
// converge on the same row instead of racing the existence check.
func (s *SQLiteStore) Upsert(orgID, userID, contextKey string, fields core.SessionFields) (*core.Session, error) {
	variant := fields.Variant
	if variant == "" {
		variant = core.VariantNone
	}
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, organization_id, user_id, context_key, title, variant, anchor_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(organization_id, user_id, context_key) DO NOTHING`,
		core.NewID(), orgID, userID, contextKey, fields.Title, string(variant), fields.AnchorID, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	row := s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE organization_id = ? AND user_id = ? AND context_key = ?`,
		orgID, userID, contextKey,
	)
	sess, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("lookup session by key: %w", err)
	}

	if fields.Title != "" && fields.Title != sess.Title {
		now := time.Now()
		if _, err := s.db.Exec(`UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?`, fields.Title, now.UnixNano(), sess.ID); err != nil {
			return nil, fmt.Errorf("update session title: %w", err)
		}
		sess.Title = fields.Title
		sess.Updated = now
	}
	return sess, nil
}

// List returns the owner's sessions ordered by Updated descending.
func (s *SQLiteStore) List(orgID, userID string) ([]*core.Session, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionColumns+` FROM sessions WHERE organization_id = ? AND user_id = ? ORDER BY updated_at DESC`,
		orgID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*core.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// AppendMessage appends one message to the session transcript.
func (s *SQLiteStore) AppendMessage(sessionID string, role core.Role, content string, meta *core.MessageMetadata) (*core.Message, error) {
	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM sessions WHERE id = ?`, sessionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return nil, core.ErrSessionNotFound
	}

	var metaJSON sql.NullString
	if meta != nil {
		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		metaJSON = sql.NullString{String: string(raw), Valid: true}
	}

	msg := &core.Message{
		ID:        core.NewID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Metadata:  meta,
		Created:   time.Now(),
	}
	_, err := s.db.Exec(
		`INSERT INTO messages (id, session_id, role, content, metadata_json, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, sessionID, string(role), content, metaJSON, msg.Created.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

// ListMessages returns the transcript in append order.
func (s *SQLiteStore) ListMessages(sessionID string) ([]*core.Message, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, role, content, metadata_json, created_at FROM messages WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []*core.Message
	for rows.Next() {
		var (
			msg      core.Message
			role     string
			metaJSON sql.NullString
			created  int64
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &metaJSON, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = core.Role(role)
		msg.Created = time.Unix(0, created)
		if metaJSON.Valid && metaJSON.String != "" {
			var meta core.MessageMetadata
			if err := json.Unmarshal([]byte(metaJSON.String), &meta); err != nil {
				return nil, fmt.Errorf("decode metadata: %w", err)
			}
			msg.Metadata = &meta
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}

// Touch bumps the session's Updated timestamp.
func (s *SQLiteStore) Touch(sessionID string) error {
	res, err := s.db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, time.Now().UnixNano(), sessionID)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

// SaveSnapshot caches the resolved context panel on the session.
func (s *SQLiteStore) SaveSnapshot(sessionID string, panel *core.ContextPanel) error {
	raw, err := json.Marshal(panel)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	res, err := s.db.Exec(`UPDATE sessions SET snapshot_json = ? WHERE id = ?`, string(raw), sessionID)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}
