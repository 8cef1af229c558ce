package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/roundtable-hq/orchestrator/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			status TEXT NOT NULL,
			max_rounds INTEGER NOT NULL,
			current_round INTEGER NOT NULL DEFAULT 0,
			token_budget INTEGER NOT NULL,
			cost_budget REAL NOT NULL,
			tokens_used INTEGER NOT NULL DEFAULT 0,
			cost_used REAL NOT NULL DEFAULT 0,
			stop_reason TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			participant_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			personality TEXT NOT NULL,
			order_index INTEGER NOT NULL,
			status TEXT NOT NULL,
			UNIQUE (session_id, order_index),
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_session ON participants(session_id, order_index)`,
		`CREATE TABLE IF NOT EXISTS messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			participant_id TEXT,
			author TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			tokens_in INTEGER NOT NULL DEFAULT 0,
			tokens_out INTEGER NOT NULL DEFAULT 0,
			cost REAL NOT NULL DEFAULT 0,
			round INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			audit_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			actor TEXT NOT NULL,
			action TEXT NOT NULL,
			metadata TEXT,
			ts INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_log(session_id, ts)`,
		`CREATE TABLE IF NOT EXISTS providers (
			name TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			model_id TEXT NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 1,
			order_index INTEGER NOT NULL DEFAULT 0,
			temperature REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS personalities (
			title TEXT PRIMARY KEY,
			instructions TEXT NOT NULL,
			style TEXT
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, topic, status, max_rounds, current_round, token_budget, cost_budget, tokens_used, cost_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.Topic, session.Status, session.MaxRounds, session.CurrentRound,
		session.TokenBudget, session.CostBudget, session.TokensUsed, session.CostUsed, session.CreatedAt)
	return err
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var stopReason sql.NullString
	var finishedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, topic, status, max_rounds, current_round, token_budget, cost_budget, tokens_used, cost_used, stop_reason, created_at, finished_at
		 FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &session.Topic, &session.Status, &session.MaxRounds,
		&session.CurrentRound, &session.TokenBudget, &session.CostBudget, &session.TokensUsed,
		&session.CostUsed, &stopReason, &session.CreatedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if stopReason.Valid {
		session.StopReason = domain.StopReason(stopReason.String)
	}
	if finishedAt.Valid {
		session.FinishedAt = &finishedAt.Time
	}
	return &session, nil
}

// UpdateSessionStatus moves a non-terminal session to a new status. It
// reports whether a row changed; terminal sessions are never updated.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ? WHERE session_id = ? AND status NOT IN ('stopped', 'completed', 'failed')`,
		status, sessionID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateSessionCompleted moves a non-terminal session to a terminal status
// and stamps finished_at and the stop reason.
func (s *SQLiteStore) UpdateSessionCompleted(ctx context.Context, sessionID string, status domain.SessionStatus, reason domain.StopReason) (bool, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, stop_reason = ?, finished_at = ? WHERE session_id = ? AND status NOT IN ('stopped', 'completed', 'failed')`,
		status, string(reason), now, sessionID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateSessionProgress persists the round counter and budget accounting.
func (s *SQLiteStore) UpdateSessionProgress(ctx context.Context, sessionID string, currentRound int, tokensUsed int, costUsed float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET current_round = ?, tokens_used = ?, cost_used = ? WHERE session_id = ?`,
		currentRound, tokensUsed, costUsed, sessionID)
	return err
}

// CreateParticipant creates a new participant. A duplicate order_index within
// the same session violates the unique constraint and is rejected here.
func (s *SQLiteStore) CreateParticipant(ctx context.Context, participant *domain.Participant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (participant_id, session_id, provider, personality, order_index, status) VALUES (?, ?, ?, ?, ?, ?)`,
		participant.ParticipantID, participant.SessionID, participant.Provider,
		participant.Personality, participant.OrderIndex, participant.Status)
	return err
}

// ListParticipants lists a session's participants ordered by order_index.
func (s *SQLiteStore) ListParticipants(ctx context.Context, sessionID string) ([]domain.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT participant_id, session_id, provider, personality, order_index, status
		 FROM participants WHERE session_id = ? ORDER BY order_index ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ParticipantID, &p.SessionID, &p.Provider, &p.Personality, &p.OrderIndex, &p.Status); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// UpdateParticipantStatus updates the status of a participant.
func (s *SQLiteStore) UpdateParticipantStatus(ctx context.Context, participantID string, status domain.ParticipantStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE participants SET status = ? WHERE participant_id = ?`,
		status, participantID)
	return err
}

// CreateMessage appends a message to the transcript and assigns its sequence
// number. Messages are never updated or deleted.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (message_id, session_id, participant_id, author, role, content, tokens_in, tokens_out, cost, round, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		message.MessageID, message.SessionID, nullString(message.ParticipantID), message.Author,
		message.Role, message.Content, message.TokensIn, message.TokensOut, message.Cost,
		message.Round, message.CreatedAt)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	message.Seq = seq
	return nil
}

// GetMessages retrieves a session's transcript oldest-first. A positive limit
// caps the result to the most recent N messages.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT seq, message_id, session_id, participant_id, author, role, content, tokens_in, tokens_out, cost, round, created_at
		 FROM messages WHERE session_id = ? ORDER BY seq ASC`
	args := []interface{}{sessionID}

	if limit > 0 {
		query = fmt.Sprintf(`SELECT * FROM (%s) ORDER BY seq DESC LIMIT %d`, query, limit)
		query = fmt.Sprintf(`SELECT * FROM (%s) ORDER BY seq ASC`, query)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var participantID sql.NullString
		if err := rows.Scan(&msg.Seq, &msg.MessageID, &msg.SessionID, &participantID, &msg.Author,
			&msg.Role, &msg.Content, &msg.TokensIn, &msg.TokensOut, &msg.Cost, &msg.Round, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if participantID.Valid {
			msg.ParticipantID = participantID.String
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CreateAuditEntry creates a new audit entry.
func (s *SQLiteStore) CreateAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	metadata := ""
	if entry.Metadata != nil {
		metadata = string(entry.Metadata)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (audit_id, session_id, actor, action, metadata, ts) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.AuditID, entry.SessionID, entry.Actor, entry.Action, metadata, entry.Ts)
	return err
}

// GetAuditEntries retrieves audit entries for a session in write order.
func (s *SQLiteStore) GetAuditEntries(ctx context.Context, sessionID string, limit int) ([]domain.AuditEntry, error) {
	query := `SELECT audit_id, session_id, actor, action, metadata, ts FROM audit_log WHERE session_id = ? ORDER BY ts ASC, audit_id ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var metadata sql.NullString
		if err := rows.Scan(&entry.AuditID, &entry.SessionID, &entry.Actor, &entry.Action, &metadata, &entry.Ts); err != nil {
			return nil, err
		}
		if metadata.Valid && metadata.String != "" {
			entry.Metadata = []byte(metadata.String)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UpsertProvider creates or updates a provider catalog entry.
func (s *SQLiteStore) UpsertProvider(ctx context.Context, provider *domain.Provider) error {
	enabled := 0
	if provider.Enabled {
		enabled = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO providers (name, type, model_id, enabled, order_index, temperature) VALUES (?, ?, ?, ?, ?, ?)`,
		provider.Name, provider.Type, provider.ModelID, enabled, provider.OrderIndex, provider.Temperature)
	return err
}

// GetProvider retrieves a provider by name.
func (s *SQLiteStore) GetProvider(ctx context.Context, name string) (*domain.Provider, error) {
	var p domain.Provider
	var enabled int
	err := s.db.QueryRowContext(ctx,
		`SELECT name, type, model_id, enabled, order_index, temperature FROM providers WHERE name = ?`,
		name).Scan(&p.Name, &p.Type, &p.ModelID, &enabled, &p.OrderIndex, &p.Temperature)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Enabled = enabled != 0
	return &p, nil
}

// ListProviders lists all providers ordered by order_index.
func (s *SQLiteStore) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, type, model_id, enabled, order_index, temperature FROM providers ORDER BY order_index ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []domain.Provider
	for rows.Next() {
		var p domain.Provider
		var enabled int
		if err := rows.Scan(&p.Name, &p.Type, &p.ModelID, &enabled, &p.OrderIndex, &p.Temperature); err != nil {
			return nil, err
		}
		p.Enabled = enabled != 0
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// UpsertPersonality creates or updates a personality catalog entry.
func (s *SQLiteStore) UpsertPersonality(ctx context.Context, personality *domain.Personality) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO personalities (title, instructions, style) VALUES (?, ?, ?)`,
		personality.Title, personality.Instructions, nullString(personality.Style))
	return err
}

// GetPersonality retrieves a personality by title.
func (s *SQLiteStore) GetPersonality(ctx context.Context, title string) (*domain.Personality, error) {
	var p domain.Personality
	var style sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT title, instructions, style FROM personalities WHERE title = ?`,
		title).Scan(&p.Title, &p.Instructions, &style)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if style.Valid {
		p.Style = style.String
	}
	return &p, nil
}

// ListPersonalities lists all personalities.
func (s *SQLiteStore) ListPersonalities(ctx context.Context) ([]domain.Personality, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, instructions, style FROM personalities ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var personalities []domain.Personality
	for rows.Next() {
		var p domain.Personality
		var style sql.NullString
		if err := rows.Scan(&p.Title, &p.Instructions, &style); err != nil {
			return nil, err
		}
		if style.Valid {
			p.Style = style.String
		}
		personalities = append(personalities, p)
	}
	return personalities, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
