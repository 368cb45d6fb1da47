package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"projektchat/internal/domain"
)

// SessionRepository handles chat session and message persistence
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new chat session
func (r *SessionRepository) Create(session *domain.ChatSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO chat_sessions (id, project_id, name, message_count, is_active, created_at, updated_at)
		VALUES (?, ?, ?, 0, 1, ?, ?)
	`, session.ID, session.ProjectID, session.Name, session.CreatedAt, session.UpdatedAt)

	return err
}

// Get retrieves an active session by ID
func (r *SessionRepository) Get(id string) (*domain.ChatSession, error) {
	session := &domain.ChatSession{}
	err := r.db.QueryRow(`
		SELECT id, project_id, name, message_count, created_at, updated_at
		FROM chat_sessions WHERE id = ? AND is_active = 1
	`, id).Scan(&session.ID, &session.ProjectID, &session.Name,
		&session.MessageCount, &session.CreatedAt, &session.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListByProject retrieves all active sessions for a project
func (r *SessionRepository) ListByProject(projectID string) ([]*domain.ChatSession, error) {
	rows, err := r.db.Query(`
		SELECT id, project_id, name, message_count, created_at, updated_at
		FROM chat_sessions WHERE project_id = ? AND is_active = 1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.ChatSession
	for rows.Next() {
		session := &domain.ChatSession{}
		if err := rows.Scan(&session.ID, &session.ProjectID, &session.Name,
			&session.MessageCount, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// Rename renames a chat session
func (r *SessionRepository) Rename(id, name string) error {
	res, err := r.db.Exec(`
		UPDATE chat_sessions SET name = ?, updated_at = ? WHERE id = ? AND is_active = 1
	`, name, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a chat session
func (r *SessionRepository) Delete(id string) error {
	res, err := r.db.Exec(`
		UPDATE chat_sessions SET is_active = 0, updated_at = ? WHERE id = ?
	`, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateMessage appends a message and maintains the session message count
func (r *SessionRepository) CreateMessage(message *domain.Message) error {
	message.CreatedAt = time.Now()
	metadataJSON, _ := json.Marshal(message.Metadata)

	var sessionID any
	if message.SessionID != "" {
		sessionID = message.SessionID
	}

	res, err := r.db.Exec(`
		INSERT INTO chat_messages (project_id, session_id, role, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ProjectID, sessionID, message.Role, message.Content,
		string(metadataJSON), message.CreatedAt)
	if err != nil {
		return err
	}
	message.ID, _ = res.LastInsertId()

	if message.SessionID != "" {
		_, err = r.db.Exec(`
			UPDATE chat_sessions
			SET message_count = (SELECT COUNT(*) FROM chat_messages WHERE session_id = ?),
			    updated_at = ?
			WHERE id = ?
		`, message.SessionID, time.Now(), message.SessionID)
	}
	return err
}

// GetMessages retrieves messages for a project, oldest first. A non-empty
// sessionID narrows to one session; limit > 0 returns only the latest N.
func (r *SessionRepository) GetMessages(projectID string, limit int, sessionID string) ([]*domain.Message, error) {
	query := `
		SELECT id, project_id, session_id, role, content, metadata, created_at
		FROM chat_messages WHERE project_id = ?`
	args := []any{projectID}
	if sessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		var sid, metadataJSON sql.NullString

		if err := rows.Scan(&message.ID, &message.ProjectID, &sid, &message.Role,
			&message.Content, &metadataJSON, &message.CreatedAt); err != nil {
			return nil, err
		}
		if sid.Valid {
			message.SessionID = sid.String
		}
		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
			json.Unmarshal([]byte(metadataJSON.String), &message.Metadata)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// SearchMessages finds project messages containing the query as a substring,
// newest first.
func (r *SessionRepository) SearchMessages(projectID, query string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT id, project_id, session_id, role, content, metadata, created_at
		FROM chat_messages
		WHERE project_id = ? AND content LIKE '%' || ? || '%'
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, projectID, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		var sid, metadataJSON sql.NullString
		if err := rows.Scan(&message.ID, &message.ProjectID, &sid, &message.Role,
			&message.Content, &metadataJSON, &message.CreatedAt); err != nil {
			return nil, err
		}
		if sid.Valid {
			message.SessionID = sid.String
		}
		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
			json.Unmarshal([]byte(metadataJSON.String), &message.Metadata)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// ClearMessages deletes all messages for a project
func (r *SessionRepository) ClearMessages(projectID string) error {
	if _, err := r.db.Exec(`DELETE FROM chat_messages WHERE project_id = ?`, projectID); err != nil {
		return err
	}
	_, err := r.db.Exec(`UPDATE chat_sessions SET message_count = 0 WHERE project_id = ?`, projectID)
	return err
}

// CountMessages returns the number of messages for a project
func (r *SessionRepository) CountMessages(projectID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM chat_messages WHERE project_id = ?`, projectID).Scan(&count)
	return count, err
}

// CountAllMessages returns the total number of messages
func (r *SessionRepository) CountAllMessages() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM chat_messages`).Scan(&count)
	return count, err
}

// CountAllSessions returns the total number of active sessions
func (r *SessionRepository) CountAllSessions() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM chat_sessions WHERE is_active = 1`).Scan(&count)
	return count, err
}

// NewSessionID returns a fresh session identifier
func NewSessionID() string {
	return uuid.New().String()
}
