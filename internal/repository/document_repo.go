package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"projektchat/internal/domain"
)

// DocumentRepository handles document persistence
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create stores a normalized document. Documents are immutable after creation.
func (r *DocumentRepository) Create(doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = time.Now()
	metadataJSON, _ := json.Marshal(doc.Metadata)

	_, err := r.db.Exec(`
		INSERT INTO documents (id, project_id, filename, content, file_type, file_size, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.ProjectID, doc.Filename, doc.Content, doc.FileType,
		doc.FileSize, string(metadataJSON), doc.CreatedAt)

	return err
}

// Get retrieves a document by ID
func (r *DocumentRepository) Get(id string) (*domain.Document, error) {
	doc := &domain.Document{}
	var content, fileType, metadataJSON sql.NullString
	var fileSize sql.NullInt64

	err := r.db.QueryRow(`
		SELECT id, project_id, filename, content, file_type, file_size, metadata, created_at
		FROM documents WHERE id = ?
	`, id).Scan(&doc.ID, &doc.ProjectID, &doc.Filename, &content, &fileType,
		&fileSize, &metadataJSON, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	doc.Content = content.String
	doc.FileType = fileType.String
	doc.FileSize = fileSize.Int64
	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
		json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata)
	}
	return doc, nil
}

// ListByProject retrieves all documents for a project, newest first
func (r *DocumentRepository) ListByProject(projectID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(`
		SELECT id, project_id, filename, content, file_type, file_size, metadata, created_at
		FROM documents WHERE project_id = ?
		ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		doc := &domain.Document{}
		var content, fileType, metadataJSON sql.NullString
		var fileSize sql.NullInt64

		if err := rows.Scan(&doc.ID, &doc.ProjectID, &doc.Filename, &content,
			&fileType, &fileSize, &metadataJSON, &doc.CreatedAt); err != nil {
			return nil, err
		}
		doc.Content = content.String
		doc.FileType = fileType.String
		doc.FileSize = fileSize.Int64
		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
			json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes a document
func (r *DocumentRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByProject returns the number of documents for a project
func (r *DocumentRepository) CountByProject(projectID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM documents WHERE project_id = ?`, projectID).Scan(&count)
	return count, err
}

// CountAll returns the total number of documents
func (r *DocumentRepository) CountAll() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}
