package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"projektchat/internal/domain"
)

// ProjectRepository handles project persistence
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(project *domain.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	metadataJSON, _ := json.Marshal(project.Metadata)

	_, err := r.db.Exec(`
		INSERT INTO projects (id, name, description, metadata, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
	`, project.ID, project.Name, project.Description, string(metadataJSON),
		project.CreatedAt, project.UpdatedAt)

	return err
}

// Get retrieves an active project by ID
func (r *ProjectRepository) Get(id string) (*domain.Project, error) {
	row := r.db.QueryRow(`
		SELECT id, name, description, metadata, created_at, updated_at
		FROM projects WHERE id = ? AND is_active = 1
	`, id)
	return scanProject(row)
}

// List retrieves all active projects ordered by last update
func (r *ProjectRepository) List() ([]*domain.Project, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, metadata, created_at, updated_at
		FROM projects WHERE is_active = 1
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// Update updates name and/or description; empty values leave the field unchanged
func (r *ProjectRepository) Update(id, name, description string) error {
	project, err := r.Get(id)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.ErrNotFound
	}
	if name == "" {
		name = project.Name
	}
	if description == "" {
		description = project.Description
	}
	_, err = r.db.Exec(`
		UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ?
	`, name, description, time.Now(), id)
	return err
}

// Touch bumps a project's updated_at timestamp
func (r *ProjectRepository) Touch(id string) error {
	_, err := r.db.Exec(`UPDATE projects SET updated_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

// Delete soft-deletes a project
func (r *ProjectRepository) Delete(id string) error {
	res, err := r.db.Exec(`UPDATE projects SET is_active = 0, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountActive returns the number of active projects
func (r *ProjectRepository) CountActive() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM projects WHERE is_active = 1`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	project := &domain.Project{}
	var description, metadataJSON sql.NullString

	err := row.Scan(&project.ID, &project.Name, &description, &metadataJSON,
		&project.CreatedAt, &project.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if description.Valid {
		project.Description = description.String
	}
	if metadataJSON.Valid && metadataJSON.String != "" {
		json.Unmarshal([]byte(metadataJSON.String), &project.Metadata)
	}
	return project, nil
}
