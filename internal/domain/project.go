package domain

import "time"

// Project groups chat sessions and documents under one workspace
type Project struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	MessageCount  int            `json:"message_count"`
	DocumentCount int            `json:"document_count"`
	LastActivity  time.Time      `json:"last_activity"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// CreateProjectRequest is the request to create a project
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

// UpdateProjectRequest is the request to update a project
type UpdateProjectRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProjectExport is a full JSON bundle of a project for backup/sharing
type ProjectExport struct {
	Project    *Project       `json:"project"`
	Sessions   []*ChatSession `json:"sessions"`
	Messages   []*Message     `json:"messages"`
	Documents  []*Document    `json:"documents"`
	ExportedAt time.Time      `json:"exported_at"`
}

// Stats represents application-wide statistics
type Stats struct {
	ActiveProjects         int     `json:"active_projects"`
	TotalMessages          int     `json:"total_messages"`
	TotalDocuments         int     `json:"total_documents"`
	TotalSessions          int     `json:"total_sessions"`
	ProjectsWithMessages   int     `json:"projects_with_messages"`
	ProjectsWithDocuments  int     `json:"projects_with_documents"`
	AvgMessagesPerProject  float64 `json:"avg_messages_per_project"`
	AvgDocumentsPerProject float64 `json:"avg_documents_per_project"`
}
