package service

import (
	"time"

	"go.uber.org/zap"

	"projektchat/internal/domain"
	"projektchat/internal/repository"
)

// ProjectService handles project lifecycle operations
type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	sessionRepo  *repository.SessionRepository
	documentRepo *repository.DocumentRepository
	logger       *zap.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	sessionRepo *repository.SessionRepository,
	documentRepo *repository.DocumentRepository,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		sessionRepo:  sessionRepo,
		documentRepo: documentRepo,
		logger:       logger,
	}
}

// Create creates a new project with a default chat session
func (s *ProjectService) Create(req *domain.CreateProjectRequest) (*domain.Project, error) {
	project := &domain.Project{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, err
	}

	session := &domain.ChatSession{
		ProjectID: project.ID,
		Name:      domain.DefaultSessionName,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	s.logger.Info("project created", zap.String("project_id", project.ID), zap.String("name", project.Name))
	return s.Get(project.ID)
}

// Get retrieves a project with live message/document counts
func (s *ProjectService) Get(id string) (*domain.Project, error) {
	project, err := s.projectRepo.Get(id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.fillCounts(project); err != nil {
		return nil, err
	}
	return project, nil
}

// List retrieves all active projects with live counts
func (s *ProjectService) List() ([]*domain.Project, error) {
	projects, err := s.projectRepo.List()
	if err != nil {
		return nil, err
	}
	for _, project := range projects {
		if err := s.fillCounts(project); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (s *ProjectService) fillCounts(project *domain.Project) error {
	messages, err := s.sessionRepo.CountMessages(project.ID)
	if err != nil {
		return err
	}
	documents, err := s.documentRepo.CountByProject(project.ID)
	if err != nil {
		return err
	}
	project.MessageCount = messages
	project.DocumentCount = documents
	project.LastActivity = project.UpdatedAt
	return nil
}

// Update updates a project's name and/or description
func (s *ProjectService) Update(id string, req *domain.UpdateProjectRequest) (*domain.Project, error) {
	if err := s.projectRepo.Update(id, req.Name, req.Description); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete soft-deletes a project
func (s *ProjectService) Delete(id string) error {
	if err := s.projectRepo.Delete(id); err != nil {
		return err
	}
	s.logger.Info("project deleted", zap.String("project_id", id))
	return nil
}

// Duplicate copies a project including its sessions, messages and documents
func (s *ProjectService) Duplicate(id, newName string) (*domain.Project, error) {
	source, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if newName == "" {
		newName = source.Name + " (Kopie)"
	}

	dup := &domain.Project{
		Name:        newName,
		Description: source.Description,
		Metadata:    source.Metadata,
	}
	if err := s.projectRepo.Create(dup); err != nil {
		return nil, err
	}

	// Sessions keep their names; messages move to the corresponding new session.
	sessions, err := s.sessionRepo.ListByProject(id)
	if err != nil {
		return nil, err
	}
	sessionMap := make(map[string]string, len(sessions))
	for _, session := range sessions {
		newSession := &domain.ChatSession{ProjectID: dup.ID, Name: session.Name}
		if err := s.sessionRepo.Create(newSession); err != nil {
			return nil, err
		}
		sessionMap[session.ID] = newSession.ID
	}

	messages, err := s.sessionRepo.GetMessages(id, 0, "")
	if err != nil {
		return nil, err
	}
	for _, message := range messages {
		clone := &domain.Message{
			ProjectID: dup.ID,
			SessionID: sessionMap[message.SessionID],
			Role:      message.Role,
			Content:   message.Content,
			Metadata:  message.Metadata,
		}
		if err := s.sessionRepo.CreateMessage(clone); err != nil {
			return nil, err
		}
	}

	documents, err := s.documentRepo.ListByProject(id)
	if err != nil {
		return nil, err
	}
	for _, doc := range documents {
		clone := &domain.Document{
			ProjectID: dup.ID,
			Filename:  doc.Filename,
			Content:   doc.Content,
			FileType:  doc.FileType,
			FileSize:  doc.FileSize,
			Metadata:  doc.Metadata,
		}
		if err := s.documentRepo.Create(clone); err != nil {
			return nil, err
		}
	}

	s.logger.Info("project duplicated",
		zap.String("source_id", id), zap.String("project_id", dup.ID))
	return s.Get(dup.ID)
}

// Export bundles a project with its sessions, messages and documents
func (s *ProjectService) Export(id string) (*domain.ProjectExport, error) {
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByProject(id)
	if err != nil {
		return nil, err
	}
	messages, err := s.sessionRepo.GetMessages(id, 0, "")
	if err != nil {
		return nil, err
	}
	documents, err := s.documentRepo.ListByProject(id)
	if err != nil {
		return nil, err
	}
	return &domain.ProjectExport{
		Project:    project,
		Sessions:   sessions,
		Messages:   messages,
		Documents:  documents,
		ExportedAt: time.Now(),
	}, nil
}

// Stats computes application-wide statistics
func (s *ProjectService) Stats() (*domain.Stats, error) {
	stats := &domain.Stats{}

	var err error
	if stats.ActiveProjects, err = s.projectRepo.CountActive(); err != nil {
		return nil, err
	}
	if stats.TotalMessages, err = s.sessionRepo.CountAllMessages(); err != nil {
		return nil, err
	}
	if stats.TotalDocuments, err = s.documentRepo.CountAll(); err != nil {
		return nil, err
	}
	if stats.TotalSessions, err = s.sessionRepo.CountAllSessions(); err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.List()
	if err != nil {
		return nil, err
	}
	for _, project := range projects {
		messages, err := s.sessionRepo.CountMessages(project.ID)
		if err != nil {
			return nil, err
		}
		documents, err := s.documentRepo.CountByProject(project.ID)
		if err != nil {
			return nil, err
		}
		if messages > 0 {
			stats.ProjectsWithMessages++
		}
		if documents > 0 {
			stats.ProjectsWithDocuments++
		}
	}
	if stats.ActiveProjects > 0 {
		stats.AvgMessagesPerProject = float64(stats.TotalMessages) / float64(stats.ActiveProjects)
		stats.AvgDocumentsPerProject = float64(stats.TotalDocuments) / float64(stats.ActiveProjects)
	}
	return stats, nil
}
