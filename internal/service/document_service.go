package service

import (
	"go.uber.org/zap"

	"projektchat/internal/convert"
	"projektchat/internal/domain"
	"projektchat/internal/repository"
)

// DocumentService handles document upload, normalization and retrieval
type DocumentService struct {
	projectRepo  *repository.ProjectRepository
	documentRepo *repository.DocumentRepository
	converter    *convert.Converter
	logger       *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	projectRepo *repository.ProjectRepository,
	documentRepo *repository.DocumentRepository,
	converter *convert.Converter,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		projectRepo:  projectRepo,
		documentRepo: documentRepo,
		converter:    converter,
		logger:       logger,
	}
}

// Upload normalizes one uploaded file into Markdown and stores it. Conversion
// never fails; unreadable inputs are stored with a descriptive placeholder.
func (s *DocumentService) Upload(projectID, filename, mediaType string, data []byte) (*domain.Document, error) {
	project, err := s.projectRepo.Get(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	result := s.converter.Convert(data, filename, mediaType)

	doc := &domain.Document{
		ProjectID: projectID,
		Filename:  filename,
		Content:   result.Markdown,
		FileType:  string(result.Kind),
		FileSize:  int64(len(data)),
		Metadata: map[string]any{
			domain.MetadataKeyCharCount: result.CharCount,
			domain.MetadataKeyWordCount: result.WordCount,
			domain.MetadataKeyProcessed: true,
			"estimated_tokens":          domain.EstimateTokens(result.Markdown),
		},
	}
	if err := s.documentRepo.Create(doc); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Touch(projectID); err != nil {
		s.logger.Warn("failed to touch project", zap.String("project_id", projectID), zap.Error(err))
	}

	s.logger.Info("document uploaded",
		zap.String("project_id", projectID),
		zap.String("document_id", doc.ID),
		zap.String("filename", filename),
		zap.String("kind", string(result.Kind)),
		zap.Int("chars", result.CharCount))
	return doc, nil
}

// Get retrieves a document
func (s *DocumentService) Get(id string) (*domain.Document, error) {
	doc, err := s.documentRepo.Get(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// List lists a project's documents, newest first
func (s *DocumentService) List(projectID string) ([]*domain.Document, error) {
	project, err := s.projectRepo.Get(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return s.documentRepo.ListByProject(projectID)
}

// Delete removes a document
func (s *DocumentService) Delete(id string) error {
	return s.documentRepo.Delete(id)
}

// Context collects the normalized contents of all project documents for
// injection into the chat context.
func (s *DocumentService) Context(projectID string) ([]domain.DocumentContext, error) {
	docs, err := s.documentRepo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	contexts := make([]domain.DocumentContext, 0, len(docs))
	for _, doc := range docs {
		contexts = append(contexts, domain.DocumentContext{
			ID:       doc.ID,
			Filename: doc.Filename,
			Content:  doc.Content,
			FileType: doc.FileType,
		})
	}
	return contexts, nil
}
