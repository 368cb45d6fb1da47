package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"projektchat/internal/domain"
	"projektchat/internal/llm"
	"projektchat/internal/repository"
)

// historyLimit caps how many past messages are sent back to the provider.
const historyLimit = 20

// ChatService handles chat turns against the configured LLM providers
type ChatService struct {
	projectRepo *repository.ProjectRepository
	sessionRepo *repository.SessionRepository
	documents   *DocumentService
	factory     *llm.Factory
	logger      *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	projectRepo *repository.ProjectRepository,
	sessionRepo *repository.SessionRepository,
	documents *DocumentService,
	factory *llm.Factory,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		projectRepo: projectRepo,
		sessionRepo: sessionRepo,
		documents:   documents,
		factory:     factory,
		logger:      logger,
	}
}

// CreateSession creates a named chat session for a project
func (s *ChatService) CreateSession(projectID, name string) (*domain.ChatSession, error) {
	if err := s.requireProject(projectID); err != nil {
		return nil, err
	}
	session := &domain.ChatSession{ProjectID: projectID, Name: name}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions lists the active sessions of a project
func (s *ChatService) ListSessions(projectID string) ([]*domain.ChatSession, error) {
	if err := s.requireProject(projectID); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByProject(projectID)
}

// RenameSession renames a session
func (s *ChatService) RenameSession(sessionID, name string) error {
	return s.sessionRepo.Rename(sessionID, name)
}

// DeleteSession soft-deletes a session
func (s *ChatService) DeleteSession(sessionID string) error {
	return s.sessionRepo.Delete(sessionID)
}

// History returns project messages, optionally limited and session-filtered
func (s *ChatService) History(projectID string, limit int, sessionID string) ([]*domain.Message, error) {
	if err := s.requireProject(projectID); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetMessages(projectID, limit, sessionID)
}

// Search finds project messages containing the query
func (s *ChatService) Search(projectID, query string, limit int) ([]*domain.Message, error) {
	if err := s.requireProject(projectID); err != nil {
		return nil, err
	}
	return s.sessionRepo.SearchMessages(projectID, query, limit)
}

// ClearHistory removes all messages of a project
func (s *ChatService) ClearHistory(projectID string) error {
	if err := s.requireProject(projectID); err != nil {
		return err
	}
	return s.sessionRepo.ClearMessages(projectID)
}

// Chat runs one chat turn. The user message is persisted first, then the
// provider streams the answer; the accumulated answer is persisted as the
// assistant message once the stream ends. The returned channel mirrors the
// provider's fragments so callers can relay them as SSE.
func (s *ChatService) Chat(ctx context.Context, projectID string, req *domain.ChatRequest, stream bool) (<-chan llm.Fragment, string, error) {
	if err := s.requireProject(projectID); err != nil {
		return nil, "", err
	}

	provider, err := s.factory.Provider(req.Provider)
	if err != nil {
		return nil, "", err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		// A sessionless turn continues the project's oldest session; a fresh
		// default session is created only when the project has none.
		sessions, err := s.sessionRepo.ListByProject(projectID)
		if err != nil {
			return nil, "", err
		}
		if len(sessions) > 0 {
			sessionID = sessions[0].ID
		} else {
			session := &domain.ChatSession{ProjectID: projectID, Name: domain.DefaultSessionName}
			if err := s.sessionRepo.Create(session); err != nil {
				return nil, "", err
			}
			sessionID = session.ID
		}
	}

	userMsg := &domain.Message{
		ProjectID: projectID,
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   req.Message,
	}
	if err := s.sessionRepo.CreateMessage(userMsg); err != nil {
		return nil, "", err
	}

	messages, err := s.assembleMessages(projectID, sessionID)
	if err != nil {
		return nil, "", err
	}

	fragments := provider.Generate(ctx, messages, req.Parameters, stream)

	out := make(chan llm.Fragment, 16)
	go func() {
		defer close(out)

		var answer strings.Builder
		failed := false
		for fragment := range fragments {
			if fragment.Err != nil {
				failed = true
			}
			answer.WriteString(fragment.Content)
			select {
			case out <- fragment:
			case <-ctx.Done():
				// Keep draining so the provider goroutine can finish.
			}
		}

		if failed || answer.Len() == 0 {
			return
		}
		assistantMsg := &domain.Message{
			ProjectID: projectID,
			SessionID: sessionID,
			Role:      domain.RoleAssistant,
			Content:   answer.String(),
			Metadata:  map[string]any{"provider": provider.Name()},
		}
		if err := s.sessionRepo.CreateMessage(assistantMsg); err != nil {
			s.logger.Error("failed to persist assistant message",
				zap.String("project_id", projectID), zap.Error(err))
		}
		if err := s.projectRepo.Touch(projectID); err != nil {
			s.logger.Warn("failed to touch project", zap.String("project_id", projectID), zap.Error(err))
		}
	}()

	return out, sessionID, nil
}

// assembleMessages builds the provider conversation: document context system
// message first (when documents exist), then the recent session history.
func (s *ChatService) assembleMessages(projectID, sessionID string) ([]llm.Message, error) {
	history, err := s.sessionRepo.GetMessages(projectID, historyLimit, sessionID)
	if err != nil {
		return nil, err
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	docs, err := s.documents.Context(projectID)
	if err != nil {
		return nil, err
	}
	return llm.WithDocumentContext(messages, docs), nil
}

func (s *ChatService) requireProject(projectID string) error {
	project, err := s.projectRepo.Get(projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.ErrNotFound
	}
	return nil
}
