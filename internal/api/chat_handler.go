package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"projektchat/internal/domain"
	"projektchat/internal/service"
)

// ChatHandler handles chat and session API requests
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// RegisterRoutes registers chat and session routes
func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/projects/:project_id/sessions", h.CreateSession)
	r.GET("/projects/:project_id/sessions", h.ListSessions)
	r.PUT("/sessions/:session_id", h.RenameSession)
	r.DELETE("/sessions/:session_id", h.DeleteSession)

	r.POST("/projects/:project_id/chat", h.Chat)
	r.POST("/projects/:project_id/chat/stream", h.ChatStream)
	r.GET("/projects/:project_id/messages", h.History)
	r.GET("/projects/:project_id/messages/search", h.Search)
	r.DELETE("/projects/:project_id/messages", h.ClearHistory)
}

// CreateSession creates a chat session
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req domain.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.chat.CreateSession(c.Param("project_id"), req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ListSessions lists a project's sessions
func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.chat.ListSessions(c.Param("project_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// RenameSession renames a session
func (h *ChatHandler) RenameSession(c *gin.Context) {
	var req domain.RenameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.chat.RenameSession(c.Param("session_id"), req.Name); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteSession soft-deletes a session
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.chat.DeleteSession(c.Param("session_id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Chat handles a non-streaming chat turn
func (h *ChatHandler) Chat(c *gin.Context) {
	projectID := c.Param("project_id")

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fragments, sessionID, err := h.chat.Chat(c.Request.Context(), projectID, &req, false)
	if err != nil {
		handleError(c, err)
		return
	}

	var answer strings.Builder
	for fragment := range fragments {
		answer.WriteString(fragment.Content)
		if fragment.Err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": answer.String()})
			return
		}
	}

	c.JSON(http.StatusOK, domain.ChatResponse{
		SessionID: sessionID,
		Answer:    answer.String(),
		Provider:  req.Provider,
	})
}

// ChatStream handles a streaming chat turn (SSE)
func (h *ChatHandler) ChatStream(c *gin.Context) {
	projectID := c.Param("project_id")

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	fragments, sessionID, err := h.chat.Chat(c.Request.Context(), projectID, &req, true)
	if err != nil {
		writeSSE(c.Writer, "error", gin.H{"error": err.Error()})
		return
	}

	writeSSE(c.Writer, "session", gin.H{"session_id": sessionID})

	c.Stream(func(w io.Writer) bool {
		fragment, ok := <-fragments
		if !ok {
			writeSSE(w, "done", gin.H{})
			return false
		}
		if fragment.Err != nil {
			writeSSE(w, "error", gin.H{"error": fragment.Content})
			return true
		}
		writeSSE(w, "message", gin.H{"content": fragment.Content})
		return true
	})
}

// History returns project messages; supports limit and session_id query params
func (h *ChatHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	messages, err := h.chat.History(c.Param("project_id"), limit, c.Query("session_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

// Search finds project messages containing the q query parameter
func (h *ChatHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.chat.Search(c.Param("project_id"), query, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

// ClearHistory deletes all messages of a project
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	if err := h.chat.ClearHistory(c.Param("project_id")); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func writeSSE(w io.Writer, event string, data any) {
	payload, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
