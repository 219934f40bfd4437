package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskflow-hq/taskflow-api/internal/dto"
	apierrors "github.com/taskflow-hq/taskflow-api/internal/errors"
	"github.com/taskflow-hq/taskflow-api/internal/models"
	"github.com/taskflow-hq/taskflow-api/internal/services"
)

// ChatHandler serves the in-character chat with a staff member's persona.
// One turn may be in flight per target user; the busy flag rejects a second
// submission instead of queueing it. There is no way to abort a turn once
// started beyond the request context.
type ChatHandler struct {
	board     *services.BoardService
	aiService *services.AIService

	mu   sync.Mutex
	busy map[string]bool
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(board *services.BoardService, aiService *services.AIService) *ChatHandler {
	return &ChatHandler{
		board:     board,
		aiService: aiService,
		busy:      make(map[string]bool),
	}
}

// Transcript returns the prior chat turns with a staff member.
func (h *ChatHandler) Transcript(c *gin.Context) {
	user, ok := h.board.User(c.Param("id"))
	if !ok {
		apierrors.NotFound(c, "User not found")
		return
	}
	history := user.ChatHistory
	if history == nil {
		history = []models.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": history})
}

// Send submits one message and streams the persona's reply as server-sent
// "fragment" events. The completed turn (the user message plus the full
// reply, fallback included) is appended to the transcript afterwards.
func (h *ChatHandler) Send(c *gin.Context) {
	target, ok := h.board.User(c.Param("id"))
	if !ok {
		apierrors.NotFound(c, "User not found")
		return
	}

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "A message is required")
		return
	}

	if !h.acquire(target.ID) {
		apierrors.Conflict(c, "A reply for this user is already being generated")
		return
	}
	defer h.release(target.ID)

	userMessage := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.ChatRoleUser,
		Text:      req.Message,
		Timestamp: time.Now().UnixMilli(),
	}

	snapshot := h.board.Snapshot()
	assigned := make([]models.Task, 0)
	for _, t := range snapshot.Tasks {
		if t.AssignedTo == target.ID {
			assigned = append(assigned, t)
		}
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	reply := h.aiService.StreamPersonaReply(
		contextOf(c), target, assigned, target.ChatHistory, req.Message,
		func(fragment string) {
			c.SSEvent("fragment", fragment)
			c.Writer.Flush()
		},
	)

	replyMessage := models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      models.ChatRoleModel,
		Text:      reply,
		Timestamp: time.Now().UnixMilli(),
	}

	history := append(append([]models.ChatMessage{}, target.ChatHistory...), userMessage, replyMessage)
	if _, err := h.board.SetChatHistory(target.ID, history); err != nil {
		// target removed mid-stream; the reply is display-only, keep going
		c.SSEvent("done", replyMessage)
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", replyMessage)
	c.Writer.Flush()
}

func (h *ChatHandler) acquire(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.busy[id] {
		return false
	}
	h.busy[id] = true
	return true
}

func (h *ChatHandler) release(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.busy, id)
}
