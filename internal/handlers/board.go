package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-hq/taskflow-api/internal/dto"
	"github.com/taskflow-hq/taskflow-api/internal/services"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

// BoardHandler serves the derived views: the columned board, the dashboard
// aggregates, and the AI project insights.
type BoardHandler struct {
	board     *services.BoardService
	aiService *services.AIService
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(board *services.BoardService, aiService *services.AIService) *BoardHandler {
	return &BoardHandler{board: board, aiService: aiService}
}

// Board returns the four status columns. The search filter is applied
// before partitioning.
func (h *BoardHandler) Board(c *gin.Context) {
	query := c.Query("q")
	snapshot := h.board.Snapshot()
	filtered := store.FilterTasks(snapshot.Tasks, query)
	c.JSON(http.StatusOK, dto.ToBoardResponse(filtered, query))
}

// Stats returns the aggregate counts behind the dashboard charts.
func (h *BoardHandler) Stats(c *gin.Context) {
	snapshot := h.board.Snapshot()
	c.JSON(http.StatusOK, store.Aggregate(snapshot.Tasks))
}

// Insights returns AI project insights over a redacted task summary. With
// zero tasks or a failed advisory call there is nothing to show and the
// response is 204; the client keeps its prior result or an empty state.
func (h *BoardHandler) Insights(c *gin.Context) {
	snapshot := h.board.Snapshot()

	insight := h.aiService.ProjectInsights(contextOf(c), snapshot.Tasks)
	if insight == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, insight)
}
