package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-hq/taskflow-api/internal/dto"
	apierrors "github.com/taskflow-hq/taskflow-api/internal/errors"
	"github.com/taskflow-hq/taskflow-api/internal/middleware"
	"github.com/taskflow-hq/taskflow-api/internal/services"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

// TaskHandler serves task CRUD and the AI subtask suggestion.
type TaskHandler struct {
	board     *services.BoardService
	aiService *services.AIService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(board *services.BoardService, aiService *services.AIService) *TaskHandler {
	return &TaskHandler{board: board, aiService: aiService}
}

// ListTasks returns all tasks, optionally filtered by the search query.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	snapshot := h.board.Snapshot()
	filtered := store.FilterTasks(snapshot.Tasks, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskViews(filtered)})
}

// GetTask returns a single task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := h.board.Task(c.Param("id"))
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskView(task))
}

// CreateTask appends a new task. Creation is total: missing fields are
// defaulted, so the only failure mode is an unreadable body.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Priority != "" && !req.Priority.Valid() {
		apierrors.BadRequest(c, "Unknown priority")
		return
	}

	task := h.board.CreateTask(store.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Subtasks:    req.Subtasks,
		Deadline:    req.Deadline,
		Tags:        req.Tags,
		CreatedBy:   actor.ID,
		AssignedTo:  req.AssignedTo,
		Image:       req.Image,
	})

	c.JSON(http.StatusCreated, dto.ToTaskView(task))
}

// UpdateTask merges a partial update into a task. An explicit null for
// deadline or assignedTo clears the field; omitted fields are untouched.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		apierrors.BadRequest(c, "Unknown status")
		return
	}
	if req.Priority != nil && !req.Priority.Valid() {
		apierrors.BadRequest(c, "Unknown priority")
		return
	}

	// distinguish "field: null" from "field omitted"
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	patch := store.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Subtasks:    req.Subtasks,
		Deadline:    req.Deadline,
		Tags:        req.Tags,
		AssignedTo:  req.AssignedTo,
		Image:       req.Image,
	}
	if isExplicitNull(raw, "deadline") {
		patch.ClearDeadline = true
	}
	if isExplicitNull(raw, "assignedTo") {
		patch.ClearAssignedTo = true
	}

	task, err := h.board.UpdateTask(c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			apierrors.NotFound(c, "Task not found")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskView(*task))
}

// DeleteTask removes a task. Only admins may delete, and the destructive
// step must be confirmed explicitly with ?confirm=true.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	if c.Query("confirm") != "true" {
		apierrors.ConfirmationRequired(c, "Deleting a task requires confirm=true")
		return
	}

	if err := h.board.DeleteTask(c.Param("id"), actor); err != nil {
		if errors.Is(err, store.ErrNotAdmin) {
			apierrors.Forbidden(c, "Only admins can delete tasks")
			return
		}
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// SuggestSubtasks asks the AI boundary for 4-6 subtasks and appends them to
// the task's existing list. A failed or malformed advisory call appends
// nothing and still returns 200; the task is never degraded.
func (h *TaskHandler) SuggestSubtasks(c *gin.Context) {
	task, ok := h.board.Task(c.Param("id"))
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	suggestions := h.aiService.SuggestSubtasks(
		contextOf(c), task.Title, task.Description, task.Image)

	updated, err := h.board.AppendSubtasks(task.ID, suggestions)
	if err != nil {
		// task deleted between lookup and append
		apierrors.NotFound(c, "Task not found")
		return
	}

	c.JSON(http.StatusOK, dto.SuggestSubtasksResponse{
		Suggestions: suggestions,
		Task:        dto.ToTaskView(*updated),
	})
}

func isExplicitNull(raw map[string]json.RawMessage, key string) bool {
	value, present := raw[key]
	return present && string(value) == "null"
}

func contextOf(c *gin.Context) context.Context {
	return c.Request.Context()
}
