package dto

import (
	"github.com/taskflow-hq/taskflow-api/internal/models"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

// CreateTaskRequest carries the optional fields of a new task; the store
// fills defaults for anything omitted.
type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Subtasks    []models.Subtask    `json:"subtasks"`
	Deadline    *string             `json:"deadline"`
	Tags        []string            `json:"tags"`
	AssignedTo  string              `json:"assignedTo"`
	Image       string              `json:"image"`
}

// UpdateTaskRequest is the wire form of a task patch. Omitted fields are
// left unchanged; deadline and assignedTo accept an explicit null to clear.
type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	Subtasks    *[]models.Subtask    `json:"subtasks"`
	Deadline    *string              `json:"deadline"`
	Tags        *[]string            `json:"tags"`
	AssignedTo  *string              `json:"assignedTo"`
	Image       *string              `json:"image"`
}

// TaskView is a task plus its derived completion percentage.
type TaskView struct {
	models.Task
	Progress float64 `json:"progress"`
}

// BoardColumn is one status bucket of the board.
type BoardColumn struct {
	Status models.TaskStatus `json:"status"`
	Tasks  []TaskView        `json:"tasks"`
}

// BoardResponse is the columned board, filtered by the search query.
type BoardResponse struct {
	Columns []BoardColumn `json:"columns"`
	Query   string        `json:"query,omitempty"`
}

// SuggestSubtasksResponse reports the appended suggestions and the task
// they were merged into.
type SuggestSubtasksResponse struct {
	Suggestions []string `json:"suggestions"`
	Task        TaskView `json:"task"`
}

// ToTaskView converts a task.
func ToTaskView(t models.Task) TaskView {
	return TaskView{Task: t, Progress: store.TaskProgress(t)}
}

// ToTaskViews converts a slice, preserving order.
func ToTaskViews(tasks []models.Task) []TaskView {
	out := make([]TaskView, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskView(t)
	}
	return out
}

// ToBoardResponse partitions the (already filtered) tasks into the four
// fixed columns in display order.
func ToBoardResponse(tasks []models.Task, query string) BoardResponse {
	groups := store.GroupByStatus(tasks)
	columns := make([]BoardColumn, 0, len(models.AllTaskStatuses))
	for _, status := range models.AllTaskStatuses {
		columns = append(columns, BoardColumn{
			Status: status,
			Tasks:  ToTaskViews(groups[status]),
		})
	}
	return BoardResponse{Columns: columns, Query: query}
}
