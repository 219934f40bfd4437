package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow-hq/taskflow-api/internal/constants"
	"github.com/taskflow-hq/taskflow-api/internal/models"
)

var (
	// ErrNotAdmin is returned when a non-admin attempts to delete a task.
	ErrNotAdmin = errors.New("only admins can delete tasks")
)

// CreateTaskInput carries the optional fields of a new task. Missing fields
// are filled with defaults, so creation never fails.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Subtasks    []models.Subtask
	Deadline    *string
	Tags        []string
	CreatedBy   string
	AssignedTo  string
	Image       string
}

// TaskPatch is a partial update with named optional fields. A nil pointer
// means "leave unchanged"; the Clear flags distinguish "unset" from
// "unchanged" for the two nullable fields.
type TaskPatch struct {
	Title           *string
	Description     *string
	Status          *models.TaskStatus
	Priority        *models.TaskPriority
	Subtasks        *[]models.Subtask
	Deadline        *string
	ClearDeadline   bool
	Tags            *[]string
	AssignedTo      *string
	ClearAssignedTo bool
	Image           *string
}

// CreateTask appends a new task with a freshly minted ID. Status always
// starts at TODO; priority defaults to MEDIUM and the title to "Untitled".
func CreateTask(s State, in CreateTaskInput) (State, models.Task) {
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      models.TaskStatusTodo,
		Priority:    in.Priority,
		Subtasks:    in.Subtasks,
		CreatedAt:   time.Now().UnixMilli(),
		Deadline:    in.Deadline,
		Tags:        in.Tags,
		CreatedBy:   in.CreatedBy,
		AssignedTo:  in.AssignedTo,
		Image:       in.Image,
	}
	if task.Title == "" {
		task.Title = constants.DefaultTaskTitle
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	if task.Subtasks == nil {
		task.Subtasks = []models.Subtask{}
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	next := s.Clone()
	next.Tasks = append(next.Tasks, task)
	return next, task
}

// UpdateTask merges a patch into the task with the given ID. If the ID is
// absent the state is returned unchanged and the task pointer is nil.
func UpdateTask(s State, id string, patch TaskPatch) (State, *models.Task) {
	next := s.Clone()
	for i := range next.Tasks {
		if next.Tasks[i].ID != id {
			continue
		}
		t := &next.Tasks[i]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.Subtasks != nil {
			t.Subtasks = append([]models.Subtask{}, (*patch.Subtasks)...)
		}
		if patch.ClearDeadline {
			t.Deadline = nil
		} else if patch.Deadline != nil {
			t.Deadline = patch.Deadline
		}
		if patch.Tags != nil {
			t.Tags = append([]string{}, (*patch.Tags)...)
		}
		if patch.ClearAssignedTo {
			t.AssignedTo = ""
		} else if patch.AssignedTo != nil {
			t.AssignedTo = *patch.AssignedTo
		}
		if patch.Image != nil {
			t.Image = *patch.Image
		}
		updated := *t
		return next, &updated
	}
	return s, nil
}

// AppendSubtasks adds suggested subtasks to a task's existing list. The
// existing subtasks are never replaced. An absent ID is a no-op.
func AppendSubtasks(s State, id string, titles []string) (State, *models.Task) {
	if len(titles) == 0 {
		if t, ok := s.FindTask(id); ok {
			return s, &t
		}
		return s, nil
	}
	next := s.Clone()
	for i := range next.Tasks {
		if next.Tasks[i].ID != id {
			continue
		}
		t := &next.Tasks[i]
		merged := append([]models.Subtask{}, t.Subtasks...)
		for _, title := range titles {
			merged = append(merged, models.Subtask{
				ID:    uuid.NewString(),
				Title: title,
			})
		}
		t.Subtasks = merged
		updated := *t
		return next, &updated
	}
	return s, nil
}

// DeleteTask removes a task. Only admins may delete; a non-admin actor gets
// ErrNotAdmin and the state is untouched. An absent ID is a no-op.
func DeleteTask(s State, id string, actor models.User) (State, error) {
	if !actor.IsAdmin() {
		return s, ErrNotAdmin
	}
	next := s.Clone()
	tasks := make([]models.Task, 0, len(next.Tasks))
	for _, t := range next.Tasks {
		if t.ID != id {
			tasks = append(tasks, t)
		}
	}
	next.Tasks = tasks
	return next, nil
}
