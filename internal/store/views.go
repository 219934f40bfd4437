package store

import (
	"strings"

	"github.com/taskflow-hq/taskflow-api/internal/models"
)

// Workload is the per-user assignment summary shown in the roster.
type Workload struct {
	AssignedCount  int     `json:"assignedCount"`
	CompletedCount int     `json:"completedCount"`
	Progress       float64 `json:"progress"`
}

// Stats holds the aggregate counts behind the dashboard charts.
type Stats struct {
	Total          int                         `json:"total"`
	ByStatus       map[models.TaskStatus]int   `json:"byStatus"`
	ByPriority     map[models.TaskPriority]int `json:"byPriority"`
	CompletionRate float64                     `json:"completionRate"`
}

// FilterTasks returns the tasks whose title or description contains the
// query, case-insensitively. An empty query matches everything. Collection
// order is preserved.
func FilterTasks(tasks []models.Task, query string) []models.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]models.Task{}, tasks...)
	}
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// GroupByStatus partitions tasks into the four fixed board columns,
// preserving collection order within each bucket. All four buckets are
// always present.
func GroupByStatus(tasks []models.Task) map[models.TaskStatus][]models.Task {
	groups := make(map[models.TaskStatus][]models.Task, len(models.AllTaskStatuses))
	for _, status := range models.AllTaskStatuses {
		groups[status] = []models.Task{}
	}
	for _, t := range tasks {
		groups[t.Status] = append(groups[t.Status], t)
	}
	return groups
}

// TaskProgress returns a completion percentage in [0,100]. With subtasks it
// is the completed ratio; without, it is 100 iff the task is DONE.
func TaskProgress(t models.Task) float64 {
	if len(t.Subtasks) > 0 {
		completed := 0
		for _, st := range t.Subtasks {
			if st.IsCompleted {
				completed++
			}
		}
		return float64(completed) / float64(len(t.Subtasks)) * 100
	}
	if t.Status == models.TaskStatusDone {
		return 100
	}
	return 0
}

// UserWorkload summarizes the tasks assigned to a user. Progress is 0 when
// nothing is assigned.
func UserWorkload(tasks []models.Task, userID string) Workload {
	var w Workload
	for _, t := range tasks {
		if t.AssignedTo != userID {
			continue
		}
		w.AssignedCount++
		if t.Status == models.TaskStatusDone {
			w.CompletedCount++
		}
	}
	if w.AssignedCount > 0 {
		w.Progress = float64(w.CompletedCount) / float64(w.AssignedCount) * 100
	}
	return w
}

// Aggregate computes the dashboard totals across all tasks.
func Aggregate(tasks []models.Task) Stats {
	stats := Stats{
		Total:      len(tasks),
		ByStatus:   make(map[models.TaskStatus]int, len(models.AllTaskStatuses)),
		ByPriority: make(map[models.TaskPriority]int, len(models.AllTaskPriorities)),
	}
	for _, status := range models.AllTaskStatuses {
		stats.ByStatus[status] = 0
	}
	for _, priority := range models.AllTaskPriorities {
		stats.ByPriority[priority] = 0
	}
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.ByStatus[models.TaskStatusDone]) / float64(stats.Total) * 100
	}
	return stats
}
