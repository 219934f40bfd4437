// Package store holds the authoritative in-memory collections of tasks and
// users, the pure mutation operations over them, and the derived read-only
// views. Every operation takes a State and returns a new State with the
// affected collection replaced wholesale; nothing here performs I/O.
package store

import (
	"github.com/taskflow-hq/taskflow-api/internal/models"
)

// State is the entity store: two independent top-level collections keyed by
// ID, with insertion order as the display order.
type State struct {
	Tasks []models.Task
	Users []models.User
}

// Clone returns a deep-enough copy of s: the collection slices are copied so
// a derived State can be mutated without aliasing the original. Record
// sub-slices (subtasks, tags, chat history) are shared until an operation
// replaces them, which every operation does via whole-record rebuilds.
func (s State) Clone() State {
	out := State{
		Tasks: make([]models.Task, len(s.Tasks)),
		Users: make([]models.User, len(s.Users)),
	}
	copy(out.Tasks, s.Tasks)
	copy(out.Users, s.Users)
	return out
}

// FindTask returns the task with the given ID, if present.
func (s State) FindTask(id string) (models.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// FindUser returns the user with the given ID, if present.
func (s State) FindUser(id string) (models.User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// FindUserByEmail returns the user with the given email, if present.
func (s State) FindUserByEmail(email string) (models.User, bool) {
	for _, u := range s.Users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}
