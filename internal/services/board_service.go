package services

import (
	"errors"
	"log"
	"sync"

	"github.com/taskflow-hq/taskflow-api/internal/models"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrUserNotFound = errors.New("user not found")
)

// Persister is the slice of the persistence bridge the board service needs.
type Persister interface {
	SaveState(store.State) error
}

// BoardService owns the current entity-store State. Mutation operations
// serialize on the mutex, apply a pure store operation, swap the state, and
// mirror it to durable storage before releasing the lock, so durable writes
// land in commit order. The mirror write is best-effort; a failure is logged
// and never rolls back the in-memory transition.
type BoardService struct {
	mu      sync.Mutex
	state   store.State
	persist Persister
}

// NewBoardService starts from a rehydrated state.
func NewBoardService(initial store.State, persist Persister) *BoardService {
	return &BoardService{state: initial, persist: persist}
}

// Snapshot returns a copy of the current state for derived views.
func (s *BoardService) Snapshot() store.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Task looks up a single task.
func (s *BoardService) Task(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.FindTask(id)
}

// User looks up a single user.
func (s *BoardService) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.FindUser(id)
}

func (s *BoardService) CreateTask(in store.CreateTaskInput) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, task := store.CreateTask(s.state, in)
	s.state = next
	s.mirror()
	return task
}

func (s *BoardService) UpdateTask(id string, patch store.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, task := store.UpdateTask(s.state, id, patch)
	if task == nil {
		return nil, ErrTaskNotFound
	}
	s.state = next
	s.mirror()
	return task, nil
}

func (s *BoardService) AppendSubtasks(id string, titles []string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, task := store.AppendSubtasks(s.state, id, titles)
	if task == nil {
		return nil, ErrTaskNotFound
	}
	s.state = next
	s.mirror()
	return task, nil
}

func (s *BoardService) DeleteTask(id string, actor models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := store.DeleteTask(s.state, id, actor)
	if err != nil {
		return err
	}
	s.state = next
	s.mirror()
	return nil
}

func (s *BoardService) Authenticate(profile store.IdentityProfile) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, user := store.Authenticate(s.state, profile)
	s.state = next
	s.mirror()
	return user
}

func (s *BoardService) RegisterStaff(name, email string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, user := store.RegisterStaff(s.state, name, email)
	s.state = next
	s.mirror()
	return user
}

func (s *BoardService) UpdateUser(id string, patch store.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, user := store.UpdateUser(s.state, id, patch)
	if user == nil {
		return nil, ErrUserNotFound
	}
	s.state = next
	s.mirror()
	return user, nil
}

func (s *BoardService) ToggleUserActive(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, user := store.ToggleUserActive(s.state, id)
	if user == nil {
		return nil, ErrUserNotFound
	}
	s.state = next
	s.mirror()
	return user, nil
}

func (s *BoardService) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = store.DeleteUser(s.state, id)
	s.mirror()
}

func (s *BoardService) SetChatHistory(id string, history []models.ChatMessage) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, user := store.SetChatHistory(s.state, id, history)
	if user == nil {
		return nil, ErrUserNotFound
	}
	s.state = next
	s.mirror()
	return user, nil
}

// mirror writes the current state to durable storage. Callers hold the
// mutation lock, so a mirror can never carry a snapshot older than one
// already written.
func (s *BoardService) mirror() {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveState(s.state.Clone()); err != nil {
		log.Printf("failed to persist state: %v", err)
	}
}
