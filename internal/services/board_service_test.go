package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow-hq/taskflow-api/internal/models"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

type persisterSpy struct {
	saves []store.State
	err   error
}

func (p *persisterSpy) SaveState(s store.State) error {
	p.saves = append(p.saves, s)
	return p.err
}

func TestBoardService_MirrorsEveryMutation(t *testing.T) {
	persist := &persisterSpy{}
	board := NewBoardService(store.State{}, persist)

	task := board.CreateTask(store.CreateTaskInput{Title: "Mirror me"})
	require.Len(t, persist.saves, 1)

	status := models.TaskStatusDone
	_, err := board.UpdateTask(task.ID, store.TaskPatch{Status: &status})
	require.NoError(t, err)
	require.Len(t, persist.saves, 2)

	// the mirrored snapshot reflects the transition
	last := persist.saves[len(persist.saves)-1]
	got, ok := last.FindTask(task.ID)
	require.True(t, ok)
	assert.Equal(t, models.TaskStatusDone, got.Status)
}

// slowPersister stalls inside SaveState so concurrent mutations race the
// durable write.
type slowPersister struct {
	mu    sync.Mutex
	saves []store.State
}

func (p *slowPersister) SaveState(s store.State) error {
	time.Sleep(5 * time.Millisecond)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, s)
	return nil
}

// Concurrent mutations must mirror in commit order: a slow durable write
// for an earlier transition may never land after (and overwrite) a later
// one, or an acknowledged mutation would vanish on restart.
func TestBoardService_ConcurrentMirrorsLandInCommitOrder(t *testing.T) {
	persist := &slowPersister{}
	board := NewBoardService(store.State{}, persist)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			board.CreateTask(store.CreateTaskInput{Title: fmt.Sprintf("Task %d", i)})
		}(i)
	}
	wg.Wait()

	require.Len(t, persist.saves, writers)
	for i, save := range persist.saves {
		assert.Len(t, save.Tasks, i+1)
	}

	last := persist.saves[len(persist.saves)-1]
	assert.Equal(t, len(board.Snapshot().Tasks), len(last.Tasks))
}

func TestBoardService_PersistFailureDoesNotRollBack(t *testing.T) {
	persist := &persisterSpy{err: errors.New("disk full")}
	board := NewBoardService(store.State{}, persist)

	task := board.CreateTask(store.CreateTaskInput{Title: "Survives"})

	got, ok := board.Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Survives", got.Title)
}

func TestBoardService_RejectedDeleteDoesNotMirror(t *testing.T) {
	persist := &persisterSpy{}
	board := NewBoardService(store.State{}, persist)
	task := board.CreateTask(store.CreateTaskInput{Title: "Protected"})
	saves := len(persist.saves)

	err := board.DeleteTask(task.ID, models.User{ID: "u-1", Role: models.RoleStaff})

	assert.ErrorIs(t, err, store.ErrNotAdmin)
	assert.Len(t, persist.saves, saves)

	_, ok := board.Task(task.ID)
	assert.True(t, ok)
}

func TestBoardService_UpdateAbsentTask(t *testing.T) {
	board := NewBoardService(store.State{}, nil)

	title := "nope"
	_, err := board.UpdateTask("missing", store.TaskPatch{Title: &title})

	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestBoardService_DeleteUserCascades(t *testing.T) {
	persist := &persisterSpy{}
	board := NewBoardService(store.State{}, persist)

	staff := board.RegisterStaff("Staff", "staff@example.com")
	task := board.CreateTask(store.CreateTaskInput{Title: "Theirs", AssignedTo: staff.ID})

	board.DeleteUser(staff.ID)

	_, ok := board.User(staff.ID)
	assert.False(t, ok)

	got, ok := board.Task(task.ID)
	require.True(t, ok)
	assert.Empty(t, got.AssignedTo)
}

func TestBoardService_SnapshotIsIsolated(t *testing.T) {
	board := NewBoardService(store.State{}, nil)
	board.CreateTask(store.CreateTaskInput{Title: "Original"})

	snapshot := board.Snapshot()
	snapshot.Tasks[0].Title = "Mutated copy"

	fresh := board.Snapshot()
	assert.Equal(t, "Original", fresh.Tasks[0].Title)
}
