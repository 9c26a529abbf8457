// Package taskstore is the client-side task cache behind the board view.
// Creates, updates and deletes are applied after the server confirms them;
// priority changes from drag-and-drop are applied first and rolled back if
// the server refuses.
package taskstore

import (
	"context"
	"errors"
	"sync"

	"tracker/internal/client"
	"tracker/internal/dto"
	"tracker/internal/model"

	log "github.com/sirupsen/logrus"
)

var (
	ErrTaskNotFound    = errors.New("task not found in store")
	ErrUpdateInFlight  = errors.New("priority update already in flight for task")
	ErrInvalidPriority = errors.New("invalid priority")
	// ErrStale is returned when Reset ran while the request was outstanding;
	// its result was discarded.
	ErrStale = errors.New("store was reset during request")
)

// API is the subset of the HTTP client the store needs.
type API interface {
	ListTasks(ctx context.Context) ([]dto.Task, error)
	CreateTask(ctx context.Context, input dto.TaskCreate) (dto.Task, error)
	UpdateTask(ctx context.Context, id string, patch dto.TaskPatch) (dto.Task, error)
	DeleteTask(ctx context.Context, id string) error
	UpdatePriority(ctx context.Context, id string, p model.Priority) (dto.Task, error)
	AddAttachments(ctx context.Context, id string, files []client.Upload) (dto.Task, error)
}

// Snapshot is a copy of the store state handed to readers and listeners.
type Snapshot struct {
	Tasks            []dto.Task
	Loading          bool
	Err              error
	Dragging         bool
	DraggedID        string
	OriginalPriority model.Priority
}

type drag struct {
	active   bool
	id       string
	original model.Priority
}

type Store struct {
	api API
	log *log.Logger

	mu        sync.Mutex
	tasks     []dto.Task
	loading   bool
	err       error
	drag      drag
	inflight  map[string]struct{}
	gen       uint64
	listeners map[int]func(Snapshot)
	nextID    int
}

type Option func(*Store)

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

func New(api API, opts ...Option) *Store {
	s := &Store{
		api:       api,
		log:       log.StandardLogger(),
		inflight:  make(map[string]struct{}),
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Tasks() []dto.Task { return s.Snapshot().Tasks }
func (s *Store) Err() error        { return s.Snapshot().Err }

func (s *Store) snapshotLocked() Snapshot {
	tasks := make([]dto.Task, len(s.tasks))
	copy(tasks, s.tasks)
	return Snapshot{
		Tasks:            tasks,
		Loading:          s.loading,
		Err:              s.err,
		Dragging:         s.drag.active,
		DraggedID:        s.drag.id,
		OriginalPriority: s.drag.original,
	}
}

// unlockAndNotify releases the lock and then calls the listeners.
func (s *Store) unlockAndNotify() {
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// begin marks a pessimistic request as started and returns its generation.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	gen := s.gen
	s.unlockAndNotify()
	return gen
}

// finish locks the store for applying a result. It returns false, with the
// lock released, when the result belongs to a generation before a Reset.
func (s *Store) finish(gen uint64, err error) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}
	s.loading = false
	if err != nil {
		s.err = err
	}
	return true
}

// FetchAll replaces the cached tasks with the server's list. On failure the
// previous tasks stay and the error is recorded.
func (s *Store) FetchAll(ctx context.Context) error {
	gen := s.begin()
	tasks, err := s.api.ListTasks(ctx)
	if !s.finish(gen, err) {
		return ErrStale
	}
	if err == nil {
		s.tasks = tasks
	}
	s.unlockAndNotify()
	return err
}

func (s *Store) Create(ctx context.Context, input dto.TaskCreate) (dto.Task, error) {
	gen := s.begin()
	task, err := s.api.CreateTask(ctx, input)
	if !s.finish(gen, err) {
		return task, ErrStale
	}
	if err == nil {
		s.tasks = append(s.tasks, task)
	}
	s.unlockAndNotify()
	return task, err
}

func (s *Store) Update(ctx context.Context, id string, patch dto.TaskPatch) (dto.Task, error) {
	gen := s.begin()
	task, err := s.api.UpdateTask(ctx, id, patch)
	if !s.finish(gen, err) {
		return task, ErrStale
	}
	if err == nil {
		if i := s.indexLocked(id); i >= 0 {
			s.tasks[i] = task
		}
	}
	s.unlockAndNotify()
	return task, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	gen := s.begin()
	err := s.api.DeleteTask(ctx, id)
	if !s.finish(gen, err) {
		return ErrStale
	}
	if err == nil {
		if i := s.indexLocked(id); i >= 0 {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		}
	}
	s.unlockAndNotify()
	return err
}

// AddAttachments uploads files and takes the server's attachment list for the task.
func (s *Store) AddAttachments(ctx context.Context, id string, files []client.Upload) (dto.Task, error) {
	gen := s.begin()
	task, err := s.api.AddAttachments(ctx, id, files)
	if !s.finish(gen, err) {
		return task, ErrStale
	}
	if err == nil {
		if i := s.indexLocked(id); i >= 0 {
			s.tasks[i].Attachments = task.Attachments
		}
	}
	s.unlockAndNotify()
	return task, err
}

// UpdatePriority applies p locally, then asks the server. If the server call
// fails the previous priority is restored and the error recorded. Only one
// priority update per task may be outstanding.
func (s *Store) UpdatePriority(ctx context.Context, id string, p model.Priority) error {
	if !p.Valid() {
		return ErrInvalidPriority
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrTaskNotFound
	}
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return ErrUpdateInFlight
	}
	previous := s.tasks[i].Priority
	s.tasks[i].Priority = p
	s.inflight[id] = struct{}{}
	gen := s.gen
	s.unlockAndNotify()

	updated, err := s.api.UpdatePriority(ctx, id, p)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return ErrStale
	}
	delete(s.inflight, id)
	i = s.indexLocked(id)
	if err != nil {
		if i >= 0 && s.tasks[i].Priority == p {
			s.tasks[i].Priority = previous
		}
		s.err = err
		s.log.WithError(err).WithField("task_id", id).Warn("priority update rolled back")
	} else if i >= 0 && updated.ID == id {
		s.tasks[i] = updated
	}
	s.unlockAndNotify()
	return err
}

// StartDrag records the task being dragged and its current priority.
func (s *Store) StartDrag(id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrTaskNotFound
	}
	s.drag = drag{active: true, id: id, original: s.tasks[i].Priority}
	s.unlockAndNotify()
	return nil
}

// HandleDrop finishes a drag onto the lane for p. Dropping back onto the
// original lane makes no request. The drag state is released before the
// request goes out, so a drag started while it is in flight is kept.
func (s *Store) HandleDrop(ctx context.Context, p model.Priority) error {
	s.mu.Lock()
	d := s.drag
	s.drag = drag{}
	s.unlockAndNotify()

	if !d.active || p == d.original {
		return nil
	}
	return s.UpdatePriority(ctx, d.id, p)
}

func (s *Store) EndDrag() {
	s.mu.Lock()
	s.drag = drag{}
	s.unlockAndNotify()
}

// Reset drops all state. Results of requests started before the reset are discarded.
func (s *Store) Reset() {
	s.mu.Lock()
	s.tasks = nil
	s.loading = false
	s.err = nil
	s.drag = drag{}
	s.inflight = make(map[string]struct{})
	s.gen++
	s.unlockAndNotify()
}
