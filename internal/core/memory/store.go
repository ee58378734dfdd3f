// Package memory is an in-process document store. Decisions on one document
// are serialized by a per-document mutex, different documents never block
// each other.
package memory

import (
	"context"
	"sort"
	"sync"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"
)

type Store struct {
	mu     sync.RWMutex
	docs   map[uint]*domain.Document
	tasks  map[uint]*domain.Task
	locks  map[uint]*sync.Mutex
	nextID uint

	// FailCommit, when set, is returned by every CommitDecision.
	FailCommit error
}

func NewStore() *Store {
	return &Store{
		docs:  make(map[uint]*domain.Document),
		tasks: make(map[uint]*domain.Task),
		locks: make(map[uint]*sync.Mutex),
	}
}

func (s *Store) Create(ctx context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	doc.ID = s.nextID
	stored := *doc
	stored.Tasks = nil
	s.docs[doc.ID] = &stored
	s.locks[doc.ID] = &sync.Mutex{}

	for i := range doc.Tasks {
		s.nextID++
		doc.Tasks[i].ID = s.nextID
		doc.Tasks[i].DocumentID = doc.ID
		t := doc.Tasks[i]
		s.tasks[t.ID] = &t
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uint) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	doc := *d
	doc.Tasks = s.tasksOf(id)
	return &doc, nil
}

func (s *Store) FindTaskByID(ctx context.Context, id uint) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	task := *t
	return &task, nil
}

func (s *Store) ListActionableTasks(ctx context.Context, userID uint) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Task
	for _, t := range s.tasks {
		d := s.docs[t.DocumentID]
		if t.AssigneeID == userID && t.IsPending() && d.Status == domain.DocumentInProgress && d.CurrentStep == t.Step {
			out = append(out, *t)
		}
	}
	// Same order as the SQL store: document, then step.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].Step < out[j].Step
	})
	return out, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uint, from, to domain.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	if d.Status != from {
		return domain.ErrConflict
	}
	d.Status = to
	d.Version++
	return nil
}

// tasksOf returns copies ordered by step. Caller holds s.mu.
func (s *Store) tasksOf(docID uint) []domain.Task {
	var out []domain.Task
	for _, t := range s.tasks {
		if t.DocumentID == docID {
			out = append(out, *t)
		}
	}
	domain.SortTasks(out)
	return out
}

func (s *Store) InDecisionTx(ctx context.Context, fn func(tx ports.DecisionTx) error) error {
	tx := &decisionTx{store: s}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

type stagedDecision struct {
	taskID, documentID uint
	task               ports.TaskUpdate
	doc                ports.DocumentUpdate
}

type decisionTx struct {
	store  *Store
	held   []*sync.Mutex
	staged []stagedDecision
}

func (tx *decisionTx) lockDocument(id uint) {
	tx.store.mu.RLock()
	l := tx.store.locks[id]
	tx.store.mu.RUnlock()

	for _, h := range tx.held {
		if h == l {
			return
		}
	}
	l.Lock()
	tx.held = append(tx.held, l)
}

func (tx *decisionTx) release() {
	for _, l := range tx.held {
		l.Unlock()
	}
	tx.held = nil
}

func (tx *decisionTx) LoadDecisionContext(ctx context.Context, taskID uint) (*ports.DecisionContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := tx.store
	s.mu.RLock()
	t, ok := s.tasks[taskID]
	var docID uint
	if ok {
		docID = t.DocumentID
	}
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	tx.lockDocument(docID)

	s.mu.RLock()
	defer s.mu.RUnlock()
	task := *s.tasks[taskID]
	doc := *s.docs[docID]
	return &ports.DecisionContext{
		Task:     &task,
		Document: &doc,
		Tasks:    s.tasksOf(docID),
	}, nil
}

func (tx *decisionTx) CommitDecision(ctx context.Context, taskID, documentID uint, task ports.TaskUpdate, doc ports.DocumentUpdate) error {
	s := tx.store
	if s.FailCommit != nil {
		return s.FailCommit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.tasks[taskID].IsPending() {
		return domain.ErrAlreadyDecided
	}
	if s.docs[documentID].Version != doc.ExpectedVersion {
		return domain.ErrNotYetActionable
	}
	tx.staged = append(tx.staged, stagedDecision{taskID: taskID, documentID: documentID, task: task, doc: doc})
	return nil
}

func (tx *decisionTx) apply() {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range tx.staged {
		t := s.tasks[st.taskID]
		t.Status = st.task.Status
		t.Comment = st.task.Comment
		completed := st.task.CompletedAt
		t.CompletedAt = &completed

		d := s.docs[st.documentID]
		d.Status = st.doc.Status
		d.CurrentStep = st.doc.CurrentStep
		d.Version++
	}
}
