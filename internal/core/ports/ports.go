package ports

import (
	"context"
	"time"

	"haccp-flow/internal/domain"
)

// Clock stamps decisions. Swapped for a fixed clock in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// DecisionContext is a consistent snapshot of one task, its document and all
// tasks of that document ordered by step.
type DecisionContext struct {
	Task     *domain.Task
	Document *domain.Document
	Tasks    []domain.Task
}

// TaskUpdate is the one-shot write applied to the decided task.
type TaskUpdate struct {
	Status      domain.TaskStatus
	Comment     *string
	CompletedAt time.Time
}

// DocumentUpdate is applied only if the document still has ExpectedVersion.
type DocumentUpdate struct {
	Status          domain.DocumentStatus
	CurrentStep     int
	ExpectedVersion int
}

// DecisionTx is the view of the store inside a single decision transaction.
type DecisionTx interface {
	// LoadDecisionContext returns domain.ErrNotFound when the task does not exist.
	LoadDecisionContext(ctx context.Context, taskID uint) (*DecisionContext, error)

	// CommitDecision writes both rows. It returns domain.ErrAlreadyDecided when
	// the task is no longer pending and domain.ErrNotYetActionable when the
	// document moved on since it was loaded.
	CommitDecision(ctx context.Context, taskID, documentID uint, task TaskUpdate, doc DocumentUpdate) error
}

// DecisionStore runs fn in one transaction. Returning an error from fn rolls
// everything back.
type DecisionStore interface {
	InDecisionTx(ctx context.Context, fn func(tx DecisionTx) error) error
}

// DocumentRepository covers everything outside a decision.
type DocumentRepository interface {
	// Create a document together with its whole task chain in one transaction
	Create(ctx context.Context, doc *domain.Document) error

	// GetByID returns the document with tasks ordered by step
	GetByID(ctx context.Context, id uint) (*domain.Document, error)

	FindTaskByID(ctx context.Context, id uint) (*domain.Task, error)

	// ListActionableTasks returns pending tasks of userID sitting at their document's current step
	ListActionableTasks(ctx context.Context, userID uint) ([]domain.Task, error)

	// UpdateStatus moves a document from one status to another, domain.ErrConflict if it is not in from
	UpdateStatus(ctx context.Context, id uint, from, to domain.DocumentStatus) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
}

// AuditRecorder keeps the trail of who did what.
type AuditRecorder interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
}

type AuditLog interface {
	AuditRecorder
	List(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// NotificationQueue is the hand-off between dispatch and delivery
type NotificationQueue interface {
	// Push an encoded intent to the end of the queue
	Push(ctx context.Context, payload []byte) error

	// Wait (Block) until an intent is available. A nil payload with a nil
	// error means the wait timed out.
	Pop(ctx context.Context) ([]byte, error)
}

// Dispatcher hands intents off for delivery. It never reports failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, intents []domain.NotificationIntent)
}

// AccessGate decides at the edge whether actorID may act on task.
type AccessGate interface {
	CanAct(ctx context.Context, actorID uint, task *domain.Task) error
}

// AuditMode tells whether the global write lock is on.
type AuditMode interface {
	Enabled(ctx context.Context) (bool, error)
	Set(ctx context.Context, enabled bool) error
}
