package domain

import (
	"sort"
	"time"
)

type DocumentStatus string

const (
	DocumentDraft       DocumentStatus = "draft"
	DocumentInProgress  DocumentStatus = "in_progress"
	DocumentApproved    DocumentStatus = "approved"
	DocumentRejected    DocumentStatus = "rejected"
	DocumentInExecution DocumentStatus = "in_execution"
	DocumentExecuted    DocumentStatus = "executed"
)

// Document is the approvable entity. Status and CurrentStep belong to the
// approval engine: nothing else writes them while a chain is running.
type Document struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Body        string         `gorm:"type:text" json:"body"`
	Status      DocumentStatus `gorm:"type:varchar(20);index;default:'draft'" json:"status"`
	CurrentStep int            `gorm:"not null;default:0" json:"current_step"`
	AuthorID    uint           `gorm:"index;not null" json:"author_id"`
	RecipientID *uint          `gorm:"index" json:"recipient_id"`

	// Bumped on every engine commit, see DecisionStore.
	Version int `gorm:"not null;default:1" json:"version"`

	Tasks []Task `gorm:"foreignKey:DocumentID" json:"tasks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDocument materializes the whole chain up front: step i is tasks[i].
func NewDocument(title string, authorID uint, recipientID *uint, tasks []Task) *Document {
	for i := range tasks {
		tasks[i].Step = i
		tasks[i].Status = TaskPending
	}
	status := DocumentInProgress
	if len(tasks) == 0 {
		status = DocumentDraft
	}
	return &Document{
		Title:       title,
		Status:      status,
		CurrentStep: 0,
		AuthorID:    authorID,
		RecipientID: recipientID,
		Version:     1,
		Tasks:       tasks,
	}
}

// ApprovalClosed reports whether the approval phase reached a terminal state.
func (d *Document) ApprovalClosed() bool {
	return d.Status == DocumentApproved || d.Status == DocumentRejected
}

// SortTasks orders tasks by step, ascending.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Step < tasks[j].Step })
}

// NextPendingAfter returns the first pending task with a step greater than
// step. tasks must be ordered by step. Steps may have gaps.
func NextPendingAfter(tasks []Task, step int) *Task {
	for i := range tasks {
		if tasks[i].Step > step && tasks[i].IsPending() {
			return &tasks[i]
		}
	}
	return nil
}
