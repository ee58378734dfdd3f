package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	// NotifyAssignee tells a user their task became actionable.
	NotifyAssignee NotificationKind = "assignee"
	// NotifyAuthor tells the document author the approval outcome.
	NotifyAuthor NotificationKind = "author"
)

// NotificationIntent describes who has to hear about a transition. It is
// produced inside the decision transaction and delivered after commit.
type NotificationIntent struct {
	ID         uuid.UUID        `json:"id"`
	Kind       NotificationKind `json:"kind"`
	DocumentID uint             `json:"document_id"`
	UserID     uint             `json:"user_id"`

	// Assignee intents.
	TaskID uint `json:"task_id,omitempty"`
	Step   int  `json:"step,omitempty"`

	// Author intents.
	Status  DocumentStatus `json:"status,omitempty"`
	Comment *string        `json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func NewAssigneeIntent(doc *Document, task *Task, at time.Time) NotificationIntent {
	return NotificationIntent{
		ID:         uuid.New(),
		Kind:       NotifyAssignee,
		DocumentID: doc.ID,
		UserID:     task.AssigneeID,
		TaskID:     task.ID,
		Step:       task.Step,
		CreatedAt:  at,
	}
}

func NewAuthorIntent(doc *Document, status DocumentStatus, comment *string, at time.Time) NotificationIntent {
	return NotificationIntent{
		ID:         uuid.New(),
		Kind:       NotifyAuthor,
		DocumentID: doc.ID,
		UserID:     doc.AuthorID,
		Status:     status,
		Comment:    comment,
		CreatedAt:  at,
	}
}
