package domain

import (
	"time"
)

type TaskStatus string

const (
	TaskPending  TaskStatus = "pending"
	TaskApproved TaskStatus = "approved"
	TaskRejected TaskStatus = "rejected"
	TaskSkipped  TaskStatus = "skipped"
)

// TaskAction only changes how a task is labelled to the assignee.
type TaskAction string

const (
	ActionApprove TaskAction = "approve"
	ActionSign    TaskAction = "sign"
	ActionReview  TaskAction = "review"
)

func (a TaskAction) Valid() bool {
	switch a {
	case ActionApprove, ActionSign, ActionReview:
		return true
	}
	return false
}

// Label is the verb shown next to the task in messages and lists.
func (a TaskAction) Label() string {
	switch a {
	case ActionSign:
		return "signature"
	case ActionReview:
		return "review"
	default:
		return "approval"
	}
}

type Task struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	DocumentID      uint       `gorm:"index;not null;uniqueIndex:idx_task_document_step" json:"document_id"`
	Step            int        `gorm:"not null;uniqueIndex:idx_task_document_step" json:"step"`
	Status          TaskStatus `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	Action          TaskAction `gorm:"type:varchar(20);not null" json:"action"`
	AssigneeID      uint       `gorm:"index;not null" json:"assignee_id"`
	CanSkip         bool       `gorm:"default:false" json:"can_skip"`
	CommentRequired bool       `gorm:"default:false" json:"comment_required"`
	Comment         *string    `gorm:"type:text" json:"comment"`
	CompletedAt     *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewTask(step int, action TaskAction, assigneeID uint) *Task {
	return &Task{
		Step:       step,
		Status:     TaskPending,
		Action:     action,
		AssigneeID: assigneeID,
	}
}

func (t *Task) IsPending() bool {
	return t.Status == TaskPending
}
