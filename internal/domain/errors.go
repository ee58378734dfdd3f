package domain

import (
	"errors"
	"fmt"
)

// Decision failures. All of them are reported before anything is written,
// except ErrStorageFailure which means the transaction rolled back.
var (
	ErrNotFound         = errors.New("task not found")
	ErrNotAssignee      = errors.New("actor is not the task assignee")
	ErrNotYetActionable = errors.New("task is not the current step of its document")
	ErrAlreadyDecided   = errors.New("task is already decided")
	ErrSkipNotAllowed   = errors.New("task cannot be skipped")
	ErrCommentRequired  = errors.New("task requires a comment")
	ErrInvalidDecision  = errors.New("invalid decision")
	ErrInvalidActor     = errors.New("invalid actor")
	ErrStorageFailure   = errors.New("storage failure")
)

// Service level failures around the engine.
var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidDocument   = errors.New("invalid document")
	ErrAuditModeLocked   = errors.New("audit mode is on, writes are locked")
	ErrAccessDenied      = errors.New("access denied")
	ErrNotRecipient      = errors.New("actor is not the document recipient")
	ErrInvalidTransition = errors.New("document status does not allow this transition")
	ErrConflict          = errors.New("concurrent update")
)

// DecisionError carries one of the decision sentinels together with the task
// it was raised for and an optional cause.
type DecisionError struct {
	Kind   error
	TaskID uint
	Err    error
}

func NewDecisionError(kind error, taskID uint, cause error) *DecisionError {
	return &DecisionError{Kind: kind, TaskID: taskID, Err: cause}
}

func (e *DecisionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task %d: %v: %v", e.TaskID, e.Kind, e.Err)
	}
	return fmt.Sprintf("task %d: %v", e.TaskID, e.Kind)
}

func (e *DecisionError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

var codes = []struct {
	err  error
	code string
}{
	{ErrNotFound, "not_found"},
	{ErrNotAssignee, "not_assignee"},
	{ErrNotYetActionable, "not_yet_actionable"},
	{ErrAlreadyDecided, "already_decided"},
	{ErrSkipNotAllowed, "skip_not_allowed"},
	{ErrCommentRequired, "comment_required"},
	{ErrInvalidDecision, "invalid_decision"},
	{ErrInvalidActor, "invalid_actor"},
	{ErrStorageFailure, "storage_failure"},
	{ErrDocumentNotFound, "document_not_found"},
	{ErrInvalidDocument, "invalid_document"},
	{ErrAuditModeLocked, "audit_mode_locked"},
	{ErrAccessDenied, "access_denied"},
	{ErrNotRecipient, "not_recipient"},
	{ErrInvalidTransition, "invalid_transition"},
	{ErrConflict, "conflict"},
}

// Code returns a stable machine readable code for err, "internal" when err
// is none of the known failures.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
