package approval

import (
	"strings"
	"time"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"
)

// validate runs the checks in a fixed order so the same request always
// reports the same failure.
func validate(dc *ports.DecisionContext, actorID uint, decision domain.Decision, comment string) error {
	task, doc := dc.Task, dc.Document

	if task.AssigneeID != actorID {
		return domain.ErrNotAssignee
	}
	if doc.CurrentStep != task.Step {
		return domain.ErrNotYetActionable
	}
	if !task.IsPending() {
		return domain.ErrAlreadyDecided
	}
	if doc.ApprovalClosed() {
		return domain.ErrNotYetActionable
	}
	if decision == domain.DecisionSkip && !task.CanSkip {
		return domain.ErrSkipNotAllowed
	}
	if decision == domain.DecisionComplete && task.CommentRequired && strings.TrimSpace(comment) == "" {
		return domain.ErrCommentRequired
	}
	return nil
}

// transition is the planned outcome of one decision.
type transition struct {
	task          ports.TaskUpdate
	document      ports.DocumentUpdate
	notifications []domain.NotificationIntent
}

// resolve computes the writes and intents for a validated decision. It does
// not touch dc.
func resolve(dc *ports.DecisionContext, decision domain.Decision, comment string, now time.Time) transition {
	task, doc := dc.Task, dc.Document

	var stored *string
	if strings.TrimSpace(comment) != "" {
		c := comment
		stored = &c
	}

	t := transition{
		task: ports.TaskUpdate{
			Status:      decision.TaskStatus(),
			Comment:     stored,
			CompletedAt: now,
		},
		document: ports.DocumentUpdate{
			Status:          doc.Status,
			CurrentStep:     doc.CurrentStep,
			ExpectedVersion: doc.Version,
		},
	}

	if decision == domain.DecisionReject {
		t.document.Status = domain.DocumentRejected
		t.notifications = append(t.notifications, domain.NewAuthorIntent(doc, domain.DocumentRejected, stored, now))
		return t
	}

	next := domain.NextPendingAfter(dc.Tasks, task.Step)
	if next == nil {
		t.document.CurrentStep = task.Step + 1
		// Skipping the last step leaves the status alone.
		if decision == domain.DecisionComplete {
			t.document.Status = domain.DocumentApproved
			t.notifications = append(t.notifications, domain.NewAuthorIntent(doc, domain.DocumentApproved, nil, now))
		}
		return t
	}

	t.document.CurrentStep = next.Step
	t.notifications = append(t.notifications, domain.NewAssigneeIntent(doc, next, now))
	return t
}
