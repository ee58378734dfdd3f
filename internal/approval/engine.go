// Package approval moves documents through their approval chain. It is the
// only writer of a document's status and current step during approval.
package approval

import (
	"context"
	"errors"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"

	"go.uber.org/zap"
)

// DecisionResult is what a caller needs after a committed decision: the
// intents to dispatch and the facts to put in the audit log.
type DecisionResult struct {
	ActorID    uint
	TaskID     uint
	DocumentID uint
	Decision   domain.Decision
	Comment    *string

	DocumentStatus domain.DocumentStatus
	CurrentStep    int

	Notifications []domain.NotificationIntent
}

type Engine struct {
	store  ports.DecisionStore
	clock  ports.Clock
	logger *zap.Logger
}

func NewEngine(store ports.DecisionStore, clock ports.Clock, logger *zap.Logger) *Engine {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Engine{
		store:  store,
		clock:  clock,
		logger: logger.Named("approval"),
	}
}

// Decide applies decision to taskID on behalf of actorID. Validation and the
// write happen in one transaction; on any error nothing was written.
func (e *Engine) Decide(ctx context.Context, actorID, taskID uint, decision domain.Decision, comment string) (*DecisionResult, error) {
	if actorID == 0 {
		return nil, domain.NewDecisionError(domain.ErrInvalidActor, taskID, nil)
	}
	if _, err := domain.ParseDecision(string(decision)); err != nil {
		return nil, domain.NewDecisionError(domain.ErrInvalidDecision, taskID, nil)
	}

	var result *DecisionResult
	err := e.store.InDecisionTx(ctx, func(tx ports.DecisionTx) error {
		dc, err := tx.LoadDecisionContext(ctx, taskID)
		if err != nil {
			return err
		}
		if err := validate(dc, actorID, decision, comment); err != nil {
			return err
		}

		t := resolve(dc, decision, comment, e.clock.Now())
		if err := tx.CommitDecision(ctx, dc.Task.ID, dc.Document.ID, t.task, t.document); err != nil {
			return err
		}

		result = &DecisionResult{
			ActorID:        actorID,
			TaskID:         dc.Task.ID,
			DocumentID:     dc.Document.ID,
			Decision:       decision,
			Comment:        t.task.Comment,
			DocumentStatus: t.document.Status,
			CurrentStep:    t.document.CurrentStep,
			Notifications:  t.notifications,
		}
		return nil
	})
	if err != nil {
		derr := classify(taskID, err)
		e.logger.Debug("decision refused",
			zap.Uint("actor_id", actorID),
			zap.Uint("task_id", taskID),
			zap.String("decision", string(decision)),
			zap.Error(derr))
		return nil, derr
	}

	e.logger.Info("decision committed",
		zap.Uint("actor_id", actorID),
		zap.Uint("task_id", result.TaskID),
		zap.Uint("document_id", result.DocumentID),
		zap.String("decision", string(decision)),
		zap.String("document_status", string(result.DocumentStatus)),
		zap.Int("current_step", result.CurrentStep),
		zap.Int("notifications", len(result.Notifications)))
	return result, nil
}

var decisionKinds = []error{
	domain.ErrNotFound,
	domain.ErrNotAssignee,
	domain.ErrNotYetActionable,
	domain.ErrAlreadyDecided,
	domain.ErrSkipNotAllowed,
	domain.ErrCommentRequired,
	domain.ErrInvalidDecision,
}

// classify turns whatever came out of the transaction into a DecisionError.
// Anything that is not a known refusal is a storage failure.
func classify(taskID uint, err error) error {
	var derr *domain.DecisionError
	if errors.As(err, &derr) {
		return derr
	}
	for _, kind := range decisionKinds {
		if errors.Is(err, kind) {
			return domain.NewDecisionError(kind, taskID, nil)
		}
	}
	return domain.NewDecisionError(domain.ErrStorageFailure, taskID, err)
}
