package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"haccp-flow/internal/api/dto"
	"haccp-flow/internal/approval"
	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"
	"haccp-flow/internal/metrics"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type DocumentService interface {
	CreateDocument(ctx context.Context, authorID uint, req dto.CreateDocumentRequest) (*domain.Document, error)
	GetDocument(ctx context.Context, id uint) (*domain.Document, error)
	ListInbox(ctx context.Context, userID uint) ([]domain.Task, error)
	DecideTask(ctx context.Context, actorID, taskID uint, decision domain.Decision, comment string) (*approval.DecisionResult, error)
	StartExecution(ctx context.Context, actorID, documentID uint) error
	CompleteExecution(ctx context.Context, actorID, documentID uint) error
}

type Deps struct {
	Documents  ports.DocumentRepository
	Engine     *approval.Engine
	Audit      ports.AuditRecorder
	Dispatcher ports.Dispatcher
	Gate       ports.AccessGate
	AuditMode  ports.AuditMode
	Clock      ports.Clock
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// The Implementation
type documentService struct {
	docs       ports.DocumentRepository
	engine     *approval.Engine
	audit      ports.AuditRecorder
	dispatcher ports.Dispatcher
	gate       ports.AccessGate
	auditMode  ports.AuditMode
	clock      ports.Clock
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// Constructor
func NewDocumentService(d Deps) DocumentService {
	clock := d.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &documentService{
		docs:       d.Documents,
		engine:     d.Engine,
		audit:      d.Audit,
		dispatcher: d.Dispatcher,
		gate:       d.Gate,
		auditMode:  d.AuditMode,
		clock:      clock,
		metrics:    d.Metrics,
		logger:     d.Logger.Named("documents"),
	}
}

func (s *documentService) CreateDocument(ctx context.Context, authorID uint, req dto.CreateDocumentRequest) (*domain.Document, error) {
	if err := s.checkWritable(ctx); err != nil {
		return nil, err
	}
	if authorID == 0 {
		return nil, domain.ErrInvalidActor
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidDocument)
	}
	if len(req.Steps) == 0 {
		return nil, fmt.Errorf("%w: at least one step is required", domain.ErrInvalidDocument)
	}

	// 1. Convert StepDTOs -> Task entities, step i is the i-th entry
	tasks := make([]domain.Task, 0, len(req.Steps))
	for i, st := range req.Steps {
		action := domain.TaskAction(st.Action)
		if !action.Valid() {
			return nil, fmt.Errorf("%w: step %d has unknown action %q", domain.ErrInvalidDocument, i, st.Action)
		}
		if st.AssigneeID == 0 {
			return nil, fmt.Errorf("%w: step %d has no assignee", domain.ErrInvalidDocument, i)
		}
		t := domain.NewTask(i, action, st.AssigneeID)
		t.CanSkip = st.CanSkip
		t.CommentRequired = st.CommentRequired
		tasks = append(tasks, *t)
	}

	doc := domain.NewDocument(req.Title, authorID, req.RecipientID, tasks)
	doc.Body = req.Body

	// 2. TRANSACTION: document and its whole chain together
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.record(ctx, authorID, domain.AuditDocumentCreated, "document", doc.ID, map[string]any{
		"title": doc.Title,
		"steps": len(doc.Tasks),
	})

	// 3. The first assignee can act right away
	s.dispatch(ctx, []domain.NotificationIntent{domain.NewAssigneeIntent(doc, &doc.Tasks[0], s.clock.Now())})

	s.logger.Info("document created",
		zap.Uint("document_id", doc.ID),
		zap.Uint("author_id", authorID),
		zap.Int("steps", len(doc.Tasks)))
	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, id uint) (*domain.Document, error) {
	return s.docs.GetByID(ctx, id)
}

func (s *documentService) ListInbox(ctx context.Context, userID uint) ([]domain.Task, error) {
	return s.docs.ListActionableTasks(ctx, userID)
}

// DecideTask is the request-side wrapper around the engine: write lock and
// edge access first, then the engine transaction, then audit and dispatch.
func (s *documentService) DecideTask(ctx context.Context, actorID, taskID uint, decision domain.Decision, comment string) (*approval.DecisionResult, error) {
	start := time.Now()
	res, err := s.decide(ctx, actorID, taskID, decision, comment)

	outcome := "ok"
	if err != nil {
		outcome = domain.Code(err)
	}
	s.metrics.ObserveDecision(decisionLabel(decision), outcome, time.Since(start))
	if err != nil {
		return nil, err
	}

	details := map[string]any{
		"document_id":     res.DocumentID,
		"decision":        res.Decision,
		"document_status": res.DocumentStatus,
		"current_step":    res.CurrentStep,
	}
	if res.Comment != nil {
		details["comment"] = *res.Comment
	}
	s.record(ctx, actorID, domain.AuditTaskDecided, "task", res.TaskID, details)

	s.dispatch(ctx, res.Notifications)
	return res, nil
}

// decisionLabel keeps the metric label set closed whatever the client sent.
func decisionLabel(decision domain.Decision) string {
	d, err := domain.ParseDecision(string(decision))
	if err != nil {
		return "invalid"
	}
	return string(d)
}

func (s *documentService) decide(ctx context.Context, actorID, taskID uint, decision domain.Decision, comment string) (*approval.DecisionResult, error) {
	if err := s.checkWritable(ctx); err != nil {
		return nil, err
	}

	task, err := s.docs.FindTaskByID(ctx, taskID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// The engine reports it with the task id attached.
	case err != nil:
		return nil, domain.NewDecisionError(domain.ErrStorageFailure, taskID, err)
	default:
		if err := s.gate.CanAct(ctx, actorID, task); err != nil {
			return nil, err
		}
	}

	return s.engine.Decide(ctx, actorID, taskID, decision, comment)
}

func (s *documentService) StartExecution(ctx context.Context, actorID, documentID uint) error {
	_, err := s.moveExecution(ctx, actorID, documentID, domain.DocumentApproved, domain.DocumentInExecution, domain.AuditExecutionStarted)
	return err
}

// CompleteExecution also tells the author the document was carried out.
func (s *documentService) CompleteExecution(ctx context.Context, actorID, documentID uint) error {
	doc, err := s.moveExecution(ctx, actorID, documentID, domain.DocumentInExecution, domain.DocumentExecuted, domain.AuditExecutionDone)
	if err != nil {
		return err
	}
	s.dispatch(ctx, []domain.NotificationIntent{domain.NewAuthorIntent(doc, domain.DocumentExecuted, nil, s.clock.Now())})
	return nil
}

func (s *documentService) moveExecution(ctx context.Context, actorID, documentID uint, from, to domain.DocumentStatus, action string) (*domain.Document, error) {
	if err := s.checkWritable(ctx); err != nil {
		return nil, err
	}
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.RecipientID == nil || *doc.RecipientID != actorID {
		return nil, domain.ErrNotRecipient
	}
	if doc.Status != from {
		return nil, fmt.Errorf("%w: %s -> %s from %s", domain.ErrInvalidTransition, from, to, doc.Status)
	}
	if err := s.docs.UpdateStatus(ctx, documentID, from, to); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("%w: status changed concurrently", domain.ErrInvalidTransition)
		}
		return nil, err
	}
	doc.Status = to

	s.record(ctx, actorID, action, "document", documentID, map[string]any{"from": from, "to": to})
	return doc, nil
}

// checkWritable fails closed: if the flag cannot be read, writes are refused.
func (s *documentService) checkWritable(ctx context.Context) error {
	enabled, err := s.auditMode.Enabled(ctx)
	if err != nil {
		s.logger.Error("failed to read audit mode, refusing write", zap.Error(err))
		return domain.ErrAuditModeLocked
	}
	if enabled {
		return domain.ErrAuditModeLocked
	}
	return nil
}

// record writes an audit entry. A failed audit write is logged; the change
// it describes is already committed.
func (s *documentService) record(ctx context.Context, actorID uint, action, entityType string, entityID uint, details map[string]any) {
	raw, err := json.Marshal(details)
	if err != nil {
		s.logger.Error("failed to encode audit details", zap.String("action", action), zap.Error(err))
		raw = []byte("{}")
	}
	entry := &domain.AuditEntry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    datatypes.JSON(raw),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry",
			zap.String("action", action),
			zap.Uint("actor_id", actorID),
			zap.Uint("entity_id", entityID),
			zap.Error(err))
	}
}

// dispatch runs detached from the request so a slow queue never holds up
// the response.
func (s *documentService) dispatch(ctx context.Context, intents []domain.NotificationIntent) {
	if len(intents) == 0 {
		return
	}
	go s.dispatcher.Dispatch(context.WithoutCancel(ctx), intents)
}
