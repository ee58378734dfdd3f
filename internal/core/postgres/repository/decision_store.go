package repository

import (
	"context"
	"errors"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type decisionStore struct {
	db *gorm.DB
}

// NewDecisionStore creates a DecisionStore backed by row locks on the
// document and its tasks plus a version check on the document.
func NewDecisionStore(db *gorm.DB) ports.DecisionStore {
	return &decisionStore{db: db}
}

func (s *decisionStore) InDecisionTx(ctx context.Context, fn func(tx ports.DecisionTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&decisionTx{db: tx})
	})
}

type decisionTx struct {
	db *gorm.DB
}

func (t *decisionTx) LoadDecisionContext(ctx context.Context, taskID uint) (*ports.DecisionContext, error) {
	db := t.db.WithContext(ctx)

	var ref domain.Task
	if err := db.Select("id", "document_id").First(&ref, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	// The document row is the per-document lock: concurrent decisions on
	// the same document queue up here.
	var doc domain.Document
	if err := documentForUpdate(db, ref.DocumentID).First(&doc).Error; err != nil {
		return nil, err
	}

	var tasks []domain.Task
	if err := tasksForUpdate(db, doc.ID).Find(&tasks).Error; err != nil {
		return nil, err
	}

	dc := &ports.DecisionContext{Document: &doc, Tasks: tasks}
	for i := range tasks {
		if tasks[i].ID == taskID {
			task := tasks[i]
			dc.Task = &task
			break
		}
	}
	if dc.Task == nil {
		return nil, domain.ErrNotFound
	}
	return dc, nil
}

func documentForUpdate(db *gorm.DB, id uint) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
}

func tasksForUpdate(db *gorm.DB, documentID uint) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("document_id = ?", documentID).
		Order("step ASC")
}

func (t *decisionTx) CommitDecision(ctx context.Context, taskID, documentID uint, task ports.TaskUpdate, doc ports.DocumentUpdate) error {
	db := t.db.WithContext(ctx)

	result := db.Model(&domain.Task{}).
		Where("id = ? AND status = ?", taskID, domain.TaskPending).
		Updates(map[string]interface{}{
			"status":       task.Status,
			"comment":      task.Comment,
			"completed_at": task.CompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAlreadyDecided
	}

	result = db.Model(&domain.Document{}).
		Where("id = ? AND version = ?", documentID, doc.ExpectedVersion).
		Updates(map[string]interface{}{
			"status":       doc.Status,
			"current_step": doc.CurrentStep,
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Someone committed against this document since we loaded it.
		return domain.ErrNotYetActionable
	}
	return nil
}
