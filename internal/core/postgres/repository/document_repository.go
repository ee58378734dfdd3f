package repository

import (
	"context"
	"errors"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"

	"gorm.io/gorm"
)

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository
func NewDocumentRepository(db *gorm.DB) ports.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tasks").Create(doc).Error; err != nil {
			return err
		}

		if len(doc.Tasks) > 0 {
			for i := range doc.Tasks {
				doc.Tasks[i].DocumentID = doc.ID
			}
			if err := tx.Create(&doc.Tasks).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("step ASC") }).
		First(&doc, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindTaskByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *documentRepository) ListActionableTasks(ctx context.Context, userID uint) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Select("tasks.*").
		Joins("JOIN documents ON documents.id = tasks.document_id").
		Where("tasks.assignee_id = ? AND tasks.status = ?", userID, domain.TaskPending).
		Where("documents.status = ? AND documents.current_step = tasks.step", domain.DocumentInProgress).
		Order("tasks.document_id ASC, tasks.step ASC").
		Find(&tasks).Error
	return tasks, err
}

// UpdateStatus only moves documents that are still in from, so two racing
// transitions cannot both succeed.
func (r *documentRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.DocumentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":  to,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Document{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrDocumentNotFound
	}
	return domain.ErrConflict
}
