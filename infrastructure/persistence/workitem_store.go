package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimsdesk/fnol/domain/query"
	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/internal/database"
	"gorm.io/gorm"
)

// WorkItemStore implements workitem.WorkItemStore using GORM.
type WorkItemStore struct {
	database.Repository[workitem.WorkItem, WorkItemModel]
}

// NewWorkItemStore creates a new WorkItemStore.
func NewWorkItemStore(db database.Database) WorkItemStore {
	return WorkItemStore{
		Repository: database.NewRepository[workitem.WorkItem, WorkItemModel](db, WorkItemMapper{}, "work item"),
	}
}

// FindOne retrieves a single work item, reporting workitem.ErrNotFound when absent.
func (s WorkItemStore) FindOne(ctx context.Context, options ...query.Option) (workitem.WorkItem, error) {
	item, err := s.Repository.FindOne(ctx, options...)
	if errors.Is(err, database.ErrNotFound) {
		return workitem.WorkItem{}, fmt.Errorf("%w: %w", workitem.ErrNotFound, err)
	}
	return item, err
}

// Create inserts a new work item.
func (s WorkItemStore) Create(ctx context.Context, item workitem.WorkItem) (workitem.WorkItem, error) {
	model := s.Mapper().ToModel(item)
	model.ID = 0
	if err := s.DB(ctx).Create(&model).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return workitem.WorkItem{}, fmt.Errorf("%w: %q", workitem.ErrDuplicateMessage, item.MessageID())
		}
		return workitem.WorkItem{}, fmt.Errorf("create work item: %w", err)
	}
	return s.Mapper().ToDomain(model), nil
}

// Save writes the mutable columns of an existing work item.
func (s WorkItemStore) Save(ctx context.Context, item workitem.WorkItem) (workitem.WorkItem, error) {
	model := s.Mapper().ToModel(item)
	result := s.DB(ctx).Model(&WorkItemModel{}).Where("id = ?", model.ID).Updates(map[string]any{
		"extracted_fields": model.ExtractedFields,
		"status":           model.Status,
		"updated_at":       model.UpdatedAt,
		"completed_at":     model.CompletedAt,
	})
	if result.Error != nil {
		return workitem.WorkItem{}, fmt.Errorf("save work item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workitem.WorkItem{}, fmt.Errorf("%w: id %d", workitem.ErrNotFound, model.ID)
	}
	return s.FindOne(ctx, query.WithID(model.ID))
}

// Delete removes a work item and its attachment rows in one transaction.
func (s WorkItemStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.Database(), func(tx *gorm.DB) error {
		if err := tx.Where("workitem_id = ?", id).Delete(&AttachmentModel{}).Error; err != nil {
			return fmt.Errorf("delete attachments: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&WorkItemModel{})
		if result.Error != nil {
			return fmt.Errorf("delete work item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: id %d", workitem.ErrNotFound, id)
		}
		return nil
	})
}
