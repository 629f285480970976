package persistence

import (
	"context"
	"fmt"

	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttachmentStore implements workitem.AttachmentStore using GORM.
type AttachmentStore struct {
	database.Repository[workitem.Attachment, AttachmentModel]
}

// NewAttachmentStore creates a new AttachmentStore.
func NewAttachmentStore(db database.Database) AttachmentStore {
	return AttachmentStore{
		Repository: database.NewRepository[workitem.Attachment, AttachmentModel](db, AttachmentMapper{}, "attachment"),
	}
}

// Create inserts the attachment unless its (workitem_id, filename) pair is
// already stored, in which case the existing row is returned. The insert and
// the lookup of a conflicting row share one transaction.
func (s AttachmentStore) Create(ctx context.Context, attachment workitem.Attachment) (workitem.Attachment, bool, error) {
	type outcome struct {
		model   AttachmentModel
		created bool
	}

	res, err := database.WithTransactionResult(ctx, s.Database(), func(tx *gorm.DB) (outcome, error) {
		model := s.Mapper().ToModel(attachment)
		model.ID = 0

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workitem_id"}, {Name: "filename"}},
			DoNothing: true,
		}).Create(&model)
		if result.Error != nil {
			return outcome{}, fmt.Errorf("create attachment: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			return outcome{model: model, created: true}, nil
		}

		var existing AttachmentModel
		err := tx.Where("workitem_id = ? AND filename = ?", attachment.WorkItemID(), attachment.Filename()).
			First(&existing).Error
		if err != nil {
			return outcome{}, fmt.Errorf("find existing attachment: %w", err)
		}
		return outcome{model: existing}, nil
	})
	if err != nil {
		return workitem.Attachment{}, false, err
	}
	return s.Mapper().ToDomain(res.model), res.created, nil
}
