package repository

import (
	"context"
	"errors"
	"time"

	"github.com/eduforge/edu-file-gateway/entity"
	"github.com/eduforge/edu-file-gateway/fault"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileRecordRepository is the persistence boundary for object metadata.
// No business rules live here.
type FileRecordRepository struct {
	db *gorm.DB
}

func NewFileRecordRepository(db *gorm.DB) *FileRecordRepository {
	return &FileRecordRepository{db: db}
}

// Upsert creates or replaces the record keyed by path, so re-running an
// upload is idempotent.
func (r *FileRecordRepository) Upsert(ctx context.Context, record *entity.FileRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content_type", "size", "visibility", "owner_id",
			"resource_id", "resource_type", "metadata", "uploaded_at",
		}),
	}).Create(record).Error
}

func (r *FileRecordRepository) Get(ctx context.Context, path string) (*entity.FileRecord, error) {
	var record entity.FileRecord
	err := r.db.WithContext(ctx).Where("path = ?", path).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.Newf(fault.KindNotFound, "no metadata record for %s", path)
		}
		return nil, err
	}
	return &record, nil
}

// IncrementAccess bumps the access counters. Best-effort: callers are
// expected to log and swallow the error.
func (r *FileRecordRepository) IncrementAccess(ctx context.Context, path string) error {
	return r.db.WithContext(ctx).Model(&entity.FileRecord{}).
		Where("path = ?", path).
		UpdateColumns(map[string]interface{}{
			"access_count":  gorm.Expr("access_count + 1"),
			"last_accessed": time.Now().UTC(),
		}).Error
}

func (r *FileRecordRepository) Delete(ctx context.Context, path string) error {
	return r.db.WithContext(ctx).Delete(&entity.FileRecord{}, "path = ?", path).Error
}
