package repository

import (
	"context"
	"errors"
	"fmt"
	"kindergarten_backend/internal/model"
	"kindergarten_backend/internal/util"

	"gorm.io/gorm"
)

// ProgressRecordRepository 幼儿评估记录的 MySQL 数据源
type ProgressRecordRepository struct {
	DB *gorm.DB
}

func NewProgressRecordRepository(db *gorm.DB) *ProgressRecordRepository {
	return &ProgressRecordRepository{DB: db}
}

// ListRecordsByChild 按报告日期升序返回幼儿的全部记录，同一天按 id 升序
func (r *ProgressRecordRepository) ListRecordsByChild(ctx context.Context, childID uint) ([]model.AssessmentRecord, error) {
	if err := r.childExists(ctx, childID); err != nil {
		return nil, err
	}

	var records []model.AssessmentRecord
	err := r.DB.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("report_date ASC").
		Order("id ASC").
		Find(&records).Error
	return records, err
}

// ListChildIDsByGroup 班级当前的幼儿
func (r *ProgressRecordRepository) ListChildIDsByGroup(ctx context.Context, groupID uint) ([]uint, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.Group{}).Where("id = ?", groupID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, util.ErrGroupNotFound
	}

	var ids []uint
	err := r.DB.WithContext(ctx).Model(&model.Child{}).
		Where("group_id = ?", groupID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ProgressRecordRepository) ListGroups(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&groups).Error
	return groups, err
}

// SaveRecord ID 为 0 时新建；更新时不允许把记录改到其他幼儿名下
func (r *ProgressRecordRepository) SaveRecord(ctx context.Context, rec *model.AssessmentRecord) error {
	if err := r.childExists(ctx, rec.ChildID); err != nil {
		return err
	}

	if rec.ID == 0 {
		return r.DB.WithContext(ctx).Create(rec).Error
	}

	var existing model.AssessmentRecord
	err := r.DB.WithContext(ctx).First(&existing, rec.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrRecordNotFound
	}
	if err != nil {
		return err
	}
	if existing.ChildID != rec.ChildID {
		return fmt.Errorf("%w: record %d belongs to another child", util.ErrInvalidRecord, rec.ID)
	}

	rec.CreatedAt = existing.CreatedAt
	return r.DB.WithContext(ctx).Save(rec).Error
}

func (r *ProgressRecordRepository) childExists(ctx context.Context, childID uint) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.Child{}).Where("id = ?", childID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return util.ErrChildNotFound
	}
	return nil
}
