package repository

import (
	"errors"
	"time"

	"onboardflow_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// UpsertStageStarted 首次进入阶段时写入 started_at，已存在则不刷新
func (r *ProgressRepository) UpsertStageStarted(userID, stageID, enrollmentID uint, now time.Time) (*model.StageProgress, error) {
	var progress model.StageProgress
	err := r.DB.Where("user_id = ? AND stage_id = ? AND enrollment_id = ?", userID, stageID, enrollmentID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = model.StageProgress{
			UserID:       userID,
			StageID:      stageID,
			EnrollmentID: enrollmentID,
			StartedAt:    &now,
		}
		if err := r.DB.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}

	if progress.StartedAt == nil {
		progress.StartedAt = &now
		if err := r.DB.Model(&progress).Update("started_at", now).Error; err != nil {
			return nil, err
		}
	}
	return &progress, nil
}

// MarkStageCompleted completed_at 单调：仅在为空时写入
func (r *ProgressRepository) MarkStageCompleted(userID, stageID, enrollmentID uint, now time.Time) (*model.StageProgress, error) {
	var progress model.StageProgress
	err := r.DB.Where("user_id = ? AND stage_id = ? AND enrollment_id = ?", userID, stageID, enrollmentID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = model.StageProgress{
			UserID:       userID,
			StageID:      stageID,
			EnrollmentID: enrollmentID,
			StartedAt:    &now,
			CompletedAt:  &now,
		}
		if err := r.DB.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}

	if progress.CompletedAt == nil {
		if err := r.DB.Model(&progress).Update("completed_at", now).Error; err != nil {
			return nil, err
		}
		progress.CompletedAt = &now
	}
	return &progress, nil
}

func (r *ProgressRepository) FindStageProgress(userID, stageID, enrollmentID uint) (*model.StageProgress, error) {
	var progress model.StageProgress
	err := r.DB.Where("user_id = ? AND stage_id = ? AND enrollment_id = ?", userID, stageID, enrollmentID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) ListStageProgress(userID, enrollmentID uint) ([]model.StageProgress, error) {
	var progress []model.StageProgress
	err := r.DB.Where("user_id = ? AND enrollment_id = ?", userID, enrollmentID).Find(&progress).Error
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// UpsertItemCompleted 幂等：已完成的条目保留最早的 completed_at，不做任何覆盖
func (r *ProgressRepository) UpsertItemCompleted(userID, itemID, enrollmentID uint, now time.Time, score *float64) (*model.StageItemProgress, error) {
	var progress model.StageItemProgress
	err := r.DB.Where("user_id = ? AND stage_item_id = ? AND enrollment_id = ?", userID, itemID, enrollmentID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = model.StageItemProgress{
			UserID:       userID,
			StageItemID:  itemID,
			EnrollmentID: enrollmentID,
			CompletedAt:  &now,
			Score:        score,
		}
		if err := r.DB.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}

	if progress.CompletedAt != nil {
		return &progress, nil
	}

	updates := map[string]interface{}{"completed_at": now}
	if score != nil {
		updates["score"] = *score
	}
	if err := r.DB.Model(&progress).Updates(updates).Error; err != nil {
		return nil, err
	}
	progress.CompletedAt = &now
	if score != nil {
		progress.Score = score
	}
	return &progress, nil
}

func (r *ProgressRepository) FindItemProgress(userID, itemID, enrollmentID uint) (*model.StageItemProgress, error) {
	var progress model.StageItemProgress
	err := r.DB.Where("user_id = ? AND stage_item_id = ? AND enrollment_id = ?", userID, itemID, enrollmentID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) ListItemProgress(userID, enrollmentID uint) ([]model.StageItemProgress, error) {
	var progress []model.StageItemProgress
	err := r.DB.Where("user_id = ? AND enrollment_id = ?", userID, enrollmentID).Find(&progress).Error
	if err != nil {
		return nil, err
	}
	return progress, nil
}
