package repository

import (
	"errors"
	"time"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/internal/util"

	"gorm.io/gorm"
)

type FlowRepository struct {
	DB *gorm.DB
}

func NewFlowRepository(db *gorm.DB) *FlowRepository {
	return &FlowRepository{DB: db}
}

func (r *FlowRepository) CreateFlow(flow *model.Flow) error {
	return r.DB.Create(flow).Error
}

func (r *FlowRepository) UpdateFlow(flow *model.Flow) error {
	return r.DB.Save(flow).Error
}

func (r *FlowRepository) DeleteFlow(id uint) error {
	return r.DB.Delete(&model.Flow{}, id).Error
}

// FindFlowByID 预加载阶段与条目，均按 position 排序
func (r *FlowRepository) FindFlowByID(id uint) (*model.Flow, error) {
	var flow model.Flow
	err := r.DB.
		Preload("Stages", func(db *gorm.DB) *gorm.DB {
			return db.Order("stages.position ASC")
		}).
		Preload("Stages.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("stage_items.position ASC")
		}).
		First(&flow, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrFlowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &flow, nil
}

func (r *FlowRepository) ListFlows(page, limit int, publishedOnly bool) ([]model.Flow, int64, error) {
	var flows []model.Flow
	var total int64

	query := r.DB.Model(&model.Flow{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&flows).Error
	if err != nil {
		return nil, 0, err
	}
	return flows, total, nil
}

func (r *FlowRepository) PublishFlow(id uint) error {
	now := time.Now()
	res := r.DB.Model(&model.Flow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_published": true,
		"published_at": now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrFlowNotFound
	}
	return nil
}

func (r *FlowRepository) CreateStage(stage *model.Stage) error {
	return r.DB.Create(stage).Error
}

func (r *FlowRepository) UpdateStage(stage *model.Stage) error {
	return r.DB.Save(stage).Error
}

func (r *FlowRepository) DeleteStage(id uint) error {
	return r.DB.Delete(&model.Stage{}, id).Error
}

func (r *FlowRepository) FindStageByID(id uint) (*model.Stage, error) {
	var stage model.Stage
	err := r.DB.First(&stage, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *FlowRepository) ListStagesByFlow(flowID uint) ([]model.Stage, error) {
	var stages []model.Stage
	err := r.DB.Where("flow_id = ?", flowID).Order("position ASC").Find(&stages).Error
	if err != nil {
		return nil, err
	}
	return stages, nil
}

func (r *FlowRepository) CreateItem(item *model.StageItem) error {
	return r.DB.Create(item).Error
}

func (r *FlowRepository) UpdateItem(item *model.StageItem) error {
	return r.DB.Save(item).Error
}

func (r *FlowRepository) DeleteItem(id uint) error {
	return r.DB.Delete(&model.StageItem{}, id).Error
}

func (r *FlowRepository) FindItemByID(id uint) (*model.StageItem, error) {
	var item model.StageItem
	err := r.DB.First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *FlowRepository) ListItemsByStage(stageID uint) ([]model.StageItem, error) {
	var items []model.StageItem
	err := r.DB.Where("stage_id = ?", stageID).Order("position ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
