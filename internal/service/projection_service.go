package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"onboardflow_backend/internal/model"
	"onboardflow_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ItemProgressView 条目及其完成状态
type ItemProgressView struct {
	Item     model.StageItem          `json:"item"`
	Progress *model.StageItemProgress `json:"progress,omitempty"`
}

// StageProgressView 阶段及其条目树
type StageProgressView struct {
	Stage    model.Stage          `json:"stage"`
	Progress *model.StageProgress `json:"progress,omitempty"`
	Items    []ItemProgressView   `json:"items"`
}

// FlowProgressView 报名的完整进度树与聚合统计
type FlowProgressView struct {
	Enrollment     model.Enrollment    `json:"enrollment"`
	Stages         []StageProgressView `json:"stages"`
	CompletedItems int                 `json:"completedItems"`
	TotalItems     int                 `json:"totalItems"`
	Percentage     float64             `json:"percentage"`
}

// ProjectionService 只读进度投影。结果按报名缓存在 Redis 中，
// 完成事件发生时由级联引擎调用 Invalidate 清除。
type ProjectionService struct {
	Flows       FlowStructureStore
	Enrollments EnrollmentStore
	Progress    ProgressStore
	Redis       *redis.Client
	CacheTTL    time.Duration
}

func NewProjectionService(
	flows FlowStructureStore,
	enrollments EnrollmentStore,
	progress ProgressStore,
	rdb *redis.Client,
	cacheTTL time.Duration,
) *ProjectionService {
	return &ProjectionService{
		Flows:       flows,
		Enrollments: enrollments,
		Progress:    progress,
		Redis:       rdb,
		CacheTTL:    cacheTTL,
	}
}

func projectionCacheKey(userID, enrollmentID uint) string {
	return fmt.Sprintf("projection:%d:%d", enrollmentID, userID)
}

// FlowProgress 构建 报名 → 阶段 → 条目 进度树。
// 没有进度记录的阶段/条目以 progress 为空渲染（未开始）。
func (s *ProjectionService) FlowProgress(ctx context.Context, userID, enrollmentID uint) (*FlowProgressView, error) {
	if view := s.fromCache(ctx, userID, enrollmentID); view != nil {
		return view, nil
	}

	enrollment, err := s.Enrollments.FindByID(enrollmentID)
	if err != nil {
		return nil, err
	}

	stages, err := s.Flows.ListStagesByFlow(enrollment.FlowID)
	if err != nil {
		return nil, err
	}

	stageProgressList, err := s.Progress.ListStageProgress(userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	stageProgress := make(map[uint]model.StageProgress, len(stageProgressList))
	for _, p := range stageProgressList {
		stageProgress[p.StageID] = p
	}

	itemProgressList, err := s.Progress.ListItemProgress(userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	itemProgress := make(map[uint]model.StageItemProgress, len(itemProgressList))
	for _, p := range itemProgressList {
		itemProgress[p.StageItemID] = p
	}

	view := &FlowProgressView{
		Enrollment: *enrollment,
		Stages:     make([]StageProgressView, 0, len(stages)),
	}

	for _, stage := range stages {
		stageView := StageProgressView{Stage: stage}
		if p, ok := stageProgress[stage.ID]; ok {
			sp := p
			stageView.Progress = &sp
		}

		items, err := s.Flows.ListItemsByStage(stage.ID)
		if err != nil {
			return nil, err
		}

		stageView.Items = make([]ItemProgressView, 0, len(items))
		for _, item := range items {
			itemView := ItemProgressView{Item: item}
			view.TotalItems++
			if p, ok := itemProgress[item.ID]; ok {
				ip := p
				itemView.Progress = &ip
				if ip.CompletedAt != nil {
					view.CompletedItems++
				}
			}
			stageView.Items = append(stageView.Items, itemView)
		}

		view.Stages = append(view.Stages, stageView)
	}

	if view.TotalItems > 0 {
		view.Percentage = float64(view.CompletedItems) / float64(view.TotalItems) * 100
	}

	s.toCache(ctx, userID, enrollmentID, view)
	return view, nil
}

// Invalidate 实现 ProjectionInvalidator，供级联引擎在完成事件后调用
func (s *ProjectionService) Invalidate(userID, enrollmentID uint) {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Redis.Del(ctx, projectionCacheKey(userID, enrollmentID)).Err(); err != nil {
		logger.Log.Warn("projection cache invalidation failed",
			zap.Uint("enrollmentId", enrollmentID),
			zap.Error(err))
	}
}

func (s *ProjectionService) fromCache(ctx context.Context, userID, enrollmentID uint) *FlowProgressView {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return nil
	}
	data, err := s.Redis.Get(ctx, projectionCacheKey(userID, enrollmentID)).Bytes()
	if err != nil {
		return nil
	}
	var view FlowProgressView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil
	}
	return &view
}

func (s *ProjectionService) toCache(ctx context.Context, userID, enrollmentID uint, view *FlowProgressView) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, projectionCacheKey(userID, enrollmentID), data, s.CacheTTL).Err(); err != nil {
		logger.Log.Warn("projection cache write failed",
			zap.Uint("enrollmentId", enrollmentID),
			zap.Error(err))
	}
}
