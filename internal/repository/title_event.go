package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wfunc/photon-webhook/internal/logger"
	"github.com/wfunc/photon-webhook/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TitleEventRepository 产品事件仓储接口
// Write为即发即忘：写库失败只记日志，绝不向调用方传播
type TitleEventRepository interface {
	BaseRepository
	// Write 写入一条事件（即发即忘）
	Write(ctx context.Context, name string, body interface{}, playerID, gameID string)
	// Recent 按时间倒序查询最近事件
	Recent(ctx context.Context, p *Pagination) ([]*models.TitleEvent, error)
	// FindByName 按事件名查询
	FindByName(ctx context.Context, name string, p *Pagination) ([]*models.TitleEvent, error)
	// CleanupOld 清理过期事件
	CleanupOld(ctx context.Context, before time.Time) (int64, error)
}

// titleEventRepo 产品事件仓储实现
type titleEventRepo struct {
	*BaseRepo
}

// NewTitleEventRepository 创建产品事件仓储
func NewTitleEventRepository(db *gorm.DB) TitleEventRepository {
	return &titleEventRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// Write 写入一条事件（即发即忘）
func (r *titleEventRepo) Write(ctx context.Context, name string, body interface{}, playerID, gameID string) {
	encoded, err := json.Marshal(body)
	if err != nil {
		logger.Error("事件内容编码失败",
			zap.String("event", name),
			zap.Error(err),
		)
		return
	}

	event := &models.TitleEvent{
		EventName: name,
		Body:      string(encoded),
		PlayerID:  playerID,
		GameID:    gameID,
	}

	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		logger.Error("事件写入失败",
			zap.String("event", name),
			zap.Error(err),
		)
	}
}

// Recent 按时间倒序查询最近事件
func (r *titleEventRepo) Recent(ctx context.Context, p *Pagination) ([]*models.TitleEvent, error) {
	var events []*models.TitleEvent

	query := r.db.WithContext(ctx).Model(&models.TitleEvent{})
	if err := query.Count(&p.Total).Error; err != nil {
		return nil, err
	}

	err := query.
		Order("created_at DESC, id DESC").
		Scopes(Paginate(p)).
		Find(&events).Error
	return events, err
}

// FindByName 按事件名查询
func (r *titleEventRepo) FindByName(ctx context.Context, name string, p *Pagination) ([]*models.TitleEvent, error) {
	var events []*models.TitleEvent

	query := r.db.WithContext(ctx).
		Model(&models.TitleEvent{}).
		Where("event_name = ?", name)
	if err := query.Count(&p.Total).Error; err != nil {
		return nil, err
	}

	err := query.
		Order("created_at DESC, id DESC").
		Scopes(Paginate(p)).
		Find(&events).Error
	return events, err
}

// CleanupOld 清理过期事件
func (r *titleEventRepo) CleanupOld(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.TitleEvent{})
	return result.RowsAffected, result.Error
}

// WithTx 使用事务
func (r *titleEventRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &titleEventRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
