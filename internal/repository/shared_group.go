package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wfunc/photon-webhook/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SharedGroupRepository 共享组仓储接口
// 纯粹的键值翻译层，不承载任何业务状态
type SharedGroupRepository interface {
	BaseRepository
	// CreateGroup 创建共享组，已存在时静默成功
	CreateGroup(ctx context.Context, groupID string) error
	// GroupExists 检查共享组是否存在
	GroupExists(ctx context.Context, groupID string) (bool, error)
	// GetData 读取组内条目，keys为空时读取全部
	GetData(ctx context.Context, groupID string, keys ...string) (map[string]string, error)
	// GetEntry 读取单个条目，返回存储文本与是否存在
	GetEntry(ctx context.Context, groupID, key string) (string, bool, error)
	// UpdateData 批量写入，单事务：nil值删除键，字符串原样保存，其余JSON编码
	UpdateData(ctx context.Context, groupID string, data map[string]interface{}) error
	// UpdateEntry 写入单个条目
	UpdateEntry(ctx context.Context, groupID, key string, value interface{}) error
	// DeleteEntry 删除单个条目
	DeleteEntry(ctx context.Context, groupID, key string) error
	// DeleteGroup 删除组及其全部条目
	DeleteGroup(ctx context.Context, groupID string) error
}

// sharedGroupRepo 共享组仓储实现
type sharedGroupRepo struct {
	*BaseRepo
}

// NewSharedGroupRepository 创建共享组仓储
func NewSharedGroupRepository(db *gorm.DB) SharedGroupRepository {
	return &sharedGroupRepo{
		BaseRepo: NewBaseRepo(db),
	}
}

// EncodeValue 把任意值编码为条目存储文本
// 字符串原样保存（上游按原文读回，不做二次编码），其余值JSON编码
func EncodeValue(value interface{}) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	bytes, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("条目编码失败: %w", err)
	}
	return string(bytes), nil
}

// CreateGroup 创建共享组（已存在时静默成功）
func (r *sharedGroupRepo) CreateGroup(ctx context.Context, groupID string) error {
	group := &models.SharedGroup{GroupID: groupID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}},
			DoNothing: true,
		}).
		Create(group).Error
}

// GroupExists 检查共享组是否存在
func (r *sharedGroupRepo) GroupExists(ctx context.Context, groupID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SharedGroup{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count > 0, err
}

// GetData 读取组内条目
func (r *sharedGroupRepo) GetData(ctx context.Context, groupID string, keys ...string) (map[string]string, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SharedGroupEntry{}).
		Where("group_id = ?", groupID)
	if len(keys) > 0 {
		query = query.Where("`key` IN ?", keys)
	}

	var entries []*models.SharedGroupEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	data := make(map[string]string, len(entries))
	for _, entry := range entries {
		data[entry.Key] = entry.Value
	}
	return data, nil
}

// GetEntry 读取单个条目
func (r *sharedGroupRepo) GetEntry(ctx context.Context, groupID, key string) (string, bool, error) {
	var entry models.SharedGroupEntry
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND `key` = ?", groupID, key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

// UpdateData 批量写入组内条目（单事务）
func (r *sharedGroupRepo) UpdateData(ctx context.Context, groupID string, data map[string]interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range data {
			// nil值删除对应键
			if value == nil {
				err := tx.Where("group_id = ? AND `key` = ?", groupID, key).
					Delete(&models.SharedGroupEntry{}).Error
				if err != nil {
					return err
				}
				continue
			}

			encoded, err := EncodeValue(value)
			if err != nil {
				return err
			}

			entry := &models.SharedGroupEntry{
				GroupID: groupID,
				Key:     key,
				Value:   encoded,
			}
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "group_id"}, {Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(entry).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateEntry 写入单个条目
func (r *sharedGroupRepo) UpdateEntry(ctx context.Context, groupID, key string, value interface{}) error {
	return r.UpdateData(ctx, groupID, map[string]interface{}{key: value})
}

// DeleteEntry 删除单个条目
func (r *sharedGroupRepo) DeleteEntry(ctx context.Context, groupID, key string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND `key` = ?", groupID, key).
		Delete(&models.SharedGroupEntry{}).Error
}

// DeleteGroup 删除组及其全部条目
func (r *sharedGroupRepo) DeleteGroup(ctx context.Context, groupID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("group_id = ?", groupID).
			Delete(&models.SharedGroupEntry{}).Error
		if err != nil {
			return err
		}
		return tx.Where("group_id = ?", groupID).
			Delete(&models.SharedGroup{}).Error
	})
}

// WithTx 使用事务
func (r *sharedGroupRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &sharedGroupRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}
