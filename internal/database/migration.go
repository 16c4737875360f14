package database

import (
	"fmt"

	"github.com/wfunc/photon-webhook/internal/logger"
	"github.com/wfunc/photon-webhook/internal/models"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	err := DB.AutoMigrate(
		// 共享组存储
		&models.SharedGroup{},
		&models.SharedGroupEntry{},

		// 审计事件
		&models.TitleEvent{},
	)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	logger.Info("数据库迁移完成")
	return nil
}
