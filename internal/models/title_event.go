package models

import "time"

// TitleEvent 产品级事件/审计日志表
// 每个Webhook调用以及每个错误信号在产生时都会写入一条事件
type TitleEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventName string    `gorm:"index;size:100;not null" json:"event_name"`
	Body      string    `gorm:"type:text" json:"body"`
	PlayerID  string    `gorm:"index;size:100" json:"player_id"`
	GameID    string    `gorm:"index;size:191" json:"game_id"`
	CreatedAt time.Time `json:"created_at"`
}
