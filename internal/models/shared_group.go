package models

import "time"

// SharedGroup 共享组表
// 每个房间一个组（以GameId为键），每个玩家索引一个组（以<playerId>_GamesList为键）
type SharedGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   string    `gorm:"uniqueIndex;size:191;not null" json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SharedGroupEntry 共享组键值条目表
// Value保存传输安全的文本编码：非字符串值JSON编码，字符串值原样保存
type SharedGroupEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   string    `gorm:"uniqueIndex:idx_group_entry;size:191;not null" json:"group_id"`
	Key       string    `gorm:"uniqueIndex:idx_group_entry;size:191;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
