package model

import "time"

// カフェの席（テーブル）。
// 注文には名前（表示名）だけをコピーして保存する。
type CafeTable struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CafeTable) TableName() string { return "cafe_tables" }
