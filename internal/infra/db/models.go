package db

import "time"

type watchModel struct {
	ID             uint   `gorm:"primaryKey"`
	ChatID         int64  `gorm:"uniqueIndex:idx_watches_chat_user_item,priority:1;not null"`
	TelegramUserID int64  `gorm:"uniqueIndex:idx_watches_chat_user_item,priority:2;not null"`
	ItemCode       string `gorm:"uniqueIndex:idx_watches_chat_user_item,priority:3;index;not null"`
	Username       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type groupSettingModel struct {
	ChatID          int64 `gorm:"primaryKey"`
	NotifyChannelID int64 `gorm:"not null"`
	UpdatedAt       time.Time
}

type itemStateModel struct {
	ItemCode     string `gorm:"primaryKey"`
	Availability string `gorm:"not null"`
	CheckedAt    time.Time
}
