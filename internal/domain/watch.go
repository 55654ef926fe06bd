package domain

import "time"

// Watch is one user's standing request to be notified when an item
// comes back in stock. ChatID is the chat the watch was created in;
// for private chats it equals TelegramUserID.
type Watch struct {
	ID             uint
	ChatID         int64
	TelegramUserID int64
	Username       string
	ItemCode       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// GroupSetting routes a group chat's restock notifications to a
// dedicated channel. No row for a chat means watchers are messaged
// directly.
type GroupSetting struct {
	ChatID          int64
	NotifyChannelID int64
	UpdatedAt       time.Time
}
