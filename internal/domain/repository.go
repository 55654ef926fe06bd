package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type WatchRepository interface {
	// Create fails with ErrDuplicate if the (chat, user, item) watch already exists.
	Create(ctx context.Context, watch *Watch) error
	// Delete fails with ErrNotFound if no such watch exists.
	Delete(ctx context.Context, chatID, telegramUserID int64, itemCode string) error
	ListByUserChat(ctx context.Context, chatID, telegramUserID int64) ([]Watch, error)
	ListByItem(ctx context.Context, itemCode string) ([]Watch, error)
	// ListItemCodes returns the distinct watched item codes in ascending order.
	ListItemCodes(ctx context.Context) ([]string, error)
}

type GroupSettingRepository interface {
	// Get fails with ErrNotFound when the chat has no notify channel configured.
	Get(ctx context.Context, chatID int64) (*GroupSetting, error)
	Set(ctx context.Context, chatID, notifyChannelID int64) error
	// Clear fails with ErrNotFound when there was nothing to clear.
	Clear(ctx context.Context, chatID int64) error
}

type ItemStateRepository interface {
	Get(ctx context.Context, itemCode string) (*ItemState, error)
	ListAll(ctx context.Context) ([]ItemState, error)
	Upsert(ctx context.Context, state ItemState) error
}
