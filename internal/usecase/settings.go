package usecase

import (
	"context"
	"errors"

	"github.com/vberezny/stockbot/internal/domain"
)

// SettingsUsecase manages per-group notification routing.
type SettingsUsecase struct {
	groups domain.GroupSettingRepository
}

func NewSettingsUsecase(groups domain.GroupSettingRepository) *SettingsUsecase {
	return &SettingsUsecase{groups: groups}
}

func (u *SettingsUsecase) SetNotifyChannel(ctx context.Context, chatID, notifyChannelID int64) error {
	return u.groups.Set(ctx, chatID, notifyChannelID)
}

// ClearNotifyChannel reverts the chat to direct delivery.
func (u *SettingsUsecase) ClearNotifyChannel(ctx context.Context, chatID int64) error {
	if err := u.groups.Clear(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrChannelNotSet
		}
		return err
	}
	return nil
}

func (u *SettingsUsecase) GetNotifyChannel(ctx context.Context, chatID int64) (int64, error) {
	setting, err := u.groups.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, ErrChannelNotSet
		}
		return 0, err
	}
	return setting.NotifyChannelID, nil
}
