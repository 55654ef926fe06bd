package db

import (
	"context"
	"errors"

	"github.com/vberezny/stockbot/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupSettingRepository struct {
	db *gorm.DB
}

func NewGroupSettingRepository(db *gorm.DB) *GroupSettingRepository {
	return &GroupSettingRepository{db: db}
}

func (r *GroupSettingRepository) Get(ctx context.Context, chatID int64) (*domain.GroupSetting, error) {
	var model groupSettingModel
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &domain.GroupSetting{
		ChatID:          model.ChatID,
		NotifyChannelID: model.NotifyChannelID,
		UpdatedAt:       model.UpdatedAt,
	}, nil
}

func (r *GroupSettingRepository) Set(ctx context.Context, chatID, notifyChannelID int64) error {
	model := groupSettingModel{ChatID: chatID, NotifyChannelID: notifyChannelID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"notify_channel_id", "updated_at"}),
		}).
		Create(&model).Error
}

func (r *GroupSettingRepository) Clear(ctx context.Context, chatID int64) error {
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&groupSettingModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
