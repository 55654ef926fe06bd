package db

import (
	"context"

	"github.com/vberezny/stockbot/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchRepository struct {
	db *gorm.DB
}

func NewWatchRepository(db *gorm.DB) *WatchRepository {
	return &WatchRepository{db: db}
}

func (r *WatchRepository) Create(ctx context.Context, watch *domain.Watch) error {
	model := mapWatchToModel(*watch)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrDuplicate
	}
	watch.ID = model.ID
	watch.CreatedAt = model.CreatedAt
	watch.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *WatchRepository) Delete(ctx context.Context, chatID, telegramUserID int64, itemCode string) error {
	result := r.db.WithContext(ctx).
		Where("chat_id = ? AND telegram_user_id = ? AND item_code = ?", chatID, telegramUserID, itemCode).
		Delete(&watchModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *WatchRepository) ListByUserChat(ctx context.Context, chatID, telegramUserID int64) ([]domain.Watch, error) {
	var models []watchModel
	if err := r.db.WithContext(ctx).
		Where("chat_id = ? AND telegram_user_id = ?", chatID, telegramUserID).
		Order("created_at").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapWatchesToDomain(models), nil
}

func (r *WatchRepository) ListByItem(ctx context.Context, itemCode string) ([]domain.Watch, error) {
	var models []watchModel
	if err := r.db.WithContext(ctx).
		Where("item_code = ?", itemCode).
		Order("chat_id, id").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapWatchesToDomain(models), nil
}

func (r *WatchRepository) ListItemCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&watchModel{}).
		Distinct().
		Order("item_code").
		Pluck("item_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func mapWatchesToDomain(models []watchModel) []domain.Watch {
	watches := make([]domain.Watch, 0, len(models))
	for _, model := range models {
		watches = append(watches, domain.Watch{
			ID:             model.ID,
			ChatID:         model.ChatID,
			TelegramUserID: model.TelegramUserID,
			Username:       model.Username,
			ItemCode:       model.ItemCode,
			CreatedAt:      model.CreatedAt,
			UpdatedAt:      model.UpdatedAt,
		})
	}
	return watches
}

func mapWatchToModel(watch domain.Watch) watchModel {
	return watchModel{
		ID:             watch.ID,
		ChatID:         watch.ChatID,
		TelegramUserID: watch.TelegramUserID,
		Username:       watch.Username,
		ItemCode:       watch.ItemCode,
		CreatedAt:      watch.CreatedAt,
		UpdatedAt:      watch.UpdatedAt,
	}
}
