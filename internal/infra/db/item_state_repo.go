package db

import (
	"context"
	"errors"

	"github.com/vberezny/stockbot/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemStateRepository struct {
	db *gorm.DB
}

func NewItemStateRepository(db *gorm.DB) *ItemStateRepository {
	return &ItemStateRepository{db: db}
}

func (r *ItemStateRepository) Get(ctx context.Context, itemCode string) (*domain.ItemState, error) {
	var model itemStateModel
	if err := r.db.WithContext(ctx).Where("item_code = ?", itemCode).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	state := mapItemStateToDomain(model)
	return &state, nil
}

func (r *ItemStateRepository) ListAll(ctx context.Context) ([]domain.ItemState, error) {
	var models []itemStateModel
	if err := r.db.WithContext(ctx).Order("item_code").Find(&models).Error; err != nil {
		return nil, err
	}
	states := make([]domain.ItemState, 0, len(models))
	for _, model := range models {
		states = append(states, mapItemStateToDomain(model))
	}
	return states, nil
}

func (r *ItemStateRepository) Upsert(ctx context.Context, state domain.ItemState) error {
	model := itemStateModel{
		ItemCode:     state.ItemCode,
		Availability: string(state.Availability),
		CheckedAt:    state.CheckedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"availability", "checked_at"}),
		}).
		Create(&model).Error
}

func mapItemStateToDomain(model itemStateModel) domain.ItemState {
	return domain.ItemState{
		ItemCode:     model.ItemCode,
		Availability: domain.Availability(model.Availability),
		CheckedAt:    model.CheckedAt,
	}
}
