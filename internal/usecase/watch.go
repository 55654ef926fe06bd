package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/vberezny/stockbot/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrInvalidItemCode = errors.New("invalid item code")
	ErrItemNotFound    = errors.New("item not found")
	ErrWatchExists     = errors.New("watch already exists")
	ErrWatchNotFound   = errors.New("watch not found")
	ErrChannelNotSet   = errors.New("notify channel not set")
)

var itemCodePattern = regexp.MustCompile(`^[0-9]{3,10}$`)

// WatchEntry pairs a watch with the item's last recorded state, when one
// exists.
type WatchEntry struct {
	Watch domain.Watch
	State *domain.ItemState
}

type WatchUsecase struct {
	watches domain.WatchRepository
	states  domain.ItemStateRepository
	probe   domain.StockProbe
	limiter *ProbeLimiter
	logger  *zap.Logger
}

func NewWatchUsecase(watches domain.WatchRepository, states domain.ItemStateRepository, probe domain.StockProbe, limiter *ProbeLimiter, logger *zap.Logger) *WatchUsecase {
	return &WatchUsecase{watches: watches, states: states, probe: probe, limiter: limiter, logger: logger}
}

// AddWatch verifies the item resolves to a product page, then creates the
// subscription. A store outage does not block creation: the watch is stored
// with a nil ProductInfo and the monitor classifies the item on its next
// successful cycle.
func (u *WatchUsecase) AddWatch(ctx context.Context, chatID, telegramUserID int64, username, itemCode string) (*domain.Watch, *domain.ProductInfo, error) {
	itemCode, err := NormalizeItemCode(itemCode)
	if err != nil {
		return nil, nil, err
	}

	var info *domain.ProductInfo
	if err := u.limiter.Acquire(ctx); err != nil {
		return nil, nil, err
	}
	info, err = u.probe.Check(ctx, itemCode)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, nil, ErrItemNotFound
		}
		u.logger.Warn("probe unavailable during watch creation, creating watch anyway",
			zap.String("item_code", itemCode),
			zap.Error(err),
		)
		info = nil
	}

	watch := &domain.Watch{
		ChatID:         chatID,
		TelegramUserID: telegramUserID,
		Username:       username,
		ItemCode:       itemCode,
	}
	if err := u.watches.Create(ctx, watch); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nil, ErrWatchExists
		}
		return nil, nil, err
	}
	return watch, info, nil
}

func (u *WatchUsecase) RemoveWatch(ctx context.Context, chatID, telegramUserID int64, itemCode string) error {
	itemCode, err := NormalizeItemCode(itemCode)
	if err != nil {
		return err
	}
	if err := u.watches.Delete(ctx, chatID, telegramUserID, itemCode); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrWatchNotFound
		}
		return err
	}
	return nil
}

// ListWatches returns the caller's watches in this chat, each with the
// item's last persisted state when available.
func (u *WatchUsecase) ListWatches(ctx context.Context, chatID, telegramUserID int64) ([]WatchEntry, error) {
	watches, err := u.watches.ListByUserChat(ctx, chatID, telegramUserID)
	if err != nil {
		return nil, err
	}

	entries := make([]WatchEntry, 0, len(watches))
	for _, watch := range watches {
		entry := WatchEntry{Watch: watch}
		state, err := u.states.Get(ctx, watch.ItemCode)
		if err == nil {
			entry.State = state
		} else if !errors.Is(err, domain.ErrNotFound) {
			u.logger.Warn("failed to load item state",
				zap.String("item_code", watch.ItemCode),
				zap.Error(err),
			)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// NormalizeItemCode trims and validates a user-supplied item code.
func NormalizeItemCode(itemCode string) (string, error) {
	itemCode = strings.TrimSpace(itemCode)
	if !itemCodePattern.MatchString(itemCode) {
		return "", ErrInvalidItemCode
	}
	return itemCode, nil
}
