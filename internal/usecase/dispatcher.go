package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vberezny/stockbot/internal/domain"
	"github.com/vberezny/stockbot/internal/metrics"
	"go.uber.org/zap"
)

// Mention identifies a watcher to tag in a channel notification.
type Mention struct {
	TelegramUserID int64
	Username       string
}

type Notifier interface {
	SendDirect(telegramUserID int64, text string) error
	SendToChannel(channelID int64, text string, mentions []Mention) error
}

type deliveryKind int

const (
	deliverDirect deliveryKind = iota
	deliverChannel
)

// deliveryTarget is the resolved destination for one chat's watchers:
// either the chat's configured notify channel, carrying every watcher as a
// mention, or one direct message per watcher.
type deliveryTarget struct {
	kind      deliveryKind
	channelID int64
	watches   []domain.Watch
}

// Dispatcher routes restock notifications. Watches are grouped per chat and
// each chat's channel preference is resolved once, so a group with several
// watchers of the same item gets a single batched channel message.
type Dispatcher struct {
	groups   domain.GroupSettingRepository
	notifier Notifier
	recorder *metrics.Recorder
	logger   *zap.Logger
}

func NewDispatcher(groups domain.GroupSettingRepository, notifier Notifier, recorder *metrics.Recorder, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{groups: groups, notifier: notifier, recorder: recorder, logger: logger}
}

// NotifyInStock delivers a restock notification for product to every watch.
// Delivery failures are per recipient: a blocked direct message or a deleted
// channel never stops the remaining deliveries.
func (d *Dispatcher) NotifyInStock(ctx context.Context, product *domain.ProductInfo, watches []domain.Watch) {
	if len(watches) == 0 {
		return
	}

	text := formatRestockMessage(product)

	for _, target := range d.resolveTargets(ctx, watches) {
		switch target.kind {
		case deliverChannel:
			d.sendChannel(product, target, text)
		default:
			d.sendDirect(product, target, text)
		}
	}
}

func (d *Dispatcher) resolveTargets(ctx context.Context, watches []domain.Watch) []deliveryTarget {
	byChat := make(map[int64][]domain.Watch)
	order := make([]int64, 0)
	for _, watch := range watches {
		if _, ok := byChat[watch.ChatID]; !ok {
			order = append(order, watch.ChatID)
		}
		byChat[watch.ChatID] = append(byChat[watch.ChatID], watch)
	}

	targets := make([]deliveryTarget, 0, len(order))
	for _, chatID := range order {
		chatWatches := byChat[chatID]
		setting, err := d.groups.Get(ctx, chatID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				// Preference lookup failure falls back to direct delivery
				// rather than dropping the notification.
				d.logger.Warn("group setting lookup failed",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			}
			targets = append(targets, deliveryTarget{kind: deliverDirect, watches: chatWatches})
			continue
		}
		targets = append(targets, deliveryTarget{
			kind:      deliverChannel,
			channelID: setting.NotifyChannelID,
			watches:   chatWatches,
		})
	}
	return targets
}

func (d *Dispatcher) sendChannel(product *domain.ProductInfo, target deliveryTarget, text string) {
	mentions := make([]Mention, 0, len(target.watches))
	for _, watch := range target.watches {
		mentions = append(mentions, Mention{TelegramUserID: watch.TelegramUserID, Username: watch.Username})
	}

	if err := d.notifier.SendToChannel(target.channelID, text, mentions); err != nil {
		d.recorder.NotificationResult("channel", "failed")
		d.logger.Warn("channel notification failed",
			zap.Int64("channel_id", target.channelID),
			zap.String("item_code", product.ItemCode),
			zap.Error(err),
		)
		return
	}
	d.recorder.NotificationResult("channel", "ok")
	d.logger.Info("channel notification sent",
		zap.Int64("channel_id", target.channelID),
		zap.String("item_code", product.ItemCode),
		zap.Int("mention_count", len(mentions)),
	)
}

func (d *Dispatcher) sendDirect(product *domain.ProductInfo, target deliveryTarget, text string) {
	for _, watch := range target.watches {
		if err := d.notifier.SendDirect(watch.TelegramUserID, text); err != nil {
			d.recorder.NotificationResult("direct", "failed")
			d.logger.Warn("direct notification failed",
				zap.Int64("telegram_user_id", watch.TelegramUserID),
				zap.String("item_code", product.ItemCode),
				zap.Error(err),
			)
			continue
		}
		d.recorder.NotificationResult("direct", "ok")
		d.logger.Info("direct notification sent",
			zap.Int64("telegram_user_id", watch.TelegramUserID),
			zap.String("item_code", product.ItemCode),
		)
	}
}

func formatRestockMessage(product *domain.ProductInfo) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s (set %s) is back in stock!\n", product.Name, product.ItemCode)
	if product.PriceDisplay != "" {
		fmt.Fprintf(&builder, "Price: %s\n", product.PriceDisplay)
	} else if product.Price != nil {
		fmt.Fprintf(&builder, "Price: %s\n", product.Price.StringFixed(2))
	}
	if product.ButtonText != "" {
		fmt.Fprintf(&builder, "Buy button: %s\n", product.ButtonText)
	}
	builder.WriteString(product.URL)
	return builder.String()
}
