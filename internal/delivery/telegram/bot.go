package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vberezny/stockbot/internal/usecase"
	"go.uber.org/zap"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	handlers    *Handlers
	pollTimeout int
}

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func NewBot(api *tgbotapi.BotAPI, handlers *Handlers, pollTimeout int) *Bot {
	return &Bot{api: api, handlers: handlers, pollTimeout: pollTimeout}
}

func (b *Bot) Start(ctx context.Context) error {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(config)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handlers.HandleUpdate(ctx, b.api, update)
		}
	}
}

// Notifier delivers restock messages. It implements usecase.Notifier.
type Notifier struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

func NewNotifier(api *tgbotapi.BotAPI, logger *zap.Logger) *Notifier {
	return &Notifier{api: api, logger: logger}
}

func (n *Notifier) SendDirect(telegramUserID int64, text string) error {
	msg := tgbotapi.NewMessage(telegramUserID, text)
	msg.DisableWebPagePreview = true
	_, err := n.api.Send(msg)
	return err
}

// SendToChannel posts one message to the chat's notify channel, tagging
// every watcher on the first line so they get pinged.
func (n *Notifier) SendToChannel(channelID int64, text string, mentions []usecase.Mention) error {
	tags := make([]string, 0, len(mentions))
	for _, mention := range mentions {
		tags = append(tags, mentionLink(mention))
	}

	msg := tgbotapi.NewMessage(channelID, strings.Join(tags, " ")+"\n"+text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	_, err := n.api.Send(msg)
	return err
}

func mentionLink(mention usecase.Mention) string {
	name := mention.Username
	if name == "" {
		name = fmt.Sprintf("user %d", mention.TelegramUserID)
	}
	return fmt.Sprintf("[%s](tg://user?id=%d)", name, mention.TelegramUserID)
}
