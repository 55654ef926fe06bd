package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vberezny/stockbot/internal/domain"
	"github.com/vberezny/stockbot/internal/usecase"
	"go.uber.org/zap"
)

type Handlers struct {
	watchUC    *usecase.WatchUsecase
	checkUC    *usecase.CheckUsecase
	settingsUC *usecase.SettingsUsecase
	logger     *zap.Logger
}

func NewHandlers(watchUC *usecase.WatchUsecase, checkUC *usecase.CheckUsecase, settingsUC *usecase.SettingsUsecase, logger *zap.Logger) *Handlers {
	return &Handlers{watchUC: watchUC, checkUC: checkUC, settingsUC: settingsUC, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update)
	}
}

func (h *Handlers) handleCommand(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chat := update.Message.Chat
	userID := update.Message.From.ID
	username := update.Message.From.UserName

	h.logger.Info("telegram command received",
		zap.Int64("chat_id", chat.ID),
		zap.Int64("telegram_user_id", userID),
		zap.String("command", command),
		zap.String("args", args),
	)

	switch command {
	case "start":
		h.reply(api, chat.ID, "Hi! I watch store listings and ping you the moment an item is back in stock.\n\n"+HelpText)
	case "help":
		h.reply(api, chat.ID, HelpText)
	case "check":
		h.handleCheck(ctx, api, chat.ID, args)
	case "watch":
		h.handleWatch(ctx, api, chat.ID, userID, username, args)
	case "unwatch":
		h.handleUnwatch(ctx, api, chat.ID, userID, args)
	case "watchlist":
		h.handleWatchlist(ctx, api, chat.ID, userID)
	case "set_channel":
		h.handleSetChannel(ctx, api, chat, userID, args)
	case "clear_channel":
		h.handleClearChannel(ctx, api, chat, userID)
	default:
		h.reply(api, chat.ID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) handleCheck(ctx context.Context, api *tgbotapi.BotAPI, chatID int64, args string) {
	code, err := ParseItemCodeArg(args)
	if err != nil {
		h.reply(api, chatID, "Usage: /check <code>")
		return
	}
	info, err := h.checkUC.CheckStock(ctx, code)
	if err != nil {
		h.reply(api, chatID, h.errorMessage(err))
		return
	}
	h.reply(api, chatID, formatProductReply(info))
}

func (h *Handlers) handleWatch(ctx context.Context, api *tgbotapi.BotAPI, chatID, userID int64, username, args string) {
	code, err := ParseItemCodeArg(args)
	if err != nil {
		h.reply(api, chatID, "Usage: /watch <code>")
		return
	}
	watch, info, err := h.watchUC.AddWatch(ctx, chatID, userID, username, code)
	if err != nil {
		h.logger.Warn("watch command failed",
			zap.Int64("telegram_user_id", userID),
			zap.String("item_code", code),
			zap.Error(err),
		)
		h.reply(api, chatID, h.errorMessage(err))
		return
	}

	if info == nil {
		h.reply(api, chatID, fmt.Sprintf(
			"Watching item %s. The store could not be reached just now, so the first status will come from the next monitoring cycle.",
			watch.ItemCode,
		))
		return
	}
	h.reply(api, chatID, fmt.Sprintf(
		"Watching %s (set %s).\nCurrent status: %s\nYou'll get a message when it comes back in stock.",
		info.Name, watch.ItemCode, statusLine(info),
	))
}

func (h *Handlers) handleUnwatch(ctx context.Context, api *tgbotapi.BotAPI, chatID, userID int64, args string) {
	code, err := ParseItemCodeArg(args)
	if err != nil {
		h.reply(api, chatID, "Usage: /unwatch <code>")
		return
	}
	if err := h.watchUC.RemoveWatch(ctx, chatID, userID, code); err != nil {
		h.reply(api, chatID, h.errorMessage(err))
		return
	}
	h.reply(api, chatID, fmt.Sprintf("Stopped watching item %s.", strings.TrimSpace(code)))
}

func (h *Handlers) handleWatchlist(ctx context.Context, api *tgbotapi.BotAPI, chatID, userID int64) {
	entries, err := h.watchUC.ListWatches(ctx, chatID, userID)
	if err != nil {
		h.logger.Warn("watchlist command failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
		h.reply(api, chatID, h.errorMessage(err))
		return
	}
	if len(entries) == 0 {
		h.reply(api, chatID, "You are not watching any items in this chat. Use /watch <code> to start.")
		return
	}

	var builder strings.Builder
	builder.WriteString("Your watched items:\n")
	for _, entry := range entries {
		status := "not checked yet"
		if entry.State != nil {
			status = fmt.Sprintf("%s (checked %s)",
				entry.State.Availability.Label(),
				entry.State.CheckedAt.Format("2006-01-02 15:04 MST"),
			)
		}
		fmt.Fprintf(&builder, "%s - %s\n", entry.Watch.ItemCode, status)
	}
	h.reply(api, chatID, builder.String())
}

func (h *Handlers) handleSetChannel(ctx context.Context, api *tgbotapi.BotAPI, chat *tgbotapi.Chat, userID int64, args string) {
	if !chat.IsGroup() && !chat.IsSuperGroup() {
		h.reply(api, chat.ID, "Channel routing only applies to group chats.")
		return
	}
	if !h.isChatAdmin(api, chat.ID, userID) {
		h.reply(api, chat.ID, "Only group admins can change the notification channel.")
		return
	}
	channelID, err := ParseChannelIDArg(args)
	if err != nil {
		h.reply(api, chat.ID, "Usage: /set_channel <channel_id>")
		return
	}
	if err := h.settingsUC.SetNotifyChannel(ctx, chat.ID, channelID); err != nil {
		h.logger.Warn("set_channel failed", zap.Int64("chat_id", chat.ID), zap.Error(err))
		h.reply(api, chat.ID, h.errorMessage(err))
		return
	}
	h.reply(api, chat.ID, fmt.Sprintf("Restock alerts for this group will now go to channel %d, mentioning the watchers.", channelID))
}

func (h *Handlers) handleClearChannel(ctx context.Context, api *tgbotapi.BotAPI, chat *tgbotapi.Chat, userID int64) {
	if !chat.IsGroup() && !chat.IsSuperGroup() {
		h.reply(api, chat.ID, "Channel routing only applies to group chats.")
		return
	}
	if !h.isChatAdmin(api, chat.ID, userID) {
		h.reply(api, chat.ID, "Only group admins can change the notification channel.")
		return
	}
	if err := h.settingsUC.ClearNotifyChannel(ctx, chat.ID); err != nil {
		h.reply(api, chat.ID, h.errorMessage(err))
		return
	}
	h.reply(api, chat.ID, "Notification channel cleared. Watchers will be messaged directly again.")
}

func (h *Handlers) reply(api *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handlers) isChatAdmin(api *tgbotapi.BotAPI, chatID, userID int64) bool {
	member, err := api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		h.logger.Warn("chat member lookup failed",
			zap.Int64("chat_id", chatID),
			zap.Int64("telegram_user_id", userID),
			zap.Error(err),
		)
		return false
	}
	return member.IsAdministrator() || member.IsCreator()
}

func (h *Handlers) errorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrInvalidItemCode):
		return "That doesn't look like an item code. Use the numeric product code, e.g. 10312."
	case errors.Is(err, usecase.ErrItemNotFound):
		return "Item not found. Please verify the product code."
	case errors.Is(err, usecase.ErrWatchExists):
		return "You are already watching that item in this chat."
	case errors.Is(err, usecase.ErrWatchNotFound):
		return "You are not watching that item in this chat."
	case errors.Is(err, usecase.ErrChannelNotSet):
		return "This group has no notification channel set."
	case errors.Is(err, domain.ErrProbeUnavailable):
		return "Could not determine stock status right now. The store may be unreachable; please try again later."
	}

	h.logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func formatProductReply(info *domain.ProductInfo) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s (set %s)\n", info.Name, info.ItemCode)
	fmt.Fprintf(&builder, "Status: %s\n", statusLine(info))
	if info.PriceDisplay != "" {
		fmt.Fprintf(&builder, "Price: %s\n", info.PriceDisplay)
	}
	if info.ButtonText != "" {
		fmt.Fprintf(&builder, "Buy button: %s\n", info.ButtonText)
	}
	builder.WriteString(info.URL)
	return builder.String()
}

func statusLine(info *domain.ProductInfo) string {
	if info.Availability == domain.AvailabilityUnknown {
		return "could not determine stock status from the product page"
	}
	if info.Note != "" {
		return fmt.Sprintf("%s (%s)", info.Availability.Label(), info.Note)
	}
	return info.Availability.Label()
}
