package telegram

import (
	"errors"
	"strconv"
	"strings"
)

const HelpText = `Commands:
/check <code> - check an item's stock status right now
/watch <code> - get notified when the item comes back in stock
/unwatch <code> - stop watching the item
/watchlist - list your watched items in this chat
/set_channel <channel_id> - (group admins) send this group's restock alerts to a channel
/clear_channel - (group admins) revert to direct messages
/help - show this help

Item codes are the numeric product codes from the store, e.g. 10312.
Watches are per chat: watching in a group keeps the alert in that group's context.
`

var ErrInvalidArguments = errors.New("invalid arguments")

func ParseItemCodeArg(args string) (string, error) {
	code := strings.TrimSpace(args)
	if code == "" {
		return "", ErrInvalidArguments
	}
	return code, nil
}

func ParseChannelIDArg(args string) (int64, error) {
	idStr := strings.TrimSpace(args)
	if idStr == "" {
		return 0, ErrInvalidArguments
	}
	value, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || value == 0 {
		return 0, ErrInvalidArguments
	}
	return value, nil
}
