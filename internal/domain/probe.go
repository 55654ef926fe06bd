package domain

import (
	"context"
	"errors"
)

var (
	// ErrItemNotFound means the item code does not resolve to a product page.
	ErrItemNotFound = errors.New("item not found")
	// ErrProbeUnavailable wraps transport failures, timeouts and non-success
	// HTTP statuses. It is never an observation: a probe that fails this way
	// says nothing about the item's availability.
	ErrProbeUnavailable = errors.New("stock probe unavailable")
)

type StockProbe interface {
	Check(ctx context.Context, itemCode string) (*ProductInfo, error)
}
