package usecase

import (
	"context"
	"errors"

	"github.com/vberezny/stockbot/internal/domain"
)

// CheckUsecase serves manual on-demand stock checks. It reports the current
// page state to the requester only: no transition bookkeeping, no dispatch.
// Probes still share the global rate budget with the monitor.
type CheckUsecase struct {
	probe   domain.StockProbe
	limiter *ProbeLimiter
}

func NewCheckUsecase(probe domain.StockProbe, limiter *ProbeLimiter) *CheckUsecase {
	return &CheckUsecase{probe: probe, limiter: limiter}
}

func (u *CheckUsecase) CheckStock(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
	itemCode, err := NormalizeItemCode(itemCode)
	if err != nil {
		return nil, err
	}
	if err := u.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	info, err := u.probe.Check(ctx, itemCode)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return info, nil
}
