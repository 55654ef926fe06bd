package usecase

import (
	"context"
	"sync"

	"github.com/vberezny/stockbot/internal/domain"
)

type mockWatchRepo struct {
	createFunc        func(ctx context.Context, watch *domain.Watch) error
	deleteFunc        func(ctx context.Context, chatID, userID int64, itemCode string) error
	listByUserFunc    func(ctx context.Context, chatID, userID int64) ([]domain.Watch, error)
	listByItemFunc    func(ctx context.Context, itemCode string) ([]domain.Watch, error)
	listItemCodesFunc func(ctx context.Context) ([]string, error)
}

func (m *mockWatchRepo) Create(ctx context.Context, watch *domain.Watch) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, watch)
	}
	return nil
}

func (m *mockWatchRepo) Delete(ctx context.Context, chatID, userID int64, itemCode string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, chatID, userID, itemCode)
	}
	return nil
}

func (m *mockWatchRepo) ListByUserChat(ctx context.Context, chatID, userID int64) ([]domain.Watch, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, chatID, userID)
	}
	return nil, nil
}

func (m *mockWatchRepo) ListByItem(ctx context.Context, itemCode string) ([]domain.Watch, error) {
	if m.listByItemFunc != nil {
		return m.listByItemFunc(ctx, itemCode)
	}
	return nil, nil
}

func (m *mockWatchRepo) ListItemCodes(ctx context.Context) ([]string, error) {
	if m.listItemCodesFunc != nil {
		return m.listItemCodesFunc(ctx)
	}
	return nil, nil
}

type mockGroupRepo struct {
	getFunc   func(ctx context.Context, chatID int64) (*domain.GroupSetting, error)
	setFunc   func(ctx context.Context, chatID, channelID int64) error
	clearFunc func(ctx context.Context, chatID int64) error
}

func (m *mockGroupRepo) Get(ctx context.Context, chatID int64) (*domain.GroupSetting, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, chatID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockGroupRepo) Set(ctx context.Context, chatID, channelID int64) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, chatID, channelID)
	}
	return nil
}

func (m *mockGroupRepo) Clear(ctx context.Context, chatID int64) error {
	if m.clearFunc != nil {
		return m.clearFunc(ctx, chatID)
	}
	return nil
}

type mockStateRepo struct {
	mu         sync.Mutex
	getFunc    func(ctx context.Context, itemCode string) (*domain.ItemState, error)
	listFunc   func(ctx context.Context) ([]domain.ItemState, error)
	upsertFunc func(ctx context.Context, state domain.ItemState) error
	upserted   []domain.ItemState
}

func (m *mockStateRepo) Get(ctx context.Context, itemCode string) (*domain.ItemState, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, itemCode)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStateRepo) ListAll(ctx context.Context) ([]domain.ItemState, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockStateRepo) Upsert(ctx context.Context, state domain.ItemState) error {
	m.mu.Lock()
	m.upserted = append(m.upserted, state)
	m.mu.Unlock()
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, state)
	}
	return nil
}

type mockProbe struct {
	mu        sync.Mutex
	checkFunc func(ctx context.Context, itemCode string) (*domain.ProductInfo, error)
	calls     []string
}

func (m *mockProbe) Check(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
	m.mu.Lock()
	m.calls = append(m.calls, itemCode)
	m.mu.Unlock()
	if m.checkFunc != nil {
		return m.checkFunc(ctx, itemCode)
	}
	return &domain.ProductInfo{ItemCode: itemCode, Availability: domain.AvailabilityUnknown}, nil
}

func (m *mockProbe) callCount(itemCode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, call := range m.calls {
		if call == itemCode {
			count++
		}
	}
	return count
}

type directCall struct {
	userID int64
	text   string
}

type channelCall struct {
	channelID int64
	text      string
	mentions  []Mention
}

type mockNotifier struct {
	mu            sync.Mutex
	directCalls   []directCall
	channelCalls  []channelCall
	directErrFunc func(userID int64) error
	channelErr    error
}

func (m *mockNotifier) SendDirect(userID int64, text string) error {
	m.mu.Lock()
	m.directCalls = append(m.directCalls, directCall{userID: userID, text: text})
	m.mu.Unlock()
	if m.directErrFunc != nil {
		return m.directErrFunc(userID)
	}
	return nil
}

func (m *mockNotifier) SendToChannel(channelID int64, text string, mentions []Mention) error {
	m.mu.Lock()
	m.channelCalls = append(m.channelCalls, channelCall{channelID: channelID, text: text, mentions: mentions})
	m.mu.Unlock()
	return m.channelErr
}
