package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vberezny/stockbot/internal/domain"
	"go.uber.org/zap"
)

// Probe checks product availability by fetching and parsing the retailer's
// product page. It implements domain.StockProbe.
type Probe struct {
	baseURL   string
	locale    string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

func NewProbe(baseURL, locale, userAgent string, timeout time.Duration, logger *zap.Logger) *Probe {
	return &Probe{
		baseURL:   strings.TrimRight(baseURL, "/"),
		locale:    strings.Trim(locale, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// productURLs returns the page URL candidates for an item code. Product
// pages are published under more than one slug, so a 404 on the first
// form does not mean the item does not exist.
func (p *Probe) productURLs(itemCode string) []string {
	return []string{
		fmt.Sprintf("%s/%s/product/%s", p.baseURL, p.locale, itemCode),
		fmt.Sprintf("%s/%s/product/lego-set-%s", p.baseURL, p.locale, itemCode),
	}
}

func (p *Probe) Check(ctx context.Context, itemCode string) (*domain.ProductInfo, error) {
	for _, pageURL := range p.productURLs(itemCode) {
		info, err := p.fetch(ctx, pageURL, itemCode)
		if errors.Is(err, domain.ErrItemNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return info, nil
	}
	return nil, fmt.Errorf("no product page for item %s: %w", itemCode, domain.ErrItemNotFound)
}

func (p *Probe) fetch(ctx context.Context, pageURL, itemCode string) (*domain.ProductInfo, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", p.userAgent)
	request.Header.Set("Accept", "text/html")

	start := time.Now()
	response, err := p.client.Do(request)
	if err != nil {
		p.logger.Warn("product page request failed",
			zap.String("item_code", itemCode),
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch %s: %v: %w", pageURL, err, domain.ErrProbeUnavailable)
	}
	defer response.Body.Close()

	p.logger.Debug("product page request complete",
		zap.String("item_code", itemCode),
		zap.String("url", pageURL),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode == http.StatusNotFound {
		return nil, domain.ErrItemNotFound
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d: %w", pageURL, response.StatusCode, domain.ErrProbeUnavailable)
	}

	doc, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", pageURL, err, domain.ErrProbeUnavailable)
	}

	return parseProduct(doc, itemCode, pageURL), nil
}
