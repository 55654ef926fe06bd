package store

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/vberezny/stockbot/internal/domain"
)

var (
	priceNumberPattern = regexp.MustCompile(`[0-9]+(?:[.,][0-9]{1,2})?`)
	shipsFromPattern   = regexp.MustCompile(`(?i)ships?\s+from\s+([A-Za-z]+\s+[0-9]{1,2},\s+[0-9]{4})`)
	comingSoonPattern  = regexp.MustCompile(`(?i)coming\s+soon\s+on\s+([A-Za-z]+\s+[0-9]{1,2},\s+[0-9]{4})`)
	availablePattern   = regexp.MustCompile(`(?i)available\s+([A-Za-z]+\s+[0-9]{1,2},\s+[0-9]{4})`)
)

func parseProduct(doc *goquery.Document, itemCode, pageURL string) *domain.ProductInfo {
	info := &domain.ProductInfo{
		ItemCode:   itemCode,
		Name:       extractName(doc, itemCode),
		ButtonText: detectPurchaseButton(doc),
		URL:        pageURL,
	}
	info.Price, info.PriceDisplay = extractPrice(doc)

	pageText := strings.ToLower(doc.Text())

	if availability, ok := availabilityFromMeta(doc); ok {
		info.Availability = availability
	} else {
		info.Availability = availabilityFromText(pageText)
	}

	if info.Availability == domain.AvailabilityPreOrder {
		info.Note = shippingNote(doc.Text())
	}
	return info
}

// availabilityFromMeta reads the product:availability meta tag, the most
// reliable signal on the page.
func availabilityFromMeta(doc *goquery.Document) (domain.Availability, bool) {
	content, exists := doc.Find(`meta[property="product:availability"]`).Attr("content")
	if !exists {
		return domain.AvailabilityUnknown, false
	}
	content = strings.ToLower(content)
	switch {
	case strings.Contains(content, "in stock"), strings.Contains(content, "instock"):
		return domain.AvailabilityInStock, true
	case strings.Contains(content, "out of stock"),
		strings.Contains(content, "outofstock"),
		strings.Contains(content, "oos"),
		strings.Contains(content, "backorder"):
		return domain.AvailabilityOutOfStock, true
	case strings.Contains(content, "preorder"), strings.Contains(content, "pre-order"):
		return domain.AvailabilityPreOrder, true
	}
	return domain.AvailabilityUnknown, false
}

// availabilityFromText falls back to page-text heuristics when the meta tag
// is missing. Ordering matters: pre-order pages also contain generic stock
// wording, so pre-order indicators are checked first.
func availabilityFromText(pageText string) domain.Availability {
	if strings.Contains(pageText, "pre-order") || strings.Contains(pageText, "preorder") {
		return domain.AvailabilityPreOrder
	}
	if strings.Contains(pageText, "coming soon") {
		return domain.AvailabilityPreOrder
	}
	if strings.Contains(pageText, "available now") {
		return domain.AvailabilityInStock
	}
	for _, keyword := range []string{"out of stock", "sold out", "temporarily out of stock", "unavailable"} {
		if strings.Contains(pageText, keyword) {
			return domain.AvailabilityOutOfStock
		}
	}
	for _, keyword := range []string{"in stock", "add to cart", "add to bag"} {
		if strings.Contains(pageText, keyword) {
			return domain.AvailabilityInStock
		}
	}
	return domain.AvailabilityUnknown
}

func extractName(doc *goquery.Document, itemCode string) string {
	selectors := []string{
		`h1[data-test="product-overview-name"]`,
		"h1.product-overview__name",
		"h1",
		`[data-test="product-title"]`,
		".product-title",
	}
	for _, selector := range selectors {
		name := strings.TrimSpace(doc.Find(selector).First().Text())
		if name != "" {
			return name
		}
	}
	return "Set " + itemCode
}

func extractPrice(doc *goquery.Document) (*decimal.Decimal, string) {
	selectors := []string{
		`[data-test="product-price"]`,
		".product-price",
		".price",
	}
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text == "" || !strings.ContainsAny(text, "$€£") {
			continue
		}
		if match := priceNumberPattern.FindString(text); match != "" {
			value, err := decimal.NewFromString(strings.ReplaceAll(match, ",", "."))
			if err == nil {
				return &value, text
			}
		}
		return nil, text
	}
	return nil, ""
}

// detectPurchaseButton reports the text of the main purchase button, if the
// page shows one. Only the add-to-bag container is inspected so that
// wishlist and dialog buttons are not mistaken for it.
func detectPurchaseButton(doc *goquery.Document) string {
	var found string
	container := doc.Find(`div[data-test="add-to-bag-sticky-container"]`)
	container.Find("button").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		aria := sel.AttrOr("aria-label", "")
		dataTest := strings.ToLower(sel.AttrOr("data-test", ""))
		textLower := strings.ToLower(text)
		ariaLower := strings.ToLower(aria)

		for _, skip := range []string{"wishlist", "close", "cancel", "dismiss"} {
			if strings.Contains(textLower, skip) || strings.Contains(ariaLower, skip) {
				return true
			}
		}

		purchase := []string{"add to bag", "add to cart", "pre-order", "preorder", "buy", "purchase"}
		matched := strings.Contains(dataTest, "add-to-cart")
		for _, keyword := range purchase {
			if strings.Contains(textLower, keyword) || strings.Contains(ariaLower, keyword) {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
		if text != "" {
			found = text
		} else {
			found = aria
		}
		return false
	})
	return found
}

func shippingNote(pageText string) string {
	if match := shipsFromPattern.FindStringSubmatch(pageText); match != nil {
		return "Ships from " + match[1]
	}
	if match := comingSoonPattern.FindStringSubmatch(pageText); match != nil {
		return "Available " + match[1]
	}
	if match := availablePattern.FindStringSubmatch(pageText); match != nil {
		return "Available " + match[1]
	}
	return ""
}
