package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Availability is the stock status of an item as seen on its product page.
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityOutOfStock Availability = "out_of_stock"
	AvailabilityPreOrder   Availability = "pre_order"
	AvailabilityUnknown    Availability = "unknown"
)

// InStock reports whether the item can actually be bought right now.
// Pre-order counts as not in stock.
func (a Availability) InStock() bool {
	return a == AvailabilityInStock
}

func (a Availability) Label() string {
	switch a {
	case AvailabilityInStock:
		return "In Stock"
	case AvailabilityOutOfStock:
		return "Out of Stock"
	case AvailabilityPreOrder:
		return "Pre-Order"
	default:
		return "Unknown"
	}
}

// ProductInfo is the result of one successful probe of a product page.
type ProductInfo struct {
	ItemCode     string
	Name         string
	Availability Availability
	Price        *decimal.Decimal
	PriceDisplay string
	ButtonText   string
	URL          string
	Note         string
}

// ItemState is the last recorded availability of one item.
type ItemState struct {
	ItemCode     string
	Availability Availability
	CheckedAt    time.Time
}
