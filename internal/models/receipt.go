package models

import (
	"strings"
	"time"
)

// Receipt represents one parsed eBon document
type Receipt struct {
	Date     time.Time `json:"date"`
	Market   string    `json:"market,omitempty"`
	Cashier  string    `json:"cashier,omitempty"`
	Register string    `json:"register,omitempty"`
	Items    []Item    `json:"items"`
	Total    float64   `json:"total"`
	Payback  *Payback  `json:"payback,omitempty"`
}

// Item represents one purchased line item
type Item struct {
	Name        string  `json:"name"`
	SubTotal    float64 `json:"subTotal"`
	Quantity    float64 `json:"quantity,omitempty"`
	TaxCategory string  `json:"taxCategory,omitempty"`
}

// Payback represents the optional PAYBACK summary of a receipt
type Payback struct {
	Card             string   `json:"card,omitempty"`
	PointsBefore     int      `json:"pointsBefore,omitempty"`
	EarnedPoints     int      `json:"earnedPoints"`
	QualifiedRevenue float64  `json:"qualifiedRevenue"`
	UsedCoupons      []Coupon `json:"usedCoupons"`
}

// Coupon represents one redeemed PAYBACK coupon
type Coupon struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ArtifactBaseName derives the store-safe base name for the receipt's
// artifact pair: the purchase date as UTC ISO-8601 with milliseconds,
// colons replaced so the name is valid on any filesystem.
func (r *Receipt) ArtifactBaseName() string {
	iso := r.Date.UTC().Format("2006-01-02T15:04:05.000") + "Z"
	return strings.ReplaceAll(iso, ":", "-")
}
