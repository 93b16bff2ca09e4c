package ebon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"rewe-ebon-bot/internal/models"
)

var (
	itemRe         = regexp.MustCompile(`^(.+?)\s+(-?\d+(?:\.\d{3})*,\d{2})\s*([AB])?\s*\*?$`)
	quantityRe     = regexp.MustCompile(`^\s*(\d+(?:,\d+)?)\s+Stk\s+x\b`)
	totalRe        = regexp.MustCompile(`^SUMME\s+EUR\s+(-?\d+(?:\.\d{3})*,\d{2})$`)
	dateRe         = regexp.MustCompile(`Datum:\s*(\d{2}\.\d{2}\.\d{4})`)
	timeRe         = regexp.MustCompile(`Uhrzeit:\s*(\d{2}:\d{2}:\d{2})`)
	marketRe       = regexp.MustCompile(`Markt:\s*(\S+)`)
	registerRe     = regexp.MustCompile(`Kasse:\s*(\S+)`)
	cashierRe      = regexp.MustCompile(`Bed\.:\s*(\S+)`)
	cardRe         = regexp.MustCompile(`PAYBACK Karten-Nr\.:\s*(\S+)`)
	pointsBeforeRe = regexp.MustCompile(`Punkte vor Einkauf:\s*([\d.]+)`)
	earnedRe       = regexp.MustCompile(`Sie erhalten (\d+) PAYBACK Punkte? auf einen PAYBACK Umsatz von (\d+(?:\.\d{3})*,\d{2}) EUR`)
	couponRe       = regexp.MustCompile(`(?i)^e?-?coupon:?\s+(.+?)\s+(\d+)\s+Punkte`)
)

// parseLines turns the text rows of an eBon document into a structured
// receipt. The purchase date and the SUMME line are mandatory; everything
// else, including the whole PAYBACK block, is optional.
func parseLines(lines []string) (*models.Receipt, error) {
	receipt := &models.Receipt{}

	var (
		dateStr, timeStr string
		totalSeen        bool
		payback          *models.Payback
	)

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := totalRe.FindStringSubmatch(line); m != nil {
			total, err := parseAmount(m[1])
			if err != nil {
				return nil, fmt.Errorf("invalid total %q: %w", m[1], err)
			}
			receipt.Total = total
			totalSeen = true
			continue
		}

		if m := dateRe.FindStringSubmatch(line); m != nil {
			dateStr = m[1]
			continue
		}
		if m := timeRe.FindStringSubmatch(line); m != nil {
			timeStr = m[1]
			continue
		}
		if m := marketRe.FindStringSubmatch(line); m != nil {
			receipt.Market = m[1]
		}
		if m := registerRe.FindStringSubmatch(line); m != nil {
			receipt.Register = m[1]
		}
		if m := cashierRe.FindStringSubmatch(line); m != nil {
			receipt.Cashier = m[1]
			continue
		}

		if m := cardRe.FindStringSubmatch(line); m != nil {
			payback = ensurePayback(payback)
			payback.Card = m[1]
			continue
		}
		if m := pointsBeforeRe.FindStringSubmatch(line); m != nil {
			payback = ensurePayback(payback)
			payback.PointsBefore = parsePoints(m[1])
			continue
		}
		if m := earnedRe.FindStringSubmatch(line); m != nil {
			payback = ensurePayback(payback)
			payback.EarnedPoints = parsePoints(m[1])
			revenue, err := parseAmount(m[2])
			if err != nil {
				return nil, fmt.Errorf("invalid PAYBACK revenue %q: %w", m[2], err)
			}
			payback.QualifiedRevenue = revenue
			continue
		}
		if m := couponRe.FindStringSubmatch(line); m != nil {
			payback = ensurePayback(payback)
			payback.UsedCoupons = append(payback.UsedCoupons, models.Coupon{
				Name:   strings.TrimSpace(m[1]),
				Points: parsePoints(m[2]),
			})
			continue
		}

		// Item lines only occur before the SUMME line.
		if totalSeen {
			continue
		}
		if m := quantityRe.FindStringSubmatch(line); m != nil {
			if n := len(receipt.Items); n > 0 {
				if qty, err := parseAmount(m[1] + ",00"); err == nil {
					receipt.Items[n-1].Quantity = qty
				}
			}
			continue
		}
		if m := itemRe.FindStringSubmatch(line); m != nil {
			subTotal, err := parseAmount(m[2])
			if err != nil {
				continue
			}
			receipt.Items = append(receipt.Items, models.Item{
				Name:        strings.TrimSpace(m[1]),
				SubTotal:    subTotal,
				TaxCategory: m[3],
			})
		}
	}

	if dateStr == "" {
		return nil, fmt.Errorf("eBon contains no purchase date")
	}
	if !totalSeen {
		return nil, fmt.Errorf("eBon contains no SUMME line")
	}

	if timeStr == "" {
		timeStr = "00:00:00"
	}
	date, err := time.Parse("02.01.2006 15:04:05", dateStr+" "+timeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase date %q: %w", dateStr, err)
	}
	receipt.Date = date
	receipt.Payback = payback

	return receipt, nil
}

func ensurePayback(payback *models.Payback) *models.Payback {
	if payback == nil {
		return &models.Payback{UsedCoupons: []models.Coupon{}}
	}
	return payback
}

// parseAmount converts a German-formatted amount ("1.234,56") to a float.
func parseAmount(s string) (float64, error) {
	normalized := strings.ReplaceAll(s, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	return strconv.ParseFloat(normalized, 64)
}

// parsePoints converts a point count that may carry a thousands separator.
func parsePoints(s string) int {
	n, _ := strconv.Atoi(strings.ReplaceAll(s, ".", ""))
	return n
}
