package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"rewe-ebon-bot/internal/models"
)

// failureTitle is the title of the batch failure summary notification.
const failureTitle = "REWE eBon Bot"

var germanPrinter = message.NewPrinter(language.German)

// formatEuro renders an amount the way a German receipt does: comma
// decimals, dot grouping, trailing euro sign.
func formatEuro(v float64) string {
	return germanPrinter.Sprintf("%v €", number.Decimal(v, number.Scale(2)))
}

// ComposeNotification renders the human-readable title and body for one
// receipt. Deposit positions (PFAND) and non-positive sub-totals are left
// out of the item list; the PAYBACK paragraph only appears when the receipt
// carries a PAYBACK summary.
func ComposeNotification(r *models.Receipt) (title, body string) {
	datum := r.Date.Format("02.01.2006")
	zeit := r.Date.Format("15:04:05")
	title = fmt.Sprintf("Dein eBon für den Einkauf am %s um %s (%s)", datum, zeit, formatEuro(r.Total))

	var names []string
	for _, item := range r.Items {
		if item.SubTotal <= 0 {
			continue
		}
		if strings.Contains(item.Name, "PFAND") {
			continue
		}
		names = append(names, item.Name)
	}

	paragraphs := []string{
		fmt.Sprintf("Folgende Artikel hast du gekauft: %s", strings.Join(names, ", ")),
	}

	if pb := r.Payback; pb != nil {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"Du hast %d PayBack Punkte auf einen Umsatz von %s erhalten und dabei %d Coupons eingelöst.",
			pb.EarnedPoints, formatEuro(pb.QualifiedRevenue), len(pb.UsedCoupons)))

		if len(pb.UsedCoupons) > 0 {
			details := make([]string, 0, len(pb.UsedCoupons))
			for _, coupon := range pb.UsedCoupons {
				details = append(details, fmt.Sprintf("%s (%d)", coupon.Name, coupon.Points))
			}
			paragraphs = append(paragraphs, "Eingelöste Coupons: "+strings.Join(details, ", "))
		}
	}

	return title, strings.Join(paragraphs, "\n\n")
}
