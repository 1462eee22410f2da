package thronewatch

import (
	"strconv"
	"strings"
)

// FormatPrice formats an amount in minor units for display.
// Unknown prices are shown as "unknown".
func FormatPrice(cents *int64, currency string) string {
	if cents == nil {
		return "unknown"
	}

	amount := formatMinorUnits(*cents, CurrencyExponent(currency))
	if c, ok := LookupCurrency(currency); ok && c.Symbol != "" {
		return c.Symbol + amount
	}
	if currency == "" {
		return amount
	}
	return amount + " " + strings.ToUpper(currency)
}

func formatMinorUnits(v int64, exponent int) string {
	sign := ""
	abs := uint64(v)
	if v < 0 {
		sign = "-"
		abs = -abs
	}
	digits := strconv.FormatUint(abs, 10)
	if exponent <= 0 {
		return sign + digits
	}
	if len(digits) <= exponent {
		digits = strings.Repeat("0", exponent-len(digits)+1) + digits
	}
	split := len(digits) - exponent
	return sign + digits[:split] + "." + digits[split:]
}

// FormatReport formats a change report as plain text.
// Sections without changes are omitted.
func FormatReport(targetKey string, report *ChangeReport) string {
	var b strings.Builder
	b.WriteString("Wishlist: ")
	b.WriteString(targetKey)

	if report == nil {
		return b.String()
	}

	if len(report.Added) > 0 {
		b.WriteString("\n\nAdded:")
		for _, item := range report.Added {
			b.WriteString("\n  • ")
			b.WriteString(item.Name)
			b.WriteString("  (")
			b.WriteString(FormatPrice(item.PriceCents, item.Currency))
			b.WriteString(")  ")
			b.WriteString(item.ProductURL)
		}
	}

	if len(report.Removed) > 0 {
		b.WriteString("\n\nRemoved:")
		for _, item := range report.Removed {
			b.WriteString("\n  • ")
			b.WriteString(item.Name)
		}
	}

	if len(report.PriceChanges) > 0 {
		b.WriteString("\n\nPrice changes:")
		for _, pc := range report.PriceChanges {
			b.WriteString("\n  • ")
			b.WriteString(pc.Name)
			b.WriteString(": ")
			b.WriteString(FormatPrice(pc.OldPriceCents, pc.OldCurrency))
			b.WriteString(" → ")
			b.WriteString(FormatPrice(pc.NewPriceCents, pc.NewCurrency))
		}
	}

	return b.String()
}

// ReportSubject returns a one-line summary suitable for a message subject.
func ReportSubject(targetKey string, report *ChangeReport) string {
	var parts []string
	if report != nil {
		if n := len(report.Added); n > 0 {
			parts = append(parts, strconv.Itoa(n)+" added")
		}
		if n := len(report.Removed); n > 0 {
			parts = append(parts, strconv.Itoa(n)+" removed")
		}
		if n := len(report.PriceChanges); n > 0 {
			parts = append(parts, strconv.Itoa(n)+" price changes")
		}
	}
	if len(parts) == 0 {
		return "[Throne] No changes for " + targetKey
	}
	return "[Throne] Changes detected for " + targetKey + " (" + strings.Join(parts, ", ") + ")"
}
