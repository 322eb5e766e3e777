package marketdata

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"marketpulse/internal/domain/market"
)

// HumanScale abbreviates v with B, M or K and one decimal
func HumanScale(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

// HumanScaleINR formats rupees on the crore/lakh scale
func HumanScaleINR(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e7:
		return fmt.Sprintf("₹%.2fCr", v/1e7)
	case abs >= 1e5:
		return fmt.Sprintf("₹%.2fL", v/1e5)
	default:
		return "₹" + humanize.FormatFloat("#,###.##", v)
	}
}

// FormatMoney renders an absolute amount in the market's currency, or N/A
func FormatMoney(v market.Value, m market.Market) string {
	if !v.OK {
		return market.NA
	}
	if m.Indian() {
		return HumanScaleINR(v.V)
	}
	return "$" + HumanScale(v.V)
}

// FormatPrice renders a per-share price with two decimals and the market's currency symbol
func FormatPrice(v market.Value, m market.Market) string {
	if !v.OK {
		return market.NA
	}
	return m.Info().CurrencySymbol + decimal.NewFromFloat(v.V).StringFixed(2)
}

// FormatPercent renders a signed percentage with two decimals, e.g. "+1.25%"
func FormatPercent(v market.Value) string {
	if !v.OK {
		return market.NA
	}
	s := decimal.NewFromFloat(v.V).StringFixed(2)
	if v.V >= 0 {
		s = "+" + s
	}
	return s + "%"
}

// FormatNumber renders a plain number with two decimals
func FormatNumber(v market.Value) string {
	if !v.OK {
		return market.NA
	}
	return decimal.NewFromFloat(v.V).StringFixed(2)
}

// FormatVolume renders a share count with thousands separators
func FormatVolume(v market.Value) string {
	if !v.OK {
		return market.NA
	}
	return humanize.Comma(int64(math.Round(v.V)))
}
