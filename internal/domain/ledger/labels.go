package ledger

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Labels holds the display strings attached to separator and credit groups.
type Labels struct {
	Locale         language.Tag
	CurrencySymbol string
	ZeroBalance    string
	FavorBalance   string
}

// DefaultLabels returns the Latin American Spanish labels.
func DefaultLabels() Labels {
	return Labels{
		Locale:         language.LatinAmericanSpanish,
		CurrencySymbol: "$",
		ZeroBalance:    "Cuenta en 0",
		FavorBalance:   "Saldo a favor",
	}
}

// LabelsForLocale returns DefaultLabels with the given BCP 47 locale. An
// unparseable locale keeps the default.
func LabelsForLocale(locale, currencySymbol string) Labels {
	labels := DefaultLabels()
	if tag, err := language.Parse(locale); err == nil {
		labels.Locale = tag
	}
	if currencySymbol != "" {
		labels.CurrencySymbol = currencySymbol
	}
	return labels
}

// FavorMessage renders the credit line, e.g. "Saldo a favor: $200.00".
func (l Labels) FavorMessage(amount decimal.Decimal) string {
	p := message.NewPrinter(l.Locale)
	return p.Sprintf("%s: %s%v", l.FavorBalance, l.CurrencySymbol,
		number.Decimal(amount.InexactFloat64(), number.Scale(2)))
}
