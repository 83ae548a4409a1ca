package view

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	moolah "github.com/ongweikiat/moolah/internal/currency"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a monetary amount with its currency symbol and
// thousands separators, e.g. "SGD -1,234.50".
func FormatAmount(amount decimal.Decimal, code moolah.Code) string {
	unit, err := currency.ParseISO(string(code))
	if err != nil {
		return printer.Sprintf("%s %s", string(code), amount.StringFixed(2))
	}

	f, _ := amount.Round(2).Float64()

	return printer.Sprintf("%v", currency.Symbol(unit.Amount(f)))
}

// FormatDate formats a date as YYYY-MM-DD; nil renders as a dash.
func FormatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return t.Format(time.DateOnly)
}
