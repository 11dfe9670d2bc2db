package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var won = message.NewPrinter(language.Korean)

// FormatAmount renders an amount with digit grouping, e.g. "104,742,000".
func FormatAmount(amount int64) string {
	return won.Sprintf("%d", amount)
}

// FormatKRW is FormatAmount with the currency appended.
func FormatKRW(amount int64) string {
	return FormatAmount(amount) + " KRW"
}
