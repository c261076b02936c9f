package analytics

import (
	"fmt"
	"math"
)

// FormatEnergy renders kWh, switching to MWh from 1000 kWh.
func FormatEnergy(kwh float64) string {
	if kwh >= 1000 {
		return fmt.Sprintf("%.1f MWh", kwh/1000)
	}
	return fmt.Sprintf("%.1f kWh", kwh)
}

// FormatCO2 renders kilograms of CO2 equivalent, switching to tonnes from 1000 kg.
func FormatCO2(kg float64) string {
	if kg >= 1000 {
		return fmt.Sprintf("%.1f tCO₂e", kg/1000)
	}
	return fmt.Sprintf("%.1f kgCO₂e", kg)
}

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"CHF": "CHF ",
}

// FormatCurrency renders an amount with the symbol of an ISO currency code.
// Unknown codes are rendered as a suffix.
func FormatCurrency(amount float64, code string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	if code == "" {
		code = "EUR"
	}
	if symbol, ok := currencySymbols[code]; ok {
		return fmt.Sprintf("%s%s%.2f", sign, symbol, amount)
	}
	return fmt.Sprintf("%s%.2f %s", sign, amount, code)
}

// FormatChange renders a percentage change with an explicit sign.
func FormatChange(pct float64) string {
	if pct > 0 {
		return fmt.Sprintf("+%.1f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}
