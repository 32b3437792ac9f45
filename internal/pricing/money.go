package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value in the major unit of the quote currency.
type Money = decimal.Decimal

// ErrInvalidSelection is returned when a selection carries an unknown tier, currency or domain.
var ErrInvalidSelection = errors.New("invalid selection")

// Currency identifies the rate table and rounding rule used for a quote.
type Currency string

const (
	// INR quotes use flat integer rates and round only the final total.
	INR Currency = "INR"
	// USD quotes are grossed up for processor fees and round every line to cents.
	USD Currency = "USD"
)

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{INR, USD}

// ParseCurrency normalises a currency code.
func ParseCurrency(value string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(value)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown currency %q", ErrInvalidSelection, value)
	}
	return c, nil
}

// Valid reports whether the currency is supported.
func (c Currency) Valid() bool {
	return c == INR || c == USD
}

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string {
	if c == USD {
		return "$"
	}
	return "₹"
}

// Format renders an amount with the currency symbol at display precision.
func (c Currency) Format(m Money) string {
	if c == USD {
		return c.Symbol() + m.StringFixed(2)
	}
	return c.Symbol() + m.String()
}

// roundLine applies per-line rounding. INR lines are integral already.
func (c Currency) roundLine(m Money) Money {
	if c == USD {
		return m.Round(2)
	}
	return m
}

// roundTotal applies the currency's final-total rounding (half-up for positive amounts).
func (c Currency) roundTotal(m Money) Money {
	if c == USD {
		return m.Round(2)
	}
	return m.Round(0)
}

var (
	// ProcessorFeePercent is the percentage fee taken on USD payments.
	ProcessorFeePercent = decimal.RequireFromString("0.044")
	// ProcessorFixedFee is the fixed fee taken on each USD payment.
	ProcessorFixedFee = decimal.RequireFromString("0.30")

	hundred = decimal.NewFromInt(100)
)

// GrossUp returns the amount to charge so that net remains after processor fees:
// (net + fixed) / (1 - percent). Zero stays zero.
func GrossUp(net Money) Money {
	if !net.IsPositive() {
		return decimal.Zero
	}
	return net.Add(ProcessorFixedFee).Div(decimal.NewFromInt(1).Sub(ProcessorFeePercent))
}
