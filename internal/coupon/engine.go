package coupon

import (
	"errors"
	"strings"
)

// ErrPercentOutOfRange is returned when encoding a discount outside 0-99.
var ErrPercentOutOfRange = errors.New("coupon percent must be between 0 and 99")

// Result is the outcome of resolving a coupon. An invalid coupon always carries a zero discount.
type Result struct {
	Valid           bool `json:"valid"`
	DiscountPercent int  `json:"discountPercent"`
}

// suffixLen is the number of trailing characters carrying the cipher.
const suffixLen = 4

// named maps promotional codes, matched case-insensitively, to their discount.
var named = map[string]int{
	"WELCOME10": 10,
	"SAVE20":    20,
}

// pairDigits maps each letter pair to a decimal digit. Digits 1-9 pair the n-th letter from the
// start of the alphabet with the n-th from the end; 0 is OP.
var pairDigits = map[string]int{
	"AZ": 1,
	"BY": 2,
	"CX": 3,
	"DW": 4,
	"EV": 5,
	"FU": 6,
	"GT": 7,
	"HS": 8,
	"IR": 9,
	"OP": 0,
}

var digitPairs = func() [10]string {
	var out [10]string
	for pair, digit := range pairDigits {
		out[digit] = pair
	}
	return out
}()

var invalid = Result{}

// Resolve derives the discount for a coupon code. Named codes match exactly (ignoring case);
// anything else is decoded from its last four characters as a tens pair and a ones pair.
func Resolve(code string) Result {
	if code == "" {
		return invalid
	}
	upper := strings.ToUpper(code)
	if percent, ok := named[upper]; ok {
		return Result{Valid: true, DiscountPercent: percent}
	}
	runes := []rune(upper)
	if len(runes) < suffixLen {
		return invalid
	}
	suffix := runes[len(runes)-suffixLen:]
	tens, ok := pairDigits[string(suffix[:2])]
	if !ok {
		return invalid
	}
	ones, ok := pairDigits[string(suffix[2:])]
	if !ok {
		return invalid
	}
	return Result{Valid: true, DiscountPercent: tens*10 + ones}
}

// Encode returns the four-letter cipher suffix for percent.
func Encode(percent int) (string, error) {
	if percent < 0 || percent > 99 {
		return "", ErrPercentOutOfRange
	}
	return digitPairs[percent/10] + digitPairs[percent%10], nil
}

// IsNamed reports whether code is one of the named promotional codes.
func IsNamed(code string) bool {
	_, ok := named[strings.ToUpper(code)]
	return ok
}
