package derive

import (
	"regexp"
	"strconv"
	"strings"
)

// MaskChars are the characters statements use to hide account digits.
const MaskChars = `*#&-`

// MinNameLength is the length a captured name must exceed to be accepted.
const MinNameLength = 3

// MaskedBlockLen is the number of mask characters in a masked phone block.
const MaskedBlockLen = 6

var (
	// digits or mask characters, whitespace, then a run of letters, spaces and hyphens
	namePattern = regexp.MustCompile(`\d[\d` + regexp.QuoteMeta(MaskChars) + `]*\s([a-zA-Z\s\-]+)`)

	// "to 888880 - " as in paybill and till descriptions
	toNumberPattern = regexp.MustCompile(`to\s+(\d+)\s*-\s*`)

	// a masked block like 0*******123, or any single digit
	maskedNumberPattern = regexp.MustCompile(`[0-9]\*{` + strconv.Itoa(MaskedBlockLen) + `}\d{3}|[0-9]`)
)

// NameStrategy tries to extract a counterparty name from details text.
type NameStrategy func(details string) (string, bool)

// NumberStrategy tries to extract a counterparty number from details text.
type NumberStrategy func(details string) (string, bool)

// NameStrategies are tried in order by ExtractName.
var NameStrategies = []NameStrategy{NameAfterMaskedDigits}

// NumberStrategies are tried in order by ExtractNumber.
var NumberStrategies = []NumberStrategy{NumberAfterTo, ConcatenatedDigits}

// NameAfterMaskedDigits captures the letters following the first run of
// digits and mask characters.
func NameAfterMaskedDigits(details string) (string, bool) {
	m := namePattern.FindStringSubmatch(details)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if len(name) <= MinNameLength {
		return "", false
	}
	return name, true
}

// NumberAfterTo captures the digits in "to <digits> -".
func NumberAfterTo(details string) (string, bool) {
	m := toNumberPattern.FindStringSubmatch(strings.TrimSpace(details))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ConcatenatedDigits joins every masked block and single digit in order.
func ConcatenatedDigits(details string) (string, bool) {
	found := maskedNumberPattern.FindAllString(strings.TrimSpace(details), -1)
	if len(found) == 0 {
		return "", false
	}
	return strings.Join(found, ""), true
}

// ExtractName returns the counterparty name, or details itself when no
// strategy matches.
func ExtractName(details string) string {
	for _, s := range NameStrategies {
		if name, ok := s(details); ok {
			return name
		}
	}
	return details
}

// ExtractNumber returns the counterparty number. ok is false when details
// contains no digits at all.
func ExtractNumber(details string) (string, bool) {
	for _, s := range NumberStrategies {
		if n, ok := s(details); ok {
			return n, true
		}
	}
	return "", false
}
