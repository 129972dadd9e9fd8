// Package units normalizes raw measurement-unit tokens and enforces the
// two-unit display limit with stable axis assignment.
package units

import (
	"strings"
)

// Unitless is the canonical unit for columns without a bracketed unit token.
const Unitless = ""

// synonyms maps lower-cased raw tokens to their canonical unit. Unknown
// tokens normalize to themselves.
var synonyms = map[string]string{
	"°c":      "°C",
	"c":       "°C",
	"degc":    "°C",
	"%":       "%",
	"percent": "%",
	"w":       "W",
	"watt":    "W",
	"watts":   "W",
	"mhz":     "MHz",
	"rpm":     "RPM",
	"v":       "V",
	"yes/no":  "Yes/No",
}

// Normalize maps a raw unit token to its canonical unit identifier.
func Normalize(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return Unitless
	}
	if canonical, ok := synonyms[strings.ToLower(token)]; ok {
		return canonical
	}
	return token
}
