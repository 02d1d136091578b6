package ams

import "strings"

// namedColors maps common filament color names to their canonical hex value.
// Vendors report either form; normalizing both sides lets "Red" match
// "#FF0000" and vice versa.
var namedColors = map[string]string{
	"black":  "000000",
	"white":  "ffffff",
	"red":    "ff0000",
	"green":  "00ff00",
	"blue":   "0000ff",
	"yellow": "ffff00",
	"orange": "ffa500",
	"purple": "800080",
	"pink":   "ffc0cb",
	"gray":   "808080",
	"grey":   "808080",
	"silver": "c0c0c0",
	"gold":   "ffd700",
	"brown":  "a52a2a",
	"cyan":   "00ffff",
}

// NormalizeColor lowercases a color string, strips a leading '#', drops an
// alpha suffix from 8-digit hex values, and resolves known color names to hex.
func NormalizeColor(color string) string {
	normalized := strings.ToLower(strings.TrimSpace(color))
	normalized = strings.TrimPrefix(normalized, "#")
	if len(normalized) == 8 && isHex(normalized) {
		normalized = normalized[:6]
	}
	if hex, ok := namedColors[normalized]; ok {
		return hex
	}
	return normalized
}

// ColorsMatch reports whether a loaded slot color satisfies a requirement
// color: equal after normalization, or the slot value contains the requirement
// value (vendor color strings often embed the hex code in a longer label).
func ColorsMatch(slotColor, requirementColor string) bool {
	slot := NormalizeColor(slotColor)
	req := NormalizeColor(requirementColor)
	if slot == "" || req == "" {
		return slot == req
	}
	return slot == req || strings.Contains(slot, req)
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
