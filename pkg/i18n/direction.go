package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Direction is the text direction of a locale.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

var rtlBases = map[string]struct{}{
	"ar":  {},
	"fa":  {},
	"he":  {},
	"ur":  {},
	"ps":  {},
	"sd":  {},
	"yi":  {},
	"dv":  {},
	"ckb": {},
}

// DirectionOf returns RTL for right-to-left scripts and LTR otherwise,
// including unparsable tags.
func DirectionOf(locale string) Direction {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return LTR
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return LTR
	}
	if script, confidence := tag.Script(); confidence != language.No {
		switch script.String() {
		case "Arab", "Hebr", "Thaa", "Syrc", "Nkoo", "Adlm":
			return RTL
		case "Latn", "Cyrl":
			return LTR
		}
	}
	base, _ := tag.Base()
	if _, ok := rtlBases[base.String()]; ok {
		return RTL
	}
	return LTR
}

// IsRTL reports whether locale is written right to left.
func IsRTL(locale string) bool {
	return DirectionOf(locale) == RTL
}
