// Package language lists the languages the kiosk offers and the input-method
// engine each one switches to.
package language

import (
	"fmt"
	"strings"
)

type Language struct {
	Code   string
	Engine string
}

var all = []Language{
	{"EN", "xkb:us::eng"},
	{"JP", "anthy"},
	{"CN", "libpinyin"},
	{"KR", "hangul"},
	{"ES", "xkb:es::spa"},
	{"FR", "xkb:fr::fra"},
	{"IT", "xkb:it::ita"},
	{"DE", "xkb:de::deu"},
	{"RU", "xkb:ru::rus"},
	{"PL", "xkb:pl::pol"},
}

// Default is used when the active engine is unknown.
var Default = all[0]

// All returns the languages in display order.
func All() []Language {
	return append([]Language(nil), all...)
}

// Parse looks a language up by code, case-insensitively.
func Parse(code string) (Language, error) {
	for _, l := range all {
		if strings.EqualFold(l.Code, code) {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("unknown language %q", code)
}

// FromEngine maps an input-method engine id back to its language.
func FromEngine(engine string) (Language, bool) {
	engine = strings.TrimSpace(engine)
	for _, l := range all {
		if l.Engine == engine {
			return l, true
		}
	}
	return Language{}, false
}

// RecordCode is the short code stored with each record.
func (l Language) RecordCode() string {
	return strings.ToLower(l.Code)
}

func (l Language) String() string { return l.Code }
