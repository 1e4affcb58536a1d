package domain

import (
	"fmt"
	"strings"
)

// Language is one of the corpus languages a search can be restricted to.
type Language string

const (
	English Language = "English"
	Yoruba  Language = "Yoruba"
	Igbo    Language = "Igbo"
	Hausa   Language = "Hausa"
)

var languageCodes = map[Language]string{
	English: "en",
	Yoruba:  "yo",
	Igbo:    "ig",
	Hausa:   "ha",
}

// Languages lists the supported languages in display order.
func Languages() []Language {
	return []Language{English, Yoruba, Igbo, Hausa}
}

// Code returns the short code stored in the index lang field.
func (l Language) Code() string {
	return languageCodes[l]
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	_, ok := languageCodes[l]
	return ok
}

// ParseLanguage accepts a label ("Yoruba") or a code ("yo"), case-insensitively.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	for _, lang := range Languages() {
		if strings.EqualFold(s, string(lang)) || strings.EqualFold(s, lang.Code()) {
			return lang, nil
		}
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// FilterMode controls how the individual filter conditions combine.
type FilterMode string

const (
	// FilterAny matches a hit when any single condition holds.
	FilterAny FilterMode = "any"
	// FilterAll requires one of the languages and the text match together.
	FilterAll FilterMode = "all"
)

// ParseFilterMode maps a config value to a FilterMode, defaulting to FilterAny.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FilterAny):
		return FilterAny, nil
	case string(FilterAll):
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown filter mode %q", s)
}

// Filter narrows a vector search by language and/or text.
// Text is only set when exact text matching was requested.
type Filter struct {
	Languages []Language
	Text      string
	Mode      FilterMode
}

// NewFilter builds the filter for a query.
func NewFilter(query string, languages []Language, exactText bool, mode FilterMode) Filter {
	f := Filter{Languages: languages, Mode: mode}
	if exactText {
		f.Text = query
	}
	return f
}

// Empty reports whether the filter restricts nothing.
func (f Filter) Empty() bool {
	return len(f.Languages) == 0 && f.Text == ""
}

// Codes returns the language codes of the filter in order.
func (f Filter) Codes() []string {
	codes := make([]string, 0, len(f.Languages))
	for _, l := range f.Languages {
		if c := l.Code(); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// Matches evaluates the filter against a payload in process.
// Text matching is a case-insensitive containment check.
func (f Filter) Matches(p Payload) bool {
	if f.Empty() {
		return true
	}
	langOK := false
	for _, c := range f.Codes() {
		if p.Lang == c {
			langOK = true
			break
		}
	}
	textOK := f.Text != "" && strings.Contains(strings.ToLower(p.Text), strings.ToLower(f.Text))

	if f.Mode == FilterAll {
		if len(f.Languages) > 0 && !langOK {
			return false
		}
		if f.Text != "" && !textOK {
			return false
		}
		return true
	}
	return langOK || textOK
}
