package tui

import (
	"fmt"
	"strconv"
	"strings"

	"studyrag/internal/assist"
	"studyrag/internal/domain"
)

// Mode is one tab of the interface.
type Mode int

const (
	ModeSearch Mode = iota
	ModeAsk
	ModeSummary
	ModeQuiz
	ModeParaphrase
	ModeTranslate
	modeCount
)

var modeNames = [modeCount]string{"Search", "Ask", "Summary", "Quiz", "Paraphrase", "Translate"}

func (m Mode) String() string {
	if m < 0 || m >= modeCount {
		return "?"
	}
	return modeNames[m]
}

var placeholders = [modeCount]string{
	"Search query; add " + languageHint() + " to filter languages",
	"Ask a question about the document",
	"Options: short|medium|long paragraph|bullets extractiveness=low|medium|high temperature=0.6",
	"Press Enter to generate practice questions",
	"Text to paraphrase",
	"Text to translate (empty translates the document)",
}

// languageHint lists the "@code" selectors for every supported language.
func languageHint() string {
	langs := domain.Languages()
	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = "@" + l.Code()
	}
	return strings.Join(codes, " ")
}

// parseSearchInput splits "@code" language selectors from the query text.
func parseSearchInput(s string) (string, []domain.Language, error) {
	var words []string
	var langs []domain.Language
	for _, w := range strings.Fields(s) {
		if !strings.HasPrefix(w, "@") || len(w) == 1 {
			words = append(words, w)
			continue
		}
		l, err := domain.ParseLanguage(w[1:])
		if err != nil {
			return "", nil, err
		}
		langs = append(langs, l)
	}
	return strings.Join(words, " "), langs, nil
}

// parseSummaryInput reads bare length/format words, a bare temperature and
// key=value pairs. Enum membership is checked by assist.Summarize.
func parseSummaryInput(s string) (assist.SummaryOptions, error) {
	opts := assist.SummaryOptions{Length: "medium", Format: "paragraph"}
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			switch tok {
			case "short", "medium", "long":
				opts.Length = tok
			case "paragraph", "bullets":
				opts.Format = tok
			default:
				t, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					return opts, fmt.Errorf("unknown summary option %q", tok)
				}
				opts.Temperature = &t
			}
			continue
		}
		switch key {
		case "length":
			opts.Length = value
		case "format":
			opts.Format = value
		case "extractiveness":
			opts.Extractiveness = value
		case "temperature":
			t, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return opts, fmt.Errorf("temperature %q is not a number", value)
			}
			opts.Temperature = &t
		default:
			return opts, fmt.Errorf("unknown summary option %q", key)
		}
	}
	return opts, nil
}
