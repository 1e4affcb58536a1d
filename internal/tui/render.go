package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	changeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Underline(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`)
)

// MarkChange highlights a paraphrased span.
func MarkChange(span string) string {
	return changeStyle.Render(span)
}

func (m Model) renderBody() string {
	switch m.mode {
	case ModeSearch:
		return m.renderCurrentResult()
	case ModeAsk:
		return m.renderHistory()
	}
	if out := m.outputs[m.mode]; out != "" {
		return out
	}
	if m.mode == ModeParaphrase || m.mode == ModeTranslate {
		return "Nothing yet."
	}
	if m.document == "" {
		return "No document loaded. Type /load <path>."
	}
	return "Press Enter to generate."
}

func (m Model) renderCurrentResult() string {
	if len(m.results.Texts) == 0 {
		return "No results yet."
	}
	text := m.results.Texts[m.cursor]
	title := fmt.Sprintf("Result %d/%d", m.cursor+1, len(m.results.Texts))
	if text == "" {
		return title + "\n\n" + dimStyle.Render("(no matching passage)")
	}
	body := highlightBestSentence(text, m.lastQuery)
	if m.cursor < len(m.results.Sources) && m.results.Sources[m.cursor] != "" {
		src := m.results.Sources[m.cursor]
		body += "\n\n" + dimStyle.Render("Source: "+src)
	}
	if m.translation != "" {
		body += "\n\nTranslation:\n" + m.translation
	} else {
		body += "\n\n" + dimStyle.Render("ctrl+r translates, ctrl+t toggles exact text")
	}
	return title + "\n\n" + body
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		if m.document == "" {
			return "No document loaded. Type /load <path>."
		}
		return "Ask anything about the document."
	}
	var b strings.Builder
	for i, turn := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(highlightStyle.Render("Q: ") + turn.Question + "\n")
		if turn.Pending {
			b.WriteString(dimStyle.Render("A: ..."))
		} else {
			b.WriteString("A: " + turn.Answer)
		}
	}
	return b.String()
}

// highlightBestSentence emphasises the sentence sharing the most words with query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	var sentences []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 || len(sentences) == 0 {
		return strings.TrimSpace(text)
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := map[string]struct{}{}
	for _, t := range unicodeWordRe.FindAllString(strings.ToLower(sentence), -1) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
