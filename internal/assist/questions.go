package assist

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"studyrag/internal/domain"
)

// PracticeQuestionCount is how many question/answer pairs the prompt asks for.
const PracticeQuestionCount = 5

func practicePrompt(document string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Read the text below and write %d practice questions about it, ordered from easiest to hardest.\n", PracticeQuestionCount)
	b.WriteString("Each answer must be one or two words long.\nUse exactly this format:\n")
	for i := 1; i <= PracticeQuestionCount; i++ {
		fmt.Fprintf(&b, "Question %d: <question>\nAnswer %d: <answer>\n", i, i)
	}
	b.WriteString("\nText:\n")
	b.WriteString(document)
	return b.String()
}

// PracticeQuestions asks gen for PracticeQuestionCount question/answer pairs about document and
// returns the raw model text.
func PracticeQuestions(ctx context.Context, gen domain.Generator, document string, maxTokens int) (string, error) {
	if strings.TrimSpace(document) == "" {
		return "", fmt.Errorf("empty document: %w", domain.ErrInvalidState)
	}
	out, err := gen.Generate(ctx, domain.GenerateRequest{
		Prompt:      practicePrompt(document),
		Temperature: defaultTemperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate practice questions: %w", err)
	}
	return strings.TrimSpace(out), nil
}

type QAPair struct {
	Question string
	Answer   string
}

// QuestionSet is the parsed form of a practice-question reply.
// When ParseFailed is set, Pairs holds whatever could be recovered and Raw
// should be shown instead.
type QuestionSet struct {
	Pairs       []QAPair
	Raw         string
	ParseFailed bool
}

var (
	questionLine = regexp.MustCompile(`(?i)^(?:\d+[.)]\s*)?(?:question\s*\d*|q\d*)\s*[:.)-]\s*(.*)$`)
	answerLine   = regexp.MustCompile(`(?i)^(?:answer\s*\d*|a\d*)\s*[:.)-]\s*(.*)$`)
)

// ParsePracticeQuestions recovers question/answer pairs from model output.
// It never fails; output that does not follow the expected shape sets ParseFailed.
func ParsePracticeQuestions(raw string) QuestionSet {
	set := QuestionSet{Raw: raw}
	var pending *QAPair
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := questionLine.FindStringSubmatch(line); m != nil {
			if pending != nil {
				set.ParseFailed = true
			}
			pending = &QAPair{Question: strings.TrimSpace(m[1])}
			continue
		}
		if m := answerLine.FindStringSubmatch(line); m != nil {
			if pending == nil {
				set.ParseFailed = true
				continue
			}
			pending.Answer = strings.TrimSpace(m[1])
			set.Pairs = append(set.Pairs, *pending)
			pending = nil
			continue
		}
		// continuation of a multi-line question
		if pending != nil {
			pending.Question = strings.TrimSpace(pending.Question + " " + line)
			continue
		}
		set.ParseFailed = true
	}
	if pending != nil || len(set.Pairs) == 0 {
		set.ParseFailed = true
	}
	for _, p := range set.Pairs {
		if p.Question == "" || p.Answer == "" {
			set.ParseFailed = true
		}
	}
	return set
}

// String renders the set for display, falling back to the raw text.
func (s QuestionSet) String() string {
	if s.ParseFailed {
		return s.Raw
	}
	var b strings.Builder
	for i, p := range s.Pairs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s\n   Answer: %s\n", i+1, p.Question, p.Answer)
	}
	return b.String()
}
