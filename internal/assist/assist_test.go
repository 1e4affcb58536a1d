package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/internal/domain"
	"studyrag/internal/textdiff"
)

type stubGenerator struct {
	reply string
	err   error
	reqs  []domain.GenerateRequest
}

func (g *stubGenerator) Generate(_ context.Context, req domain.GenerateRequest) (string, error) {
	g.reqs = append(g.reqs, req)
	return g.reply, g.err
}

type stubSummarizer struct {
	req domain.SummaryRequest
}

func (s *stubSummarizer) Summarize(_ context.Context, req domain.SummaryRequest) (string, error) {
	s.req = req
	return "summary", nil
}

func ptr(f float64) *float64 { return &f }

func TestSummarizeForwardsVerbatim(t *testing.T) {
	s := &stubSummarizer{}
	out, err := Summarize(context.Background(), s, "doc", SummaryOptions{
		Length: "long", Format: "bullets", Extractiveness: "low", Temperature: ptr(4.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "summary", out)
	assert.Equal(t, domain.SummaryRequest{Text: "doc", Length: "long", Format: "bullets", Extractiveness: "low", Temperature: 4.5}, s.req)
}

func TestSummarizeDefaults(t *testing.T) {
	s := &stubSummarizer{}
	_, err := Summarize(context.Background(), s, "doc", SummaryOptions{Length: "Short", Format: "paragraph"})
	require.NoError(t, err)
	assert.Equal(t, "short", s.req.Length)
	assert.Equal(t, "high", s.req.Extractiveness)
	assert.Equal(t, 0.6, s.req.Temperature)

	_, err = Summarize(context.Background(), s, "doc", SummaryOptions{Length: "short", Format: "paragraph", Temperature: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, float64(0), s.req.Temperature)
}

func TestSummarizeValidation(t *testing.T) {
	cases := map[string]SummaryOptions{
		"length":         {Length: "tiny", Format: "paragraph"},
		"format":         {Length: "short", Format: "table"},
		"extractiveness": {Length: "short", Format: "paragraph", Extractiveness: "total"},
		"negative temp":  {Length: "short", Format: "paragraph", Temperature: ptr(-0.1)},
		"hot temp":       {Length: "short", Format: "paragraph", Temperature: ptr(5.01)},
	}
	for name, opts := range cases {
		_, err := Summarize(context.Background(), &stubSummarizer{}, "doc", opts)
		assert.ErrorIs(t, err, domain.ErrInvalidState, name)
	}
	_, err := Summarize(context.Background(), &stubSummarizer{}, " ", SummaryOptions{Length: "short", Format: "paragraph"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestPromptSummarizer(t *testing.T) {
	gen := &stubGenerator{reply: "  - point one\n- point two \n"}
	p := NewPromptSummarizer(gen, 200)
	out, err := p.Summarize(context.Background(), domain.SummaryRequest{
		Text: "Plants make food.", Length: "short", Format: "bullets", Extractiveness: "high", Temperature: 0.6,
	})
	require.NoError(t, err)
	assert.Equal(t, "- point one\n- point two", out)
	require.Len(t, gen.reqs, 1)
	assert.Contains(t, gen.reqs[0].Prompt, "Plants make food.")
	assert.Contains(t, gen.reqs[0].Prompt, "bulleted list")
	assert.Equal(t, 0.6, gen.reqs[0].Temperature)
	assert.Equal(t, 200, gen.reqs[0].MaxTokens)
}

func TestPracticeQuestions(t *testing.T) {
	gen := &stubGenerator{reply: "\nQuestion 1: What do plants need?\nAnswer 1: Sunlight\n"}
	out, err := PracticeQuestions(context.Background(), gen, "Plants need sunlight.", 300)
	require.NoError(t, err)
	assert.Equal(t, "Question 1: What do plants need?\nAnswer 1: Sunlight", out)
	assert.Contains(t, gen.reqs[0].Prompt, "write 5 practice questions")
	assert.Contains(t, gen.reqs[0].Prompt, "Question 5: <question>\nAnswer 5: <answer>\n")
	assert.NotContains(t, gen.reqs[0].Prompt, "Question 6")
	assert.Contains(t, gen.reqs[0].Prompt, "Plants need sunlight.")

	_, err = PracticeQuestions(context.Background(), gen, "", 300)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	gen.err = domain.NewServiceError("cohere-generate", domain.KindAuth, errors.New("bad key"))
	_, err = PracticeQuestions(context.Background(), gen, "x", 300)
	assert.True(t, domain.IsKind(err, domain.KindAuth))
}

func TestParsePracticeQuestionsNumbered(t *testing.T) {
	raw := `Question 1: What gas do plants absorb?
Answer 1: Carbon dioxide
Question 2: Which pigment is green?
Answer 2: Chlorophyll`
	set := ParsePracticeQuestions(raw)
	assert.False(t, set.ParseFailed)
	assert.Equal(t, []QAPair{
		{Question: "What gas do plants absorb?", Answer: "Carbon dioxide"},
		{Question: "Which pigment is green?", Answer: "Chlorophyll"},
	}, set.Pairs)
	assert.Contains(t, set.String(), "2. Which pigment is green?\n   Answer: Chlorophyll")
}

func TestParsePracticeQuestionsShortForm(t *testing.T) {
	set := ParsePracticeQuestions("Q: Where is Lagos?\nA: Nigeria\n\nQ: Capital?\nA: Abuja")
	assert.False(t, set.ParseFailed)
	require.Len(t, set.Pairs, 2)
	assert.Equal(t, "Abuja", set.Pairs[1].Answer)
}

func TestParsePracticeQuestionsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot write questions for this text.",
		"Question 1: Only a question",
		"Answer 1: orphan answer",
		"Question 1: first\nQuestion 2: second\nAnswer 2: x",
	} {
		set := ParsePracticeQuestions(raw)
		assert.True(t, set.ParseFailed, "input %q", raw)
		assert.Equal(t, raw, set.Raw)
		assert.Equal(t, raw, set.String())
	}
}

func TestRenderIdenticalTextUnchanged(t *testing.T) {
	text := "Photosynthesis  converts light\ninto energy."
	got, err := Render(text, text, nil)
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestRenderMarksChanges(t *testing.T) {
	got, err := Render("the cat sat on the mat", "the dog sat on the red mat", nil)
	require.NoError(t, err)
	assert.Equal(t, "the **dog** sat on the **red** mat", got)

	got, err = Render("the big cat sat", "the cat sat", nil)
	require.NoError(t, err)
	assert.Equal(t, "the cat sat", got)

	bracket := func(s string) string { return "[" + s + "]" }
	got, err = Render("hello world", "hello brave new world", bracket)
	require.NoError(t, err)
	assert.Equal(t, "hello [brave new] world", got)
}

func TestParaphrase(t *testing.T) {
	gen := &stubGenerator{reply: "\nPlants turn light into food.\n"}
	p := NewParaphraser(gen, nil, 0, 100)
	res, err := p.Paraphrase(context.Background(), "Plants convert light into food.")
	require.NoError(t, err)
	assert.Equal(t, "Plants turn light into food.", res.Rephrased)
	assert.Equal(t, "Plants **turn** light into food.", res.Marked)
	assert.Contains(t, gen.reqs[0].Prompt, "Plants convert light into food.")

	_, err = p.Paraphrase(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestParaphraseCapsInputWords(t *testing.T) {
	gen := &stubGenerator{reply: "green leaves catch"}
	p := NewParaphraser(gen, nil, 3, 0)
	res, err := p.Paraphrase(context.Background(), "green  leaves\ncatch sunlight every day")
	require.NoError(t, err)
	assert.Equal(t, "green  leaves\ncatch", res.Original)
	assert.Contains(t, gen.reqs[0].Prompt, "green  leaves\ncatch\n")
	assert.NotContains(t, gen.reqs[0].Prompt, "sunlight")
	assert.Equal(t, "green leaves catch", res.Marked)
}

func TestParaphraseDefaultWordCap(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	p := NewParaphraser(gen, nil, 0, 0)
	_, err := p.Paraphrase(context.Background(), strings.Repeat("leaf ", DefaultMaxParaphraseWords+50))
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxParaphraseWords, strings.Count(gen.reqs[0].Prompt, "leaf"))
}

func TestRenderRejectsUnknownOpcode(t *testing.T) {
	b := textdiff.Tokenize("plants grow")
	_, err := renderOpcodes(b, []textdiff.Opcode{
		{Tag: textdiff.Equal, I1: 0, I2: 1, J1: 0, J2: 1},
		{Tag: 'x', I1: 1, I2: 3, J1: 1, J2: 3},
	}, DefaultMarker)
	assert.ErrorIs(t, err, domain.ErrContentMismatch)

	_, err = renderOpcodes(b, []textdiff.Opcode{{Tag: textdiff.Equal, I1: 0, I2: 5, J1: 0, J2: 5}}, DefaultMarker)
	assert.ErrorIs(t, err, domain.ErrContentMismatch)
}

func TestTranslateTruncatesAndDefaultsToEnglish(t *testing.T) {
	gen := &stubGenerator{reply: " The president of Nigeria \n"}
	tr := NewTranslator(gen, 3, 0)
	out, err := tr.Translate(context.Background(), "Ààrẹ  orílẹ̀-èdè\nNàìjíríà ni", "")
	require.NoError(t, err)
	assert.Equal(t, "The president of Nigeria", out)

	prompt := gen.reqs[0].Prompt
	assert.Contains(t, prompt, "into English.")
	assert.Contains(t, prompt, "Ààrẹ orílẹ̀-èdè Nàìjíríà\n")
	assert.NotContains(t, prompt, " ni")
	assert.Equal(t, float64(0), gen.reqs[0].Temperature)
}

func TestTranslateValidation(t *testing.T) {
	tr := NewTranslator(&stubGenerator{}, 0, 0)
	_, err := tr.Translate(context.Background(), "   ", domain.Yoruba)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = tr.Translate(context.Background(), "hi", "Klingon")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTruncateWords(t *testing.T) {
	long := strings.Repeat("w ", DefaultMaxTranslateWords+10)
	assert.Len(t, strings.Fields(TruncateWords(long, DefaultMaxTranslateWords)), DefaultMaxTranslateWords)
	assert.Equal(t, "a b", TruncateWords(" a \n b ", 10))
}

func TestKit(t *testing.T) {
	gen := &stubGenerator{reply: "Question 1: What is green?\nAnswer 1: Chlorophyll"}
	sum := &stubSummarizer{}
	kit := NewKit(gen, sum, KitOptions{MaxTokens: 64, Target: domain.Hausa})
	assert.Equal(t, domain.Hausa, kit.Target())

	set, err := kit.PracticeQuestions(context.Background(), "Leaves are green.")
	require.NoError(t, err)
	assert.False(t, set.ParseFailed)
	assert.Equal(t, "Chlorophyll", set.Pairs[0].Answer)
	assert.Equal(t, 64, gen.reqs[0].MaxTokens)

	_, err = kit.Translate(context.Background(), "Leaves are green.")
	require.NoError(t, err)
	assert.Contains(t, gen.reqs[1].Prompt, "into Hausa.")

	out, err := kit.Summarize(context.Background(), "Leaves are green.", SummaryOptions{Length: "short", Format: "paragraph"})
	require.NoError(t, err)
	assert.Equal(t, "summary", out)
	assert.Equal(t, "Leaves are green.", sum.req.Text)
}
