package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studyrag/internal/qa"
	"studyrag/internal/service"
)

// Options carries startup settings for the model.
type Options struct {
	NumResults   int
	Document     string
	DocumentName string
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx      context.Context
	search   SearchPort
	answerer AnswerPort
	assist   AssistPort

	numResults int
	mode       Mode
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	ready      bool
	busy       bool
	status     string

	document     string
	documentName string

	lastQuery   string
	exact       bool
	results     service.Results
	cursor      int
	translation string

	history qa.History
	outputs [modeCount]string
}

// New creates a new TUI model instance. ctx bounds every remote call it issues.
func New(ctx context.Context, search SearchPort, answerer AnswerPort, assist AssistPort, opts Options) Model {
	if opts.NumResults <= 0 {
		opts.NumResults = 3
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholders[ModeSearch]
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:          ctx,
		search:       search,
		answerer:     answerer,
		assist:       assist,
		numResults:   opts.NumResults,
		input:        ti,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		status:       "Tab switches mode. Type /load <path> to open a document.",
		document:     opts.Document,
		documentName: opts.DocumentName,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

type searchMsg struct {
	query   string
	results service.Results
	err     error
}

type answerMsg struct {
	history qa.History
	err     error
}

type outputMsg struct {
	mode Mode
	text string
	err  error
}

type resultTranslationMsg struct {
	query string
	index int
	text  string
	err   error
}

type documentMsg struct {
	name string
	text string
	err  error
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // tabs + document line, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case searchMsg, answerMsg, outputMsg, resultTranslationMsg, documentMsg:
		m.busy = false
		m.apply(msg)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.setMode((m.mode + 1) % modeCount)
			return m, nil
		case "shift+tab":
			m.setMode((m.mode + modeCount - 1) % modeCount)
			return m, nil
		case "enter":
			if m.busy {
				return m, nil
			}
			next, work := m.submit()
			if work == nil {
				return next, nil
			}
			next.busy = true
			next.refresh()
			return next, tea.Batch(work, next.spinner.Tick)
		case "ctrl+t":
			if m.mode == ModeSearch {
				m.exact = !m.exact
				m.status = fmt.Sprintf("Exact text filter: %v", m.exact)
				return m, nil
			}
		case "ctrl+r":
			if m.mode == ModeSearch && !m.busy {
				if work := m.translateResult(); work != nil {
					m.busy = true
					m.status = "Translating result..."
					return m, tea.Batch(work, m.spinner.Tick)
				}
				return m, nil
			}
		case "down":
			if m.mode == ModeSearch && len(m.results.Texts) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results.Texts)
				m.translation = ""
				m.refresh()
				return m, nil
			}
		case "up":
			if m.mode == ModeSearch && len(m.results.Texts) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results.Texts)) % len(m.results.Texts)
				m.translation = ""
				m.refresh()
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setMode(mode Mode) {
	m.mode = mode
	m.input.Placeholder = placeholders[mode]
	m.status = mode.String() + " mode"
	m.refresh()
}

// submit turns the current input into a remote call. A nil command means
// nothing was sent.
func (m Model) submit() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	ctx := m.ctx

	if path, ok := strings.CutPrefix(raw, "/load "); ok {
		m.input.SetValue("")
		m.status = "Loading " + path + "..."
		return m, loadDocument(strings.TrimSpace(path))
	}

	switch m.mode {
	case ModeSearch:
		query, langs, err := parseSearchInput(raw)
		if err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		if query == "" {
			return m, nil
		}
		n, exact, search := m.numResults, m.exact, m.search
		m.status = fmt.Sprintf("Searching %q...", query)
		return m, func() tea.Msg {
			res, err := search.Search(ctx, query, n, langs, exact)
			return searchMsg{query: query, results: res, err: err}
		}

	case ModeAsk:
		if raw == "" {
			return m, nil
		}
		if m.document == "" {
			m.status = "Load a document first: /load <path>"
			return m, nil
		}
		m.input.SetValue("")
		m.history = append(qa.History(nil), m.history...)
		m.history.Ask(raw)
		// the command works on its own copy; the model adopts it on reply
		h := append(qa.History(nil), m.history...)
		doc, answerer := m.document, m.answerer
		m.status = "Answering..."
		return m, func() tea.Msg {
			_, err := answerer.AnswerHistory(ctx, doc, &h)
			return answerMsg{history: h, err: err}
		}

	case ModeSummary:
		if m.document == "" {
			m.status = "Load a document first: /load <path>"
			return m, nil
		}
		opts, err := parseSummaryInput(raw)
		if err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		doc, a := m.document, m.assist
		m.status = "Summarizing..."
		return m, func() tea.Msg {
			out, err := a.Summarize(ctx, doc, opts)
			return outputMsg{mode: ModeSummary, text: out, err: err}
		}

	case ModeQuiz:
		if m.document == "" {
			m.status = "Load a document first: /load <path>"
			return m, nil
		}
		doc, a := m.document, m.assist
		m.status = "Writing practice questions..."
		return m, func() tea.Msg {
			set, err := a.PracticeQuestions(ctx, doc)
			return outputMsg{mode: ModeQuiz, text: set.String(), err: err}
		}

	case ModeParaphrase:
		if raw == "" {
			return m, nil
		}
		a := m.assist
		m.status = "Paraphrasing..."
		return m, func() tea.Msg {
			p, err := a.Paraphrase(ctx, raw)
			return outputMsg{mode: ModeParaphrase, text: p.Marked, err: err}
		}

	case ModeTranslate:
		text := raw
		if text == "" {
			text = m.document
		}
		if text == "" {
			return m, nil
		}
		a := m.assist
		m.status = "Translating..."
		return m, func() tea.Msg {
			out, err := a.Translate(ctx, text)
			return outputMsg{mode: ModeTranslate, text: out, err: err}
		}
	}
	return m, nil
}

func (m Model) translateResult() tea.Cmd {
	if len(m.results.Texts) == 0 || m.results.Texts[m.cursor] == "" {
		return nil
	}
	ctx, a := m.ctx, m.assist
	query, idx, text := m.lastQuery, m.cursor, m.results.Texts[m.cursor]
	return func() tea.Msg {
		out, err := a.Translate(ctx, text)
		return resultTranslationMsg{query: query, index: idx, text: out, err: err}
	}
}

func loadDocument(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return documentMsg{name: filepath.Base(path), text: string(data), err: err}
	}
}

func (m *Model) apply(msg tea.Msg) {
	switch msg := msg.(type) {
	case searchMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return
		}
		m.results, m.cursor, m.lastQuery, m.translation = msg.results, 0, msg.query, ""
		m.input.SetValue("")
		m.status = fmt.Sprintf("Results for %q", msg.query)
	case answerMsg:
		// the pending turn stays visible so the question can be retried
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return
		}
		m.history = msg.history
		m.status = "Answered."
	case outputMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return
		}
		m.outputs[msg.mode] = msg.text
		m.status = msg.mode.String() + " ready."
	case resultTranslationMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return
		}
		if msg.query == m.lastQuery && msg.index == m.cursor {
			m.translation = msg.text
		}
		m.status = "Translated."
	case documentMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return
		}
		m.document, m.documentName = msg.text, msg.name
		m.history = nil
		m.outputs = [modeCount]string{}
		m.status = fmt.Sprintf("Loaded %s (%d words).", msg.name, len(strings.Fields(msg.text)))
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderBody())
	m.viewport.GotoTop()
}

// View renders the TUI layout and current mode's output.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	tabs := make([]string, modeCount)
	for i := Mode(0); i < modeCount; i++ {
		style := tabStyle
		if i == m.mode {
			style = activeTabStyle
		}
		tabs[i] = style.Render(i.String())
	}
	header := lipgloss.NewStyle().Bold(true).Render("Study RAG") + "  " + strings.Join(tabs, " ")

	doc := "No document loaded."
	if m.document != "" {
		doc = fmt.Sprintf("Document: %s (%d words)", m.documentName, len(strings.Fields(m.document)))
	}
	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" +
		dimStyle.Render(doc) + "\n" +
		resultBoxStyle.Render(m.viewport.View()) + "\n" +
		queryBoxStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(status)
}
