package tui

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recap/internal/api"
	"recap/internal/model"
	"recap/internal/util"
	"recap/internal/workflow"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type viewState int

const (
	viewMain   viewState = iota
	viewPicker           // choosing a transcript file
)

type focusArea int

const (
	focusTranscript focusArea = iota
	focusSummary
	focusRecipients
)

const historySuggestions = 20

// Gateway performs one round trip against the summarizer service.
type Gateway interface {
	Call(ctx context.Context, req api.Request) (model.Envelope, error)
}

// History remembers recipient lists and where transcripts were last picked.
type History interface {
	RecentRecipients(ctx context.Context, limit int) ([]model.RecipientList, error)
	RememberRecipients(ctx context.Context, recipients []string, at time.Time) error
	GetLastDir(ctx context.Context) (string, error)
	SetLastDir(ctx context.Context, dir string) error
}

type AppModel struct {
	// Core state
	gateway Gateway
	history History
	logger  *slog.Logger
	state   *workflow.Store

	// View state machine
	view  viewState
	focus focusArea

	// Sub-models
	transcriptArea  textarea.Model
	summaryArea     textarea.Model
	recipientsInput textinput.Model
	picker          filepicker.Model
	spinner         spinner.Model

	initialFile string

	// Layout
	width, height int
}

type Option func(*AppModel)

// WithHistory enables recipient suggestions and remembers the last directory.
func WithHistory(h History) Option {
	return func(m *AppModel) { m.history = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *AppModel) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithInitialFile selects a transcript file as soon as the program starts.
func WithInitialFile(path string) Option {
	return func(m *AppModel) { m.initialFile = path }
}

func NewAppModel(gateway Gateway, opts ...Option) AppModel {
	ta := textarea.New()
	ta.Placeholder = "Paste your meeting transcript here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Focus()

	sa := textarea.New()
	sa.ShowLineNumbers = false
	sa.CharLimit = 0
	sa.MaxHeight = 0

	ri := textinput.New()
	ri.Placeholder = "email1@example.com, email2@example.com"
	ri.ShowSuggestions = true
	// tab moves between fields, so suggestions are accepted with ctrl+r
	ri.KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("ctrl+r"))

	fp := filepicker.New()
	fp.AllowedTypes = []string{".txt"}
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := AppModel{
		gateway:         gateway,
		logger:          slog.New(slog.DiscardHandler),
		state:           workflow.NewStore(),
		view:            viewMain,
		focus:           focusTranscript,
		transcriptArea:  ta,
		summaryArea:     sa,
		recipientsInput: ri,
		picker:          fp,
		spinner:         sp,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m *AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.loadHistoryCmd()}
	if m.initialFile != "" {
		cmds = append(cmds, m.selectFile(m.initialFile))
	}
	return tea.Batch(cmds...)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inner := max(msg.Width-6, 20) // border + padding
		m.transcriptArea.SetWidth(inner)
		m.transcriptArea.SetHeight(max(msg.Height/4, 3))
		m.summaryArea.SetWidth(inner)
		m.summaryArea.SetHeight(max(msg.Height/4, 3))
		m.recipientsInput.Width = inner - 2
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fileDecodedMsg:
		if msg.err != nil {
			m.logger.Warn("transcript decode failed", "file", msg.path, "error", msg.err)
			return m, nil
		}
		// Whatever was typed while the file loaded is replaced.
		m.state.SetTranscript(msg.text)
		m.transcriptArea.SetValue(msg.text)
		return m, nil

	case summarizeResultMsg:
		if !m.state.ApplySummarizeResult(msg.ticket, msg.env, msg.err) {
			m.logger.Debug("stale summarize response dropped", "ticket", msg.ticket, "latest", m.state.LatestSummarizeTicket())
			return m, nil
		}
		switch {
		case msg.err != nil:
			m.logger.Error("summarize failed", "ticket", msg.ticket, "error", msg.err)
		case !msg.env.Success:
			m.logger.Warn("summarize rejected by server", "ticket", msg.ticket, "error", msg.env.Error)
		default:
			m.logger.Info("summary received", "ticket", msg.ticket, "chars", len(msg.env.Summary))
			m.summaryArea.SetValue(m.state.Summary().Text)
		}
		return m, nil

	case sendResultMsg:
		if !m.state.ApplySendResult(msg.ticket, msg.env, msg.err) {
			m.logger.Debug("stale send response dropped", "ticket", msg.ticket, "latest", m.state.LatestSendTicket())
			return m, nil
		}
		switch {
		case msg.err != nil:
			m.logger.Error("send email failed", "ticket", msg.ticket, "error", msg.err)
		case !msg.env.Success:
			m.logger.Warn("send email rejected by server", "ticket", msg.ticket, "error", msg.env.Error)
		default:
			m.logger.Info("email sent", "ticket", msg.ticket, "recipients", len(msg.recipients))
			m.recipientsInput.SetValue(m.state.Recipients())
			return m, m.rememberRecipientsCmd(msg.recipients)
		}
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("recipient history unavailable", "error", msg.err)
			return m, nil
		}
		m.recipientsInput.SetSuggestions(msg.suggestions)
		if msg.lastDir != "" && m.view != viewPicker {
			m.picker.CurrentDirectory = msg.lastDir
		}
		return m, nil

	case historySavedMsg:
		if msg.err != nil {
			m.logger.Warn("recipient history not saved", "error", msg.err)
			return m, nil
		}
		return m, m.loadHistoryCmd()

	case spinner.TickMsg:
		if !m.state.Summarizing() && !m.state.Sending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Delegate to active sub-model
	if m.view == viewPicker {
		return m.updatePicker(msg)
	}
	var cmd tea.Cmd
	switch m.focus {
	case focusTranscript:
		m.transcriptArea, cmd = m.transcriptArea.Update(msg)
	case focusSummary:
		m.summaryArea, cmd = m.summaryArea.Update(msg)
	case focusRecipients:
		m.recipientsInput, cmd = m.recipientsInput.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// An alert blocks everything until it is dismissed.
	if m.state.Alert() != "" {
		m.state.DismissAlert()
		return m, nil
	}

	if m.view == viewPicker {
		if key == "esc" {
			m.view = viewMain
			return m, nil
		}
		return m.updatePicker(msg)
	}

	switch key {
	case "ctrl+o":
		m.view = viewPicker
		return m, m.picker.Init()
	case "ctrl+x":
		if f := m.state.File(); f != nil {
			m.logger.Info("transcript file cleared", "file", f.Path)
			m.state.ClearFile()
		}
		return m, nil
	case "ctrl+g":
		return m.generateSummary()
	case "ctrl+s":
		return m.sendEmail()
	case "tab":
		return m, m.cycleFocus(1)
	case "shift+tab":
		return m, m.cycleFocus(-1)
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTranscript:
		m.transcriptArea, cmd = m.transcriptArea.Update(msg)
		m.state.SetTranscript(m.transcriptArea.Value())
	case focusSummary:
		m.summaryArea, cmd = m.summaryArea.Update(msg)
		m.state.EditSummary(m.summaryArea.Value())
	case focusRecipients:
		m.recipientsInput, cmd = m.recipientsInput.Update(msg)
		m.state.SetRecipients(m.recipientsInput.Value())
	}
	return m, cmd
}

func (m *AppModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.view = viewMain
		return m, tea.Batch(cmd, m.selectFile(path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.logger.Debug("non-transcript file ignored", "file", path)
	}
	return m, cmd
}

// cycleFocus moves between the editable fields. Summary and recipients only
// take part once a summary exists.
func (m *AppModel) cycleFocus(step int) tea.Cmd {
	areas := []focusArea{focusTranscript}
	if m.state.Summary().Present {
		areas = append(areas, focusSummary, focusRecipients)
	}
	idx := 0
	for i, a := range areas {
		if a == m.focus {
			idx = i
		}
	}
	next := areas[(idx+step+len(areas))%len(areas)]
	if next == m.focus {
		return nil
	}

	m.transcriptArea.Blur()
	m.summaryArea.Blur()
	m.recipientsInput.Blur()
	m.focus = next
	switch next {
	case focusSummary:
		return m.summaryArea.Focus()
	case focusRecipients:
		return m.recipientsInput.Focus()
	default:
		return m.transcriptArea.Focus()
	}
}

func (m *AppModel) selectFile(path string) tea.Cmd {
	f := model.TranscriptFile{Path: path, Name: filepath.Base(path)}
	m.state.SelectFile(f)
	m.logger.Info("transcript file selected", "file", path)
	return tea.Batch(m.decodeFileCmd(path), m.rememberDirCmd(filepath.Dir(path)))
}

func (m *AppModel) generateSummary() (tea.Model, tea.Cmd) {
	if m.state.Summarizing() {
		return m, nil
	}
	cmd := m.requestSummary()
	if cmd == nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, cmd)
}

// requestSummary starts a summarize call. It returns nil when the input was
// rejected; the store then holds the alert.
func (m *AppModel) requestSummary() tea.Cmd {
	ticket, src, err := m.state.BeginSummarize()
	if err != nil {
		m.logger.Info("summarize rejected", "error", err)
		return nil
	}
	m.logger.Info("summarize requested", "ticket", ticket, "source", src.Kind.String())
	return m.summarizeCmd(ticket, src)
}

func (m *AppModel) sendEmail() (tea.Model, tea.Cmd) {
	if m.state.Sending() {
		return m, nil
	}
	cmd := m.requestSend()
	if cmd == nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, cmd)
}

func (m *AppModel) requestSend() tea.Cmd {
	recipients := util.ParseRecipients(m.state.Recipients())
	ticket, req, err := m.state.BeginSend()
	if err != nil {
		m.logger.Info("send rejected", "error", err)
		return nil
	}
	m.logger.Info("send requested", "ticket", ticket, "recipients", len(recipients))
	return m.sendCmd(ticket, req, recipients)
}

// Commands

func (m *AppModel) summarizeCmd(ticket workflow.Ticket, src model.TranscriptSource) tea.Cmd {
	gateway := m.gateway
	return func() tea.Msg {
		req, err := api.BuildSummarizeRequest(src)
		if err != nil {
			return summarizeResultMsg{ticket: ticket, err: err}
		}
		env, err := gateway.Call(context.Background(), req)
		return summarizeResultMsg{ticket: ticket, env: env, err: err}
	}
}

func (m *AppModel) sendCmd(ticket workflow.Ticket, req api.Request, recipients []string) tea.Cmd {
	gateway := m.gateway
	return func() tea.Msg {
		env, err := gateway.Call(context.Background(), req)
		return sendResultMsg{ticket: ticket, recipients: recipients, env: env, err: err}
	}
}

func (m *AppModel) decodeFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		text, err := api.ReadTranscript(path)
		return fileDecodedMsg{path: path, text: text, err: err}
	}
}

func (m *AppModel) loadHistoryCmd() tea.Cmd {
	if m.history == nil {
		return nil
	}
	history := m.history
	return func() tea.Msg {
		ctx := context.Background()
		lists, err := history.RecentRecipients(ctx, historySuggestions)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		suggestions := make([]string, len(lists))
		for i, l := range lists {
			suggestions[i] = l.Value
		}
		dir, err := history.GetLastDir(ctx)
		return historyLoadedMsg{suggestions: suggestions, lastDir: dir, err: err}
	}
}

func (m *AppModel) rememberRecipientsCmd(recipients []string) tea.Cmd {
	if m.history == nil {
		return nil
	}
	history := m.history
	return func() tea.Msg {
		err := history.RememberRecipients(context.Background(), recipients, time.Now())
		return historySavedMsg{err: err}
	}
}

func (m *AppModel) rememberDirCmd(dir string) tea.Cmd {
	if m.history == nil {
		return nil
	}
	history := m.history
	return func() tea.Msg {
		if err := history.SetLastDir(context.Background(), dir); err != nil {
			return historySavedMsg{err: err}
		}
		return nil
	}
}

// View renders the appropriate view based on current state.
func (m *AppModel) View() string {
	if m.view == viewPicker {
		return pickerView(m.picker.View())
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Meeting Summarizer"))
	b.WriteString("\n")

	if alert := m.state.Alert(); alert != "" {
		b.WriteString(alertView(alert))
		b.WriteString("\n")
	}

	b.WriteString(m.section(m.transcriptSection()))
	if m.state.Summary().Present {
		b.WriteString("\n")
		b.WriteString(m.section(m.summarySection()))
		b.WriteString("\n")
		b.WriteString(m.section(m.emailSection()))
	}
	b.WriteString("\n")
	b.WriteString(mainFooter(m.state.Summary().Present))
	return b.String()
}

func (m *AppModel) section(body string) string {
	style := sectionStyle
	if m.width > 2 {
		style = style.Width(m.width - 2)
	}
	return style.Render(body)
}
