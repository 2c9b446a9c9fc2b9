package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recap/internal/api"
	"recap/internal/model"
	"recap/internal/workflow"
)

type fakeGateway struct {
	mu        sync.Mutex
	responses map[string]model.Envelope
	errs      map[string]error
	calls     []api.Request
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{responses: map[string]model.Envelope{}, errs: map[string]error{}}
}

func (g *fakeGateway) Call(_ context.Context, req api.Request) (model.Envelope, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	return g.responses[req.Path], g.errs[req.Path]
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakeHistory struct {
	remembered [][]string
	lastDir    string
}

func (h *fakeHistory) RecentRecipients(context.Context, int) ([]model.RecipientList, error) {
	var out []model.RecipientList
	for _, r := range h.remembered {
		out = append(out, model.RecipientList{Value: r[0]})
	}
	return out, nil
}

func (h *fakeHistory) RememberRecipients(_ context.Context, recipients []string, _ time.Time) error {
	h.remembered = append(h.remembered, recipients)
	return nil
}

func (h *fakeHistory) GetLastDir(context.Context) (string, error) { return h.lastDir, nil }
func (h *fakeHistory) SetLastDir(_ context.Context, dir string) error {
	h.lastDir = dir
	return nil
}

// drain runs cmd, expanding batches, and returns every message produced.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(t, c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func find[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if m, ok := msg.(T); ok {
			return m
		}
	}
	var zero T
	t.Fatalf("no %T among %d messages", zero, len(msgs))
	return zero
}

func press(m *AppModel, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func typeText(m *AppModel, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestUploadSummarizeAndSend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "standup.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello team"), 0o644))

	gw := newFakeGateway()
	gw.responses[api.SummarizePath] = model.Envelope{Success: true, Summary: "Team discussed X"}
	gw.responses[api.SendEmailPath] = model.Envelope{Success: true}
	hist := &fakeHistory{}
	m := NewAppModel(gw, WithHistory(hist))

	// Pick the file; its decoded text is mirrored into the transcript field.
	msgs := drain(t, m.selectFile(path))
	m.Update(find[fileDecodedMsg](t, msgs))
	assert.Equal(t, "Hello team", m.state.Transcript())
	assert.Equal(t, "Hello team", m.transcriptArea.Value())
	assert.Equal(t, filepath.Dir(path), hist.lastDir)

	// Generate.
	cmd := press(&m, tea.KeyCtrlG)
	assert.True(t, m.state.Summarizing())
	m.Update(find[summarizeResultMsg](t, drain(t, cmd)))
	assert.False(t, m.state.Summarizing())

	require.Equal(t, 1, gw.callCount())
	req := gw.calls[0]
	assert.Equal(t, api.SummarizePath, req.Path)
	mediaType, params, err := mime.ParseMediaType(req.ContentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
	part, err := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"]).NextPart()
	require.NoError(t, err)
	assert.Equal(t, "transcript", part.FormName())
	data, _ := io.ReadAll(part)
	assert.Equal(t, "Hello team", string(data))

	assert.Equal(t, model.Summary{Text: "Team discussed X", Present: true}, m.state.Summary())
	assert.Equal(t, "Team discussed X", m.summaryArea.Value())

	// The summary is editable.
	press(&m, tea.KeyTab)
	require.Equal(t, focusSummary, m.focus)
	typeText(&m, "!")
	assert.Equal(t, "Team discussed X!", m.state.Summary().Text)

	// Recipients and send.
	press(&m, tea.KeyTab)
	require.Equal(t, focusRecipients, m.focus)
	typeText(&m, "a@b.com")
	assert.Equal(t, "a@b.com", m.state.Recipients())

	cmd = press(&m, tea.KeyCtrlS)
	assert.True(t, m.state.Sending())
	_, saveCmd := m.Update(find[sendResultMsg](t, drain(t, cmd)))

	require.Equal(t, 2, gw.callCount())
	var body model.SendEmailBody
	require.NoError(t, json.Unmarshal(gw.calls[1].Body, &body))
	assert.Equal(t, []string{"a@b.com"}, body.Recipients)
	assert.Equal(t, "Meeting Summary", body.Subject)
	assert.Equal(t, "Team discussed X!", body.Summary)

	assert.Equal(t, model.StatusSuccess, m.state.Status().Kind)
	assert.Contains(t, m.View(), "✓ Email sent successfully")
	assert.Empty(t, m.state.Recipients())
	assert.Empty(t, m.recipientsInput.Value())

	drain(t, saveCmd)
	assert.Equal(t, [][]string{{"a@b.com"}}, hist.remembered)
}

func TestSummarizeServerError(t *testing.T) {
	gw := newFakeGateway()
	gw.responses[api.SummarizePath] = model.Envelope{Success: false, Error: "too long"}
	m := NewAppModel(gw)

	typeText(&m, "Hello team")
	cmd := press(&m, tea.KeyCtrlG)
	m.Update(find[summarizeResultMsg](t, drain(t, cmd)))

	assert.False(t, m.state.Summarizing())
	assert.False(t, m.state.Summary().Present)
	assert.Contains(t, m.state.Alert(), "too long")
	assert.Contains(t, m.View(), "too long")

	var body map[string]any
	require.NoError(t, json.Unmarshal(gw.calls[0].Body, &body))
	assert.Equal(t, map[string]any{"text": "Hello team"}, body)

	// Any key dismisses the alert without reaching the transcript.
	typeText(&m, "x")
	assert.Empty(t, m.state.Alert())
	assert.Equal(t, "Hello team", m.state.Transcript())
}

func TestSummarizeTransportError(t *testing.T) {
	gw := newFakeGateway()
	gw.errs[api.SummarizePath] = &api.NetworkError{Op: api.SummarizePath, Err: errors.New("connection refused")}
	m := NewAppModel(gw)

	typeText(&m, "Hello team")
	cmd := press(&m, tea.KeyCtrlG)
	m.Update(find[summarizeResultMsg](t, drain(t, cmd)))

	assert.False(t, m.state.Summarizing())
	assert.Equal(t, workflow.AlertSummarizeFailed, m.state.Alert())

	typeText(&m, "x")
	assert.Contains(t, m.View(), "Last attempt failed")
}

func TestSummarizeEmptySummaryKeepsSectionsHidden(t *testing.T) {
	gw := newFakeGateway()
	gw.responses[api.SummarizePath] = model.Envelope{Success: true}
	m := NewAppModel(gw)

	typeText(&m, "Hello team")
	m.Update(find[summarizeResultMsg](t, drain(t, press(&m, tea.KeyCtrlG))))

	assert.False(t, m.state.Summary().Present)
	assert.Empty(t, m.state.Alert())
	view := m.View()
	assert.NotContains(t, view, "2. Summary")
	assert.NotContains(t, view, "3. Share via Email")
	assert.NotContains(t, view, "Last attempt failed")
}

func TestGenerateWithoutTranscript(t *testing.T) {
	gw := newFakeGateway()
	m := NewAppModel(gw)

	cmd := press(&m, tea.KeyCtrlG)
	assert.Nil(t, cmd)
	assert.Zero(t, gw.callCount())
	assert.Equal(t, workflow.AlertNoTranscript, m.state.Alert())
	assert.False(t, m.state.Summarizing())
}

func TestSendWithoutSummary(t *testing.T) {
	gw := newFakeGateway()
	m := NewAppModel(gw)

	cmd := press(&m, tea.KeyCtrlS)
	assert.Nil(t, cmd)
	assert.Zero(t, gw.callCount())
	assert.Equal(t, workflow.AlertMissingSend, m.state.Alert())
}

func TestGenerateIgnoredWhileLoading(t *testing.T) {
	gw := newFakeGateway()
	m := NewAppModel(gw)
	typeText(&m, "Hello team")

	first := press(&m, tea.KeyCtrlG)
	require.NotNil(t, first)
	assert.Nil(t, press(&m, tea.KeyCtrlG), "second press is ignored while loading")
	assert.Equal(t, workflow.Ticket(1), m.state.LatestSummarizeTicket())
}

func TestStaleSummaryDropped(t *testing.T) {
	gw := newFakeGateway()
	gw.responses[api.SummarizePath] = model.Envelope{Success: true, Summary: "whatever"}
	m := NewAppModel(gw)
	typeText(&m, "Hello team")

	older := drain(t, m.requestSummary())
	newer := drain(t, m.requestSummary())

	m.Update(summarizeResultMsg{ticket: find[summarizeResultMsg](t, newer).ticket, env: model.Envelope{Success: true, Summary: "new"}})
	m.Update(summarizeResultMsg{ticket: find[summarizeResultMsg](t, older).ticket, env: model.Envelope{Success: true, Summary: "old"}})

	assert.Equal(t, "new", m.state.Summary().Text)
	assert.Equal(t, "new", m.summaryArea.Value())
}

func TestDecodeOverwritesTyping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	m := NewAppModel(newFakeGateway())

	cmd := m.selectFile(path)
	typeText(&m, "typed first")
	m.Update(find[fileDecodedMsg](t, drain(t, cmd)))

	assert.Equal(t, "from file", m.state.Transcript())
	assert.Equal(t, "from file", m.transcriptArea.Value())
}

func TestClearFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	m := NewAppModel(newFakeGateway())
	m.selectFile(path)
	require.NotNil(t, m.state.File())
	assert.Contains(t, m.View(), "notes.txt")

	press(&m, tea.KeyCtrlX)
	assert.Nil(t, m.state.File())
}

func TestSendFailureKeepsRecipients(t *testing.T) {
	gw := newFakeGateway()
	gw.responses[api.SummarizePath] = model.Envelope{Success: true, Summary: "sum"}
	gw.responses[api.SendEmailPath] = model.Envelope{Success: false, Error: "mailbox full"}
	m := NewAppModel(gw)

	typeText(&m, "Hello team")
	m.Update(find[summarizeResultMsg](t, drain(t, press(&m, tea.KeyCtrlG))))
	press(&m, tea.KeyTab)
	press(&m, tea.KeyTab)
	typeText(&m, "a@b.com,")

	m.Update(find[sendResultMsg](t, drain(t, press(&m, tea.KeyCtrlS))))

	var body model.SendEmailBody
	require.NoError(t, json.Unmarshal(gw.calls[1].Body, &body))
	assert.Equal(t, []string{"a@b.com", ""}, body.Recipients)

	assert.False(t, m.state.Sending())
	assert.Equal(t, "✗ mailbox full", m.state.Status().Message)
	assert.Contains(t, m.View(), "✗ mailbox full")
	assert.Equal(t, "a@b.com,", m.recipientsInput.Value())
}

func TestSummarizingDoesNotBlockSend(t *testing.T) {
	gw := newFakeGateway()
	gw.responses[api.SummarizePath] = model.Envelope{Success: true, Summary: "sum"}
	gw.responses[api.SendEmailPath] = model.Envelope{Success: true}
	m := NewAppModel(gw)

	typeText(&m, "Hello team")
	m.Update(find[summarizeResultMsg](t, drain(t, press(&m, tea.KeyCtrlG))))
	press(&m, tea.KeyTab)
	press(&m, tea.KeyTab)
	typeText(&m, "a@b.com")

	require.NotNil(t, press(&m, tea.KeyCtrlG))
	assert.True(t, m.state.Summarizing())
	assert.NotNil(t, press(&m, tea.KeyCtrlS), "send stays available during a summarize")
	assert.True(t, m.state.Sending())
}

func TestHistoryLoadedSetsPickerDir(t *testing.T) {
	dir := t.TempDir()
	hist := &fakeHistory{lastDir: dir, remembered: [][]string{{"team@x.com"}}}
	m := NewAppModel(newFakeGateway(), WithHistory(hist))

	m.Update(find[historyLoadedMsg](t, drain(t, m.loadHistoryCmd())))
	assert.Equal(t, dir, m.picker.CurrentDirectory)
}

func TestPickerEscReturns(t *testing.T) {
	m := NewAppModel(newFakeGateway())
	press(&m, tea.KeyCtrlO)
	require.Equal(t, viewPicker, m.view)
	assert.Contains(t, m.View(), "Pick a transcript")

	press(&m, tea.KeyEsc)
	assert.Equal(t, viewMain, m.view)
}
