package workflow

import (
	"errors"
	"fmt"

	"recap/internal/api"
	"recap/internal/model"
)

// User-facing messages.
const (
	AlertNoTranscript    = "Please provide a transcript"
	AlertSummarizeFailed = "Failed to generate summary"
	AlertMissingSend     = "Please generate a summary and enter recipients"

	StatusSent       = "✓ Email sent successfully"
	StatusSendFailed = "✗ Failed to send email"
)

// Store holds the whole workflow state. Every transition goes through its
// methods; the view only reads it. It is not safe for concurrent use and is
// meant to be owned by the UI loop.
type Store struct {
	transcript string
	file       *model.TranscriptFile
	summary    model.Summary
	recipients string
	status     model.DispatchStatus
	alert      string

	summarize Tracker
	send      Tracker
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Transcript() string            { return s.transcript }
func (s *Store) Summary() model.Summary        { return s.summary }
func (s *Store) Recipients() string            { return s.recipients }
func (s *Store) Status() model.DispatchStatus  { return s.status }
func (s *Store) Alert() string                 { return s.alert }
func (s *Store) Summarizing() bool             { return s.summarize.Loading() }
func (s *Store) Sending() bool                 { return s.send.Loading() }
func (s *Store) LatestSummarizeTicket() Ticket { return s.summarize.Latest() }
func (s *Store) LatestSendTicket() Ticket      { return s.send.Latest() }

// SummarizeFailed reports whether the latest summarize attempt ended in a
// failure. It is cleared when the next attempt begins.
func (s *Store) SummarizeFailed() bool {
	return s.summarize.Phase() == PhaseResolved && !s.summarize.Succeeded()
}

// File returns the selected transcript file, or nil.
func (s *Store) File() *model.TranscriptFile {
	if s.file == nil {
		return nil
	}
	f := *s.file
	return &f
}

// SetTranscript replaces the pasted text. Decoded file content arrives here
// too, so whichever write lands last wins.
func (s *Store) SetTranscript(text string) { s.transcript = text }

// SelectFile makes f the active source. Its decoded text is applied later
// through SetTranscript.
func (s *Store) SelectFile(f model.TranscriptFile) { s.file = &f }

// ClearFile drops the selected file; pasted text becomes the source again.
func (s *Store) ClearFile() { s.file = nil }

// EditSummary overwrites the summary text. It does nothing before a summary
// has been generated.
func (s *Store) EditSummary(text string) {
	if !s.summary.Present {
		return
	}
	s.summary.Text = text
}

func (s *Store) SetRecipients(raw string) { s.recipients = raw }

func (s *Store) DismissAlert() { s.alert = "" }

// CanSummarize is the enabled state of the generate control.
func (s *Store) CanSummarize() bool {
	return !s.summarize.Loading() && CanSubmit(s.transcript, s.file)
}

// CanSend is the enabled state of the send control.
func (s *Store) CanSend() bool {
	return !s.send.Loading() && s.recipients != ""
}

// BeginSummarize resolves the source and enters Loading. On an input error
// no ticket is issued and an alert is raised instead.
func (s *Store) BeginSummarize() (Ticket, model.TranscriptSource, error) {
	src, err := Resolve(s.transcript, s.file)
	if err != nil {
		s.alert = AlertNoTranscript
		return 0, model.TranscriptSource{}, err
	}
	return s.summarize.Begin(), src, nil
}

// ApplySummarizeResult records the outcome of the request behind tk. It
// returns false, changing nothing, when tk is no longer the latest ticket.
func (s *Store) ApplySummarizeResult(tk Ticket, env model.Envelope, err error) bool {
	if !s.summarize.Resolve(tk, err == nil && env.Success) {
		return false
	}
	switch {
	case err != nil:
		s.alert = AlertSummarizeFailed
	case !env.Success:
		s.alert = fmt.Sprintf("Error: %s", env.Error)
	default:
		// An empty summary leaves the summary and email sections hidden.
		s.summary = model.Summary{Text: env.Summary, Present: env.Summary != ""}
	}
	return true
}

// BeginSend builds the email request and enters Loading. Missing input is
// rejected before any ticket is issued. The dispatch status returns to idle.
func (s *Store) BeginSend() (Ticket, api.Request, error) {
	req, err := api.BuildSendEmailRequest(s.recipients, s.summary)
	if err != nil {
		if errors.Is(err, api.ErrMissingSendInput) {
			s.alert = AlertMissingSend
		}
		return 0, api.Request{}, err
	}
	s.status = model.DispatchStatus{}
	return s.send.Begin(), req, nil
}

// ApplySendResult records the outcome of the request behind tk. A successful
// send clears the recipients field.
func (s *Store) ApplySendResult(tk Ticket, env model.Envelope, err error) bool {
	if !s.send.Resolve(tk, err == nil && env.Success) {
		return false
	}
	switch {
	case err != nil:
		s.status = model.DispatchStatus{Kind: model.StatusFailure, Message: StatusSendFailed}
	case !env.Success:
		s.status = model.DispatchStatus{Kind: model.StatusFailure, Message: "✗ " + env.Error}
	default:
		s.status = model.DispatchStatus{Kind: model.StatusSuccess, Message: StatusSent}
		s.recipients = ""
	}
	return true
}
