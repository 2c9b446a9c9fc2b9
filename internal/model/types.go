package model

// SourceKind tags which transcript input a submission uses.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceText
	SourceFile
)

func (k SourceKind) String() string {
	switch k {
	case SourceText:
		return "text"
	case SourceFile:
		return "file"
	default:
		return "none"
	}
}

// TranscriptFile is a transcript picked from disk.
type TranscriptFile struct {
	Path string
	Name string // base name, sent as the multipart filename
}

// TranscriptSource is the resolved input for one summarize submission.
// Only the field matching Kind is meaningful.
type TranscriptSource struct {
	Kind SourceKind
	Text string
	File TranscriptFile
}

func TextSource(text string) TranscriptSource {
	return TranscriptSource{Kind: SourceText, Text: text}
}

func FileSource(f TranscriptFile) TranscriptSource {
	return TranscriptSource{Kind: SourceFile, File: f}
}

// Summary is the generated summary. Present stays false until a summarize
// call succeeds; after that Text is edited in place.
type Summary struct {
	Text    string
	Present bool
}

// StatusKind is the outcome of the most recent email dispatch.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusSuccess
	StatusFailure
)

// DispatchStatus is shown under the send button until the next attempt.
type DispatchStatus struct {
	Kind    StatusKind
	Message string
}

func (s DispatchStatus) String() string { return s.Message }

// Envelope is the JSON body both endpoints answer with.
type Envelope struct {
	Success bool   `json:"success"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// SummarizeTextBody is the JSON body for a pasted transcript.
type SummarizeTextBody struct {
	Text string `json:"text"`
}

// SendEmailBody is the JSON body for /api/send-email.
type SendEmailBody struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Summary    string   `json:"summary"`
}

// RecipientList is a previously used recipient string, kept for suggestions.
type RecipientList struct {
	Key         string // normalized form used for de-duplication
	Value       string // as the user typed it
	Uses        int
	LastUsedRFC string // RFC3339
}
