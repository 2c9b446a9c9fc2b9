package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"recap/internal/model"
	"recap/internal/util"
)

const (
	SummarizePath = "/api/summarize"
	SendEmailPath = "/api/send-email"

	// EmailSubject is fixed; the user cannot change it.
	EmailSubject = "Meeting Summary"

	transcriptField = "transcript"
	jsonContentType = "application/json"
)

// ErrMissingSendInput is returned when there is no summary or no recipients.
var ErrMissingSendInput = errors.New("please generate a summary and enter recipients")

// Request describes one call to the summarizer service. ContentType is sent
// as-is; for multipart bodies it is the writer's type including the boundary.
type Request struct {
	Method      string
	Path        string
	Body        []byte
	ContentType string
}

// BuildSummarizeRequest builds the /api/summarize request for a resolved
// source. A file is sent as a multipart part named "transcript"; pasted text
// is sent as {"text": ...}. Nothing is validated here.
func BuildSummarizeRequest(src model.TranscriptSource) (Request, error) {
	switch src.Kind {
	case model.SourceFile:
		body, contentType, err := multipartTranscript(src.File)
		if err != nil {
			return Request{}, err
		}
		return Request{Method: http.MethodPost, Path: SummarizePath, Body: body, ContentType: contentType}, nil
	case model.SourceText:
		body, err := json.Marshal(model.SummarizeTextBody{Text: src.Text})
		if err != nil {
			return Request{}, fmt.Errorf("encode transcript: %w", err)
		}
		return Request{Method: http.MethodPost, Path: SummarizePath, Body: body, ContentType: jsonContentType}, nil
	default:
		return Request{}, fmt.Errorf("build summarize request: no transcript source")
	}
}

// BuildSendEmailRequest builds the /api/send-email request. The recipient
// string is split on commas at this point, not before.
func BuildSendEmailRequest(recipients string, summary model.Summary) (Request, error) {
	if !summary.Present || summary.Text == "" || recipients == "" {
		return Request{}, ErrMissingSendInput
	}
	body, err := json.Marshal(model.SendEmailBody{
		Recipients: util.ParseRecipients(recipients),
		Subject:    EmailSubject,
		Summary:    summary.Text,
	})
	if err != nil {
		return Request{}, fmt.Errorf("encode email request: %w", err)
	}
	return Request{Method: http.MethodPost, Path: SendEmailPath, Body: body, ContentType: jsonContentType}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartTranscript(f model.TranscriptFile) ([]byte, string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, "", fmt.Errorf("open transcript %s: %w", f.Path, err)
	}
	defer file.Close()

	name := f.Name
	if name == "" {
		name = filepath.Base(f.Path)
	}
	partType := mime.TypeByExtension(filepath.Ext(name))
	if partType == "" {
		partType = "application/octet-stream"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(transcriptField), quoteEscaper.Replace(name)))
	h.Set("Content-Type", partType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("read transcript %s: %w", f.Path, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
