package workflow

import (
	"errors"

	"recap/internal/model"
)

// ErrNoTranscript is returned when neither a file nor pasted text is present.
var ErrNoTranscript = errors.New("please provide a transcript")

// CanSubmit reports whether a summarize submission is permitted.
func CanSubmit(text string, file *model.TranscriptFile) bool {
	return file != nil || text != ""
}

// Resolve picks the transcript source for a submission. A selected file wins
// over pasted text whatever the text holds.
func Resolve(text string, file *model.TranscriptFile) (model.TranscriptSource, error) {
	if file != nil {
		return model.FileSource(*file), nil
	}
	if text != "" {
		return model.TextSource(text), nil
	}
	return model.TranscriptSource{}, ErrNoTranscript
}
