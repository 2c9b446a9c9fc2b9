package api

import (
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DecodeTranscript turns raw file bytes into display text. A UTF-8 or UTF-16
// byte order mark selects the encoding; otherwise the bytes are read as UTF-8
// with invalid sequences replaced. The result is NFC-normalized.
func DecodeTranscript(raw []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}
	return norm.NFC.String(string(out)), nil
}

// ReadTranscript reads and decodes a transcript file for display.
// The file itself is uploaded untouched.
func ReadTranscript(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript %s: %w", path, err)
	}
	return DecodeTranscript(raw)
}
