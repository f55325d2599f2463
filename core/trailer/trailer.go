// Package trailer implements the sentinel-delimited trailer framing used by
// the streaming chat endpoint. The client splits the plain-text stream on the
// literal markers to separate prose from the structured payload, so the
// emitted bytes must match this format exactly.
package trailer

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	tailBegin = "\n<<<JSON:"
	tailEnd   = ">>>\n"

	// The markers the client splits on. tailBegin/tailEnd carry the
	// surrounding newlines; these are the bare sentinels.
	markBegin = "<<<JSON:"
	markEnd   = ">>>"
)

// Encode renders a payload as a single trailer block.
func Encode(payload interface{}) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trailer payload: %w", err)
	}
	return []byte(tailBegin + string(b) + tailEnd), nil
}

// Split separates a complete stream body into prose and the raw payload JSON.
// ok is false when the stream carries no trailer.
func Split(stream string) (prose string, payload string, ok bool) {
	begin := strings.Index(stream, markBegin)
	if begin < 0 {
		return stream, "", false
	}
	rest := stream[begin+len(markBegin):]
	end := strings.LastIndex(rest, markEnd)
	if end < 0 {
		return stream, "", false
	}
	prose = strings.TrimSuffix(stream[:begin], "\n")
	return prose, rest[:end], true
}

// Decode splits a stream body and unmarshals the payload into v.
func Decode(stream string, v interface{}) (prose string, err error) {
	prose, payload, ok := Split(stream)
	if !ok {
		return prose, fmt.Errorf("stream carries no trailer block")
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return prose, fmt.Errorf("failed to unmarshal trailer payload: %w", err)
	}
	return prose, nil
}

// ErrorLine formats the inline diagnostic written when the pipeline fails
// after response headers have been committed.
func ErrorLine(msg string) []byte {
	return []byte("\n[error] " + msg + "\n")
}
