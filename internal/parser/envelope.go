package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCandidate means the envelope had no usable candidates[0].content.parts[0].text
	ErrNoCandidate = errors.New("no candidate text in response")
)

// CandidateText extracts candidates[0].content.parts[0].text from a
// generateContent response body.
func CandidateText(body []byte) (string, error) {
	root, err := Decode(body)
	if err != nil {
		return "", fmt.Errorf("failed to decode response envelope: %w", err)
	}
	text, ok := Path(root, "candidates", 0, "content", "parts", 0, "text")
	if !ok {
		return "", ErrNoCandidate
	}
	s, ok := String(text)
	if !ok {
		return "", ErrNoCandidate
	}
	return s, nil
}

// Parts returns candidates[0].content.parts, or nil when the path is missing
func Parts(root any) []any {
	v, ok := Path(root, "candidates", 0, "content", "parts")
	if !ok {
		return nil
	}
	parts, _ := Array(v)
	return parts
}
