package gemini

import (
	"fmt"
	"strings"
)

const DefaultModel = "gemini-2.5-flash-image"

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part carries either text or inline binary data.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob is inline binary data; Data is base64.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// APIError is a non-2xx reply from the generateContent endpoint.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		return fmt.Sprintf("gemini API %s", e.Status)
	}
	return fmt.Sprintf("gemini API %s: %s", e.Status, msg)
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func InlinePart(mimeType, data string) Part {
	return Part{InlineData: &Blob{MimeType: mimeType, Data: data}}
}
