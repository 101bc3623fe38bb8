package asset

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const DefaultMimeType = "image/png"

// Image is a base64 image payload with its MIME type, rendered as a data URI.
type Image struct {
	MimeType string
	Data     string
}

var dataURLRegex = regexp.MustCompile(`^data:(image/[a-zA-Z]+);base64,`)

// Parse splits a data URI into payload and MIME type. Input without a
// recognizable data:<mime>;base64, prefix is kept as raw base64 with the
// default MIME type.
func Parse(value string) Image {
	data := value
	if parts := strings.Split(value, ","); len(parts) > 1 && parts[1] != "" {
		data = parts[1]
	}

	mimeType := DefaultMimeType
	if matches := dataURLRegex.FindStringSubmatch(value); len(matches) == 2 {
		mimeType = matches[1]
	}

	return Image{MimeType: mimeType, Data: data}
}

func New(mimeType, data string) Image {
	return Image{MimeType: mimeType, Data: data}
}

func (i Image) IsZero() bool {
	return i.Data == ""
}

// URI renders the image as data:<mime>;base64,<data>.
func (i Image) URI() string {
	if i.IsZero() {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", i.MimeType, i.Data)
}

// Bytes decodes the payload, accepting padded and unpadded base64.
func (i Image) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(i.Data)
	if err == nil {
		return raw, nil
	}
	raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(i.Data, "="))
	if rawErr != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return raw, nil
}

// ValidationError reports an upload that is not an image.
type ValidationError struct {
	MimeType string
	Reason   string
}

func (e *ValidationError) Error() string {
	return "Please upload a valid image file."
}

// FromUpload validates an uploaded file and encodes it. declaredType is the
// client-supplied content type; it is sniffed when missing or generic.
func FromUpload(data []byte, declaredType string) (Image, error) {
	if len(data) == 0 {
		return Image{}, &ValidationError{Reason: "empty upload"}
	}

	mimeType := normalizeMimeType(declaredType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = normalizeMimeType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Image{}, &ValidationError{MimeType: mimeType, Reason: "not an image type"}
	}

	return Image{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

func normalizeMimeType(value string) string {
	value = strings.TrimSpace(value)
	if strings.Contains(value, ";") {
		value = strings.TrimSpace(strings.SplitN(value, ";", 2)[0])
	}
	return strings.ToLower(value)
}
