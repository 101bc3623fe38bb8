package asset

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		wantData string
		wantMime string
	}{
		{name: "jpeg data uri", in: "data:image/jpeg;base64,AAAA", wantData: "AAAA", wantMime: "image/jpeg"},
		{name: "bare payload", in: "AAAA", wantData: "AAAA", wantMime: "image/png"},
		{name: "webp data uri", in: "data:image/webp;base64,UklG", wantData: "UklG", wantMime: "image/webp"},
		{name: "uppercase scheme keeps default mime", in: "DATA:image/jpeg;base64,AAAA", wantData: "AAAA", wantMime: "image/png"},
		{name: "non image mime", in: "data:application/pdf;base64,JVBE", wantData: "JVBE", wantMime: "image/png"},
		{name: "trailing comma", in: "AAAA,", wantData: "AAAA,", wantMime: "image/png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.in)
			if got.Data != tc.wantData {
				t.Fatalf("data: got %q want %q", got.Data, tc.wantData)
			}
			if got.MimeType != tc.wantMime {
				t.Fatalf("mime: got %q want %q", got.MimeType, tc.wantMime)
			}
		})
	}
}

func TestURI(t *testing.T) {
	img := New("image/png", "BBBB")
	if got := img.URI(); got != "data:image/png;base64,BBBB" {
		t.Fatalf("URI = %q", got)
	}
	if got := (Image{}).URI(); got != "" {
		t.Fatalf("zero URI = %q", got)
	}
}

func TestBytesAcceptsUnpadded(t *testing.T) {
	raw, err := New("image/png", "aGk").Bytes()
	if err != nil {
		t.Fatalf("Bytes error: %v", err)
	}
	if string(raw) != "hi" {
		t.Fatalf("Bytes = %q", raw)
	}
	if _, err := New("image/png", "!!!").Bytes(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFromUpload(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	img, err := FromUpload(png, "")
	if err != nil {
		t.Fatalf("FromUpload error: %v", err)
	}
	if img.MimeType != "image/png" {
		t.Fatalf("sniffed mime = %q", img.MimeType)
	}

	img, err = FromUpload(png, "image/jpeg; charset=binary")
	if err != nil {
		t.Fatalf("FromUpload error: %v", err)
	}
	if img.MimeType != "image/jpeg" {
		t.Fatalf("declared mime = %q", img.MimeType)
	}

	_, err = FromUpload([]byte("hello world"), "text/plain")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.MimeType != "text/plain" {
		t.Fatalf("ValidationError mime = %q", verr.MimeType)
	}

	if _, err := FromUpload(nil, "image/png"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty upload, got %v", err)
	}
}
