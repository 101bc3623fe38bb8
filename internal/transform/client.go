package transform

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"professional-persona-ai/internal/asset"
	"professional-persona-ai/internal/gemini"
)

// Generator is one generateContent call against the image service.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []gemini.Content) (gemini.Response, error)
}

// Factory builds a Generator bound to an API key.
type Factory func(ctx context.Context, apiKey string) (Generator, error)

// CredentialFunc returns the API key, or "" when none is configured.
type CredentialFunc func() string

// EnvCredential reads the first non-empty variable among keys on every call.
func EnvCredential(keys ...string) CredentialFunc {
	return func() string {
		for _, key := range keys {
			if v := strings.TrimSpace(os.Getenv(key)); v != "" {
				return v
			}
		}
		return ""
	}
}

type Options struct {
	Model      string
	Credential CredentialFunc
	// CredentialNames is reported in ConfigurationError.
	CredentialNames []string
	Factory         Factory
	Logger          *slog.Logger
}

type Client struct {
	model      string
	credential CredentialFunc
	names      []string
	factory    Factory
	logger     *slog.Logger
}

func New(opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = gemini.DefaultModel
	}

	names := opts.CredentialNames
	credential := opts.Credential
	if credential == nil {
		if len(names) == 0 {
			names = []string{"GEMINI_API_KEY", "API_KEY"}
		}
		credential = EnvCredential(names...)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		model:      model,
		credential: credential,
		names:      names,
		factory:    opts.Factory,
		logger:     logger,
	}
}

// Transform sends source and prompt to the image service once and returns the
// first inline image of the first candidate.
func (c *Client) Transform(ctx context.Context, source string, prompt string) (asset.Image, error) {
	apiKey := c.credential()
	if apiKey == "" {
		return asset.Image{}, &ConfigurationError{Checked: c.names}
	}
	if c.factory == nil {
		return asset.Image{}, &TransportError{Err: errors.New("no generator factory")}
	}

	img := asset.Parse(source)

	gen, err := c.factory(ctx, apiKey)
	if err != nil {
		c.logger.Error("image transformation failed", "stage", "client", "err", err)
		return asset.Image{}, transportError(err)
	}

	contents := []gemini.Content{{
		Role: "user",
		Parts: []gemini.Part{
			gemini.InlinePart(img.MimeType, img.Data),
			gemini.TextPart(prompt),
		},
	}}

	resp, err := gen.GenerateContent(ctx, c.model, contents)
	var payloadErr *gemini.PayloadError
	if errors.As(err, &payloadErr) {
		c.logger.Warn("image payload rejected before request", "mime", img.MimeType, "err", err)
		return asset.Image{}, &asset.ValidationError{MimeType: img.MimeType, Reason: "payload is not base64"}
	}
	if err != nil {
		c.logger.Error("image transformation failed", "stage", "request", "err", err)
		return asset.Image{}, transportError(err)
	}

	out, ok := FirstInlineImage(resp)
	if !ok {
		c.logger.Warn("image transformation returned no image", "candidates", len(resp.Candidates))
		return asset.Image{}, &EmptyResultError{Candidates: len(resp.Candidates)}
	}

	c.logger.Info("image transformed", "in_mime", img.MimeType, "out_mime", out.MimeType)
	return out, nil
}

// FirstInlineImage scans the first candidate's parts in order and stops at the
// first one carrying inline data. An empty payload there reports no image.
func FirstInlineImage(resp gemini.Response) (asset.Image, bool) {
	if len(resp.Candidates) == 0 {
		return asset.Image{}, false
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData != nil {
			img := asset.New(p.InlineData.MimeType, p.InlineData.Data)
			return img, !img.IsZero()
		}
	}
	return asset.Image{}, false
}

func transportError(err error) *TransportError {
	msg := err.Error()
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		msg = apiErr.Message
	}
	return &TransportError{Message: msg, Err: err}
}

// RESTFactory builds REST generators sharing opts apart from the key.
func RESTFactory(opts gemini.Options) Factory {
	return func(_ context.Context, apiKey string) (Generator, error) {
		o := opts
		o.APIKey = apiKey
		return gemini.New(o), nil
	}
}

// SDKFactory builds genai SDK generators sharing opts apart from the key.
func SDKFactory(opts gemini.Options) Factory {
	return func(ctx context.Context, apiKey string) (Generator, error) {
		o := opts
		o.APIKey = apiKey
		return gemini.NewSDK(ctx, o)
	}
}

var (
	_ Generator = (*gemini.Client)(nil)
	_ Generator = (*gemini.SDKClient)(nil)
)
