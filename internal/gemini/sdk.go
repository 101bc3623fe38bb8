package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// SDKClient serves the same calls as Client through the official genai SDK.
type SDKClient struct {
	client *genai.Client
	logger *slog.Logger
}

func NewSDK(ctx context.Context, opts Options) (*SDKClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		cfg.HTTPOptions.BaseURL = strings.TrimRight(baseURL, "/") + "/"
	}
	if apiVersion := strings.TrimSpace(opts.APIVersion); apiVersion != "" {
		cfg.HTTPOptions.APIVersion = apiVersion
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &SDKClient{client: client, logger: logger}, nil
}

func (c *SDKClient) GenerateContent(ctx context.Context, model string, contents []Content) (Response, error) {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	sdkContents := make([]*genai.Content, 0, len(contents))
	for _, content := range contents {
		converted, err := toSDKContent(content)
		if err != nil {
			return Response{}, err
		}
		sdkContents = append(sdkContents, converted)
	}

	result, err := c.client.Models.GenerateContent(ctx, model, sdkContents, nil)
	if err != nil {
		return Response{}, fmt.Errorf("generate content: %w", err)
	}

	resp := fromSDKResponse(result)
	c.logger.Debug("gemini sdk response", "model", model, "candidates", len(resp.Candidates))
	return resp, nil
}

func toSDKContent(content Content) (*genai.Content, error) {
	role := content.Role
	if role == "" {
		role = string(genai.RoleUser)
	}

	parts := make([]*genai.Part, 0, len(content.Parts))
	for _, p := range content.Parts {
		if p.InlineData != nil {
			raw, err := decodeBase64(p.InlineData.Data)
			if err != nil {
				return nil, &PayloadError{MimeType: p.InlineData.MimeType, Err: err}
			}
			parts = append(parts, genai.NewPartFromBytes(raw, p.InlineData.MimeType))
			continue
		}
		parts = append(parts, genai.NewPartFromText(p.Text))
	}

	return &genai.Content{Role: role, Parts: parts}, nil
}

func fromSDKResponse(result *genai.GenerateContentResponse) Response {
	var resp Response
	if result == nil {
		return resp
	}

	for _, cand := range result.Candidates {
		if cand == nil {
			continue
		}
		out := Candidate{FinishReason: string(cand.FinishReason)}
		if cand.Content != nil {
			out.Content.Role = cand.Content.Role
			for _, p := range cand.Content.Parts {
				if p == nil {
					continue
				}
				if p.InlineData != nil {
					out.Content.Parts = append(out.Content.Parts, InlinePart(
						p.InlineData.MIMEType,
						base64.StdEncoding.EncodeToString(p.InlineData.Data),
					))
					continue
				}
				out.Content.Parts = append(out.Content.Parts, TextPart(p.Text))
			}
		}
		resp.Candidates = append(resp.Candidates, out)
	}
	return resp
}

// PayloadError means inline data could not be decoded for the SDK request.
// Nothing was sent.
type PayloadError struct {
	MimeType string
	Err      error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("decode inline data: %v", e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// decodeBase64 accepts standard and URL-safe alphabets, padded or not.
func decodeBase64(data string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err == nil {
		return raw, nil
	}
	if raw, urlErr := base64.URLEncoding.DecodeString(data); urlErr == nil {
		return raw, nil
	}
	trimmed := strings.TrimRight(data, "=")
	for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.RawURLEncoding} {
		if raw, rawErr := enc.DecodeString(trimmed); rawErr == nil {
			return raw, nil
		}
	}
	return nil, err
}
