package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/civiz/civiz/internal/logger"
	"github.com/civiz/civiz/internal/prompts"
	"github.com/civiz/civiz/internal/storage"
	"github.com/go-resty/resty/v2"
)

// DalleGateway generates vision imagery through the OpenAI images API.
// It implements GenerationGateway.
type DalleGateway struct {
	client   *resty.Client
	model    string
	size     string
	quality  string
	endpoint string
	archive  *storage.ImageArchive
}

// DalleConfig holds configuration for the DALL-E gateway.
type DalleConfig struct {
	Model   string
	APIKey  string
	BaseURL string
	Size    string
	Quality string
	Timeout time.Duration
}

// NewDalleGateway creates a new DALL-E gateway.
// Parameters:
//   - cfg: gateway configuration including model, API key, and base URL.
//   - archive: optional image archive; nil disables archiving and the raw
//     provider URL is returned as the image reference.
// Returns:
//   - *DalleGateway: initialized gateway.
func NewDalleGateway(cfg *DalleConfig, archive *storage.ImageArchive) *DalleGateway {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	model := cfg.Model
	if model == "" {
		model = "dall-e-3"
	}
	size := cfg.Size
	if size == "" {
		size = "1024x1024"
	}
	quality := cfg.Quality
	if quality == "" {
		quality = "standard"
	}

	return &DalleGateway{
		client:   client,
		model:    model,
		size:     size,
		quality:  quality,
		endpoint: baseURL + "/images/generations",
		archive:  archive,
	}
}

type imageGenerationRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Generate produces a generated-image reference for the given vision.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - address: street address the vision is tied to.
//   - prompt: the user's free-text vision, embedded into the transform prompt.
// Returns:
//   - string: image reference (archive URL when archiving is enabled,
//     otherwise the provider URL).
//   - error: *GenerationError classified by failure reason.
func (g *DalleGateway) Generate(ctx context.Context, address, prompt string) (string, error) {
	req := imageGenerationRequest{
		Model:   g.model,
		Prompt:  prompts.BuildTransformPrompt(address, prompt),
		Size:    g.size,
		Quality: g.quality,
		N:       1,
	}

	var resp imageGenerationResponse
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(g.endpoint)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", &GenerationError{Reason: ReasonTimeout, Message: "image generation timed out", Err: err}
		}
		return "", &GenerationError{Reason: ReasonUnknown, Message: "image generation request failed", Err: err}
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		msg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		code := ""
		if resp.Error != nil {
			msg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
			code = resp.Error.Code + " " + resp.Error.Type + " " + resp.Error.Message
		}
		return "", &GenerationError{
			Reason:  classifyGenerationFailure(httpResp.StatusCode(), code),
			Message: msg,
		}
	}

	if resp.Error != nil {
		return "", &GenerationError{
			Reason:  classifyGenerationFailure(httpResp.StatusCode(), resp.Error.Code+" "+resp.Error.Type+" "+resp.Error.Message),
			Message: resp.Error.Message,
		}
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", &GenerationError{Reason: ReasonUnknown, Message: "no image URL returned"}
	}

	imageRef := resp.Data[0].URL

	// Provider URLs expire; swap in a stable archive URL when possible.
	// Archive failures degrade to the raw URL rather than failing generation.
	if g.archive != nil {
		archived, err := g.archive.Archive(ctx, imageRef, address)
		if err != nil {
			logger.CtxWarn(ctx, "Failed to archive generated image, falling back to provider URL: %v", err)
		} else {
			imageRef = archived
		}
	}

	return imageRef, nil
}

// classifyGenerationFailure maps a provider error onto a FailureReason using
// the HTTP status and the provider's error code/type/message text.
func classifyGenerationFailure(status int, detail string) FailureReason {
	detail = strings.ToLower(detail)

	switch {
	case status == 401 || strings.Contains(detail, "invalid_api_key") || strings.Contains(detail, "authentication"):
		return ReasonInvalidCredentials
	case status == 402 || strings.Contains(detail, "billing") || strings.Contains(detail, "insufficient_quota"):
		return ReasonQuotaExhausted
	case status == 429 || strings.Contains(detail, "rate_limit"):
		return ReasonRateLimited
	case strings.Contains(detail, "content_policy"):
		return ReasonContentPolicy
	case status == 408 || strings.Contains(detail, "timeout"):
		return ReasonTimeout
	default:
		return ReasonUnknown
	}
}

// isTimeout reports whether a transport error represents a timeout.
func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	var te timeouter
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return strings.Contains(err.Error(), "timeout")
}
