package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ragline/ragline/internal/ragcore"
)

const openAIEmbeddingsURL = "https://api.openai.com/v1/embeddings"

func init() {
	Register("openai", newOpenAIEmbedder)
}

var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedder is the reference Embedder adapter described by spec §4.3:
// a plain HTTPS POST with bearer-token auth, internal retry with backoff,
// and rate limiting. It is a reference implementation, not the spec's
// interface contract — callers may supply any Embedder.
type OpenAIEmbedder struct {
	apiKey     string
	model      string
	dimension  int
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	baseURL    string
}

// OpenAIOption configures NewOpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithMaxRetries overrides the retry cap (default 3).
func WithMaxRetries(n int) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.maxRetries = n }
}

// WithRateLimit overrides the requests-per-second ceiling (default 3 rps,
// burst 1).
func WithRateLimit(rps float64, burst int) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithHTTPClient overrides the http.Client used for requests.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.httpClient = c }
}

// WithBaseURL overrides the embeddings endpoint, for pointing the adapter
// at a test double.
func WithBaseURL(url string) OpenAIOption {
	return func(e *OpenAIEmbedder) { e.baseURL = url }
}

// NewOpenAIEmbedder builds the reference embedder adapter for the given
// model, authenticated with apiKey.
func NewOpenAIEmbedder(apiKey, model string, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, ragcore.NewConfigurationError("OpenAIEmbedder", "apiKey must not be empty")
	}
	dim, ok := modelDimensions[model]
	if !ok {
		return nil, ragcore.NewConfigurationError("OpenAIEmbedder", fmt.Sprintf("unknown model %q", model))
	}

	e := &OpenAIEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimension:  dim,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(3), 1),
		maxRetries: 3,
		baseURL:    openAIEmbeddingsURL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func newOpenAIEmbedder(config map[string]interface{}) (ragcore.Embedder, error) {
	apiKey, _ := config["apiKey"].(string)
	model, _ := config["model"].(string)
	if model == "" {
		model = "text-embedding-3-small"
	}
	return NewOpenAIEmbedder(apiKey, model)
}

// Dimension reports the fixed vector length for this adapter's model.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

// Embed embeds a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// EmbedBatch embeds many texts in a single request, retrying transient
// failures with exponential backoff and translating HTTP failure modes into
// the spec §7 APIError taxonomy.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ragcore.NewValidationError("OpenAIEmbedder.EmbedBatch", ragcore.FieldError{
			Path: "texts", Message: "must not be empty",
		})
	}

	delay := 200 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		vecs, apiErr := e.doEmbed(ctx, texts)
		if apiErr == nil {
			return vecs, nil
		}
		lastErr = apiErr

		var ae *ragcore.APIError
		if apiErr2, ok := apiErr.(*ragcore.APIError); ok {
			ae = apiErr2
		}
		if ae == nil || !ae.Retriable() {
			return nil, apiErr
		}
		if ae.RetryAfter > 0 {
			delay = time.Duration(ae.RetryAfter * float64(time.Second))
		}
	}
	return nil, lastErr
}

func (e *OpenAIEmbedder) doEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, ragcore.NewAPIError(ragcore.APIInvalidInput, "failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, ragcore.NewAPIError(ragcore.APIGenericError, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, ragcore.NewAPIError(ragcore.APIGenericError, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ragcore.NewAPIError(ragcore.APIGenericError, "failed to read response body", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var parsed embeddingResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, ragcore.NewAPIError(ragcore.APIGenericError, "failed to decode response body", err)
		}
		out := make([][]float32, len(parsed.Data))
		for _, d := range parsed.Data {
			out[d.Index] = d.Embedding
		}
		return out, nil
	case http.StatusUnauthorized:
		return nil, ragcore.NewAPIError(ragcore.APIUnauthorized, "invalid API key", nil)
	case http.StatusBadRequest:
		return nil, ragcore.NewAPIError(ragcore.APIInvalidInput, string(raw), nil)
	case http.StatusTooManyRequests:
		apiErr := ragcore.NewAPIError(ragcore.APIRateLimited, "rate limit exceeded", nil)
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.ParseFloat(ra, 64); err == nil {
				apiErr.RetryAfter = secs
			}
		}
		return nil, apiErr
	case http.StatusPaymentRequired, http.StatusForbidden:
		return nil, ragcore.NewAPIError(ragcore.APIQuotaExceeded, "quota exceeded", nil)
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return nil, ragcore.NewAPIError(ragcore.APITimeout, "request timed out", nil)
	default:
		return nil, ragcore.NewAPIError(ragcore.APIGenericError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, raw), nil)
	}
}
