package languagelogic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/nullmodel/llmvm/vmcore"
)

// SamplerParams controls the text model's decoding behaviour. Defaults
// follow spec.md §6.5.
type SamplerParams struct {
	Temperature   float64
	MinP          float64
	TopP          float64
	TopK          int
	RepeatPenalty float64
	Stream        bool
}

// DefaultSampler returns the deterministic-leaning sampler settings spec.md
// §6.5 specifies for the text model.
func DefaultSampler() SamplerParams {
	return SamplerParams{
		Temperature:   0.3,
		MinP:          0.15,
		TopP:          0.95,
		TopK:          40,
		RepeatPenalty: 1.05,
		Stream:        false,
	}
}

// EncodingFormat is the embedding request's default encoding, per spec.md
// §6.5.
const EncodingFormat = "float"

// LLMClient is the seam between the executor and a live LLM service,
// mirroring the teacher's pattern of hiding a live collaborator (the ARM
// emulator's session manager hides process/IO state) behind a narrow
// interface so unit tests never need a real endpoint.
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, messages []vmcore.ContextMessage, sampler SamplerParams) (string, error)
	Embedding(ctx context.Context, model, input string) ([]float64, error)
}

// HTTPClient is the default LLMClient: a plain *http.Client against a
// chat-completion and an embeddings endpoint, JSON request/response bodies,
// explicit per-call deadlines. Grounded in the teacher's own HTTP surface
// (api/server.go), which likewise reaches for nothing beyond net/http and
// encoding/json.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
	Debug   *log.Logger // nil disables request/response tracing
}

// NewHTTPClient returns an HTTPClient with the given request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model         string                  `json:"model"`
	Messages      []vmcore.ContextMessage `json:"messages"`
	Temperature   float64                 `json:"temperature"`
	MinP          float64                 `json:"min_p"`
	TopP          float64                 `json:"top_p"`
	TopK          int                     `json:"top_k"`
	RepeatPenalty float64                 `json:"repeat_penalty"`
	Stream        bool                    `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// ChatCompletion posts messages to the chat-completion endpoint and returns
// the first choice's raw content.
func (c *HTTPClient) ChatCompletion(ctx context.Context, model string, messages []vmcore.ContextMessage, sampler SamplerParams) (string, error) {
	body := chatRequest{
		Model:         model,
		Messages:      messages,
		Temperature:   sampler.Temperature,
		MinP:          sampler.MinP,
		TopP:          sampler.TopP,
		TopK:          sampler.TopK,
		RepeatPenalty: sampler.RepeatPenalty,
		Stream:        sampler.Stream,
	}

	var resp chatResponse
	if err := c.postJSON(ctx, "/chat/completions", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: ErrMalformedResponse, Message: "chat completion returned no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// Embedding posts a single input string to the embeddings endpoint and
// returns its float vector.
func (c *HTTPClient) Embedding(ctx context.Context, model, input string) ([]float64, error) {
	body := embeddingRequest{Model: model, Input: input, EncodingFormat: EncodingFormat}

	var resp embeddingResponse
	if err := c.postJSON(ctx, "/embeddings", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &Error{Kind: ErrMalformedResponse, Message: "embeddings response had no data"}
	}
	return resp.Data[0].Embedding, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: ErrMalformedResponse, Message: "encoding request body", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return &Error{Kind: ErrServiceUnavailable, Message: "building request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	if c.Debug != nil {
		c.Debug.Printf("POST %s: %s", path, raw)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Kind: ErrServiceUnavailable, Message: fmt.Sprintf("calling %s", path), Cause: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: ErrServiceUnavailable, Message: "reading response body", Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: ErrServiceUnavailable, Message: fmt.Sprintf("%s: HTTP %d: %s", path, resp.StatusCode, payload)}
	}

	if c.Debug != nil {
		c.Debug.Printf("%s response: %s", path, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Kind: ErrMalformedResponse, Message: "decoding response body", Cause: err}
	}
	return nil
}
