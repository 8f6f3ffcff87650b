// Package gemini is a minimal client of the Generative Language generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

var ErrNoCandidates = errors.New("gemini: no candidates returned")

//go:generate go run github.com/kazhuravlev/options-gen/cmd/options-gen@v0.55.3 -out-filename=client_options.gen.go -from-struct=Options
type Options struct {
	apiKey string `option:"mandatory" validate:"required"`

	baseURL    string        `default:"https://generativelanguage.googleapis.com" validate:"required,url"`
	model      string        `default:"gemini-2.5-flash" validate:"required"`
	attempts   uint          `default:"3" validate:"min=1,max=10"`
	retryDelay time.Duration `default:"500ms"`
	httpClient *http.Client
}

type Client struct {
	opts Options
}

func New(opts Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate gemini options: %v", err)
	}

	if opts.httpClient == nil {
		opts.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	opts.baseURL = strings.TrimRight(opts.baseURL, "/")

	return &Client{opts: opts}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type generationConfig struct {
	ThinkingConfig thinkingConfig `json:"thinkingConfig"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// StatusError is a non-2xx answer of the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: bad status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Complete returns the model output for input under the given system instruction.
// Rate limits and server errors are retried.
func (c *Client) Complete(ctx context.Context, input, instruction string) (string, error) {
	payload := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: input}}}},
	}
	if instruction != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: instruction}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	return retry.DoWithData(
		func() (string, error) { return c.generate(ctx, body) },
		retry.Context(ctx),
		retry.Attempts(c.opts.attempts),
		retry.Delay(c.opts.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *StatusError
			return errors.As(err, &se) && se.Transient()
		}),
	)
}

func (c *Client) generate(ctx context.Context, body []byte) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.opts.baseURL, c.opts.model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.opts.apiKey)

	resp, err := c.opts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send gemini request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if len(out.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	return sb.String(), nil
}
