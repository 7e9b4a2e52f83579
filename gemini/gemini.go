// Package gemini implements the client side of the Gemini generateContent
// REST endpoint. It is deliberately a thin HTTP client rather than a wrapper
// around the official SDK: the server's contract pins the exact wire shape
// (model in the path, key as a query parameter, a single text part in the
// body), and the upstream outcome is always reduced to displayable text.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m4xw311/gemini-collab/config"
	"golang.org/x/sync/semaphore"
)

// ModelHint selects between the two configured backend models.
type ModelHint int

const (
	// ModelSmall resolves to the flash model, the default for every tool.
	ModelSmall ModelHint = iota
	// ModelLarge resolves to the pro model, used for large-content analysis.
	ModelLarge
)

// FailureKind classifies why an upstream call produced no text.
type FailureKind string

const (
	FailureTimeout   FailureKind = "timeout"
	FailureHTTP      FailureKind = "http_error"
	FailureTransport FailureKind = "transport_error"
)

// Failure describes an upstream call that produced no text.
type Failure struct {
	Kind    FailureKind
	Message string
}

// Outcome is the result of one completion call: either Text is set, or
// Failure is non-nil. Never both, never a partial fragment of either.
type Outcome struct {
	Text    string
	Failure *Failure
}

// Render reduces the outcome to the text handed back to the calling host.
// Failures become "Error: ..." strings rather than RPC errors, so the host
// always has something displayable.
func (o Outcome) Render() string {
	if o.Failure != nil {
		return "Error: " + o.Failure.Message
	}
	return o.Text
}

// Client issues completion requests against the generateContent endpoint,
// bounded to at most cfg.MaxWorkers concurrent upstream calls.
type Client struct {
	baseURL    string
	apiKey     string
	flashModel string
	proModel   string
	timeout    time.Duration
	httpc      *http.Client
	pool       *semaphore.Weighted
}

// NewClient creates a completion client from the loaded configuration.
func NewClient(cfg *config.Config) *Client {
	workers := cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		flashModel: cfg.FlashModel,
		proModel:   cfg.ProModel,
		timeout:    timeout,
		httpc:      &http.Client{},
		pool:       semaphore.NewWeighted(int64(workers)),
	}
}

// Configured reports whether an API key was resolved at startup. The server
// still runs without one; only tools/call is refused.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Model resolves a hint to the concrete backend model identifier.
func (c *Client) Model(hint ModelHint) string {
	if hint == ModelLarge {
		return c.proModel
	}
	return c.flashModel
}

// generateContent request/response shapes, trimmed to the fields used.

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type candidate struct {
	Content content `json:"content"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

// Complete sends one prompt to the resolved model and returns the outcome.
// The call holds a worker-pool slot for its full duration; excess concurrent
// callers queue. Shutdown never aborts an exchange already under way: the
// call is detached from the caller's cancellation and runs under its own
// timeout, so an in-flight request still delivers its real answer while the
// server drains.
func (c *Client) Complete(ctx context.Context, prompt string, hint ModelHint) Outcome {
	ctx = context.WithoutCancel(ctx)
	if err := c.pool.Acquire(ctx, 1); err != nil {
		return c.timeoutOrTransport(err)
	}
	defer c.pool.Release(1)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return Outcome{Failure: &Failure{Kind: FailureTransport, Message: err.Error()}}
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s",
		c.baseURL, c.Model(hint), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{Failure: &Failure{Kind: FailureTransport, Message: err.Error()}}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return c.timeoutOrTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.timeoutOrTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Outcome{Failure: &Failure{
			Kind:    FailureHTTP,
			Message: fmt.Sprintf("%s returned by Gemini API: %s", resp.Status, string(respBody)),
		}}
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Outcome{Failure: &Failure{Kind: FailureTransport, Message: err.Error()}}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		// Preserved behavior: an empty candidate list is a degraded answer,
		// not a failure.
		return Outcome{Text: "No response generated"}
	}
	return Outcome{Text: parsed.Candidates[0].Content.Parts[0].Text}
}

func (c *Client) timeoutOrTransport(err error) Outcome {
	var uerr *url.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &uerr) && uerr.Timeout()) {
		return Outcome{Failure: &Failure{
			Kind:    FailureTimeout,
			Message: fmt.Sprintf("Request timed out after %d seconds", int(c.timeout.Seconds())),
		}}
	}
	return Outcome{Failure: &Failure{Kind: FailureTransport, Message: err.Error()}}
}
