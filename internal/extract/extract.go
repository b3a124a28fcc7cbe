// Package extract calls the AI summarization endpoint that turns a
// rendered announcement image into the four structured listing fields.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// instruction is the fixed prompt. The response contract is a bare
// JSON object with exactly these four string fields; the model answers
// "" for anything it cannot read off the image.
const instruction = `You are reading a scanned training-program announcement. ` +
	`Respond with a JSON object containing exactly these string fields: ` +
	`"summary" (one-line description of the program), ` +
	`"applicationPeriod" (the application date range as printed), ` +
	`"trainingPeriod" (the training date range as printed), ` +
	`"target" (who the program is for). ` +
	`Use "" for any field not present. Respond with the JSON object only.`

// Fields is the extraction result. Empty string means "unknown".
type Fields struct {
	Summary           string `json:"summary"`
	ApplicationPeriod string `json:"applicationPeriod"`
	TrainingPeriod    string `json:"trainingPeriod"`
	Target            string `json:"target"`
}

// KeyFunc resolves the API key at call time, so a key set through the
// API takes effect without a restart.
type KeyFunc func() (string, error)

// EndpointFunc resolves the endpoint URL and model at call time; the
// engine's config is reloadable and the client follows it.
type EndpointFunc func() (endpoint, model string)

type Client struct {
	target EndpointFunc
	key    KeyFunc
	hc     *http.Client
	lim    *rate.Limiter
}

func New(target EndpointFunc, key KeyFunc) *Client {
	return &Client{
		target: target,
		key:    key,
		hc:       &http.Client{Timeout: 90 * time.Second},
		// uploads are user-initiated one-offs; anything faster than
		// this is a stuck retry loop, not a person
		lim: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract sends one announcement image and returns the four fields.
func (c *Client) Extract(ctx context.Context, image []byte, mimeType string) (Fields, error) {
	if err := c.lim.Wait(ctx); err != nil {
		return Fields{}, err
	}

	key, err := c.key()
	if err != nil {
		return Fields{}, fmt.Errorf("extract: %w", err)
	}
	endpoint, model := c.target()

	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	body, _ := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: instruction},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
			},
		}},
		ResponseFormat: &respFormat{Type: "json_object"},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Fields{}, fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("User-Agent", "Noticeboard/1.0 (+local)")

	res, err := c.hc.Do(req)
	if err != nil {
		return Fields{}, fmt.Errorf("extract: call endpoint: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return Fields{}, fmt.Errorf("extract: endpoint status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var cr chatResponse
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return Fields{}, fmt.Errorf("extract: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return Fields{}, fmt.Errorf("extract: empty response")
	}

	return ParseFields(cr.Choices[0].Message.Content)
}

// ParseFields decodes the model's JSON answer. Models wrap JSON in
// markdown fences often enough that we strip them first.
func ParseFields(raw string) (Fields, error) {
	cleaned := stripFences(raw)

	var f Fields
	if err := json.Unmarshal([]byte(cleaned), &f); err != nil {
		return Fields{}, fmt.Errorf("extract: malformed AI JSON: %w", err)
	}
	return f, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
