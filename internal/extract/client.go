package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultModel = "gpt-5-mini"
	apiURL       = "https://api.openai.com/v1/responses"
)

// ErrSchemaViolation reports that the extraction capability returned
// output violating its structured-output contract. It is fatal for the
// extraction call that produced it, not for the overall run.
var ErrSchemaViolation = errors.New("extraction schema violation")

// Request is one structured-output invocation: a fixed system
// instruction and JSON schema, with the message body as the sole
// dynamic input.
type Request struct {
	Instructions string
	Input        string
	SchemaName   string
	Schema       json.RawMessage
}

// Invoker sends a structured-output request to the extraction
// capability and returns its raw output text.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// OpenAIClient implements Invoker against the OpenAI Responses API.
type OpenAIClient struct {
	apiKey string
	model  string
	client *http.Client
}

// NewOpenAIClient creates a client for the given API key and model.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = defaultModel
	}
	return &OpenAIClient{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{},
	}
}

// Invoke sends one structured-output request and returns the
// concatenated output text.
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) (string, error) {
	reqBody := apiRequest{
		Model: c.model,
		Input: []apiMessage{
			{Role: "system", Content: req.Instructions},
			{Role: "user", Content: req.Input},
		},
		Text: apiText{
			Format: apiTextFormat{
				Type:   "json_schema",
				Name:   req.SchemaName,
				Schema: req.Schema,
				Strict: true,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling extraction API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.outputText(), nil
}

// --- OpenAI Responses API types ---

type apiRequest struct {
	Model string       `json:"model"`
	Input []apiMessage `json:"input"`
	Text  apiText      `json:"text"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiText struct {
	Format apiTextFormat `json:"format"`
}

type apiTextFormat struct {
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

type apiResponse struct {
	ID     string      `json:"id"`
	Output []apiOutput `json:"output"`
}

type apiOutput struct {
	Type    string             `json:"type"`
	Content []apiOutputContent `json:"content"`
}

type apiOutputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// outputText concatenates the output_text blocks of a response.
func (r *apiResponse) outputText() string {
	var sb strings.Builder
	for _, out := range r.Output {
		if out.Type != "message" {
			continue
		}
		for _, c := range out.Content {
			if c.Type == "output_text" {
				sb.WriteString(c.Text)
			}
		}
	}
	return sb.String()
}
