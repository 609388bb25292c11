// Package genclient talks to the external generative composition
// service: one call to create a task, then polling until the task
// settles.
package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL = "https://api.kie.ai"
	defaultModel   = "nano-banana-pro"

	pollInterval = 2 * time.Second
	maxPolls     = 240
)

// Client submits composition tasks and polls for their results.
type Client struct {
	BaseURL      string
	Model        string
	HTTPClient   *http.Client
	PollInterval time.Duration
	MaxPolls     int
}

// New builds a client from the environment. KIE_BASE_URL and
// KIE_MODEL override the defaults.
func New() *Client {
	baseURL := os.Getenv("KIE_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := os.Getenv("KIE_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Client{
		BaseURL:      baseURL,
		Model:        model,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		PollInterval: pollInterval,
		MaxPolls:     maxPolls,
	}
}

// TaskInput is the generation payload: one prompt plus the already
// hosted (or inlined) reference images.
type TaskInput struct {
	Prompt      string
	ImageURLs   []string
	AspectRatio string
	Resolution  string
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CreateTask submits a generation task and returns its task id.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (string, error) {
	apiKey := os.Getenv("KIE_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("KIE_API_KEY environment variable not set")
	}

	resolution := input.Resolution
	if resolution == "" {
		resolution = "1K"
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model": c.Model,
		"input": map[string]interface{}{
			"prompt":        input.Prompt,
			"image_input":   input.ImageURLs,
			"aspect_ratio":  input.AspectRatio,
			"resolution":    resolution,
			"output_format": "png",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal task request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/api/v1/jobs/createTask", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call generation API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode task response: %w", err)
	}
	if result.Code != 200 {
		return "", fmt.Errorf("generation API error: %s", result.Message)
	}

	var data struct {
		TaskID string `json:"taskId"`
	}
	if err := json.Unmarshal(result.Data, &data); err != nil || data.TaskID == "" {
		return "", fmt.Errorf("no taskId in generation API response")
	}

	slog.Info("Generation task queued", "task_id", data.TaskID)
	return data.TaskID, nil
}

// Await polls the task until it succeeds, fails, or the attempt budget
// is spent. A successful task yields the URL of the generated image.
// Unknown states are treated as in-progress.
func (c *Client) Await(ctx context.Context, taskID string) (string, error) {
	apiKey := os.Getenv("KIE_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("KIE_API_KEY environment variable not set")
	}

	for attempt := 0; attempt < c.MaxPolls; attempt++ {
		state, resultURL, failMsg, err := c.queryTask(ctx, taskID, apiKey)
		if err != nil {
			slog.Warn("Task poll failed", "task_id", taskID, "attempt", attempt+1, "error", err)
		} else {
			switch state {
			case "success":
				return resultURL, nil
			case "fail":
				return "", fmt.Errorf("generation task failed: %s", failMsg)
			default:
				if attempt%5 == 0 {
					slog.Debug("Generation task in progress", "task_id", taskID, "state", state, "attempt", attempt+1)
				}
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.PollInterval):
		}
	}

	return "", fmt.Errorf("timed out waiting for generation task %s", taskID)
}

func (c *Client) queryTask(ctx context.Context, taskID, apiKey string) (state, resultURL, failMsg string, err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/api/v1/jobs/recordInfo?taskId="+taskID, nil)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to create poll request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to poll task: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", "", fmt.Errorf("poll returned status %d", resp.StatusCode)
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", "", fmt.Errorf("failed to decode poll response: %w", err)
	}
	if result.Code != 200 {
		return "", "", "", fmt.Errorf("poll error: %s", result.Message)
	}

	var data struct {
		State      string `json:"state"`
		ResultJSON string `json:"resultJson"`
		FailMsg    string `json:"failMsg"`
		FailCode   string `json:"failCode"`
	}
	if err := json.Unmarshal(result.Data, &data); err != nil {
		return "", "", "", fmt.Errorf("failed to decode poll data: %w", err)
	}

	switch data.State {
	case "success":
		var resultData struct {
			ResultURLs []string `json:"resultUrls"`
		}
		if err := json.Unmarshal([]byte(data.ResultJSON), &resultData); err != nil {
			return "", "", "", fmt.Errorf("failed to parse resultJson: %w", err)
		}
		if len(resultData.ResultURLs) == 0 {
			return "", "", "", fmt.Errorf("no resultUrls in completed task")
		}
		return data.State, resultData.ResultURLs[0], "", nil
	case "fail":
		msg := data.FailMsg
		if msg == "" {
			msg = "unknown error"
		}
		if data.FailCode != "" {
			msg = "[" + data.FailCode + "] " + msg
		}
		return data.State, "", msg, nil
	default:
		return data.State, "", "", nil
	}
}
