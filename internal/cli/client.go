package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/docquiz/internal/models"
)

// AnswerResult is the body of POST /api/v1/ask.
type AnswerResult struct {
	Answer      string `json:"answer"`
	Citation    string `json:"citation"`
	Formatted   string `json:"formatted"`
	Chunks      []int  `json:"chunks"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Client talks to a running docquiz server, which owns the single live session.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Upload sends the file at path to the server for ingestion.
func (c *Client) Upload(ctx context.Context, path string) (*models.IngestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var res models.IngestResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/upload", mw.FormDataContentType(), body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Ask asks a question about the loaded document. An unavailable answer is returned
// together with an *APIError so callers can still show the fallback text.
func (c *Client) Ask(ctx context.Context, question string) (*AnswerResult, error) {
	var res AnswerResult
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/ask", map[string]string{"question": question}, &res)
	if err != nil && !res.Unavailable {
		return nil, err
	}
	return &res, err
}

// QuizQuestion asks the server to generate a new quiz question.
func (c *Client) QuizQuestion(ctx context.Context) (string, error) {
	var res struct {
		Question string `json:"question"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/quiz/question", nil, &res); err != nil {
		return "", err
	}
	return res.Question, nil
}

// Evaluate submits an answer to the outstanding quiz question.
func (c *Client) Evaluate(ctx context.Context, answer string) (*models.Verdict, error) {
	var v models.Verdict
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/quiz/evaluate", map[string]string{"answer": answer}, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Status fetches the live session status.
func (c *Client) Status(ctx context.Context) (*models.Status, error) {
	var s models.Status
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/status", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, out)
}

// do sends the request and decodes a JSON body into out. Non-2xx responses return an
// *APIError; the body is still decoded into out when it is not an error envelope.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Error
		return apiErr
	}
	if out != nil {
		_ = json.Unmarshal(data, out)
	}
	return apiErr
}
