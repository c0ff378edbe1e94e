// Package backend talks to the transcription/summary/RAG service over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	TranscribePath = "/transcribe"
	YouTubePath    = "/process-youtube"
	AskPath        = "/ask"

	AudioField = "audio"
)

// Recording is what the client needs from an assembled recording.
type Recording interface {
	Filename() string
	ContentType() string
	Encode() ([]byte, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client issues exactly one request per call; there are no retries.
type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(config.BaseURL, "/"),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Transcribe uploads the recording as the multipart field "audio".
func (c *Client) Transcribe(ctx context.Context, rec Recording) (*TranscribeResponse, error) {
	data, err := rec.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode recording: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, AudioField, rec.Filename()))
	header.Set("Content-Type", rec.ContentType())
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+TranscribePath, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result TranscribeResponse
	status, err := c.do(req, "transcribe", &result)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 || !result.Success {
		return nil, &Error{Op: "transcribe", Status: status, Message: fallback(result.Error, "Processing failed")}
	}

	log.Printf("backend: transcribed %d bytes: %d chars transcript", len(data), len(result.Transcript))
	return &result, nil
}

// ProcessYouTube asks the backend to fetch and summarize a video's transcript.
func (c *Client) ProcessYouTube(ctx context.Context, url string) (*YouTubeResponse, error) {
	var result YouTubeResponse
	status, err := c.postJSON(ctx, YouTubePath, "process-youtube", YouTubeRequest{URL: url}, &result)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 || !result.Success {
		return nil, &Error{Op: "process-youtube", Status: status, Message: fallback(result.Error, "Failed to process YouTube video")}
	}
	return &result, nil
}

// Ask submits a question with the transcript as context.
func (c *Client) Ask(ctx context.Context, question, transcript string) (*AskResponse, error) {
	var result AskResponse
	status, err := c.postJSON(ctx, AskPath, "ask", AskRequest{Question: question, Context: transcript}, &result)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 || !result.Success {
		return nil, &Error{Op: "ask", Status: status, Message: fallback(result.Error, "Failed to get answer")}
	}
	return &result, nil
}

func (c *Client) postJSON(ctx context.Context, path, op string, payload, out any) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

// do sends the request and decodes the JSON body into out regardless of
// status so the error field is available to the caller.
func (c *Client) do(req *http.Request, op string, out any) (int, error) {
	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Printf("backend: %s failed after %v: %v", op, duration, err)
		return 0, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s response: %w", op, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode/100 != 2 {
			log.Printf("backend: %s returned status %d: %s", op, resp.StatusCode, string(body))
			return resp.StatusCode, nil
		}
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", op, err)
	}

	log.Printf("backend: %s returned status %d in %v", op, resp.StatusCode, duration)
	return resp.StatusCode, nil
}

func fallback(msg, def string) string {
	if strings.TrimSpace(msg) == "" {
		return def
	}
	return msg
}
