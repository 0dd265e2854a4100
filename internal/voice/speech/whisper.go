// internal/voice/speech/whisper.go
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/tamzrod/modbus-fan/internal/voice/audio"
)

const whisperProvider = "whisper"

// WhisperClient uploads WAV clips to the OpenAI transcription endpoint.
// One attempt per clip.
type WhisperClient struct {
	apiKey     string
	language   string
	baseURL    string
	httpClient *http.Client
}

func NewWhisperClient(apiKey, language string, timeout time.Duration) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, "https://api.openai.com/v1", timeout)
}

func NewWhisperClientWithURL(apiKey, language, baseURL string, timeout time.Duration) *WhisperClient {
	return &WhisperClient{
		apiKey:     apiKey,
		language:   language,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", c.fail(0, fmt.Errorf("creating form file: %w", err))
	}
	if _, err := part.Write(clip.WAV()); err != nil {
		return "", c.fail(0, fmt.Errorf("writing audio: %w", err))
	}
	if err := writer.WriteField("model", "whisper-1"); err != nil {
		return "", c.fail(0, fmt.Errorf("writing model field: %w", err))
	}
	if c.language != "" {
		if err := writer.WriteField("language", c.language); err != nil {
			return "", c.fail(0, fmt.Errorf("writing language field: %w", err))
		}
	}
	if err := writer.Close(); err != nil {
		return "", c.fail(0, fmt.Errorf("closing writer: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", c.fail(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail(0, fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", c.fail(resp.StatusCode, fmt.Errorf("api error: %s", string(respBody)))
	}

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", c.fail(0, fmt.Errorf("decoding response: %w", err))
	}
	if result.Text == "" {
		return "", c.fail(0, errors.New("empty transcription"))
	}

	return result.Text, nil
}

func (c *WhisperClient) fail(code int, err error) error {
	return &Error{Provider: whisperProvider, Code: code, Err: err}
}
