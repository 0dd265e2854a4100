// internal/voice/speech/baidu.go
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tamzrod/modbus-fan/internal/voice/audio"
)

const (
	baiduProvider = "baidu"

	baiduTokenURL = "https://aip.baidubce.com/oauth/2.0/token"
	baiduASRURL   = "https://vop.baidu.com/server_api"

	// Mandarin with punctuation.
	DefaultBaiduDevPID = 1537

	// refresh a little before the server-side expiry
	tokenSlack = time.Minute
)

// BaiduConfig holds the short-speech REST credentials.
type BaiduConfig struct {
	AppID     string // sent as cuid
	APIKey    string
	SecretKey string
	DevPID    int
	Timeout   time.Duration
}

// BaiduClient implements Transcriber against the Baidu short speech API.
// The OAuth token is cached until shortly before it expires.
type BaiduClient struct {
	cfg        BaiduConfig
	tokenURL   string
	asrURL     string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewBaiduClient(cfg BaiduConfig) *BaiduClient {
	return NewBaiduClientWithURL(cfg, baiduTokenURL, baiduASRURL)
}

func NewBaiduClientWithURL(cfg BaiduConfig, tokenURL, asrURL string) *BaiduClient {
	if cfg.DevPID == 0 {
		cfg.DevPID = DefaultBaiduDevPID
	}
	return &BaiduClient{
		cfg:        cfg,
		tokenURL:   tokenURL,
		asrURL:     asrURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
}

type baiduTokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type baiduASRRequest struct {
	Format  string `json:"format"`
	Rate    int    `json:"rate"`
	Channel int    `json:"channel"`
	CUID    string `json:"cuid"`
	Token   string `json:"token"`
	DevPID  int    `json:"dev_pid"`
	Speech  string `json:"speech"`
	Len     int    `json:"len"`
}

type baiduASRResponse struct {
	ErrNo  int      `json:"err_no"`
	ErrMsg string   `json:"err_msg"`
	Result []string `json:"result"`
}

func (c *BaiduClient) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	if len(clip.Samples) == 0 {
		return "", c.fail(0, errors.New("empty clip"))
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	pcm := clip.PCM()
	cuid := c.cfg.AppID
	if cuid == "" {
		cuid = "modbus-fan"
	}

	payload, err := json.Marshal(baiduASRRequest{
		Format:  "pcm",
		Rate:    clip.SampleRate,
		Channel: 1,
		CUID:    cuid,
		Token:   token,
		DevPID:  c.cfg.DevPID,
		Speech:  base64.StdEncoding.EncodeToString(pcm),
		Len:     len(pcm),
	})
	if err != nil {
		return "", c.fail(0, fmt.Errorf("encoding request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.asrURL, bytes.NewReader(payload))
	if err != nil {
		return "", c.fail(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail(0, fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.fail(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var result baiduASRResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", c.fail(0, fmt.Errorf("decoding response: %w", err))
	}
	if result.ErrNo != 0 {
		return "", c.fail(result.ErrNo, errors.New(result.ErrMsg))
	}
	if len(result.Result) == 0 || result.Result[0] == "" {
		return "", c.fail(0, errors.New("no speech recognized"))
	}

	return result.Result[0], nil
}

func (c *BaiduClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expires) {
		return c.token, nil
	}

	q := url.Values{}
	q.Set("grant_type", "client_credentials")
	q.Set("client_id", c.cfg.APIKey)
	q.Set("client_secret", c.cfg.SecretKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", c.fail(0, fmt.Errorf("creating token request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.fail(0, fmt.Errorf("requesting token: %w", err))
	}
	defer resp.Body.Close()

	var tr baiduTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", c.fail(resp.StatusCode, fmt.Errorf("decoding token: %w", err))
	}
	if tr.AccessToken == "" {
		return "", c.fail(resp.StatusCode, fmt.Errorf("token rejected: %s %s", tr.Error, tr.ErrorDescription))
	}

	c.token = tr.AccessToken
	c.expires = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSlack)
	return c.token, nil
}

func (c *BaiduClient) fail(code int, err error) error {
	return &Error{Provider: baiduProvider, Code: code, Err: err}
}
