package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tablegen/internal/config"
	"tablegen/internal/pkg/apperr"
)

// HTTPClient 发送 HTTP 请求的最小接口，测试时可替换
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client 对话补全接口客户端
// 职责: 构建请求、发送、校验状态码、解码 JSON 信封
type Client struct {
	settings *config.ChatSettings
	http     HTTPClient
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 HTTP 客户端
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient 创建客户端，settings 由 config.APIConfig.Resolve 得到
func NewClient(settings *config.ChatSettings, opts ...Option) *Client {
	c := &Client{
		settings: settings,
		http:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Message 对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 对话补全请求体
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// ChatResponse 对话补全响应
// Body 是解码后的原始 JSON，不做任何结构校验
type ChatResponse struct {
	Body       any
	Raw        []byte
	StatusCode int
}

// BuildRequest 根据配置和需求描述构建请求体
func (c *Client) BuildRequest(prompt string) *ChatRequest {
	return &ChatRequest{
		Model: c.settings.Model,
		Messages: []Message{
			{Role: "user", Content: prompt + "\n" + c.settings.PromptSuffix},
		},
		Temperature: c.settings.Temperature,
		MaxTokens:   c.settings.MaxTokens,
	}
}

// Endpoint 对话补全接口地址
func (c *Client) Endpoint() string {
	return c.settings.APIBase + "/chat/completions"
}

// Send 发送一次对话补全请求
// 空白输入直接返回 invalid_input，不发起网络请求
func (c *Client) Send(ctx context.Context, prompt string) (*ChatResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "prompt is empty")
	}

	payload, err := json.Marshal(c.BuildRequest(prompt))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRequest, "marshal chat request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRequest, "build chat request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.settings.APIKey)
	req.Header.Set("Content-Type", "application/json")

	logger := log.With().Str("model", c.settings.Model).Str("endpoint", c.Endpoint()).Logger()
	logger.Debug().Int("prompt_len", len(prompt)).Msg("sending chat completion request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("chat completion request failed")
		return nil, apperr.Wrap(apperr.KindRequest, "send chat request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRequest, "read chat response", err)
	}

	logger.Info().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Int("body_size", len(raw)).
		Msg("chat completion response received")

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.KindRequest, "chat completion request failed").WithDetail(string(raw))
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperr.Wrap(apperr.KindDecode, "decode chat response", err)
	}

	return &ChatResponse{
		Body:       body,
		Raw:        raw,
		StatusCode: resp.StatusCode,
	}, nil
}
