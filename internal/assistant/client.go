package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HabitForge/habitforge-backend/internal/platform/config"
)

// ErrUpstream 表示上游AI包装服务返回了非成功状态。
// 分析调用没有重试：任何失败对当次请求都是终态。
var ErrUpstream = errors.New("上游分析服务调用失败")

// Client 封装对上游AI包装服务的调用。
// 上游对本服务是不透明的：发送prompt和期望的schema，拿回符合schema的JSON。
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// AnalyzeRequest 是一次分析调用的输入
type AnalyzeRequest struct {
	Prompt string          `json:"prompt"`
	Schema json.RawMessage `json:"schema,omitempty"`
	// ImageBase64 是可选的图片输入，用于食物识别
	ImageBase64 string `json:"imageBase64,omitempty"`
}

// NewClient 根据配置构造一个上游客户端
func NewClient(cfg config.AssistantConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Analyze 向上游发起一次分析调用，返回上游的原始JSON。
// 调用方负责把结果解析进自己期望的结构。
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("无法序列化分析请求: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("无法构造分析请求: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: 无法读取响应: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: 状态码 %d", ErrUpstream, resp.StatusCode)
	}
	return json.RawMessage(body), nil
}
