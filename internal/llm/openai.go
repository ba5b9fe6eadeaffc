package llm

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient OpenAI 兼容的生成端客户端
// 用于生成端部署在 OpenAI 风格网关之后的场景
type OpenAIClient struct {
	config *Config
	client *openai.Client
	log    *zap.SugaredLogger
}

// NewOpenAIClient 创建新的 OpenAI 客户端
func NewOpenAIClient(config *Config, log *zap.SugaredLogger) *OpenAIClient {
	clientConfig := openai.DefaultConfig(config.APIKey)

	// 直接使用配置的 BaseURL,不自动添加 /v1
	// 因为不同的 API 提供商可能有不同的路径格式
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	// 禁用 HTTP/2 - 设置空的 TLSNextProto map 会阻止 HTTP/2
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSNextProto:        make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
	}

	clientConfig.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	log.Infof("OpenAI client initialized, model %s", config.Model)

	return &OpenAIClient{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		log:    log,
	}
}

// Generate 调用 chat completions 生成答案,返回原始文本
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
