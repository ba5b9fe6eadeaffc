package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Generator 外部生成端,输入提示词,输出原始文本
// 生成端不可靠:输出可能被散文包裹,调用方必须经过 ParsePayload 校验
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config 生成端配置
type Config struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NewGenerator 按 provider 创建生成端客户端
func NewGenerator(provider string, config *Config, log *zap.SugaredLogger) Generator {
	switch provider {
	case "openai":
		return NewOpenAIClient(config, log)
	default:
		return NewOllamaClient(config, log)
	}
}
