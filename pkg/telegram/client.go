package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/briannichols0702/moneybuybot/pkg/httpclient"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.telegram.org"

	// ParseModeMarkdown 告警文本使用的标记语法
	ParseModeMarkdown = "Markdown"
)

type Config struct {
	BaseURL   string
	Token     string
	RateLimit int // 每分钟请求次数
	Timeout   int // 秒
}

type Client struct {
	baseURL    string
	token      string
	httpClient *httpclient.HTTPClient
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	// 创建HTTP客户端
	httpCfg := httpclient.HTTPClientConfig{
		Timeout:    time.Duration(cfg.Timeout) * time.Second,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 0, // 告警尽力而为，不在传输层重试
	}
	httpClient := httpclient.NewHTTPClient(httpCfg, logger)

	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetMe 校验bot凭证并返回bot身份
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var resp getMeResponse
	url := fmt.Sprintf("%s/bot%s/getMe", c.baseURL, c.token)
	if err := c.httpClient.Get(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("telegram getMe failed: %w", err)
	}
	if !resp.Ok {
		return nil, fmt.Errorf("telegram getMe rejected: %d %s", resp.ErrorCode, resp.Description)
	}

	return &resp.Result, nil
}

// SendMessage 向指定chat发送Markdown文本
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := sonic.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             ParseModeMarkdown,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage request: %w", err)
	}

	var resp sendMessageResponse
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	if err := c.httpClient.PostJSON(ctx, url, body, &resp); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("telegram sendMessage rejected: %d %s", resp.ErrorCode, resp.Description)
	}

	c.logger.Debug("Telegram message sent",
		zap.Int64("chat_id", chatID),
		zap.Int64("message_id", resp.Result.MessageID))
	return nil
}
