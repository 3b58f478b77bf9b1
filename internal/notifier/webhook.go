package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier 报警webhook转发器
// 只转发 alert 类型事件（外部值班系统不关心普通测量）
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewWebhookNotifier 创建webhook转发器
func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &WebhookNotifier{
		client: client,
		url:    url,
		logger: logger,
	}
}

// Publish 转发报警事件到配置的webhook地址
func (w *WebhookNotifier) Publish(ctx context.Context, event Event) error {
	if event.Kind != KindAlert {
		return nil
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("failed to post alert webhook: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode())
	}

	w.logger.Debug("Alert webhook delivered",
		zap.String("event_id", event.EventID),
		zap.Int("status", resp.StatusCode()),
	)

	return nil
}
