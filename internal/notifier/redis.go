package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisRelay 基于Redis Pub/Sub的事件中继（Publisher 的跨进程实现）
// 事件同时发布到全局频道和按患者子频道：
//
//	<prefix>                全局频道（如 "cdtp:events"）
//	<prefix>:<patient_id>   按患者频道
//
// Pub/Sub无持久化：发布时没有订阅者则事件丢失（设计如此）
type RedisRelay struct {
	client        *redis.Client
	channelPrefix string
	logger        *zap.Logger
}

// NewRedisRelay 创建Redis事件中继
func NewRedisRelay(client *redis.Client, channelPrefix string, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{
		client:        client,
		channelPrefix: channelPrefix,
		logger:        logger,
	}
}

// Publish 发布事件到Redis频道
func (r *RedisRelay) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// 全局频道
	if err := r.client.Publish(ctx, r.channelPrefix, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to global channel: %w", err)
	}

	// 按患者子频道
	patientChannel := fmt.Sprintf("%s:%s", r.channelPrefix, event.PatientID)
	if err := r.client.Publish(ctx, patientChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to patient channel: %w", err)
	}

	return nil
}

// RedisSubscriber Redis事件中继的接收端（实时推送服务使用）
type RedisSubscriber struct {
	client        *redis.Client
	channelPrefix string
	logger        *zap.Logger
}

// NewRedisSubscriber 创建Redis事件订阅者
func NewRedisSubscriber(client *redis.Client, channelPrefix string, logger *zap.Logger) *RedisSubscriber {
	return &RedisSubscriber{
		client:        client,
		channelPrefix: channelPrefix,
		logger:        logger,
	}
}

// Subscribe 订阅全局频道，返回事件通道
// ctx取消时通道关闭；解析失败的消息记录日志后跳过
func (s *RedisSubscriber) Subscribe(ctx context.Context) <-chan Event {
	pubsub := s.client.Subscribe(ctx, s.channelPrefix)
	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					s.logger.Error("Failed to unmarshal relay event",
						zap.String("channel", msg.Channel),
						zap.Error(err),
					)
					continue
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events
}
