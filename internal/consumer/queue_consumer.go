package consumer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/config"
	"github.com/Ekremunalytu/CDTPBackend/internal/metrics"
)

// QueueConsumer 队列消费worker池
// N个worker并发认领批次；批次级互斥由存储侧的lock-skip认领保证，
// worker之间没有全局串行化
type QueueConsumer struct {
	config    *config.Config
	processor BatchProcessor
	logger    *zap.Logger
}

// NewQueueConsumer 创建队列消费者
func NewQueueConsumer(cfg *config.Config, processor BatchProcessor, logger *zap.Logger) *QueueConsumer {
	return &QueueConsumer{
		config:    cfg,
		processor: processor,
		logger:    logger,
	}
}

// Start 启动worker池，阻塞到ctx取消
func (c *QueueConsumer) Start(ctx context.Context) error {
	workers := c.config.Processor.Workers
	if workers <= 0 {
		workers = 1
	}

	c.logger.Info("Queue consumer started",
		zap.Int("workers", workers),
		zap.Duration("poll_interval", c.config.Processor.PollInterval),
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	c.logger.Info("Queue consumer stopped")
	return nil
}

// runWorker 单个worker循环：处理→空闲时轮询→出错时退避
func (c *QueueConsumer) runWorker(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		processed, err := c.processor.ProcessNext(ctx)
		if err != nil {
			// 批次保持未消费，退避后重试
			metrics.BatchProcessingErrors.Inc()
			c.logger.Error("Failed to process batch",
				zap.Int("worker_id", workerID),
				zap.Error(err),
			)
			c.sleep(ctx, c.config.Processor.ErrorBackoff)
			continue
		}

		if !processed {
			// 队列为空，固定间隔后再查
			c.sleep(ctx, c.config.Processor.PollInterval)
		}
	}
}

// sleep ctx感知的休眠
func (c *QueueConsumer) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
