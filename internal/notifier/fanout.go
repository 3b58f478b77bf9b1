package notifier

import (
	"context"

	"go.uber.org/zap"
)

// Fanout 组合发布器：把事件投递到每一个配置的传输
// 单个传输失败只记录日志，不影响其他传输，也不上抛为流水线错误
type Fanout struct {
	publishers []Publisher
	logger     *zap.Logger
}

// NewFanout 创建组合发布器
func NewFanout(logger *zap.Logger, publishers ...Publisher) *Fanout {
	return &Fanout{
		publishers: publishers,
		logger:     logger,
	}
}

// Publish 向所有传输投递事件
func (f *Fanout) Publish(ctx context.Context, event Event) error {
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			// 订阅者侧故障与流水线隔离
			f.logger.Error("Failed to deliver event",
				zap.String("event_id", event.EventID),
				zap.String("kind", string(event.Kind)),
				zap.String("patient_id", event.PatientID),
				zap.Error(err),
			)
		}
	}

	return nil
}
