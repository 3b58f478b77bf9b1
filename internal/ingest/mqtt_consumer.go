package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/metrics"
	"github.com/Ekremunalytu/CDTPBackend/internal/repository"
	"github.com/Ekremunalytu/CDTPBackend/pkg/mqtt"
)

// MQTTConsumer MQTT摄入消费者
// 设备也可以通过MQTT上报批次，走与HTTP相同的校验和入队路径
type MQTTConsumer struct {
	client    *mqtt.Client
	batchRepo *repository.BatchRepository
	topic     string
	qos       byte
	logger    *zap.Logger
}

// NewMQTTConsumer 创建MQTT摄入消费者
func NewMQTTConsumer(
	client *mqtt.Client,
	batchRepo *repository.BatchRepository,
	topic string,
	qos byte,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		client:    client,
		batchRepo: batchRepo,
		topic:     topic,
		qos:       qos,
		logger:    logger,
	}
}

// Start 订阅上报主题
func (c *MQTTConsumer) Start() error {
	if err := c.client.Subscribe(c.topic, c.qos, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to sensor topic: %w", err)
	}

	c.logger.Info("MQTT ingest consumer started",
		zap.String("topic", c.topic),
	)
	return nil
}

// Stop 取消订阅
func (c *MQTTConsumer) Stop() {
	if err := c.client.Unsubscribe(c.topic); err != nil {
		c.logger.Warn("Failed to unsubscribe from sensor topic",
			zap.String("topic", c.topic),
			zap.Error(err),
		)
	}
}

func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	var req SensorDataRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		metrics.IngestRequests.WithLabelValues("mqtt", "invalid").Inc()
		return fmt.Errorf("failed to parse sensor payload: %w", err)
	}
	if err := validateRequest(&req); err != nil {
		metrics.IngestRequests.WithLabelValues("mqtt", "invalid").Inc()
		return err
	}

	batch := requestToBatch(&req)
	if err := c.batchRepo.Enqueue(context.Background(), batch); err != nil {
		metrics.IngestRequests.WithLabelValues("mqtt", "error").Inc()
		return fmt.Errorf("failed to enqueue sensor batch: %w", err)
	}

	metrics.IngestRequests.WithLabelValues("mqtt", "ok").Inc()
	c.logger.Debug("Sensor batch queued from MQTT",
		zap.String("patient_id", req.PatientID),
		zap.Int64("batch_id", batch.ID),
	)
	return nil
}

// validateRequest MQTT路径没有gin的binding校验，这里手动做同等检查
func validateRequest(req *SensorDataRequest) error {
	if req.PatientID == "" {
		return fmt.Errorf("missing patient_id")
	}
	if req.Timestamp == 0 {
		return fmt.Errorf("missing timestamp")
	}
	if len(req.Accelerometer.X) == 0 || len(req.Accelerometer.Y) == 0 || len(req.Accelerometer.Z) == 0 {
		return fmt.Errorf("missing accelerometer samples")
	}
	if len(req.Gyroscope.X) == 0 || len(req.Gyroscope.Y) == 0 || len(req.Gyroscope.Z) == 0 {
		return fmt.Errorf("missing gyroscope samples")
	}
	return nil
}
