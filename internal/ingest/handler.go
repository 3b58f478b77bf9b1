package ingest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/metrics"
	"github.com/Ekremunalytu/CDTPBackend/internal/models"
	"github.com/Ekremunalytu/CDTPBackend/internal/repository"
)

// SensorDataRequest 传感器批次上报请求
type SensorDataRequest struct {
	PatientID     string      `json:"patient_id" binding:"required"`
	Timestamp     float64     `json:"timestamp" binding:"required"`
	Accelerometer AxisPayload `json:"accelerometer" binding:"required"`
	Gyroscope     AxisPayload `json:"gyroscope" binding:"required"`
	PPGRaw        []int       `json:"ppg_raw"`
}

// AxisPayload 三轴采样数组
type AxisPayload struct {
	X []float64 `json:"x" binding:"required"`
	Y []float64 `json:"y" binding:"required"`
	Z []float64 `json:"z" binding:"required"`
}

// Handler 摄入HTTP处理器
// 只做校验和入队，不做任何分析：分析由处理端的队列消费者完成
type Handler struct {
	batchRepo *repository.BatchRepository
	logger    *zap.Logger
}

// NewHandler 创建摄入处理器
func NewHandler(batchRepo *repository.BatchRepository, logger *zap.Logger) *Handler {
	return &Handler{
		batchRepo: batchRepo,
		logger:    logger,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/ingest", h.IngestSensorData)
	}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// IngestSensorData 接收传感器批次并入队
func (h *Handler) IngestSensorData(c *gin.Context) {
	var req SensorDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IngestRequests.WithLabelValues("http", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request: " + err.Error(),
		})
		return
	}

	batch := requestToBatch(&req)
	if err := h.batchRepo.Enqueue(c.Request.Context(), batch); err != nil {
		metrics.IngestRequests.WithLabelValues("http", "error").Inc()
		h.logger.Error("Failed to enqueue sensor batch",
			zap.String("patient_id", req.PatientID),
			zap.Error(err),
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "Failed to queue data",
		})
		return
	}

	metrics.IngestRequests.WithLabelValues("http", "ok").Inc()
	h.logger.Debug("Sensor batch queued",
		zap.String("patient_id", req.PatientID),
		zap.Int64("batch_id", batch.ID),
	)

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Data queued",
	})
}

func requestToBatch(req *SensorDataRequest) *models.SensorBatch {
	return &models.SensorBatch{
		PatientID: req.PatientID,
		Timestamp: req.Timestamp,
		Accelerometer: models.AxisSamples{
			X: req.Accelerometer.X,
			Y: req.Accelerometer.Y,
			Z: req.Accelerometer.Z,
		},
		Gyroscope: models.AxisSamples{
			X: req.Gyroscope.X,
			Y: req.Gyroscope.Y,
			Z: req.Gyroscope.Z,
		},
		PPGRaw: req.PPGRaw,
	}
}
