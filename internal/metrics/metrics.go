package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesProcessed 已处理的传感器批次总数
	BatchesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdtp_batches_processed_total",
			Help: "Total number of sensor batches processed",
		},
		[]string{"status"},
	)

	// BatchProcessingErrors 批次处理失败总数（批次保留待重试）
	BatchProcessingErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cdtp_batch_processing_errors_total",
			Help: "Total number of batch processing errors",
		},
	)

	// ProcessingDuration 单个批次处理耗时
	ProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cdtp_batch_processing_duration_seconds",
			Help:    "Sensor batch processing duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// QueueDepth 未消费批次数量
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cdtp_queue_depth",
			Help: "Number of unprocessed sensor batches in the queue",
		},
	)

	// FallsDetected 检测到的跌倒总数
	FallsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdtp_falls_detected_total",
			Help: "Total number of falls detected",
		},
		[]string{"fall_type"},
	)

	// AlertsCreated 创建的报警总数
	AlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdtp_alerts_created_total",
			Help: "Total number of alerts created",
		},
		[]string{"source"},
	)

	// EventsPublished 发布的通知事件总数
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdtp_events_published_total",
			Help: "Total number of notification events published",
		},
		[]string{"kind"},
	)

	// SweepsTotal 不活动扫描执行总数
	SweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cdtp_inactivity_sweeps_total",
			Help: "Total number of inactivity sweeps executed",
		},
	)

	// SweepAlertsSuppressed 扫描中被去重抑制的报警总数
	SweepAlertsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cdtp_sweep_alerts_suppressed_total",
			Help: "Total number of inactivity alerts suppressed by the debounce window",
		},
	)

	// IngestRequests 摄入请求总数
	IngestRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdtp_ingest_requests_total",
			Help: "Total number of ingest requests",
		},
		[]string{"source", "status"},
	)

	// WebsocketClients 当前连接的websocket客户端数量
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cdtp_websocket_clients",
			Help: "Number of currently connected websocket clients",
		},
	)
)
