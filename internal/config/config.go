package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Ekremunalytu/CDTPBackend/pkg/database"
	"github.com/Ekremunalytu/CDTPBackend/pkg/mqtt"
	"github.com/Ekremunalytu/CDTPBackend/pkg/redis"
)

// Config CDTP后端配置（三个服务共用）
type Config struct {
	Database database.Config
	Redis    redis.Config
	MQTT     mqtt.Config

	// 摄入服务配置
	Ingestion struct {
		HTTPAddr    string // HTTP监听地址，如 ":8001"
		MQTTEnabled bool   // 是否启用MQTT摄入
		MQTTTopic   string // 设备上报主题，如 "cdtp/sensor/data"
	}

	// 处理服务配置
	Processor struct {
		Workers      int           // 并发worker数量，默认 4
		PollInterval time.Duration // 队列为空时的轮询间隔，默认 500ms
		ErrorBackoff time.Duration // 处理出错后的退避时间，默认 1s
		MetricsAddr  string        // Prometheus指标监听地址，如 ":9101"
	}

	// 周期性不活动扫描配置
	Sweeper struct {
		Interval       time.Duration // 扫描间隔，默认 30s
		DebounceWindow time.Duration // 重复报警抑制窗口，默认 5m
		PlaceholderBPM int           // 扫描触发时的占位心率，默认 70
	}

	// 实时推送服务配置
	Realtime struct {
		HTTPAddr       string // WebSocket监听地址，如 ":8002"
		ChannelPrefix  string // Redis事件频道前缀，如 "cdtp:events"
		SendBufferSize int    // 每个订阅者的发送缓冲大小，默认 16
	}

	// 报警通知配置
	Notify struct {
		WebhookURL     string        // 可选的报警webhook地址（为空则关闭）
		WebhookTimeout time.Duration // webhook请求超时，默认 5s
	}

	// 算法参数（§信号分析的可调常量）
	Algorithm struct {
		ImpactThreshold       float64 // 冲击阈值（g），默认 3.0
		FreefallThreshold     float64 // 自由落体阈值（g），默认 0.5
		FallStillness         float64 // 跌倒后静止阈值（g），默认 1.15
		StillnessSamples      int     // 静止判断所需样本数，默认 5
		SevereImpactThreshold float64 // 剧烈冲击阈值（g），默认 4.0
		PPGSamplingRateHz     int     // PPG采样率（Hz），默认 25
		InactivityStillness   float64 // 不活动静止阈值（g），默认 1.1
	}

	// 默认阈值（patient_settings 缺失时使用）
	Defaults struct {
		BPMLowerLimit        int // 默认 50
		BPMUpperLimit        int // 默认 120
		MaxInactivitySeconds int // 默认 900（15分钟）
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 从环境变量加载（默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "secret")
	cfg.Database.Database = getEnv("DB_NAME", "cdtp_health")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "cdtp-ingestion")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	cfg.Ingestion.HTTPAddr = getEnv("INGESTION_HTTP_ADDR", ":8001")
	cfg.Ingestion.MQTTEnabled = getEnv("INGESTION_MQTT_ENABLED", "false") == "true"
	cfg.Ingestion.MQTTTopic = getEnv("INGESTION_MQTT_TOPIC", "cdtp/sensor/data")

	cfg.Processor.Workers = getEnvInt("PROCESSOR_WORKERS", 4)
	cfg.Processor.PollInterval = getEnvDuration("PROCESSOR_POLL_INTERVAL", 500*time.Millisecond)
	cfg.Processor.ErrorBackoff = getEnvDuration("PROCESSOR_ERROR_BACKOFF", time.Second)
	cfg.Processor.MetricsAddr = getEnv("PROCESSOR_METRICS_ADDR", ":9101")

	cfg.Sweeper.Interval = getEnvDuration("SWEEPER_INTERVAL", 30*time.Second)
	cfg.Sweeper.DebounceWindow = getEnvDuration("SWEEPER_DEBOUNCE_WINDOW", 5*time.Minute)
	cfg.Sweeper.PlaceholderBPM = getEnvInt("SWEEPER_PLACEHOLDER_BPM", 70)

	cfg.Realtime.HTTPAddr = getEnv("REALTIME_HTTP_ADDR", ":8002")
	cfg.Realtime.ChannelPrefix = getEnv("REALTIME_CHANNEL_PREFIX", "cdtp:events")
	cfg.Realtime.SendBufferSize = getEnvInt("REALTIME_SEND_BUFFER", 16)

	cfg.Notify.WebhookURL = getEnv("NOTIFY_WEBHOOK_URL", "")
	cfg.Notify.WebhookTimeout = getEnvDuration("NOTIFY_WEBHOOK_TIMEOUT", 5*time.Second)

	cfg.Algorithm.ImpactThreshold = getEnvFloat("ALGO_IMPACT_THRESHOLD", 3.0)
	cfg.Algorithm.FreefallThreshold = getEnvFloat("ALGO_FREEFALL_THRESHOLD", 0.5)
	cfg.Algorithm.FallStillness = getEnvFloat("ALGO_FALL_STILLNESS", 1.15)
	cfg.Algorithm.StillnessSamples = getEnvInt("ALGO_STILLNESS_SAMPLES", 5)
	cfg.Algorithm.SevereImpactThreshold = getEnvFloat("ALGO_SEVERE_IMPACT", 4.0)
	cfg.Algorithm.PPGSamplingRateHz = getEnvInt("ALGO_PPG_SAMPLING_RATE", 25)
	cfg.Algorithm.InactivityStillness = getEnvFloat("ALGO_INACTIVITY_STILLNESS", 1.1)

	cfg.Defaults.BPMLowerLimit = getEnvInt("DEFAULT_BPM_LOWER", 50)
	cfg.Defaults.BPMUpperLimit = getEnvInt("DEFAULT_BPM_UPPER", 120)
	cfg.Defaults.MaxInactivitySeconds = getEnvInt("DEFAULT_MAX_INACTIVITY", 900)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
