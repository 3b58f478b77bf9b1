package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证默认值
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "cdtp_health", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "", cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, 4, cfg.Processor.Workers)
	assert.Equal(t, 500*time.Millisecond, cfg.Processor.PollInterval)
	assert.Equal(t, time.Second, cfg.Processor.ErrorBackoff)

	assert.Equal(t, 30*time.Second, cfg.Sweeper.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.DebounceWindow)
	assert.Equal(t, 70, cfg.Sweeper.PlaceholderBPM)

	assert.Equal(t, 3.0, cfg.Algorithm.ImpactThreshold)
	assert.Equal(t, 0.5, cfg.Algorithm.FreefallThreshold)
	assert.Equal(t, 1.15, cfg.Algorithm.FallStillness)
	assert.Equal(t, 5, cfg.Algorithm.StillnessSamples)
	assert.Equal(t, 4.0, cfg.Algorithm.SevereImpactThreshold)
	assert.Equal(t, 25, cfg.Algorithm.PPGSamplingRateHz)
	assert.Equal(t, 1.1, cfg.Algorithm.InactivityStillness)

	assert.Equal(t, 50, cfg.Defaults.BPMLowerLimit)
	assert.Equal(t, 120, cfg.Defaults.BPMUpperLimit)
	assert.Equal(t, 900, cfg.Defaults.MaxInactivitySeconds)

	assert.Equal(t, "cdtp:events", cfg.Realtime.ChannelPrefix)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// 设置环境变量
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_PORT", "6432")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("PROCESSOR_WORKERS", "8")
	os.Setenv("PROCESSOR_POLL_INTERVAL", "200ms")
	os.Setenv("SWEEPER_INTERVAL", "10s")
	os.Setenv("ALGO_IMPACT_THRESHOLD", "2.5")
	os.Setenv("DEFAULT_BPM_LOWER", "45")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	// 验证环境变量覆盖
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 8, cfg.Processor.Workers)
	assert.Equal(t, 200*time.Millisecond, cfg.Processor.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Sweeper.Interval)
	assert.Equal(t, 2.5, cfg.Algorithm.ImpactThreshold)
	assert.Equal(t, 45, cfg.Defaults.BPMLowerLimit)
	assert.Equal(t, "debug", cfg.Log.Level)

	// 清理环境变量
	os.Clearenv()
}

func TestGetEnvInt_Invalid(t *testing.T) {
	os.Setenv("TEST_INT_KEY", "not-a-number")
	defer os.Unsetenv("TEST_INT_KEY")

	// 非法值回退到默认值
	assert.Equal(t, 42, getEnvInt("TEST_INT_KEY", 42))
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	os.Setenv("TEST_DUR_KEY", "soon")
	defer os.Unsetenv("TEST_DUR_KEY")

	assert.Equal(t, time.Minute, getEnvDuration("TEST_DUR_KEY", time.Minute))
}
