package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/models"
	"github.com/Ekremunalytu/CDTPBackend/internal/notifier"
)

func setupServer(t *testing.T) (*httptest.Server, *notifier.Hub) {
	gin.SetMode(gin.TestMode)

	hub := notifier.NewHub(16, zap.NewNop())
	server := NewServer(hub, zap.NewNop())

	router := gin.New()
	server.RegisterRoutes(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, hub
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func publishMeasurement(t *testing.T, hub *notifier.Hub, patientID string) {
	event, err := notifier.NewMeasurementEvent(&models.Measurement{
		PatientID:         patientID,
		HeartRate:         72,
		InactivitySeconds: 10,
		Status:            models.StatusNormal,
		MeasuredAt:        time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, hub.Publish(context.Background(), event))
}

func readWire(t *testing.T, conn *websocket.Conn) WireMessage {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WireMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestGlobalStream_ReceivesAllPatients(t *testing.T) {
	ts, hub := setupServer(t)
	conn := dial(t, ts, "/ws")

	// 等订阅注册完成
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	publishMeasurement(t, hub, "patient-1")
	publishMeasurement(t, hub, "patient-2")

	m1 := readWire(t, conn)
	m2 := readWire(t, conn)

	assert.Equal(t, "new_measurement", m1.Type)
	assert.Equal(t, "patient-1", m1.PatientID)
	assert.Equal(t, "patient-2", m2.PatientID)
}

func TestPatientStream_FiltersOtherPatients(t *testing.T) {
	ts, hub := setupServer(t)
	conn := dial(t, ts, "/ws/vitals/patient-1")

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	publishMeasurement(t, hub, "patient-2")
	publishMeasurement(t, hub, "patient-1")

	// 只收到自己患者的事件
	msg := readWire(t, conn)
	assert.Equal(t, "patient-1", msg.PatientID)
}

func TestStream_NoReplayForLateSubscriber(t *testing.T) {
	ts, hub := setupServer(t)

	// 订阅前发布的事件不回放
	publishMeasurement(t, hub, "patient-1")

	conn := dial(t, ts, "/ws")
	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var msg WireMessage
	err := conn.ReadJSON(&msg)
	assert.Error(t, err)
}

func TestDisconnect_RemovesSubscriber(t *testing.T) {
	ts, hub := setupServer(t)
	conn := dial(t, ts, "/ws")

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	ts, _ := setupServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
