package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/metrics"
	"github.com/Ekremunalytu/CDTPBackend/internal/notifier"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// WireMessage WebSocket下发的消息格式
type WireMessage struct {
	Type      string          `json:"type"`
	PatientID string          `json:"patient_id"`
	Data      json.RawMessage `json:"data"`
}

// Server 实时推送服务
// 客户端通过WebSocket订阅事件流：全局流或单个患者的流。
// 事件从订阅建立后开始下发，不回放历史
type Server struct {
	hub      *notifier.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewServer 创建实时推送服务
func NewServer(hub *notifier.Hub, logger *zap.Logger) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// RegisterRoutes 注册路由
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", s.HandleGlobal)
	r.GET("/ws/vitals/:patient_id", s.HandlePatient)
}

// Health 健康检查
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"subscribers": s.hub.SubscriberCount(),
	})
}

// HandleGlobal 全局事件流：所有患者的测量和报警
func (s *Server) HandleGlobal(c *gin.Context) {
	s.serve(c, s.hub.Subscribe(), "")
}

// HandlePatient 单个患者的事件流
func (s *Server) HandlePatient(c *gin.Context) {
	patientID := c.Param("patient_id")
	s.serve(c, s.hub.SubscribePatient(patientID), patientID)
}

func (s *Server) serve(c *gin.Context, sub *notifier.Subscription, patientID string) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Close()
		s.logger.Warn("WebSocket upgrade failed",
			zap.Error(err),
		)
		return
	}

	metrics.WebsocketClients.Inc()
	s.logger.Info("WebSocket client connected",
		zap.String("patient_id", patientID),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	go s.writePump(conn, sub)
	s.readPump(conn, sub, patientID)
}

// writePump 把订阅的事件写到连接，写失败即断开
func (s *Server) writePump(conn *websocket.Conn, sub *notifier.Subscription) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			msg := WireMessage{
				Type:      string(event.Kind),
				PatientID: event.PatientID,
				Data:      event.Payload,
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 只为检测客户端断开，丢弃入站消息
func (s *Server) readPump(conn *websocket.Conn, sub *notifier.Subscription, patientID string) {
	defer func() {
		sub.Close()
		conn.Close()
		metrics.WebsocketClients.Dec()
		s.logger.Info("WebSocket client disconnected",
			zap.String("patient_id", patientID),
		)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
