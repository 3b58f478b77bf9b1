package notifier

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Subscription 订阅句柄
// C 上按发布顺序收到事件；Close 后通道被关闭，不再投递
type Subscription struct {
	C chan Event

	hub       *Hub
	patientID string // ""表示全局订阅
	closed    bool   // hub.mu保护
}

// Close 取消订阅并释放通道（幂等）
// 通道的关闭由Hub在锁内完成，与并发的Publish互斥
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub 进程内事件fan-out
// 全局订阅者收到所有事件，按患者订阅者只收到对应患者的事件；
// 每次发布每个在线订阅者至多收到一次，无历史回放
type Hub struct {
	mu         sync.RWMutex
	global     map[*Subscription]struct{}
	perPatient map[string]map[*Subscription]struct{}
	bufferSize int
	logger     *zap.Logger
}

// NewHub 创建fan-out Hub
// bufferSize: 每个订阅通道的缓冲大小；缓冲占满的订阅者视为失活并被剔除
func NewHub(bufferSize int, logger *zap.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Hub{
		global:     make(map[*Subscription]struct{}),
		perPatient: make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Subscribe 创建全局订阅（收到所有患者的事件）
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		C:   make(chan Event, h.bufferSize),
		hub: h,
	}

	h.mu.Lock()
	h.global[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// SubscribePatient 创建按患者订阅（只收到指定患者的事件）
func (h *Hub) SubscribePatient(patientID string) *Subscription {
	sub := &Subscription{
		C:         make(chan Event, h.bufferSize),
		hub:       h,
		patientID: patientID,
	}

	h.mu.Lock()
	if h.perPatient[patientID] == nil {
		h.perPatient[patientID] = make(map[*Subscription]struct{})
	}
	h.perPatient[patientID][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish 投递事件到所有匹配的在线订阅者
// 单个订阅者投递失败（缓冲占满）不影响其他订阅者，失活订阅者被剔除。
// 向缓冲通道的发送在读锁内完成，与remove里的关闭互斥，
// 并发的订阅者断开不会让发送落在已关闭的通道上
func (h *Hub) Publish(ctx context.Context, event Event) error {
	var dead []*Subscription

	h.mu.RLock()
	deliver := func(sub *Subscription) {
		if sub.closed {
			return
		}
		select {
		case sub.C <- event:
		default:
			dead = append(dead, sub)
		}
	}
	for sub := range h.global {
		deliver(sub)
	}
	for sub := range h.perPatient[event.PatientID] {
		deliver(sub)
	}
	h.mu.RUnlock()

	// 缓冲占满：订阅者已失活或消费过慢，剔除它而不是阻塞流水线
	for _, sub := range dead {
		h.logger.Warn("Dropping dead subscriber",
			zap.String("event_id", event.EventID),
			zap.String("patient_id", sub.patientID),
		)
		h.remove(sub)
	}

	return nil
}

// SubscriberCount 当前订阅者总数（指标用）
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := len(h.global)
	for _, subs := range h.perPatient {
		count += len(subs)
	}
	return count
}

// remove 从注册表剔除订阅并关闭其通道（幂等）
// 关闭发生在写锁内：与Publish的读锁发送互斥，已缓冲的事件仍可被读出
func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.C)

	if sub.patientID == "" {
		delete(h.global, sub)
		return
	}

	if subs, ok := h.perPatient[sub.patientID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.perPatient, sub.patientID)
		}
	}
}
