package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ggeorgiev0/backend-base/modules/kit/logx"
	"github.com/ggeorgiev0/backend-base/modules/kit/sanitize"
)

// Hub 用户变更事件的广播中心。
// Publish 把事件扇出给所有在线订阅端；payload 统一脱敏后再出站。
type Hub struct {
	mu           sync.RWMutex
	clients      map[*client]struct{}
	log          logx.Logger
	sendBuffer   int
	sanitizeOpts sanitize.Options
}

// NewHub sendBuffer 是单连接发送缓冲大小，<=0 取默认值。
func NewHub(l logx.Logger, sendBuffer int) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		log:        l,
		sendBuffer: sendBuffer,
	}
}

func (h *Hub) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	upgrader := websocket.Upgrader{
		// 允许所有CORS跨域请求
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(resp, req, nil)
	if err != nil {
		h.log.Error("realtime upgrade error", zap.Error(err))
		return
	}

	c := newClient(conn, h.log, h.sendBuffer)
	h.add(c)
	c.run()
	h.log.Info("realtime subscriber connected", zap.String("addr", conn.RemoteAddr().String()))

	go func() {
		<-c.done
		h.remove(c)
	}()
}

// Publish 广播一条变更事件。对慢消费者不等待。
// 载荷先降成通用 JSON 值再脱敏，保证结构体字段也走键名匹配。
func (h *Hub) Publish(event string, payload any) {
	ev := &Event{Event: event, Payload: sanitize.Value(toGeneric(payload), h.sanitizeOpts)}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.push(ev)
	}
}

// Subscribers 当前在线订阅端数量。
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
	}
	h.clients = make(map[*client]struct{})
}

func toGeneric(v any) any {
	switch v.(type) {
	case nil, map[string]any, []any, string, bool, float64:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}
