package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ggeorgiev0/backend-base/modules/kit/logx"
)

const (
	defaultSendBuffer = 64
	writeTimeout      = 10 * time.Second
)

type client struct {
	conn      *websocket.Conn
	outChan   chan *Event
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func newClient(conn *websocket.Conn, l logx.Logger, sendBuffer int) *client {
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &client{
		conn:    conn,
		outChan: make(chan *Event, sendBuffer),
		done:    make(chan struct{}),
		log:     l,
	}
}

func (c *client) run() {
	go c.readLoop()
	go c.writeLoop()
}

// readLoop 订阅端不发业务消息，这里只为感知连接断开。
func (c *client) readLoop() {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	for {
		select {
		case ev, ok := <-c.outChan:
			if !ok {
				return
			}
			c.write(ev)
		case <-c.done:
			return
		}
	}
}

func (c *client) write(ev *Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		c.log.Error("realtime write marshal json error", zap.Error(err))
		return
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.log.Error("realtime write error", zap.Error(err))
		c.close()
	}
}

// push 非阻塞投递。缓冲写满说明订阅端消费太慢，直接断开，
// 不能让一个慢消费者拖住广播。
func (c *client) push(ev *Event) {
	select {
	case c.outChan <- ev:
	case <-c.done:
	default:
		c.log.Warn("realtime slow consumer dropped", zap.String("addr", c.conn.RemoteAddr().String()))
		c.close()
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
		close(c.done)
	})
}
