package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsPingInterval = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsWriteWait    = 5 * time.Second
	wsReadLimit    = 1024 // 最大合法包只有 18 字节
)

var (
	ErrSendQueueFull = errors.New("send queue full")
	ErrClosed        = errors.New("transport closed")
)

// WSOptions websocket 传输参数
type WSOptions struct {
	Port        int
	Path        string
	DialTimeout time.Duration
	EventBuffer int
	SendBuffer  int
}

// WSTransport 基于 websocket 二进制消息的 Transport。
// 拨号、读、写各自在独立协程中进行，帧线程只通过 Poll/Send 与之交互。
type WSTransport struct {
	opts    WSOptions
	dialer  *websocket.Dialer
	metrics *Metrics
	log     *zap.SugaredLogger

	events chan Event
	send   chan []byte
	done   chan struct{}
	cancel context.CancelFunc

	mu        sync.Mutex
	conn      *websocket.Conn
	started   bool
	closeOnce sync.Once
}

func NewWSTransport(opts WSOptions, metrics *Metrics, log *zap.SugaredLogger) *WSTransport {
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 256
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if metrics == nil {
		metrics = &Metrics{}
	}
	if log == nil {
		log = Log
	}
	return &WSTransport{
		opts: opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.DialTimeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		metrics: metrics,
		log:     log,
		events:  make(chan Event, opts.EventBuffer),
		send:    make(chan []byte, opts.SendBuffer),
		done:    make(chan struct{}),
	}
}

// NewWSTransportFactory 每次连接创建一个新的 WSTransport
func NewWSTransportFactory(opts WSOptions, metrics *Metrics, log *zap.SugaredLogger) TransportFactory {
	return func() (Transport, error) {
		return NewWSTransport(opts, metrics, log), nil
	}
}

// ResolveURL 将 "127.0.0.1"、"host:port" 或完整 ws:// 地址转换成拨号 URL
func (t *WSTransport) ResolveURL(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", errors.New("empty address")
	}
	if strings.Contains(address, "://") {
		u, err := url.Parse(address)
		if err != nil {
			return "", err
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		return u.String(), nil
	}

	host := address
	if _, _, err := net.SplitHostPort(address); err != nil {
		host = net.JoinHostPort(address, strconv.Itoa(t.opts.Port))
	}
	path := t.opts.Path
	if path == "" {
		path = "/"
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{Scheme: "ws", Host: host, Path: path}
	return u.String(), nil
}

// Connect 解析地址后在后台拨号，立即返回。
// 拨号失败只记录日志，状态机停留在 Connecting，由调用方决定是否重连。
func (t *WSTransport) Connect(address string) error {
	target, err := t.ResolveURL(address)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	if t.started {
		return errors.New("already connecting")
	}
	t.started = true

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.run(ctx, target)
	return nil
}

func (t *WSTransport) run(ctx context.Context, target string) {
	conn, resp, err := t.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if ctx.Err() == nil {
			t.log.Warnf("dial %s: %v", target, err)
		}
		return
	}

	t.mu.Lock()
	select {
	case <-t.done:
		t.mu.Unlock()
		_ = conn.Close()
		return
	default:
	}
	t.conn = conn
	t.mu.Unlock()

	t.log.Debugf("websocket connected to %s", target)
	t.emit(Event{Type: EventConnect})
	go t.writePump(conn)
	t.readPump(conn)
}

// readPump 读取服务器数据，转换为事件放入队列
func (t *WSTransport) readPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(wsPongWait)); return nil })

	for {
		mt, payload, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-t.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					t.log.Warnf("websocket read: %v", err)
				}
				t.emit(Event{Type: EventDisconnect})
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		if mt != websocket.BinaryMessage {
			continue
		}
		t.emit(Event{Type: EventReceive, Data: payload})
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (t *WSTransport) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg := <-t.send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				t.log.Debugf("websocket write: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-t.done:
			return
		}
	}
}

// emit 数据事件在队列满时丢弃；连接/断开事件必须送达，除非传输已关闭
func (t *WSTransport) emit(ev Event) {
	if ev.Type == EventReceive {
		select {
		case t.events <- ev:
		default:
			t.metrics.IncInboundOverflow()
		}
		return
	}
	select {
	case t.events <- ev:
	case <-t.done:
	}
}

// Poll 非阻塞取出一个事件
func (t *WSTransport) Poll() (Event, bool) {
	select {
	case ev := <-t.events:
		return ev, true
	default:
		return Event{}, false
	}
}

// Send 入队后立即返回；可靠发送在队列满时报错，不可靠发送直接丢弃
func (t *WSTransport) Send(data []byte, reliable bool) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	msg := append([]byte(nil), data...)
	select {
	case t.send <- msg:
		return nil
	default:
	}
	if reliable {
		return ErrSendQueueFull
	}
	t.metrics.IncSendDropped()
	return nil
}

// Close 发送关闭帧并释放连接与协程；幂等
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.mu.Lock()
		close(t.done)
		if t.cancel != nil {
			t.cancel()
		}
		conn := t.conn
		t.mu.Unlock()

		if conn == nil {
			return
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
			t.log.Debugf("websocket close frame: %v", werr)
		}
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	})
	return err
}
