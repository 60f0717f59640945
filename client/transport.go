package client

import "time"

// EventType 传输层事件类型
type EventType int

const (
	EventConnect EventType = iota + 1
	EventReceive
	EventDisconnect
)

func (t EventType) String() string {
	switch t {
	case EventConnect:
		return "connect"
	case EventReceive:
		return "receive"
	case EventDisconnect:
		return "disconnect"
	default:
		return "none"
	}
}

// Event 一次传输层事件；Data 仅在 EventReceive 时有效
type Event struct {
	Type EventType
	Data []byte
}

// Transport 传输层对核心暴露的同步接口。
// 实现内部可以有自己的投递协程，但 Poll 和 Send 必须立即返回。
type Transport interface {
	Connect(address string) error
	Send(data []byte, reliable bool) error
	Poll() (Event, bool)
	Close() error
}

// TransportFactory 每次 Connect 创建一个新的传输实例
type TransportFactory func() (Transport, error)

// Clock 单调时钟，单位秒
type Clock interface {
	Now() float64
}

// SystemClock 以创建时刻为零点的单调时钟
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}
