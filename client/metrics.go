package client

import (
	"sync/atomic"
)

// Metrics 记录客户端运行期的关键计数（调试接口会在其他协程读取）
type Metrics struct {
	PacketsReceived int64 // 收到的数据事件
	PacketsDropped  int64 // 解码失败被丢弃
	PacketsIgnored  int64 // 当前状态下不处理的包
	AcceptsRejected int64 // 编号越界的 AcceptPlayer
	UpdatesSent     int64 // 发出的 UpdateInput
	SendErrors      int64 // 发送失败
	SendsDropped    int64 // 不可靠发送因队列满被丢弃
	InboundOverflow int64 // 入站事件队列满被丢弃
	Disconnects     int64 // 传输层断开事件
	ConnectAttempts int64
	ConnectFailures int64 // 传输创建失败
}

func (m *Metrics) IncReceived()        { atomic.AddInt64(&m.PacketsReceived, 1) }
func (m *Metrics) IncDropped()         { atomic.AddInt64(&m.PacketsDropped, 1) }
func (m *Metrics) IncIgnored()         { atomic.AddInt64(&m.PacketsIgnored, 1) }
func (m *Metrics) IncAcceptRejected()  { atomic.AddInt64(&m.AcceptsRejected, 1) }
func (m *Metrics) IncSent()            { atomic.AddInt64(&m.UpdatesSent, 1) }
func (m *Metrics) IncSendError()       { atomic.AddInt64(&m.SendErrors, 1) }
func (m *Metrics) IncSendDropped()     { atomic.AddInt64(&m.SendsDropped, 1) }
func (m *Metrics) IncInboundOverflow() { atomic.AddInt64(&m.InboundOverflow, 1) }
func (m *Metrics) IncDisconnect()      { atomic.AddInt64(&m.Disconnects, 1) }
func (m *Metrics) IncConnectAttempt()  { atomic.AddInt64(&m.ConnectAttempts, 1) }
func (m *Metrics) IncConnectFailure()  { atomic.AddInt64(&m.ConnectFailures, 1) }

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	return map[string]any{
		"packets_received": atomic.LoadInt64(&m.PacketsReceived),
		"packets_dropped":  atomic.LoadInt64(&m.PacketsDropped),
		"packets_ignored":  atomic.LoadInt64(&m.PacketsIgnored),
		"accepts_rejected": atomic.LoadInt64(&m.AcceptsRejected),
		"updates_sent":     atomic.LoadInt64(&m.UpdatesSent),
		"send_errors":      atomic.LoadInt64(&m.SendErrors),
		"sends_dropped":    atomic.LoadInt64(&m.SendsDropped),
		"inbound_overflow": atomic.LoadInt64(&m.InboundOverflow),
		"disconnects":      atomic.LoadInt64(&m.Disconnects),
		"connect_attempts": atomic.LoadInt64(&m.ConnectAttempts),
		"connect_failures": atomic.LoadInt64(&m.ConnectFailures),
	}
}
