package client

import (
	"math"
	"time"
)

const (
	// UpdatesPerSecond 本地状态上报频率（20 次/秒），与渲染帧率无关
	UpdatesPerSecond = 20
)

// DefaultSendInterval 50ms
var DefaultSendInterval = time.Second / UpdatesPerSecond

// Scheduler 上报限流：距离上次发送超过 interval 才允许下一次发送
type Scheduler struct {
	lastSend float64
	interval float64
	reliable bool
}

func NewScheduler(interval time.Duration, reliable bool) *Scheduler {
	s := &Scheduler{reliable: reliable}
	s.SetInterval(interval)
	s.Reset()
	return s
}

// Interval 当前发送间隔（秒）
func (s *Scheduler) Interval() float64 { return s.interval }

func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultSendInterval
	}
	s.interval = d.Seconds()
}

// Reset 让下一次 Tick 立即发送
func (s *Scheduler) Reset() {
	s.lastSend = math.Inf(-1)
}

// Due 是否到了发送时间
func (s *Scheduler) Due(now float64) bool {
	return now-s.lastSend > s.interval
}

// Tick 已被接受且到期时编码本地状态并发送。
// 发送失败也会推进计时，避免每帧重试刷屏。
func (s *Scheduler) Tick(now float64, conn *Connection, local LocalState) (bool, error) {
	if !conn.IsConnected() || !s.Due(now) {
		return false, nil
	}
	s.lastSend = now
	pkt := EncodeUpdateInput(local.Position, local.Color)
	if err := conn.Send(pkt, s.reliable); err != nil {
		conn.metrics.IncSendError()
		return false, err
	}
	conn.metrics.IncSent()
	return true, nil
}
