package client

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrTransport 传输层无法创建或无法发起连接，Connect 直接返回给调用方
var ErrTransport = errors.New("transport unavailable")

// ErrNotConnected 没有可用的传输实例
var ErrNotConnected = errors.New("not connected")

// DefaultSpawn 服务器接受后本地玩家的出生点
var DefaultSpawn = mgl32.Vec3{0, 1.7, 4}

// Connection 持有传输实例与连接状态机：
// Disconnected → Connecting → Accepted，任意状态可回到 Disconnected。
type Connection struct {
	newTransport TransportFactory
	transport    Transport

	state   ConnState
	localID PlayerID
	spawn   mgl32.Vec3

	metrics *Metrics
	log     *zap.SugaredLogger
}

func NewConnection(factory TransportFactory, spawn mgl32.Vec3, metrics *Metrics, log *zap.SugaredLogger) *Connection {
	if metrics == nil {
		metrics = &Metrics{}
	}
	if log == nil {
		log = Log
	}
	return &Connection{
		newTransport: factory,
		localID:      NoPlayer,
		spawn:        spawn,
		metrics:      metrics,
		log:          log,
	}
}

func (c *Connection) State() ConnState { return c.state }

// IsConnected 仅在服务器接受后为 true
func (c *Connection) IsConnected() bool { return c.state == Accepted }

// LocalPlayerID 未被接受时返回 NoPlayer, false
func (c *Connection) LocalPlayerID() (PlayerID, bool) {
	if c.state != Accepted {
		return NoPlayer, false
	}
	return c.localID, true
}

// Connect 只在 Disconnected 状态生效，其余状态下重复调用为 no-op
func (c *Connection) Connect(address string) error {
	if c.state != Disconnected {
		c.log.Debugf("connect %s ignored: state=%s", address, c.state)
		return nil
	}
	c.metrics.IncConnectAttempt()

	t, err := c.newTransport()
	if err != nil {
		c.metrics.IncConnectFailure()
		return fmt.Errorf("%w: create: %v", ErrTransport, err)
	}
	if err := t.Connect(address); err != nil {
		_ = t.Close()
		c.metrics.IncConnectFailure()
		return fmt.Errorf("%w: connect %s: %v", ErrTransport, address, err)
	}

	c.transport = t
	c.state = Connecting
	c.localID = NoPlayer
	c.log.Infof("connecting to %s", address)
	return nil
}

// Disconnect 任意状态可调用，关闭并释放传输实例；幂等
func (c *Connection) Disconnect() {
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			c.log.Warnf("transport close: %v", err)
		}
	}
	if c.state != Disconnected {
		c.log.Infof("disconnected (was %s)", c.state)
	}
	c.reset()
}

func (c *Connection) reset() {
	c.transport = nil
	c.state = Disconnected
	c.localID = NoPlayer
}

// Send 把已编码的包交给传输层
func (c *Connection) Send(data []byte, reliable bool) error {
	if c.transport == nil {
		return ErrNotConnected
	}
	return c.transport.Send(data, reliable)
}

// PollOnce 非阻塞地取出至多一个入站事件并处理
func (c *Connection) PollOnce(roster *Roster, now float64) {
	if c.transport == nil {
		return
	}
	ev, ok := c.transport.Poll()
	if !ok {
		return
	}

	switch ev.Type {
	case EventConnect:
		c.log.Debugf("transport connected, waiting for accept")
	case EventReceive:
		c.metrics.IncReceived()
		c.handlePacket(ev.Data, roster, now)
	case EventDisconnect:
		c.metrics.IncDisconnect()
		c.log.Infof("server closed connection (was %s)", c.state)
		if err := c.transport.Close(); err != nil {
			c.log.Debugf("transport close after disconnect: %v", err)
		}
		// 花名册保留，不在这里清空
		c.reset()
	}
}

func (c *Connection) handlePacket(data []byte, roster *Roster, now float64) {
	p, err := Decode(data)
	if err != nil {
		c.metrics.IncDropped()
		c.log.Debugf("drop packet: %v", err)
		return
	}

	switch c.state {
	case Connecting:
		accept, ok := p.(AcceptPlayer)
		if !ok {
			c.metrics.IncIgnored()
			return
		}
		c.accept(PlayerID(accept.ID), roster, now)
	case Accepted:
		switch p := p.(type) {
		case AddPlayer:
			if roster.AddPlayer(PlayerID(p.ID), p.Position, p.Color, now, c.localID) {
				c.log.Debugf("player %d added at %v", p.ID, p.Position)
			}
		case RemovePlayer:
			if roster.RemovePlayer(PlayerID(p.ID), c.localID) {
				c.log.Debugf("player %d removed", p.ID)
			}
		case UpdatePlayer:
			roster.UpdatePlayer(PlayerID(p.ID), p.Position, p.Color, now, c.localID)
		default:
			// AcceptPlayer 只在握手阶段有效，UpdateInput 是客户端发出的
			c.metrics.IncIgnored()
		}
	default:
		c.metrics.IncIgnored()
	}
}

func (c *Connection) accept(id PlayerID, roster *Roster, now float64) {
	if !id.Valid() {
		c.metrics.IncAcceptRejected()
		c.log.Warnf("rejecting accept with out-of-range id %d", id)
		return
	}
	c.localID = id
	c.state = Accepted
	roster.Spawn(id, c.spawn, now)
	c.log.Infof("accepted as player %d", id)
}
