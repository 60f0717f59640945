package client

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client 一个客户端实例的全部同步状态：连接、花名册、上报限流。
// 所有方法都应在同一个帧线程上调用。
type Client struct {
	Session uuid.UUID

	// OnAccept 服务器接受本地玩家时回调，表现层据此把相机移到出生点
	OnAccept func(id PlayerID, spawn mgl32.Vec3)

	cfg     Config
	conn    *Connection
	roster  *Roster
	sched   *Scheduler
	metrics *Metrics
	log     *zap.SugaredLogger
}

// Status 只读状态快照，供调试接口在其他协程输出
type Status struct {
	Session      string         `json:"session"`
	State        string         `json:"state"`
	LocalID      PlayerID       `json:"localId"`
	SendInterval float64        `json:"sendInterval"`
	Remotes      []RemotePlayer `json:"remotes"`
}

// New factory 为 nil 时使用 websocket 传输
func New(cfg Config, factory TransportFactory) *Client {
	session := uuid.New()
	log := Log.With("session", session.String())
	metrics := &Metrics{}
	if factory == nil {
		factory = NewWSTransportFactory(cfg.WSOptions(), metrics, log)
	}
	return &Client{
		Session: session,
		cfg:     cfg,
		conn:    NewConnection(factory, cfg.Spawn, metrics, log),
		roster:  NewRoster(),
		sched:   NewScheduler(cfg.SendInterval, cfg.ReliableUpdates),
		metrics: metrics,
		log:     log,
	}
}

func (c *Client) Connect(address string) error {
	return c.conn.Connect(address)
}

func (c *Client) Disconnect() {
	c.conn.Disconnect()
	c.afterDisconnect()
}

func (c *Client) afterDisconnect() {
	if c.cfg.ClearRosterOnDisconnect {
		c.roster.Reset()
	}
}

// Tick 每帧调用一次：写入本地状态 → 按需上报 → 处理至多一个入站事件
func (c *Client) Tick(now float64, local LocalState) {
	if id, ok := c.conn.LocalPlayerID(); ok {
		c.roster.SetLocal(id, local.Position, local.Color, now)
	}
	if _, err := c.sched.Tick(now, c.conn, local); err != nil {
		c.log.Debugf("send update: %v", err)
	}

	before := c.conn.State()
	c.conn.PollOnce(c.roster, now)
	after := c.conn.State()

	switch {
	case before != Accepted && after == Accepted:
		c.sched.Reset()
		if c.OnAccept != nil {
			id, _ := c.conn.LocalPlayerID()
			c.OnAccept(id, c.cfg.Spawn)
		}
	case before != Disconnected && after == Disconnected:
		c.afterDisconnect()
	}
}

func (c *Client) IsConnected() bool { return c.conn.IsConnected() }

func (c *Client) LocalPlayerID() (PlayerID, bool) { return c.conn.LocalPlayerID() }

func (c *Client) State() ConnState { return c.conn.State() }

func (c *Client) Position(id PlayerID) (mgl32.Vec3, bool) { return c.roster.Position(id) }

func (c *Client) Color(id PlayerID) (Color, bool) { return c.roster.Color(id) }

// Remotes 当前需要绘制的远端玩家
func (c *Client) Remotes() []RemotePlayer {
	id, _ := c.conn.LocalPlayerID()
	return c.roster.Remotes(id)
}

func (c *Client) Roster() *Roster { return c.roster }

func (c *Client) Metrics() *Metrics { return c.metrics }

func (c *Client) SetSendInterval(d time.Duration) {
	c.sched.SetInterval(d)
	c.log.Infof("send interval set to %s", d)
}

func (c *Client) Status() Status {
	id, _ := c.conn.LocalPlayerID()
	return Status{
		Session:      c.Session.String(),
		State:        c.conn.State().String(),
		LocalID:      id,
		SendInterval: c.sched.Interval(),
		Remotes:      c.Remotes(),
	}
}
