package client

import "github.com/go-gl/mathgl/mgl32"

// MaxPlayers 同时在线玩家上限（槽位数量固定）
const MaxPlayers = 8

// PlayerID 玩家编号，合法范围 [0, MaxPlayers)
type PlayerID int

// NoPlayer 表示尚未分配本地玩家编号
const NoPlayer PlayerID = -1

// Valid 判断编号是否落在槽位范围内
func (id PlayerID) Valid() bool {
	return id >= 0 && id < MaxPlayers
}

// Color RGBA 颜色，每通道一个字节
type Color struct {
	R, G, B, A uint8
}

// PlayerState 单个槽位的最后已知状态
// Active 为 false 时其余字段已过期，读取方不可信任
type PlayerState struct {
	Position   mgl32.Vec3
	Color      Color
	Active     bool
	UpdateTime float64
}

// ConnState 连接状态机
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Accepted
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Accepted:
		return "accepted"
	default:
		return "unknown"
	}
}
