package client

import "github.com/go-gl/mathgl/mgl32"

// LocalState 表现层每帧交给核心的本地玩家状态
type LocalState struct {
	Position mgl32.Vec3
	Color    Color
}
