package client

import "github.com/go-gl/mathgl/mgl32"

// Roster 固定容量的玩家状态表，按 PlayerID 直接索引。
// 所有远端修改都带上本地编号，远端包永远不能改写本地槽位。
// 只在帧线程上访问，无需加锁。
type Roster struct {
	slots [MaxPlayers]PlayerState
}

// RemotePlayer 供表现层绘制的远端玩家快照
type RemotePlayer struct {
	ID       PlayerID   `json:"id"`
	Position mgl32.Vec3 `json:"position"`
	Color    Color      `json:"color"`
}

func NewRoster() *Roster {
	return &Roster{}
}

func (r *Roster) remoteWritable(id, localID PlayerID) bool {
	return id.Valid() && id != localID
}

// AddPlayer 远端玩家加入：激活槽位并覆盖位置与颜色
func (r *Roster) AddPlayer(id PlayerID, pos mgl32.Vec3, c Color, now float64, localID PlayerID) bool {
	if !r.remoteWritable(id, localID) {
		return false
	}
	s := &r.slots[id]
	s.Active = true
	s.Position = pos
	s.Color = c
	s.UpdateTime = now
	return true
}

// RemovePlayer 远端玩家离开：只清 Active，旧位置与颜色保留在槽位里
func (r *Roster) RemovePlayer(id, localID PlayerID) bool {
	if !r.remoteWritable(id, localID) {
		return false
	}
	r.slots[id].Active = false
	return true
}

// UpdatePlayer 只更新已激活的远端槽位
func (r *Roster) UpdatePlayer(id PlayerID, pos mgl32.Vec3, c Color, now float64, localID PlayerID) bool {
	if !r.remoteWritable(id, localID) || !r.slots[id].Active {
		return false
	}
	s := &r.slots[id]
	s.Position = pos
	s.Color = c
	s.UpdateTime = now
	return true
}

// Spawn 服务器接受本地玩家后，将本地槽位放到出生点
func (r *Roster) Spawn(id PlayerID, pos mgl32.Vec3, now float64) bool {
	if !id.Valid() {
		return false
	}
	s := &r.slots[id]
	s.Active = true
	s.Position = pos
	s.UpdateTime = now
	return true
}

// SetLocal 表现层写入本地玩家的移动结果
func (r *Roster) SetLocal(id PlayerID, pos mgl32.Vec3, c Color, now float64) bool {
	if !id.Valid() {
		return false
	}
	s := &r.slots[id]
	s.Position = pos
	s.Color = c
	s.UpdateTime = now
	return true
}

func (r *Roster) get(id PlayerID) (*PlayerState, bool) {
	if !id.Valid() || !r.slots[id].Active {
		return nil, false
	}
	return &r.slots[id], true
}

// Position 槽位未激活或编号越界时返回 false，调用方应跳过绘制
func (r *Roster) Position(id PlayerID) (mgl32.Vec3, bool) {
	s, ok := r.get(id)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return s.Position, true
}

func (r *Roster) Color(id PlayerID) (Color, bool) {
	s, ok := r.get(id)
	if !ok {
		return Color{}, false
	}
	return s.Color, true
}

// Active 槽位是否代表在线玩家
func (r *Roster) Active(id PlayerID) bool {
	_, ok := r.get(id)
	return ok
}

// Age 距离该槽位最后一次更新的秒数
func (r *Roster) Age(id PlayerID, now float64) (float64, bool) {
	s, ok := r.get(id)
	if !ok {
		return 0, false
	}
	return now - s.UpdateTime, true
}

// Remotes 返回除本地玩家以外所有激活槽位
func (r *Roster) Remotes(localID PlayerID) []RemotePlayer {
	out := make([]RemotePlayer, 0, MaxPlayers)
	for i := range r.slots {
		id := PlayerID(i)
		if id == localID || !r.slots[i].Active {
			continue
		}
		out = append(out, RemotePlayer{ID: id, Position: r.slots[i].Position, Color: r.slots[i].Color})
	}
	return out
}

// Reset 所有槽位回到初始状态（未激活、零值）
func (r *Roster) Reset() {
	r.slots = [MaxPlayers]PlayerState{}
}
