package client

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Tag 数据包首字节，标识包类型
type Tag uint8

const (
	TagAcceptPlayer Tag = 0 // server→client
	TagAddPlayer    Tag = 1 // server→client
	TagRemovePlayer Tag = 2 // server→client
	TagUpdatePlayer Tag = 3 // server→client
	TagUpdateInput  Tag = 4 // client→server
)

// 各类型包的固定长度（含首字节）
const (
	SizeAcceptPlayer = 2
	SizeAddPlayer    = 18
	SizeRemovePlayer = 2
	SizeUpdatePlayer = 18
	SizeUpdateInput  = 17
)

func (t Tag) String() string {
	switch t {
	case TagAcceptPlayer:
		return "AcceptPlayer"
	case TagAddPlayer:
		return "AddPlayer"
	case TagRemovePlayer:
		return "RemovePlayer"
	case TagUpdatePlayer:
		return "UpdatePlayer"
	case TagUpdateInput:
		return "UpdateInput"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Size 返回该类型包的固定长度；未知类型返回 false
func (t Tag) Size() (int, bool) {
	switch t {
	case TagAcceptPlayer:
		return SizeAcceptPlayer, true
	case TagAddPlayer:
		return SizeAddPlayer, true
	case TagRemovePlayer:
		return SizeRemovePlayer, true
	case TagUpdatePlayer:
		return SizeUpdatePlayer, true
	case TagUpdateInput:
		return SizeUpdateInput, true
	default:
		return 0, false
	}
}

// 协议解码错误，单包丢弃，不向上传播
var (
	ErrEmpty      = errors.New("protocol: empty packet")
	ErrTruncated  = errors.New("protocol: truncated packet")
	ErrUnknownTag = errors.New("protocol: unknown tag")
)

// Packet 解码后的数据包
type Packet interface {
	Tag() Tag
}

type AcceptPlayer struct {
	ID uint8
}

type AddPlayer struct {
	ID       uint8
	Position mgl32.Vec3
	Color    Color
}

type RemovePlayer struct {
	ID uint8
}

type UpdatePlayer struct {
	ID       uint8
	Position mgl32.Vec3
	Color    Color
}

type UpdateInput struct {
	Position mgl32.Vec3
	Color    Color
}

func (AcceptPlayer) Tag() Tag { return TagAcceptPlayer }
func (AddPlayer) Tag() Tag    { return TagAddPlayer }
func (RemovePlayer) Tag() Tag { return TagRemovePlayer }
func (UpdatePlayer) Tag() Tag { return TagUpdatePlayer }
func (UpdateInput) Tag() Tag  { return TagUpdateInput }

// EncodeUpdateInput 本地状态上报包：tag + 3×f32 + 4×u8
func EncodeUpdateInput(pos mgl32.Vec3, c Color) []byte {
	w := newWriter(SizeUpdateInput)
	w.u8(uint8(TagUpdateInput))
	w.vec3(pos)
	w.color(c)
	return w.bytes()
}

// EncodeAccept tag + id
func EncodeAccept(id uint8) []byte {
	return encodeID(TagAcceptPlayer, id)
}

// EncodeRemovePlayer tag + id
func EncodeRemovePlayer(id uint8) []byte {
	return encodeID(TagRemovePlayer, id)
}

// EncodeAddPlayer tag + id + 3×f32 + 4×u8
func EncodeAddPlayer(id uint8, pos mgl32.Vec3, c Color) []byte {
	return encodePlayer(TagAddPlayer, id, pos, c)
}

// EncodeUpdatePlayer tag + id + 3×f32 + 4×u8
func EncodeUpdatePlayer(id uint8, pos mgl32.Vec3, c Color) []byte {
	return encodePlayer(TagUpdatePlayer, id, pos, c)
}

func encodeID(tag Tag, id uint8) []byte {
	w := newWriter(SizeAcceptPlayer)
	w.u8(uint8(tag))
	w.u8(id)
	return w.bytes()
}

func encodePlayer(tag Tag, id uint8, pos mgl32.Vec3, c Color) []byte {
	w := newWriter(SizeAddPlayer)
	w.u8(uint8(tag))
	w.u8(id)
	w.vec3(pos)
	w.color(c)
	return w.bytes()
}

// Encode 按包类型编码
func Encode(p Packet) []byte {
	switch p := p.(type) {
	case AcceptPlayer:
		return EncodeAccept(p.ID)
	case AddPlayer:
		return EncodeAddPlayer(p.ID, p.Position, p.Color)
	case RemovePlayer:
		return EncodeRemovePlayer(p.ID)
	case UpdatePlayer:
		return EncodeUpdatePlayer(p.ID, p.Position, p.Color)
	case UpdateInput:
		return EncodeUpdateInput(p.Position, p.Color)
	default:
		return nil
	}
}

// Decode 解析一个数据包。先读首字节，再按类型的固定长度校验，
// 超出固定长度的尾部字节忽略。
func Decode(buf []byte) (Packet, error) {
	if len(buf) == 0 {
		return nil, ErrEmpty
	}
	tag := Tag(buf[0])
	size, ok := tag.Size()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTag, buf[0])
	}
	if len(buf) < size {
		return nil, fmt.Errorf("%w: %s wants %d bytes, got %d", ErrTruncated, tag, size, len(buf))
	}

	r := newReader(buf[:size])
	r.u8()
	var p Packet
	switch tag {
	case TagAcceptPlayer:
		p = AcceptPlayer{ID: r.u8()}
	case TagRemovePlayer:
		p = RemovePlayer{ID: r.u8()}
	case TagAddPlayer:
		id := r.u8()
		p = AddPlayer{ID: id, Position: r.vec3(), Color: r.color()}
	case TagUpdatePlayer:
		id := r.u8()
		p = UpdatePlayer{ID: id, Position: r.vec3(), Color: r.color()}
	case TagUpdateInput:
		p = UpdateInput{Position: r.vec3(), Color: r.color()}
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}
