package client

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestClient(t *testing.T, cfg Config) (*Client, *fakeFactory) {
	t.Helper()
	ff := &fakeFactory{}
	c := New(cfg, ff.New)
	if err := c.Connect("127.0.0.1"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return c, ff
}

func TestClientTickAcceptAndSend(t *testing.T) {
	c, ff := newTestClient(t, DefaultConfig())
	var acceptedID PlayerID = NoPlayer
	var acceptedAt mgl32.Vec3
	c.OnAccept = func(id PlayerID, spawn mgl32.Vec3) {
		acceptedID, acceptedAt = id, spawn
	}
	ft := ff.last()
	local := LocalState{Position: mgl32.Vec3{1, 1.7, 1}, Color: Color{9, 8, 7, 255}}

	c.Tick(0, local)
	if len(ft.sent) != 0 {
		t.Fatalf("must not send before accept")
	}

	ft.deliver(EncodeAccept(2))
	c.Tick(0.01, local)
	if acceptedID != 2 || acceptedAt != DefaultSpawn {
		t.Fatalf("unexpected accept callback %d %v", acceptedID, acceptedAt)
	}
	if pos, _ := c.Position(2); pos != DefaultSpawn {
		t.Fatalf("local slot should sit at spawn after accept, got %v", pos)
	}

	// 接受后的第一帧立即上报
	c.Tick(0.02, local)
	if len(ft.sent) != 1 {
		t.Fatalf("expected immediate send after accept, got %d", len(ft.sent))
	}
	p, err := Decode(ft.sent[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p != (UpdateInput{Position: local.Position, Color: local.Color}) {
		t.Fatalf("unexpected update %+v", p)
	}
	if pos, _ := c.Position(2); pos != local.Position {
		t.Fatalf("tick should store the local state, got %v", pos)
	}

	c.Tick(0.03, local)
	if len(ft.sent) != 1 {
		t.Fatalf("second send inside the interval")
	}
}

func TestClientRemotesAndStatus(t *testing.T) {
	c, ff := newTestClient(t, DefaultConfig())
	ft := ff.last()
	ft.deliver(EncodeAccept(0))
	ft.deliver(EncodeAddPlayer(1, mgl32.Vec3{1, 2, 3}, Color{10, 20, 30, 255}))
	c.Tick(0, LocalState{})
	c.Tick(0.01, LocalState{})

	remotes := c.Remotes()
	if len(remotes) != 1 || remotes[0].ID != 1 {
		t.Fatalf("unexpected remotes %+v", remotes)
	}
	if col, ok := c.Color(1); !ok || col != (Color{10, 20, 30, 255}) {
		t.Fatalf("unexpected color %v", col)
	}

	st := c.Status()
	if st.State != "accepted" || st.LocalID != 0 || len(st.Remotes) != 1 || st.Session == "" {
		t.Fatalf("unexpected status %+v", st)
	}

	c.SetSendInterval(100 * time.Millisecond)
	if c.Status().SendInterval != 0.1 {
		t.Fatalf("unexpected interval %v", c.Status().SendInterval)
	}
}

func TestClientDisconnectKeepsRosterByDefault(t *testing.T) {
	c, ff := newTestClient(t, DefaultConfig())
	ft := ff.last()
	ft.deliver(EncodeAccept(0))
	ft.deliver(EncodeAddPlayer(1, mgl32.Vec3{1, 2, 3}, Color{}))
	ft.hangup()
	for i := 0; i < 3; i++ {
		c.Tick(float64(i), LocalState{})
	}
	if c.IsConnected() {
		t.Fatalf("expected disconnected")
	}
	if _, ok := c.Position(1); !ok {
		t.Fatalf("remote players should survive a disconnect by default")
	}
}

func TestClientClearRosterOnDisconnect(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClearRosterOnDisconnect = true

	c, ff := newTestClient(t, cfg)
	ft := ff.last()
	ft.deliver(EncodeAccept(0))
	ft.deliver(EncodeAddPlayer(1, mgl32.Vec3{1, 2, 3}, Color{}))
	ft.hangup()
	for i := 0; i < 3; i++ {
		c.Tick(float64(i), LocalState{})
	}
	if _, ok := c.Position(1); ok {
		t.Fatalf("roster should be cleared after a transport disconnect")
	}

	_ = c.Connect("127.0.0.1")
	ff.last().deliver(EncodeAccept(0))
	ff.last().deliver(EncodeAddPlayer(3, mgl32.Vec3{}, Color{}))
	c.Tick(4, LocalState{})
	c.Tick(5, LocalState{})
	c.Disconnect()
	if _, ok := c.Position(3); ok {
		t.Fatalf("roster should be cleared after an explicit disconnect")
	}
}

func TestClientInstancesAreIndependent(t *testing.T) {
	a, ffa := newTestClient(t, DefaultConfig())
	b, _ := newTestClient(t, DefaultConfig())
	ffa.last().deliver(EncodeAccept(1))
	a.Tick(0, LocalState{})

	if !a.IsConnected() || b.IsConnected() {
		t.Fatalf("clients share state")
	}
	if a.Session == b.Session {
		t.Fatalf("expected distinct sessions")
	}
}
