package client

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func acceptedConnection(t *testing.T, id uint8) (*Connection, *fakeTransport, *Roster) {
	t.Helper()
	ff := &fakeFactory{}
	c := NewConnection(ff.New, DefaultSpawn, nil, nil)
	if err := c.Connect("127.0.0.1"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	roster := NewRoster()
	ft := ff.last()
	ft.deliver(EncodeAccept(id))
	c.PollOnce(roster, 0)
	if !c.IsConnected() {
		t.Fatalf("expected accepted connection")
	}
	return c, ft, roster
}

func TestSchedulerRateLimit(t *testing.T) {
	c, ft, _ := acceptedConnection(t, 0)
	s := NewScheduler(50*time.Millisecond, true)
	local := LocalState{Position: mgl32.Vec3{1, 2, 3}, Color: Color{1, 2, 3, 4}}

	for i := 0; i < 1000; i++ {
		if _, err := s.Tick(float64(i)/1000, c, local); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if n := len(ft.sent); n < 19 || n > 21 {
		t.Fatalf("expected 19..21 updates, got %d", n)
	}
	for _, b := range ft.sent {
		p, err := Decode(b)
		if err != nil {
			t.Fatalf("decode sent packet: %v", err)
		}
		if p != (UpdateInput{Position: local.Position, Color: local.Color}) {
			t.Fatalf("unexpected packet %+v", p)
		}
	}
	if !ft.reliable[0] {
		t.Fatalf("expected reliable sends")
	}
	if got := c.metrics.UpdatesSent; got != int64(len(ft.sent)) {
		t.Fatalf("metrics mismatch: %d vs %d", got, len(ft.sent))
	}
}

func TestSchedulerOnlySendsWhenAccepted(t *testing.T) {
	ff := &fakeFactory{}
	c := NewConnection(ff.New, DefaultSpawn, nil, nil)
	s := NewScheduler(DefaultSendInterval, false)

	if sent, _ := s.Tick(1, c, LocalState{}); sent {
		t.Fatalf("should not send while disconnected")
	}
	_ = c.Connect("127.0.0.1")
	if sent, _ := s.Tick(2, c, LocalState{}); sent {
		t.Fatalf("should not send while connecting")
	}
	if len(ff.last().sent) != 0 {
		t.Fatalf("unexpected sends: %d", len(ff.last().sent))
	}
}

func TestSchedulerResetAndErrors(t *testing.T) {
	c, ft, _ := acceptedConnection(t, 1)
	s := NewScheduler(time.Second, true)

	if sent, _ := s.Tick(10, c, LocalState{}); !sent {
		t.Fatalf("first tick should send")
	}
	if sent, _ := s.Tick(10.5, c, LocalState{}); sent {
		t.Fatalf("second tick inside the interval should not send")
	}
	s.Reset()
	if sent, _ := s.Tick(10.6, c, LocalState{}); !sent {
		t.Fatalf("tick after reset should send")
	}

	ft.sendErr = errBoom
	if _, err := s.Tick(20, c, LocalState{}); !errors.Is(err, errBoom) {
		t.Fatalf("expected send error, got %v", err)
	}
	if c.metrics.SendErrors != 1 {
		t.Fatalf("expected one send error, got %d", c.metrics.SendErrors)
	}
	ft.sendErr = nil
	if sent, _ := s.Tick(20.5, c, LocalState{}); sent {
		t.Fatalf("failed send should still advance the timer")
	}
}

func TestSchedulerIntervalDefaults(t *testing.T) {
	s := NewScheduler(0, true)
	if s.Interval() != DefaultSendInterval.Seconds() {
		t.Fatalf("unexpected default interval %v", s.Interval())
	}
	s.SetInterval(200 * time.Millisecond)
	if s.Interval() != 0.2 {
		t.Fatalf("unexpected interval %v", s.Interval())
	}
}
