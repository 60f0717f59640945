package client

import "errors"

// fakeTransport 脚本化的传输：测试往 inbox 推事件，检查 sent 中的包
type fakeTransport struct {
	address    string
	inbox      []Event
	sent       [][]byte
	reliable   []bool
	closed     int
	connectErr error
	sendErr    error
}

func (f *fakeTransport) Connect(address string) error {
	f.address = address
	return f.connectErr
}

func (f *fakeTransport) Send(data []byte, reliable bool) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, append([]byte(nil), data...))
	f.reliable = append(f.reliable, reliable)
	return nil
}

func (f *fakeTransport) Poll() (Event, bool) {
	if len(f.inbox) == 0 {
		return Event{}, false
	}
	ev := f.inbox[0]
	f.inbox = f.inbox[1:]
	return ev, true
}

func (f *fakeTransport) Close() error {
	f.closed++
	return nil
}

func (f *fakeTransport) deliver(data []byte) {
	f.inbox = append(f.inbox, Event{Type: EventReceive, Data: data})
}

func (f *fakeTransport) hangup() {
	f.inbox = append(f.inbox, Event{Type: EventDisconnect})
}

// fakeFactory 记录每次创建的传输实例
type fakeFactory struct {
	created []*fakeTransport
	err     error
}

func (ff *fakeFactory) New() (Transport, error) {
	if ff.err != nil {
		return nil, ff.err
	}
	t := &fakeTransport{}
	ff.created = append(ff.created, t)
	return t, nil
}

func (ff *fakeFactory) last() *fakeTransport {
	if len(ff.created) == 0 {
		return nil
	}
	return ff.created[len(ff.created)-1]
}

var errBoom = errors.New("boom")
