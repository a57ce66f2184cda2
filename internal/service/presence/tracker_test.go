package presence

import (
	"sort"
	"sync"
	"testing"
	"time"
)

// collectAnnouncer 线程安全地收集上下线事件
type collectAnnouncer struct {
	mu     sync.Mutex
	events []string
}

func (a *collectAnnouncer) fn(userUuid string, online bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	state := "offline"
	if online {
		state = "online"
	}
	a.events = append(a.events, userUuid+":"+state)
}

func (a *collectAnnouncer) snapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	copy(out, a.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestOnlineIsDerivedFromConnCount(t *testing.T) {
	tr := NewTracker(0, nil)

	if tr.IsOnline("U1") {
		t.Error("user should start offline")
	}
	tr.AddConn("U1", "c1")
	if !tr.IsOnline("U1") {
		t.Error("user with one conn should be online")
	}
	tr.AddConn("U1", "c2")
	tr.RemoveConn("U1", "c1")
	if !tr.IsOnline("U1") {
		t.Error("user with remaining conn should stay online")
	}
	tr.RemoveConn("U1", "c2")
	if tr.IsOnline("U1") {
		t.Error("user with zero conns should be offline")
	}
}

func TestAddConnIdempotent(t *testing.T) {
	tr := NewTracker(0, nil)
	tr.AddConn("U1", "c1")
	tr.AddConn("U1", "c1")
	if got := tr.ConnCount("U1"); got != 1 {
		t.Errorf("ConnCount = %d, want 1", got)
	}
}

func TestConnectionsOfSnapshot(t *testing.T) {
	tr := NewTracker(0, nil)
	tr.AddConn("U1", "c1")
	tr.AddConn("U1", "c2")

	conns := tr.ConnectionsOf("U1")
	sort.Strings(conns)
	if len(conns) != 2 || conns[0] != "c1" || conns[1] != "c2" {
		t.Errorf("ConnectionsOf = %v", conns)
	}
	if tr.ConnectionsOf("U2") != nil {
		t.Error("unknown user should have nil connections")
	}
}

func TestOnlineAmong(t *testing.T) {
	tr := NewTracker(0, nil)
	tr.AddConn("U1", "c1")
	tr.AddConn("U3", "c3")

	got := tr.OnlineAmong([]string{"U1", "U2", "U3", "U4"})
	sort.Strings(got)
	if len(got) != 2 || got[0] != "U1" || got[1] != "U3" {
		t.Errorf("OnlineAmong = %v", got)
	}
}

func TestAnnounceTransitionsOnly(t *testing.T) {
	ann := &collectAnnouncer{}
	tr := NewTracker(0, nil)
	tr.SetAnnouncer(ann.fn)

	tr.AddConn("U1", "c1")
	waitFor(t, func() bool { return len(ann.snapshot()) == 1 })
	// 第二条连接不产生新事件
	tr.AddConn("U1", "c2")
	tr.RemoveConn("U1", "c2")
	tr.RemoveConn("U1", "c1")
	waitFor(t, func() bool { return len(ann.snapshot()) == 2 })

	events := ann.snapshot()
	if events[0] != "U1:online" || events[1] != "U1:offline" {
		t.Errorf("events = %v", events)
	}
}

func TestDebounceSuppressesFlapping(t *testing.T) {
	ann := &collectAnnouncer{}
	tr := NewTracker(50*time.Millisecond, nil)
	tr.SetAnnouncer(ann.fn)

	// 防抖窗口内闪断：加上又立即断开，不应有任何事件
	tr.AddConn("U1", "c1")
	tr.RemoveConn("U1", "c1")
	time.Sleep(150 * time.Millisecond)
	if got := ann.snapshot(); len(got) != 0 {
		t.Errorf("flapping within window produced events: %v", got)
	}

	// 稳定上线后才公布
	tr.AddConn("U1", "c2")
	waitFor(t, func() bool { return len(ann.snapshot()) == 1 })
	if got := ann.snapshot(); got[0] != "U1:online" {
		t.Errorf("events = %v", got)
	}

	// 断线重连穿过窗口：状态没变，不应追加事件
	tr.RemoveConn("U1", "c2")
	tr.AddConn("U1", "c3")
	time.Sleep(150 * time.Millisecond)
	if got := ann.snapshot(); len(got) != 1 {
		t.Errorf("reconnect within window produced events: %v", got)
	}
}
