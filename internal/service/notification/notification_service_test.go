package notification

import (
	"testing"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/dto/respond"
	"educhat_server/internal/model"
	"educhat_server/pkg/enum/notification/notification_kind_enum"
)

// ==================== 测试桩 ====================

type fakeNotificationRepo struct {
	rows []*model.Notification
}

func (r *fakeNotificationRepo) Create(n *model.Notification) error {
	copied := *n
	r.rows = append(r.rows, &copied)
	return nil
}

func (r *fakeNotificationRepo) FindUndelivered(recipientId string) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range r.rows {
		if n.RecipientId == recipientId && n.Delivered == 0 {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkDelivered(uuids []string) error {
	set := make(map[string]struct{}, len(uuids))
	for _, u := range uuids {
		set[u] = struct{}{}
	}
	for _, n := range r.rows {
		if _, ok := set[n.Uuid]; ok {
			n.Delivered = 1
		}
	}
	return nil
}

type fakePusher struct {
	online map[string]bool
	frames []respond.SocketFrameRespond
}

func (p *fakePusher) PushToUser(userUuid string, frame respond.SocketFrameRespond) bool {
	if !p.online[userUuid] {
		return false
	}
	p.frames = append(p.frames, frame)
	return true
}

func newTestService(online map[string]bool) (*Service, *fakeNotificationRepo, *fakePusher) {
	repo := &fakeNotificationRepo{}
	pusher := &fakePusher{online: online}
	svc := NewService(&repository.Repositories{Notification: repo})
	svc.SetPusher(pusher)
	return svc, repo, pusher
}

// ==================== 用例 ====================

func TestNotifyOnlineRecipientMarksDelivered(t *testing.T) {
	svc, repo, pusher := newTestService(map[string]bool{"U1": true})

	if err := svc.Notify("U1", notification_kind_enum.FriendRequest, map[string]string{"from": "U2"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("rows = %d", len(repo.rows))
	}
	if repo.rows[0].Delivered != 1 {
		t.Error("delivered push should mark the row")
	}
	if len(pusher.frames) != 1 || pusher.frames[0].Event != notification_kind_enum.FriendRequest {
		t.Errorf("frames = %+v", pusher.frames)
	}
}

func TestNotifyOfflineRecipientStaysUndelivered(t *testing.T) {
	svc, repo, pusher := newTestService(map[string]bool{})

	if err := svc.Notify("U1", notification_kind_enum.FriendAccepted, nil); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	// 先落库再推送：推不动也不丢
	if len(repo.rows) != 1 || repo.rows[0].Delivered != 0 {
		t.Errorf("rows = %+v", repo.rows)
	}
	if len(pusher.frames) != 0 {
		t.Errorf("offline recipient received frames: %+v", pusher.frames)
	}
}

func TestNotifyOfflineMessagePersistsPerRecipient(t *testing.T) {
	svc, repo, pusher := newTestService(map[string]bool{"U1": true})

	msg := respond.MessageRespond{Uuid: 42, Content: "hello"}
	svc.NotifyOfflineMessage([]string{"U1", "U2"}, msg)

	if len(repo.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(repo.rows))
	}
	for _, n := range repo.rows {
		if n.Kind != notification_kind_enum.NewMessage {
			t.Errorf("Kind = %s", n.Kind)
		}
		if n.Delivered != 0 {
			t.Error("offline digest should stay undelivered")
		}
	}
	// 调用方已判定离线，这里不推送
	if len(pusher.frames) != 0 {
		t.Errorf("frames = %+v", pusher.frames)
	}
}

func TestPullUndeliveredMarksAndReturns(t *testing.T) {
	svc, _, _ := newTestService(map[string]bool{})
	if err := svc.Notify("U1", notification_kind_enum.FriendRequest, map[string]string{"from": "U2"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Notify("U1", notification_kind_enum.FriendAccepted, nil); err != nil {
		t.Fatal(err)
	}
	if err := svc.Notify("U2", notification_kind_enum.FriendRequest, nil); err != nil {
		t.Fatal(err)
	}

	list, err := svc.PullUndelivered("U1")
	if err != nil {
		t.Fatalf("PullUndelivered: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d, want 2", len(list))
	}

	// 再拉为空，U2 的通知不受影响
	again, err := svc.PullUndelivered("U1")
	if err != nil || len(again) != 0 {
		t.Errorf("second pull = %v, %v", again, err)
	}
	other, err := svc.PullUndelivered("U2")
	if err != nil || len(other) != 1 {
		t.Errorf("U2 pull = %v, %v", other, err)
	}
}
