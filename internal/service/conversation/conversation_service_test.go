package conversation

import (
	"testing"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/model"
	"educhat_server/pkg/errorx"
)

// ==================== 测试桩 ====================

type fakeUserRepo struct {
	users map[string]*model.UserInfo
}

func (r *fakeUserRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	if u, ok := r.users[uuid]; ok {
		return u, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "用户不存在")
}

func (r *fakeUserRepo) FindByUuids(uuids []string) ([]model.UserInfo, error) {
	out := make([]model.UserInfo, 0, len(uuids))
	for _, uuid := range uuids {
		if u, ok := r.users[uuid]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeConversationRepo struct {
	byPair map[string]*model.PrivateConversation
	// raceWith 模拟并发插入：Create 返回冲突前先把这条记录写入
	raceWith *model.PrivateConversation
}

func convPairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (r *fakeConversationRepo) FindByUuid(uuid string) (*model.PrivateConversation, error) {
	for _, c := range r.byPair {
		if c.Uuid == uuid {
			copied := *c
			return &copied, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}

func (r *fakeConversationRepo) FindByPair(oneId, twoId string) (*model.PrivateConversation, error) {
	if c, ok := r.byPair[convPairKey(oneId, twoId)]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}

func (r *fakeConversationRepo) FindByUser(userId string) ([]model.PrivateConversation, error) {
	var out []model.PrivateConversation
	for _, c := range r.byPair {
		if c.Involves(userId) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) Create(c *model.PrivateConversation) error {
	key := convPairKey(c.ParticipantOneId, c.ParticipantTwoId)
	if r.raceWith != nil {
		r.byPair[convPairKey(r.raceWith.ParticipantOneId, r.raceWith.ParticipantTwoId)] = r.raceWith
		r.raceWith = nil
		return errorx.New(errorx.CodeConflict, "会话已存在")
	}
	if _, ok := r.byPair[key]; ok {
		return errorx.New(errorx.CodeConflict, "会话已存在")
	}
	copied := *c
	r.byPair[key] = &copied
	return nil
}

func (r *fakeConversationRepo) UpdateLastMessage(uuid string, messageId int64) error {
	for _, c := range r.byPair {
		if c.Uuid == uuid {
			c.LastMessageId = messageId
			return nil
		}
	}
	return errorx.New(errorx.CodeNotFound, "会话不存在")
}

func newTestService() (*Service, *fakeConversationRepo) {
	convRepo := &fakeConversationRepo{byPair: make(map[string]*model.PrivateConversation)}
	userRepo := &fakeUserRepo{users: map[string]*model.UserInfo{
		"U_alice": {Uuid: "U_alice", Nickname: "alice"},
		"U_bob":   {Uuid: "U_bob", Nickname: "bob"},
	}}
	return NewService(&repository.Repositories{User: userRepo, Conversation: convRepo}), convRepo
}

// ==================== 用例 ====================

func TestDeriveUuidIsOrderIndependent(t *testing.T) {
	a := DeriveUuid("U_alice", "U_bob")
	b := DeriveUuid("U_bob", "U_alice")
	if a != b {
		t.Errorf("DeriveUuid not order independent: %s vs %s", a, b)
	}
	if len(a) != 20 || a[0] != 'C' {
		t.Errorf("uuid format = %q, want C + 19 chars", a)
	}
	// 不同用户对派生不同ID
	if a == DeriveUuid("U_alice", "U_carol") {
		t.Error("distinct pairs should derive distinct uuids")
	}
}

func TestDeriveUuidIsDeterministic(t *testing.T) {
	first := DeriveUuid("U_alice", "U_bob")
	for i := 0; i < 3; i++ {
		if got := DeriveUuid("U_alice", "U_bob"); got != first {
			t.Fatalf("DeriveUuid not deterministic: %s vs %s", got, first)
		}
	}
}

func TestGetOrCreateCreatesNormalizedPair(t *testing.T) {
	svc, repo := newTestService()

	conv, err := svc.GetOrCreate("U_bob", "U_alice")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if conv.ParticipantOneId != "U_alice" || conv.ParticipantTwoId != "U_bob" {
		t.Errorf("participants = %s/%s, want normalized order", conv.ParticipantOneId, conv.ParticipantTwoId)
	}
	if conv.Uuid != DeriveUuid("U_alice", "U_bob") {
		t.Errorf("Uuid = %s", conv.Uuid)
	}

	// 反方向再次解析命中同一会话
	again, err := svc.GetOrCreate("U_alice", "U_bob")
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if again.Uuid != conv.Uuid {
		t.Errorf("resolved different conversation: %s vs %s", again.Uuid, conv.Uuid)
	}
	if len(repo.byPair) != 1 {
		t.Errorf("conversations = %d, want 1", len(repo.byPair))
	}
}

func TestGetOrCreateRejectsSelfAndUnknownPeer(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.GetOrCreate("U_alice", "U_alice"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Errorf("self conversation: %v", err)
	}
	if _, err := svc.GetOrCreate("U_alice", "U_ghost"); !errorx.IsNotFound(err) {
		t.Errorf("unknown peer: %v", err)
	}
}

func TestGetOrCreateSurvivesCreateRace(t *testing.T) {
	svc, repo := newTestService()

	// 另一实例抢先插入，Create 撞唯一索引后应重查并返回已存在的会话
	winner := &model.PrivateConversation{
		Uuid:             DeriveUuid("U_alice", "U_bob"),
		ParticipantOneId: "U_alice",
		ParticipantTwoId: "U_bob",
	}
	repo.raceWith = winner

	conv, err := svc.GetOrCreate("U_alice", "U_bob")
	if err != nil {
		t.Fatalf("GetOrCreate under race: %v", err)
	}
	if conv.Uuid != winner.Uuid {
		t.Errorf("Uuid = %s, want winner's %s", conv.Uuid, winner.Uuid)
	}
}

func TestGetRequiresParticipant(t *testing.T) {
	svc, _ := newTestService()
	created, err := svc.GetOrCreate("U_alice", "U_bob")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get("U_alice", created.Uuid); err != nil {
		t.Errorf("participant Get: %v", err)
	}
	if _, err := svc.Get("U_carol", created.Uuid); !errorx.IsForbidden(err) {
		t.Errorf("non-participant Get: %v", err)
	}
	if _, err := svc.Get("U_alice", "C_missing"); !errorx.IsNotFound(err) {
		t.Errorf("missing conversation: %v", err)
	}
}

func TestListForUserDecoratesPeer(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.GetOrCreate("U_alice", "U_bob"); err != nil {
		t.Fatal(err)
	}

	list, err := svc.ListForUser("U_alice")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %d items", len(list))
	}
	if list[0].PeerId != "U_bob" || list[0].PeerNickname != "bob" {
		t.Errorf("peer = %s/%s", list[0].PeerId, list[0].PeerNickname)
	}

	empty, err := svc.ListForUser("U_carol")
	if err != nil || len(empty) != 0 {
		t.Errorf("ListForUser for stranger = %v, %v", empty, err)
	}
}
