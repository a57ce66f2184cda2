package friendship

import (
	"testing"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/model"
	"educhat_server/pkg/enum/friendship/friendship_status_enum"
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

type fakeFriendshipRepo struct {
	rows map[string]*model.Friendship // key: one|two
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (r *fakeFriendshipRepo) FindByPair(one, two string) (*model.Friendship, error) {
	if f, ok := r.rows[pairKey(one, two)]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "关系不存在")
}

func (r *fakeFriendshipRepo) FindAcceptedByUser(userId string) ([]model.Friendship, error) {
	var out []model.Friendship
	for _, f := range r.rows {
		if f.Involves(userId) && f.Status == friendship_status_enum.Accepted {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFriendshipRepo) FindPendingForAddressee(userId string) ([]model.Friendship, error) {
	var out []model.Friendship
	for _, f := range r.rows {
		if f.Involves(userId) && f.Status == friendship_status_enum.Pending && f.RequesterId != userId {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFriendshipRepo) FindPendingForRequester(userId string) ([]model.Friendship, error) {
	var out []model.Friendship
	for _, f := range r.rows {
		if f.Status == friendship_status_enum.Pending && f.RequesterId == userId {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFriendshipRepo) Create(f *model.Friendship) error {
	key := pairKey(f.UserOneId, f.UserTwoId)
	if _, ok := r.rows[key]; ok {
		return errorx.New(errorx.CodeConflict, "关系已存在")
	}
	copied := *f
	r.rows[key] = &copied
	return nil
}

func (r *fakeFriendshipRepo) Update(f *model.Friendship) error {
	copied := *f
	r.rows[pairKey(f.UserOneId, f.UserTwoId)] = &copied
	return nil
}

func (r *fakeFriendshipRepo) Delete(f *model.Friendship) error {
	delete(r.rows, pairKey(f.UserOneId, f.UserTwoId))
	return nil
}

type recordNotifier struct {
	events []string
}

func (n *recordNotifier) Notify(recipientId, kind string, _ interface{}) error {
	n.events = append(n.events, recipientId+":"+kind)
	return nil
}

func newTestService() (*Service, *fakeFriendshipRepo, *recordNotifier) {
	friendRepo := &fakeFriendshipRepo{rows: make(map[string]*model.Friendship)}
	userRepo := &fakeUserRepo{users: map[string]*model.UserInfo{
		"U_alice": {Uuid: "U_alice", Nickname: "alice"},
		"U_bob":   {Uuid: "U_bob", Nickname: "bob"},
		"U_carol": {Uuid: "U_carol", Nickname: "carol"},
	}}
	notifier := &recordNotifier{}
	repos := &repository.Repositories{User: userRepo, Friendship: friendRepo}
	return NewService(repos, nil, notifier, nil), friendRepo, notifier
}

// ==================== 用例 ====================

func TestSendRequestCreatesPending(t *testing.T) {
	svc, repo, notifier := newTestService()

	f, err := svc.SendRequest("U_alice", "U_bob", "hi")
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if f.Status != friendship_status_enum.Pending {
		t.Errorf("Status = %d, want pending", f.Status)
	}
	if f.RequesterId != "U_alice" || f.AddresseeId() != "U_bob" {
		t.Errorf("requester/addressee = %s/%s", f.RequesterId, f.AddresseeId())
	}
	// 无序对归一化
	if f.UserOneId > f.UserTwoId {
		t.Error("pair not normalized")
	}
	if len(repo.rows) != 1 {
		t.Errorf("rows = %d", len(repo.rows))
	}
	if len(notifier.events) != 1 || notifier.events[0] != "U_bob:friend_request" {
		t.Errorf("notifier events = %v", notifier.events)
	}
}

func TestSendRequestRejectsSelfAndUnknown(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.SendRequest("U_alice", "U_alice", ""); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Errorf("self request: %v", err)
	}
	if _, err := svc.SendRequest("U_alice", "U_ghost", ""); !errorx.IsNotFound(err) {
		t.Errorf("unknown addressee: %v", err)
	}
}

func TestSendRequestDuplicateConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.SendRequest("U_alice", "U_bob", ""); err != nil {
		t.Fatal(err)
	}

	// 同向重复
	if _, err := svc.SendRequest("U_alice", "U_bob", ""); !errorx.IsConflict(err) {
		t.Errorf("duplicate request: %v", err)
	}
	// 反向：对方已有待处理申请
	if _, err := svc.SendRequest("U_bob", "U_alice", ""); !errorx.IsConflict(err) {
		t.Errorf("reverse request: %v", err)
	}
}

func TestRespondAccept(t *testing.T) {
	svc, _, notifier := newTestService()
	if _, err := svc.SendRequest("U_alice", "U_bob", ""); err != nil {
		t.Fatal(err)
	}

	f, err := svc.Respond("U_bob", "U_alice", true)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if f.Status != friendship_status_enum.Accepted {
		t.Errorf("Status = %d, want accepted", f.Status)
	}
	if !f.RespondedAt.Valid {
		t.Error("RespondedAt should be set")
	}

	friends, err := svc.AreFriends("U_alice", "U_bob")
	if err != nil || !friends {
		t.Errorf("AreFriends = %v, %v", friends, err)
	}
	// 已是好友后再次申请冲突
	if _, err := svc.SendRequest("U_alice", "U_bob", ""); !errorx.IsConflict(err) {
		t.Errorf("request after accepted: %v", err)
	}
	if notifier.events[len(notifier.events)-1] != "U_alice:friend_accepted" {
		t.Errorf("notifier events = %v", notifier.events)
	}
}

func TestRespondOnlyByAddressee(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.SendRequest("U_alice", "U_bob", ""); err != nil {
		t.Fatal(err)
	}

	// 申请方自己处理：禁止而不是未找到
	if _, err := svc.Respond("U_alice", "U_bob", true); !errorx.IsForbidden(err) {
		t.Errorf("requester responding: %v", err)
	}
	// 无关第三方同样拿不到这条申请
	if _, err := svc.Respond("U_carol", "U_alice", true); !errorx.IsNotFound(err) {
		t.Errorf("stranger responding: %v", err)
	}
}

func TestDeclinedAllowsReRequest(t *testing.T) {
	svc, repo, _ := newTestService()
	if _, err := svc.SendRequest("U_alice", "U_bob", "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Respond("U_bob", "U_alice", false); err != nil {
		t.Fatal(err)
	}

	// 被拒后可以重新申请，复用同一条记录
	f, err := svc.SendRequest("U_alice", "U_bob", "second")
	if err != nil {
		t.Fatalf("re-request after declined: %v", err)
	}
	if f.Status != friendship_status_enum.Pending || f.Message != "second" {
		t.Errorf("reused row = %+v", f)
	}
	if len(repo.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(repo.rows))
	}
	// 反方向也可以重新发起
	if _, err := svc.Respond("U_bob", "U_alice", false); err != nil {
		t.Fatal(err)
	}
	f, err = svc.SendRequest("U_bob", "U_alice", "third")
	if err != nil {
		t.Fatalf("reverse re-request: %v", err)
	}
	if f.RequesterId != "U_bob" {
		t.Errorf("RequesterId = %s, want U_bob", f.RequesterId)
	}
}

func TestCancelRequest(t *testing.T) {
	svc, repo, _ := newTestService()
	if _, err := svc.SendRequest("U_alice", "U_bob", ""); err != nil {
		t.Fatal(err)
	}

	// 被申请方不能撤回
	if err := svc.CancelRequest("U_bob", "U_alice"); !errorx.IsForbidden(err) {
		t.Errorf("addressee cancel: %v", err)
	}
	if err := svc.CancelRequest("U_alice", "U_bob"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Error("row should be deleted, pair back to none")
	}
}

func TestBlockOverridesAnyState(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.SendRequest("U_alice", "U_bob", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Respond("U_bob", "U_alice", true); err != nil {
		t.Fatal(err)
	}

	f, err := svc.Block("U_alice", "U_bob")
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if f.Status != friendship_status_enum.Blocked || f.BlockerId != "U_alice" {
		t.Errorf("blocked row = %+v", f)
	}

	// 拉黑后不再是好友，也不能再申请
	if friends, _ := svc.AreFriends("U_alice", "U_bob"); friends {
		t.Error("blocked pair should not be friends")
	}
	if _, err := svc.SendRequest("U_bob", "U_alice", ""); !errorx.IsForbidden(err) {
		t.Errorf("request to blocked pair: %v", err)
	}
	// 重复拉黑幂等
	if _, err := svc.Block("U_alice", "U_bob"); err != nil {
		t.Errorf("re-block: %v", err)
	}
	// 被拉黑方不能反向操作
	if _, err := svc.Block("U_bob", "U_alice"); !errorx.IsForbidden(err) {
		t.Errorf("block by blocked party: %v", err)
	}
}

func TestBlockWithoutExistingRelation(t *testing.T) {
	svc, repo, _ := newTestService()

	f, err := svc.Block("U_alice", "U_carol")
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if f.Status != friendship_status_enum.Blocked {
		t.Errorf("Status = %d", f.Status)
	}
	if len(repo.rows) != 1 {
		t.Errorf("rows = %d", len(repo.rows))
	}
}

func TestUnblockOnlyByBlocker(t *testing.T) {
	svc, repo, _ := newTestService()
	if _, err := svc.Block("U_alice", "U_bob"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Unblock("U_bob", "U_alice"); !errorx.IsForbidden(err) {
		t.Errorf("unblock by non-blocker: %v", err)
	}
	if err := svc.Unblock("U_alice", "U_bob"); err != nil {
		t.Fatalf("Unblock: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Error("row should be deleted, pair back to none")
	}
	// 解除后可以重新发起申请
	if _, err := svc.SendRequest("U_bob", "U_alice", ""); err != nil {
		t.Errorf("request after unblock: %v", err)
	}
}

func TestUnblockNotBlockedConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.SendRequest("U_alice", "U_bob", ""); err != nil {
		t.Fatal(err)
	}
	if err := svc.Unblock("U_alice", "U_bob"); !errorx.IsConflict(err) {
		t.Errorf("unblock pending pair: %v", err)
	}
}

func TestFriendIdsAndPendingLists(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.SendRequest("U_alice", "U_bob", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Respond("U_bob", "U_alice", true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendRequest("U_alice", "U_carol", "hello"); err != nil {
		t.Fatal(err)
	}

	ids, err := svc.FriendIdsOf("U_alice")
	if err != nil || len(ids) != 1 || ids[0] != "U_bob" {
		t.Errorf("FriendIdsOf = %v, %v", ids, err)
	}

	incoming, err := svc.ListPendingIncoming("U_carol")
	if err != nil || len(incoming) != 1 || incoming[0].RequesterId != "U_alice" {
		t.Errorf("incoming = %+v, %v", incoming, err)
	}
	outgoing, err := svc.ListPendingOutgoing("U_alice")
	if err != nil || len(outgoing) != 1 || outgoing[0].AddresseeId != "U_carol" {
		t.Errorf("outgoing = %+v, %v", outgoing, err)
	}
}
