package message

import (
	"testing"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/dto/request"
	"educhat_server/internal/model"
	"educhat_server/pkg/constants"
	"educhat_server/pkg/enum/message/target_type_enum"
	"educhat_server/pkg/errorx"
)

// ==================== 测试桩 ====================

type fakeMemberRepo struct {
	members map[string]bool // room|user
}

func (r *fakeMemberRepo) Find(roomUuid, userUuid string) (*model.RoomMember, error) {
	if r.members[roomUuid+"|"+userUuid] {
		return &model.RoomMember{RoomUuid: roomUuid, UserUuid: userUuid}, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "成员不存在")
}

func (r *fakeMemberRepo) FindByRoomUuid(roomUuid string) ([]model.RoomMember, error) {
	return nil, nil
}

func (r *fakeMemberRepo) FindRoomUuidsByUser(userUuid string) ([]string, error) { return nil, nil }
func (r *fakeMemberRepo) Create(m *model.RoomMember) error                      { return nil }
func (r *fakeMemberRepo) UpdateRole(roomUuid, userUuid string, role int8) error { return nil }
func (r *fakeMemberRepo) Delete(roomUuid, userUuid string) error                { return nil }

type fakeConversationRepo struct {
	convs map[string]*model.PrivateConversation
}

func (r *fakeConversationRepo) FindByUuid(uuid string) (*model.PrivateConversation, error) {
	if c, ok := r.convs[uuid]; ok {
		return c, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}

func (r *fakeConversationRepo) FindByPair(oneId, twoId string) (*model.PrivateConversation, error) {
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}

func (r *fakeConversationRepo) FindByUser(userId string) ([]model.PrivateConversation, error) {
	return nil, nil
}

func (r *fakeConversationRepo) Create(c *model.PrivateConversation) error { return nil }
func (r *fakeConversationRepo) UpdateLastMessage(uuid string, messageId int64) error {
	return nil
}

// fakeMessageRepo 记录查询参数，按游标返回预置消息
type fakeMessageRepo struct {
	byRoom    map[string][]model.Message
	byConv    map[string][]model.Message
	lastLimit int
}

func (r *fakeMessageRepo) Create(m *model.Message) error { return nil }

func (r *fakeMessageRepo) FindByUuid(uuid int64) (*model.Message, error) {
	return nil, errorx.New(errorx.CodeNotFound, "消息不存在")
}

func (r *fakeMessageRepo) FindByRoomUuid(roomUuid string, before int64, limit int) ([]model.Message, error) {
	return r.page(r.byRoom[roomUuid], before, limit)
}

func (r *fakeMessageRepo) FindByConversationUuid(conversationUuid string, before int64, limit int) ([]model.Message, error) {
	return r.page(r.byConv[conversationUuid], before, limit)
}

func (r *fakeMessageRepo) UpdateReadBy(uuid int64, readBy string) error { return nil }

// page 模拟真实仓库的游标语义：uuid < before，升序返回最后 limit 条
func (r *fakeMessageRepo) page(all []model.Message, before int64, limit int) ([]model.Message, error) {
	r.lastLimit = limit
	var filtered []model.Message
	for _, m := range all {
		if before == 0 || m.Uuid < before {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered, nil
}

func newTestService() (*Service, *fakeMessageRepo) {
	msgRepo := &fakeMessageRepo{
		byRoom: map[string][]model.Message{
			"R1": {
				{Uuid: 101, RoomUuid: "R1", SendId: "U1", Content: "one"},
				{Uuid: 102, RoomUuid: "R1", SendId: "U2", Content: "two"},
				{Uuid: 103, RoomUuid: "R1", SendId: "U1", Content: "three"},
			},
		},
		byConv: map[string][]model.Message{
			"C1": {{Uuid: 201, ConversationUuid: "C1", SendId: "U1", Content: "hi"}},
		},
	}
	repos := &repository.Repositories{
		RoomMember: &fakeMemberRepo{members: map[string]bool{"R1|U1": true, "R1|U2": true}},
		Conversation: &fakeConversationRepo{convs: map[string]*model.PrivateConversation{
			"C1": {Uuid: "C1", ParticipantOneId: "U1", ParticipantTwoId: "U2"},
		}},
		Message: msgRepo,
	}
	return NewService(repos, nil), msgRepo
}

// ==================== 用例 ====================

func TestGetMessageListRoomMemberOnly(t *testing.T) {
	svc, _ := newTestService()
	req := &request.GetMessageListRequest{TargetType: target_type_enum.Room, TargetId: "R1"}

	list, err := svc.GetMessageList("U1", req)
	if err != nil {
		t.Fatalf("GetMessageList: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list = %d, want 3", len(list))
	}
	// 升序返回
	if list[0].Uuid != 101 || list[2].Uuid != 103 {
		t.Errorf("order = %d..%d", list[0].Uuid, list[len(list)-1].Uuid)
	}
	if list[0].TargetType != target_type_enum.Room || list[0].TargetId != "R1" {
		t.Errorf("target = %s/%s", list[0].TargetType, list[0].TargetId)
	}

	if _, err := svc.GetMessageList("U_outsider", req); !errorx.IsForbidden(err) {
		t.Errorf("non-member pull: %v", err)
	}
}

func TestGetMessageListConversationParticipantOnly(t *testing.T) {
	svc, _ := newTestService()
	req := &request.GetMessageListRequest{TargetType: target_type_enum.Conversation, TargetId: "C1"}

	list, err := svc.GetMessageList("U2", req)
	if err != nil || len(list) != 1 {
		t.Fatalf("GetMessageList = %v, %v", list, err)
	}
	if _, err := svc.GetMessageList("U3", req); !errorx.IsForbidden(err) {
		t.Errorf("non-participant pull: %v", err)
	}
	req.TargetId = "C_missing"
	if _, err := svc.GetMessageList("U1", req); !errorx.IsNotFound(err) {
		t.Errorf("missing conversation: %v", err)
	}
}

func TestGetMessageListRejectsUnknownTargetType(t *testing.T) {
	svc, _ := newTestService()
	req := &request.GetMessageListRequest{TargetType: "channel", TargetId: "R1"}
	if _, err := svc.GetMessageList("U1", req); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Errorf("unknown target type: %v", err)
	}
}

func TestGetMessageListClampsLimit(t *testing.T) {
	svc, repo := newTestService()

	// 超限和非法值都回落到上限
	for _, limit := range []int{0, -1, constants.HISTORY_PULL_LIMIT + 1} {
		req := &request.GetMessageListRequest{TargetType: target_type_enum.Room, TargetId: "R1", Limit: limit}
		if _, err := svc.GetMessageList("U1", req); err != nil {
			t.Fatalf("limit %d: %v", limit, err)
		}
		if repo.lastLimit != constants.HISTORY_PULL_LIMIT {
			t.Errorf("limit %d passed through as %d", limit, repo.lastLimit)
		}
	}

	req := &request.GetMessageListRequest{TargetType: target_type_enum.Room, TargetId: "R1", Limit: 2}
	list, err := svc.GetMessageList("U1", req)
	if err != nil || len(list) != 2 {
		t.Fatalf("limited pull = %d, %v", len(list), err)
	}
	// 拿到的是最新两条
	if list[0].Uuid != 102 || list[1].Uuid != 103 {
		t.Errorf("page = %d,%d", list[0].Uuid, list[1].Uuid)
	}
}

func TestGetMessageListBeforeCursor(t *testing.T) {
	svc, _ := newTestService()
	req := &request.GetMessageListRequest{
		TargetType: target_type_enum.Room, TargetId: "R1", Before: 103, Limit: 10,
	}
	list, err := svc.GetMessageList("U1", req)
	if err != nil {
		t.Fatalf("GetMessageList: %v", err)
	}
	if len(list) != 2 || list[1].Uuid != 102 {
		t.Errorf("page before 103 = %+v", list)
	}
}

func TestToMessageRespondReadBy(t *testing.T) {
	m := &model.Message{Uuid: 1, RoomUuid: "R1", ReadBy: `["U1","U2"]`}
	resp := ToMessageRespond(m, target_type_enum.Room)
	if len(resp.ReadBy) != 2 {
		t.Errorf("ReadBy = %v", resp.ReadBy)
	}

	empty := ToMessageRespond(&model.Message{Uuid: 2, RoomUuid: "R1"}, target_type_enum.Room)
	if empty.ReadBy != nil {
		t.Errorf("empty ReadBy = %v", empty.ReadBy)
	}
}
