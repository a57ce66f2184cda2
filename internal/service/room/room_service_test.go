package room

import (
	"testing"

	"educhat_server/internal/dao/mysql/repository"
	"educhat_server/internal/model"
	"educhat_server/pkg/enum/room/room_role_enum"
	"educhat_server/pkg/enum/room/room_type_enum"
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

type fakeRoomRepo struct {
	rooms map[string]*model.ChatRoom
}

func (r *fakeRoomRepo) FindByUuid(uuid string) (*model.ChatRoom, error) {
	if room, ok := r.rooms[uuid]; ok {
		copied := *room
		return &copied, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "聊天室不存在")
}

func (r *fakeRoomRepo) FindByUuids(uuids []string) ([]model.ChatRoom, error) {
	out := make([]model.ChatRoom, 0, len(uuids))
	for _, uuid := range uuids {
		if room, ok := r.rooms[uuid]; ok {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *fakeRoomRepo) Create(room *model.ChatRoom) error {
	copied := *room
	r.rooms[room.Uuid] = &copied
	return nil
}

func (r *fakeRoomRepo) UpdateLastMessage(uuid string, messageId int64) error {
	if room, ok := r.rooms[uuid]; ok {
		room.LastMessageId = messageId
		return nil
	}
	return errorx.New(errorx.CodeNotFound, "聊天室不存在")
}

type fakeMemberRepo struct {
	members map[string]*model.RoomMember // key: room|user
}

func memberKey(roomUuid, userUuid string) string {
	return roomUuid + "|" + userUuid
}

func (r *fakeMemberRepo) Find(roomUuid, userUuid string) (*model.RoomMember, error) {
	if m, ok := r.members[memberKey(roomUuid, userUuid)]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "成员不存在")
}

func (r *fakeMemberRepo) FindByRoomUuid(roomUuid string) ([]model.RoomMember, error) {
	var out []model.RoomMember
	for _, m := range r.members {
		if m.RoomUuid == roomUuid {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) FindRoomUuidsByUser(userUuid string) ([]string, error) {
	var out []string
	for _, m := range r.members {
		if m.UserUuid == userUuid {
			out = append(out, m.RoomUuid)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) Create(m *model.RoomMember) error {
	key := memberKey(m.RoomUuid, m.UserUuid)
	if _, ok := r.members[key]; ok {
		return errorx.New(errorx.CodeConflict, "成员已存在")
	}
	copied := *m
	r.members[key] = &copied
	return nil
}

func (r *fakeMemberRepo) UpdateRole(roomUuid, userUuid string, role int8) error {
	if m, ok := r.members[memberKey(roomUuid, userUuid)]; ok {
		m.Role = role
		return nil
	}
	return errorx.New(errorx.CodeNotFound, "成员不存在")
}

func (r *fakeMemberRepo) Delete(roomUuid, userUuid string) error {
	delete(r.members, memberKey(roomUuid, userUuid))
	return nil
}

type fakeEnrollmentRepo struct {
	enrolled map[string]bool // key: user|course
}

func (r *fakeEnrollmentRepo) IsEnrolled(userUuid, courseUuid string) (bool, error) {
	return r.enrolled[userUuid+"|"+courseUuid], nil
}

// fixture 预置：全局大厅、课程聊天室、公开群、私有群（creator 建，admin 为管理员）
func newTestService() (*Service, *fakeMemberRepo) {
	roomRepo := &fakeRoomRepo{rooms: map[string]*model.ChatRoom{
		"R_hall":    {Uuid: "R_hall", Name: "大厅", Type: room_type_enum.Global},
		"R_course":  {Uuid: "R_course", Name: "Go 入门", Type: room_type_enum.Course, CourseUuid: "K_go101"},
		"R_public":  {Uuid: "R_public", Name: "公开群", Type: room_type_enum.Group, IsPublic: 1, CreatorId: "U_creator"},
		"R_private": {Uuid: "R_private", Name: "私有群", Type: room_type_enum.Group, CreatorId: "U_creator"},
	}}
	memberRepo := &fakeMemberRepo{members: map[string]*model.RoomMember{
		memberKey("R_private", "U_creator"): {RoomUuid: "R_private", UserUuid: "U_creator", Role: room_role_enum.Creator},
		memberKey("R_private", "U_admin"):   {RoomUuid: "R_private", UserUuid: "U_admin", Role: room_role_enum.Admin},
		memberKey("R_private", "U_admin2"):  {RoomUuid: "R_private", UserUuid: "U_admin2", Role: room_role_enum.Admin},
		memberKey("R_private", "U_member"):  {RoomUuid: "R_private", UserUuid: "U_member", Role: room_role_enum.Member},
	}}
	userRepo := &fakeUserRepo{users: map[string]*model.UserInfo{
		"U_creator": {Uuid: "U_creator"}, "U_admin": {Uuid: "U_admin"},
		"U_admin2": {Uuid: "U_admin2"}, "U_member": {Uuid: "U_member"},
		"U_student": {Uuid: "U_student"}, "U_outsider": {Uuid: "U_outsider"},
	}}
	enrollRepo := &fakeEnrollmentRepo{enrolled: map[string]bool{"U_student|K_go101": true}}

	repos := &repository.Repositories{
		User:       userRepo,
		Room:       roomRepo,
		RoomMember: memberRepo,
		Enrollment: enrollRepo,
	}
	return NewService(repos, nil), memberRepo
}

// ==================== 用例 ====================

func TestJoinGlobalRoomOpenToAll(t *testing.T) {
	svc, _ := newTestService()
	m, err := svc.JoinRoom("U_outsider", "R_hall")
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if m.Role != room_role_enum.Member {
		t.Errorf("Role = %d, want member", m.Role)
	}
}

func TestJoinRoomIdempotent(t *testing.T) {
	svc, repo := newTestService()
	if _, err := svc.JoinRoom("U_outsider", "R_hall"); err != nil {
		t.Fatal(err)
	}
	m, err := svc.JoinRoom("U_outsider", "R_hall")
	if err != nil {
		t.Fatalf("repeat join: %v", err)
	}
	if m == nil {
		t.Fatal("repeat join should return existing membership")
	}
	count := 0
	for _, mm := range repo.members {
		if mm.RoomUuid == "R_hall" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("memberships = %d, want 1", count)
	}
}

func TestJoinCourseRoomRequiresEnrollment(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.JoinRoom("U_student", "R_course"); err != nil {
		t.Errorf("enrolled student join: %v", err)
	}
	if _, err := svc.JoinRoom("U_outsider", "R_course"); !errorx.IsForbidden(err) {
		t.Errorf("unenrolled join: %v", err)
	}
}

func TestJoinGroupRoomVisibility(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.JoinRoom("U_outsider", "R_public"); err != nil {
		t.Errorf("public group self-join: %v", err)
	}
	if _, err := svc.JoinRoom("U_outsider", "R_private"); !errorx.IsForbidden(err) {
		t.Errorf("private group self-join: %v", err)
	}
	if _, err := svc.JoinRoom("U_outsider", "R_missing"); !errorx.IsNotFound(err) {
		t.Errorf("missing room: %v", err)
	}
}

func TestLeaveRoom(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.LeaveRoom("U_member", "R_private"); err != nil {
		t.Fatalf("LeaveRoom: %v", err)
	}
	if ok, _ := svc.IsMember("R_private", "U_member"); ok {
		t.Error("member should be gone after leave")
	}
	// 非成员退出返回未找到
	if err := svc.LeaveRoom("U_outsider", "R_private"); !errorx.IsNotFound(err) {
		t.Errorf("non-member leave: %v", err)
	}
}

func TestAddMemberRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.AddMember("U_admin", "R_private", "U_outsider"); err != nil {
		t.Fatalf("admin AddMember: %v", err)
	}
	// 普通成员没有拉人权限
	if _, err := svc.AddMember("U_member", "R_private", "U_student"); !errorx.IsForbidden(err) {
		t.Errorf("member AddMember: %v", err)
	}
	// 非成员操作返回禁止而非未找到
	if _, err := svc.AddMember("U_student", "R_private", "U_outsider"); !errorx.IsForbidden(err) {
		t.Errorf("stranger AddMember: %v", err)
	}
	// 重复拉人冲突
	if _, err := svc.AddMember("U_admin", "R_private", "U_member"); !errorx.IsConflict(err) {
		t.Errorf("duplicate AddMember: %v", err)
	}
}

func TestRemoveMemberHierarchy(t *testing.T) {
	svc, _ := newTestService()

	// 管理员可以移出普通成员
	if err := svc.RemoveMember("U_admin", "R_private", "U_member"); err != nil {
		t.Fatalf("admin removes member: %v", err)
	}
	// 管理员之间互不相辖
	if err := svc.RemoveMember("U_admin", "R_private", "U_admin2"); !errorx.IsForbidden(err) {
		t.Errorf("admin removes admin: %v", err)
	}
	// 创建者不可被移出
	if err := svc.RemoveMember("U_admin", "R_private", "U_creator"); !errorx.IsForbidden(err) {
		t.Errorf("remove creator: %v", err)
	}
	// 创建者可以移出管理员
	if err := svc.RemoveMember("U_creator", "R_private", "U_admin2"); err != nil {
		t.Errorf("creator removes admin: %v", err)
	}
}

func TestPromoteAndDemote(t *testing.T) {
	svc, repo := newTestService()

	if err := svc.PromoteMember("U_admin", "R_private", "U_member"); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if repo.members[memberKey("R_private", "U_member")].Role != room_role_enum.Admin {
		t.Error("member should be admin after promote")
	}
	// 已是管理员不能再提升
	if err := svc.PromoteMember("U_admin", "R_private", "U_member"); !errorx.IsConflict(err) {
		t.Errorf("promote admin: %v", err)
	}

	// 只有创建者可以降级
	if err := svc.DemoteMember("U_admin2", "R_private", "U_member"); !errorx.IsForbidden(err) {
		t.Errorf("admin demotes: %v", err)
	}
	if err := svc.DemoteMember("U_creator", "R_private", "U_member"); err != nil {
		t.Fatalf("creator demotes: %v", err)
	}
	if repo.members[memberKey("R_private", "U_member")].Role != room_role_enum.Member {
		t.Error("admin should be member after demote")
	}
	// 创建者角色不可变更
	if err := svc.DemoteMember("U_creator", "R_private", "U_creator"); !errorx.IsForbidden(err) {
		t.Errorf("demote creator: %v", err)
	}
}

func TestGetRoomMemberOnly(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.GetRoom("U_member", "R_private")
	if err != nil {
		t.Fatalf("member GetRoom: %v", err)
	}
	if resp.MemberCount != 4 {
		t.Errorf("MemberCount = %d, want 4", resp.MemberCount)
	}
	// 非成员拿到禁止：聊天室的存在性不是秘密
	if _, err := svc.GetRoom("U_outsider", "R_private"); !errorx.IsForbidden(err) {
		t.Errorf("outsider GetRoom: %v", err)
	}
	if _, err := svc.GetRoom("U_member", "R_missing"); !errorx.IsNotFound(err) {
		t.Errorf("missing room: %v", err)
	}
}

func TestMemberIdsAndRoomList(t *testing.T) {
	svc, _ := newTestService()

	ids, err := svc.MemberIdsOf("R_private")
	if err != nil || len(ids) != 4 {
		t.Errorf("MemberIdsOf = %v, %v", ids, err)
	}

	rooms, err := svc.ListRoomsForUser("U_member")
	if err != nil || len(rooms) != 1 || rooms[0].Uuid != "R_private" {
		t.Errorf("ListRoomsForUser = %+v, %v", rooms, err)
	}
	empty, err := svc.ListRoomsForUser("U_outsider")
	if err != nil || len(empty) != 0 {
		t.Errorf("outsider rooms = %v, %v", empty, err)
	}
}

func TestListMembersMemberOnly(t *testing.T) {
	svc, _ := newTestService()

	members, err := svc.ListMembers("U_member", "R_private")
	if err != nil || len(members) != 4 {
		t.Errorf("ListMembers = %d, %v", len(members), err)
	}
	if _, err := svc.ListMembers("U_outsider", "R_private"); !errorx.IsForbidden(err) {
		t.Errorf("outsider ListMembers: %v", err)
	}
}
