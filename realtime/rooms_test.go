package realtime

import (
	"sort"
	"testing"
)

func TestJoinAndMembers(t *testing.T) {
	rm := NewRooms()

	rm.Join("conn-a", "chat_42")
	rm.Join("conn-b", "chat_42")
	rm.Join("conn-a", "user_1")

	members := rm.Members("chat_42")
	sort.Strings(members)
	if len(members) != 2 || members[0] != "conn-a" || members[1] != "conn-b" {
		t.Errorf("unexpected members: %v", members)
	}
	if !rm.InRoom("conn-a", "user_1") {
		t.Error("conn-a should be in user_1")
	}
}

func TestLeaveDropsEmptyRoom(t *testing.T) {
	rm := NewRooms()

	rm.Join("conn-a", "chat_42")
	rm.Leave("conn-a", "chat_42")

	if rm.InRoom("conn-a", "chat_42") {
		t.Error("conn-a still in room after leave")
	}
	if n := rm.RoomCount(); n != 0 {
		t.Errorf("expected empty room to be deleted, have %d rooms", n)
	}
}

func TestRemoveConnLeavesAllRooms(t *testing.T) {
	rm := NewRooms()

	rm.Join("conn-a", "chat_42")
	rm.Join("conn-a", "user_1")
	rm.Join("conn-b", "chat_42")

	rm.RemoveConn("conn-a")

	if rm.RoomsOf("conn-a") != 0 {
		t.Error("conn-a still holds room memberships after disconnect")
	}
	if rm.InRoom("conn-a", "chat_42") {
		t.Error("conn-a still member of chat_42")
	}
	if !rm.InRoom("conn-b", "chat_42") {
		t.Error("conn-b should keep its membership")
	}
}

func TestMembersOfUnknownRoom(t *testing.T) {
	rm := NewRooms()
	if members := rm.Members("chat_999"); members != nil {
		t.Errorf("expected nil, got %v", members)
	}
}
