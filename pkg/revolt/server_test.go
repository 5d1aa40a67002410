package revolt

import "testing"

func TestServerRemoveChannelID(t *testing.T) {
	t.Parallel()

	server := NewServer(ServerPayload{
		ID:         "server-1",
		ChannelIDs: []string{"ch-1", "ch-2"},
		Categories: []CategoryPayload{
			{ID: "cat-1", Title: "general", ChannelIDs: []string{"ch-1", "ch-2"}},
		},
	})

	server.RemoveChannelID("ch-1")

	if len(server.ChannelIDs) != 1 || server.ChannelIDs[0] != "ch-2" {
		t.Fatalf("channel ids = %v, want [ch-2]", server.ChannelIDs)
	}
	if len(server.Categories[0].ChannelIDs) != 1 || server.Categories[0].ChannelIDs[0] != "ch-2" {
		t.Fatalf("category channel ids = %v, want [ch-2]", server.Categories[0].ChannelIDs)
	}
}

func TestServerMemberIDs(t *testing.T) {
	t.Parallel()

	server := NewServer(ServerPayload{ID: "server-1"})

	server.AddMemberID("user-1")
	server.AddMemberID("user-1")
	server.AddMemberID("user-2")

	if len(server.MemberIDs) != 2 {
		t.Fatalf("member ids = %v, want two unique entries", server.MemberIDs)
	}

	server.RemoveMemberID("user-1")

	if len(server.MemberIDs) != 1 || server.MemberIDs[0] != "user-2" {
		t.Fatalf("member ids = %v, want [user-2]", server.MemberIDs)
	}
}

func TestServerSnapshotDoesNotAliasCollections(t *testing.T) {
	t.Parallel()

	server := NewServer(ServerPayload{
		ID:         "server-1",
		Name:       "home",
		ChannelIDs: []string{"ch-1"},
	})

	snapshot := server.Snapshot()
	newName := "renamed"
	server.ApplyUpdate(ServerEditData{Name: &newName}, "")
	server.RemoveChannelID("ch-1")

	if snapshot.Name != "home" {
		t.Fatalf("snapshot name = %q, want home", snapshot.Name)
	}
	if len(snapshot.ChannelIDs) != 1 {
		t.Fatalf("snapshot channel ids = %v, want [ch-1]", snapshot.ChannelIDs)
	}
}

func TestServerApplyUpdateClear(t *testing.T) {
	t.Parallel()

	server := NewServer(ServerPayload{ID: "server-1", Description: "about us"})

	server.ApplyUpdate(ServerEditData{}, "Description")

	if server.Description != "" {
		t.Fatalf("description = %q, want cleared", server.Description)
	}
}
