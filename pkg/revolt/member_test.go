package revolt

import (
	"errors"
	"testing"
)

func TestNewMemberShapeSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		payload  MemberPayload
		serverID string
		want     *Member
		wantErr  bool
	}{
		{
			name:     "bare user reference is a partial member",
			payload:  MemberPayload{UserID: "user-1"},
			serverID: "server-1",
			want:     &Member{ServerID: "server-1", UserID: "user-1", Partial: true},
		},
		{
			name: "composite identity is a full member",
			payload: MemberPayload{
				ID:       &MemberID{ServerID: "server-1", UserID: "user-1"},
				Nickname: "ops",
			},
			want: &Member{ServerID: "server-1", UserID: "user-1", Nickname: "ops"},
		},
		{
			name:    "bare user reference without server scope fails",
			payload: MemberPayload{UserID: "user-1"},
			wantErr: true,
		},
		{
			name:    "neither shape fails",
			payload: MemberPayload{Nickname: "ops"},
			wantErr: true,
		},
		{
			name:    "composite identity missing user fails",
			payload: MemberPayload{ID: &MemberID{ServerID: "server-1"}},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			member, err := NewMember(testCase.payload, testCase.serverID)
			if testCase.wantErr {
				if !errors.Is(err, ErrInvalidPayload) {
					t.Fatalf("error = %v, want ErrInvalidPayload", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("new member failed: %v", err)
			}
			if *member != *testCase.want {
				t.Fatalf("member = %+v, want %+v", member, testCase.want)
			}
		})
	}
}

func TestMemberApplyUpdatePromotesPartial(t *testing.T) {
	t.Parallel()

	member, err := NewMember(MemberPayload{UserID: "user-1"}, "server-1")
	if err != nil {
		t.Fatalf("new member failed: %v", err)
	}

	nickname := "newcomer"
	member.ApplyUpdate(MemberEditData{Nickname: &nickname}, "")

	if member.Nickname != "newcomer" {
		t.Fatalf("nickname = %q, want newcomer", member.Nickname)
	}
	if member.Partial {
		t.Fatal("member still partial after server-scoped update")
	}
}

func TestMemberApplyUpdateClear(t *testing.T) {
	t.Parallel()

	member, err := NewMember(MemberPayload{
		ID:       &MemberID{ServerID: "server-1", UserID: "user-1"},
		Nickname: "ops",
	}, "")
	if err != nil {
		t.Fatalf("new member failed: %v", err)
	}

	member.ApplyUpdate(MemberEditData{}, "Nickname")

	if member.Nickname != "" {
		t.Fatalf("nickname = %q, want cleared", member.Nickname)
	}
}
