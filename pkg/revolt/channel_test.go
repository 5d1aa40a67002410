package revolt

import (
	"errors"
	"testing"
)

func TestNewChannelVariants(t *testing.T) {
	t.Parallel()

	server := NewServer(ServerPayload{ID: "server-1", Name: "home"})

	tests := []struct {
		name     string
		payload  ChannelPayload
		server   *Server
		wantType ChannelType
		check    func(t *testing.T, channel *Channel)
	}{
		{
			name:     "saved messages",
			payload:  ChannelPayload{ID: "ch-notes", ChannelType: "SavedMessages", OwnerID: "user-1"},
			wantType: ChannelTypeSavedMessages,
			check: func(t *testing.T, channel *Channel) {
				if channel.OwnerID != "user-1" {
					t.Fatalf("owner = %q, want user-1", channel.OwnerID)
				}
			},
		},
		{
			name: "direct message",
			payload: ChannelPayload{
				ID:           "ch-dm",
				ChannelType:  "DirectMessage",
				Active:       true,
				RecipientIDs: []string{"user-1", "user-2"},
			},
			wantType: ChannelTypeDirectMessage,
			check: func(t *testing.T, channel *Channel) {
				if !channel.Active {
					t.Fatal("dm not active")
				}
				if len(channel.RecipientIDs) != 2 {
					t.Fatalf("recipients = %d, want 2", len(channel.RecipientIDs))
				}
			},
		},
		{
			name: "group",
			payload: ChannelPayload{
				ID:           "ch-group",
				ChannelType:  "Group",
				Name:         "weekend",
				RecipientIDs: []string{"user-1", "user-2", "user-3"},
			},
			wantType: ChannelTypeGroup,
			check: func(t *testing.T, channel *Channel) {
				if channel.Name != "weekend" {
					t.Fatalf("name = %q, want weekend", channel.Name)
				}
			},
		},
		{
			name: "text channel with server",
			payload: ChannelPayload{
				ID:          "ch-text",
				ChannelType: "TextChannel",
				ServerID:    "server-1",
				Name:        "general",
				Topic:       "chatter",
			},
			server:   server,
			wantType: ChannelTypeText,
			check: func(t *testing.T, channel *Channel) {
				if channel.Server() != server {
					t.Fatal("server back-reference not set")
				}
				if channel.Topic != "chatter" {
					t.Fatalf("topic = %q, want chatter", channel.Topic)
				}
			},
		},
		{
			name: "voice channel",
			payload: ChannelPayload{
				ID:          "ch-voice",
				ChannelType: "VoiceChannel",
				Name:        "lounge",
			},
			server:   server,
			wantType: ChannelTypeVoice,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			channel, err := NewChannel(testCase.payload, testCase.server)
			if err != nil {
				t.Fatalf("new channel failed: %v", err)
			}
			if channel.Type != testCase.wantType {
				t.Fatalf("type = %q, want %q", channel.Type, testCase.wantType)
			}
			if testCase.check != nil {
				testCase.check(t, channel)
			}
		})
	}
}

func TestNewChannelRejectsUnknownType(t *testing.T) {
	t.Parallel()

	_, err := NewChannel(ChannelPayload{ID: "ch-1", ChannelType: "Forum"}, nil)
	if !errors.Is(err, ErrUnknownChannelType) {
		t.Fatalf("error = %v, want ErrUnknownChannelType", err)
	}
}

func TestNewChannelRejectsMissingID(t *testing.T) {
	t.Parallel()

	_, err := NewChannel(ChannelPayload{ChannelType: "Group"}, nil)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("error = %v, want ErrInvalidPayload", err)
	}
}

func TestChannelApplyUpdate(t *testing.T) {
	t.Parallel()

	channel, err := NewChannel(ChannelPayload{
		ID:          "ch-1",
		ChannelType: "TextChannel",
		Name:        "general",
		Topic:       "old topic",
	}, nil)
	if err != nil {
		t.Fatalf("new channel failed: %v", err)
	}

	newName := "announcements"
	channel.ApplyUpdate(ChannelEditData{Name: &newName}, "Topic")

	if channel.Name != "announcements" {
		t.Fatalf("name = %q, want announcements", channel.Name)
	}
	if channel.Topic != "" {
		t.Fatalf("topic = %q, want cleared", channel.Topic)
	}
}

func TestChannelSnapshotDoesNotAliasRecipients(t *testing.T) {
	t.Parallel()

	channel, err := NewChannel(ChannelPayload{
		ID:           "ch-1",
		ChannelType:  "Group",
		RecipientIDs: []string{"user-1"},
	}, nil)
	if err != nil {
		t.Fatalf("new channel failed: %v", err)
	}

	snapshot := channel.Snapshot()
	channel.RecipientIDs[0] = "user-x"

	if snapshot.RecipientIDs[0] != "user-1" {
		t.Fatalf("snapshot recipients mutated: %v", snapshot.RecipientIDs)
	}
}
