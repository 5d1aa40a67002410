package revolt

import (
	"errors"
	"testing"
)

func TestAttachmentURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		fileBaseURL string
		want        string
	}{
		{
			name:        "with file server",
			fileBaseURL: "https://files.example.test",
			want:        "https://files.example.test/attachments/att-1",
		},
		{
			name:        "without file server",
			fileBaseURL: "",
			want:        "",
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			attachment := NewAttachment(AttachmentPayload{
				ID:       "att-1",
				Tag:      "attachments",
				Filename: "photo.png",
			}, testCase.fileBaseURL)

			if got := attachment.URL(); got != testCase.want {
				t.Fatalf("url = %q, want %q", got, testCase.want)
			}
		})
	}
}

func TestAttachmentIsSpoiler(t *testing.T) {
	t.Parallel()

	plain := NewAttachment(AttachmentPayload{ID: "att-1", Filename: "photo.png"}, "")
	spoiler := NewAttachment(AttachmentPayload{ID: "att-2", Filename: "SPOILER_photo.png"}, "")

	if plain.IsSpoiler() {
		t.Fatal("plain attachment reported as spoiler")
	}
	if !spoiler.IsSpoiler() {
		t.Fatal("spoiler attachment not detected")
	}
}

func TestNewMessageRequiresChannel(t *testing.T) {
	t.Parallel()

	_, err := NewMessage(MessagePayload{ID: "msg-1"}, nil, "")
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("error = %v, want ErrInvalidPayload", err)
	}
}

func TestMessageSnapshotDoesNotAliasAttachments(t *testing.T) {
	t.Parallel()

	channel, err := NewChannel(ChannelPayload{ID: "ch-1", ChannelType: "Group"}, nil)
	if err != nil {
		t.Fatalf("new channel failed: %v", err)
	}
	message, err := NewMessage(MessagePayload{
		ID:          "msg-1",
		ChannelID:   "ch-1",
		Content:     "hello",
		Attachments: []AttachmentPayload{{ID: "att-1", Tag: "attachments", Filename: "a.png"}},
	}, channel, "https://files.example.test")
	if err != nil {
		t.Fatalf("new message failed: %v", err)
	}

	snapshot := message.Snapshot()
	edited := "edited"
	message.ApplyUpdate(MessageEditData{Content: &edited})
	message.Attachments[0].Filename = "b.png"

	if snapshot.Content != "hello" {
		t.Fatalf("snapshot content = %q, want hello", snapshot.Content)
	}
	if snapshot.Attachments[0].Filename != "a.png" {
		t.Fatalf("snapshot attachment mutated: %q", snapshot.Attachments[0].Filename)
	}
	if snapshot.Channel != channel {
		t.Fatal("snapshot channel reference changed")
	}
}
